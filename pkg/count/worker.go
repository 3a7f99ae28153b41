package count

import (
	"io"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/oisee/knucleotide/pkg/kmap"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// WorkerPool runs window-counting work items in parallel.
type WorkerPool struct {
	NumWorkers int
	Progress   io.Writer // progress bar destination, nil for none
	items      atomic.Int64
	windows    atomic.Int64
}

// NewWorkerPool creates a pool with the given number of workers.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{NumWorkers: numWorkers}
}

// Stats returns the number of finished items and counted windows.
func (wp *WorkerPool) Stats() (items, windows int64) {
	return wp.items.Load(), wp.windows.Load()
}

// RunItems counts every item over the shared, read-only codes buffer and
// returns the partial maps in item order. Each item owns its map; no map is
// touched by two workers.
func (wp *WorkerPool) RunItems(codes []byte, items []WorkItem) []*kmap.Map {
	partials := make([]*kmap.Map, len(items))

	ch := make(chan int, len(items))
	for i := range items {
		ch <- i
	}
	close(ch)

	var pbs *mpb.Progress
	var bar *mpb.Bar
	// A bar with a zero total never completes, so Wait would block.
	if wp.Progress != nil && len(items) > 0 {
		pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(wp.Progress))
		bar = pbs.AddBar(int64(len(items)),
			mpb.PrependDecorators(
				decor.Name("work items: ", decor.WC{W: len("work items: "), C: decor.DindentRight}),
				decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(
				decor.Percentage(decor.WC{W: 5}),
				decor.OnComplete(decor.Name(""), ". done"),
			),
		)
	}

	var wg sync.WaitGroup
	for i := 0; i < wp.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range ch {
				item := items[idx]
				partials[idx] = item.Count(codes)
				wp.items.Add(1)
				wp.windows.Add(int64(item.Windows()))
				if bar != nil {
					bar.Increment()
				}
			}
		}()
	}
	wg.Wait()
	if pbs != nil {
		pbs.Wait()
	}
	return partials
}

// ReduceByK groups partials by their item's k and reduces each group on its
// own goroutine. Partials are consumed.
func (wp *WorkerPool) ReduceByK(items []WorkItem, partials []*kmap.Map) map[int]*kmap.Map {
	groups := make(map[int][]*kmap.Map)
	for i, item := range items {
		groups[item.K] = append(groups[item.K], partials[i])
		partials[i] = nil
	}

	var mu sync.Mutex
	out := make(map[int]*kmap.Map, len(groups))
	var wg sync.WaitGroup
	for k, group := range groups {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m := Reduce(group)
			mu.Lock()
			out[k] = m
			mu.Unlock()
		}()
	}
	wg.Wait()
	return out
}
