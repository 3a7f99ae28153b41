// Package count computes k-mer frequencies over an encoded nucleotide buffer.
//
// The buffer is cut into one region per partition, every (region, k) pair
// becomes a work item counted on its own map, and the partial maps for each
// k are then summed into a final map.
package count

import (
	"io"
	"runtime"
	"slices"
	"time"

	"github.com/ledgerwatch/log/v3"
	"github.com/oisee/knucleotide/pkg/kmap"
	"github.com/oisee/knucleotide/pkg/nucleo"
)

// Config holds counting configuration.
type Config struct {
	KValues    []int      // Window lengths to count, 1..32
	NumWorkers int        // Parallel workers (defaults to NumCPU)
	Partitions int        // Regions per k (defaults to NumWorkers)
	Progress   io.Writer  // Progress bar output, nil disables it
	Logger     log.Logger // Defaults to log.Root()
}

// Frequencies holds one reduced map per k over a buffer of Length symbols.
type Frequencies struct {
	Length int
	maps   map[int]*kmap.Map
}

// Map returns the final map for k, or an empty map if k was not counted.
func (f *Frequencies) Map(k int) *kmap.Map {
	if m, ok := f.maps[k]; ok {
		return m
	}
	return kmap.New(0)
}

// Has reports whether k was counted.
func (f *Frequencies) Has(k int) bool {
	_, ok := f.maps[k]
	return ok
}

// KValues returns the counted window lengths in ascending order.
func (f *Frequencies) KValues() []int {
	ks := make([]int, 0, len(f.maps))
	for k := range f.maps {
		ks = append(ks, k)
	}
	slices.Sort(ks)
	return ks
}

// Windows returns the number of length-k windows in the buffer.
func (f *Frequencies) Windows(k int) int {
	return Windows(f.Length, k)
}

// Count returns the occurrences of key among the length-k windows.
func (f *Frequencies) Count(key uint64, k int) uint32 {
	if m, ok := f.maps[k]; ok {
		return m.Count(key)
	}
	return 0
}

// Windows returns max(0, length-k+1).
func Windows(length, k int) int {
	if k <= 0 || length < k {
		return 0
	}
	return length - k + 1
}

// normalizeK sorts and dedups ks, dropping values outside 1..MaxK.
func normalizeK(ks []int, logger log.Logger) []int {
	out := make([]int, 0, len(ks))
	for _, k := range ks {
		if k < 1 || k > nucleo.MaxK {
			logger.Warn("Ignoring window length", "k", k, "max", nucleo.MaxK)
			continue
		}
		out = append(out, k)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Run counts all requested k over codes. codes is shared read-only by
// every worker and must not change until Run returns.
func Run(codes []byte, cfg Config) *Frequencies {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = runtime.NumCPU()
	}
	if cfg.Partitions <= 0 {
		cfg.Partitions = cfg.NumWorkers
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Root()
	}

	ks := normalizeK(cfg.KValues, logger)
	items := Partition(len(codes), cfg.Partitions, ks)
	logger.Debug("Partitioned buffer", "symbols", len(codes), "regions", cfg.Partitions, "k", ks, "items", len(items))

	pool := NewWorkerPool(cfg.NumWorkers)
	pool.Progress = cfg.Progress

	start := time.Now()
	partials := pool.RunItems(codes, items)
	done, windows := pool.Stats()
	logger.Debug("Counted windows", "items", done, "windows", windows, "workers", pool.NumWorkers, "took", time.Since(start))

	start = time.Now()
	maps := pool.ReduceByK(items, partials)
	logger.Debug("Reduced partial maps", "k", len(maps), "took", time.Since(start))

	f := &Frequencies{Length: len(codes), maps: maps}
	for _, k := range ks {
		if total, want := f.Map(k).Total(), uint64(f.Windows(k)); total != want {
			logger.Error("Window total mismatch", "k", k, "total", total, "want", want)
		}
	}
	return f
}
