package count

import "github.com/oisee/knucleotide/pkg/kmap"

// WorkItem is one (region, k) unit of counting work.
//
// Start and Length give the region's logical span of the code buffer.
// Lookback symbols before Start are read only to seed the rolling key, so
// the item produces exactly the windows whose last symbol falls inside the
// span.
type WorkItem struct {
	Region   int
	Start    int
	Length   int
	Lookback int
	K        int
}

// Span returns the slice of codes the item scans, lookback included.
func (w WorkItem) Span(codes []byte) []byte {
	return codes[w.Start-w.Lookback : w.Start+w.Length]
}

// Windows returns the number of windows the item produces.
func (w WorkItem) Windows() int {
	n := w.Lookback + w.Length - w.K + 1
	if n < 0 {
		return 0
	}
	return n
}

// Count runs the window counter over the item's span.
func (w WorkItem) Count(codes []byte) *kmap.Map {
	return CountWindows(w.Span(codes), w.K)
}

// Regions splits length symbols into parts contiguous spans of length/parts
// symbols each; the last span absorbs the remainder.
func Regions(length, parts int) (starts, lengths []int) {
	if parts < 1 {
		parts = 1
	}
	size := length / parts
	starts = make([]int, parts)
	lengths = make([]int, parts)
	for i := range parts {
		starts[i] = i * size
		lengths[i] = size
	}
	lengths[parts-1] += length % parts
	return starts, lengths
}

// Partition builds one work item per (region, k) pair, region-major. The
// first region has nothing to its left and borrows no lookback.
func Partition(length, parts int, ks []int) []WorkItem {
	starts, lengths := Regions(length, parts)
	items := make([]WorkItem, 0, len(starts)*len(ks))
	for r := range starts {
		for _, k := range ks {
			items = append(items, WorkItem{
				Region:   r,
				Start:    starts[r],
				Length:   lengths[r],
				Lookback: min(k-1, starts[r]),
				K:        k,
			})
		}
	}
	return items
}
