package result

import (
	"sort"

	"github.com/oisee/knucleotide/pkg/kmap"
	"github.com/oisee/knucleotide/pkg/nucleo"
	"github.com/twotwotwo/sorts"
)

// Row is one k-mer of a frequency table.
type Row struct {
	Kmer    string  `json:"kmer"`
	Count   uint32  `json:"count"`
	Percent float64 `json:"percent"`
}

// Table lists every observed k-mer of one window length, most frequent
// first. Equal counts are ordered by k-mer text.
type Table struct {
	K       int   `json:"k"`
	Windows int   `json:"windows"`
	Rows    []Row `json:"rows"`
}

type byFrequency []Row

func (s byFrequency) Len() int      { return len(s) }
func (s byFrequency) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s byFrequency) Less(i, j int) bool {
	if s[i].Count != s[j].Count {
		return s[i].Count > s[j].Count
	}
	return s[i].Kmer < s[j].Kmer
}

var _ sort.Interface = byFrequency(nil)

// Percent returns 100*count/windows, or 0 when there are no windows.
func Percent(count uint32, windows int) float64 {
	if windows <= 0 {
		return 0
	}
	return 100 * float64(count) / float64(windows)
}

// NewTable ranks the entries of m, a map of length-k windows.
func NewTable(m *kmap.Map, k, windows int) Table {
	rows := make([]Row, 0, m.Len())
	for key, v := range m.All() {
		rows = append(rows, Row{
			Kmer:    nucleo.Decode(key, k),
			Count:   v,
			Percent: Percent(v, windows),
		})
	}
	sorts.Quicksort(byFrequency(rows))
	return Table{K: k, Windows: windows, Rows: rows}
}

// Total returns the sum of the row counts.
func (t *Table) Total() uint64 {
	var n uint64
	for _, r := range t.Rows {
		n += uint64(r.Count)
	}
	return n
}
