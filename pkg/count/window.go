package count

import (
	"github.com/oisee/knucleotide/pkg/kmap"
	"github.com/oisee/knucleotide/pkg/nucleo"
)

// maxPresize bounds the initial arena of a window map.
const maxPresize = 1 << 16

// presize estimates how many distinct k-mers a scan of n windows can see.
func presize(windows, k int) int {
	n := windows
	if k < 9 && 1<<(2*k) < n {
		n = 1 << (2 * k)
	}
	if n > maxPresize {
		n = maxPresize
	}
	return n
}

// CountWindows counts every length-k window of codes. The rolling key is
// seeded with the first k-1 symbols, then each further symbol shifts in and
// bumps one map cell. A buffer shorter than k yields an empty map.
func CountWindows(codes []byte, k int) *kmap.Map {
	if k <= 0 || len(codes) < k {
		return kmap.New(0)
	}
	m := kmap.New(presize(len(codes)-k+1, k))
	mask := nucleo.Mask(k)

	var key uint64
	for _, c := range codes[:k-1] {
		key = key<<2 | uint64(c)
	}
	for _, c := range codes[k-1:] {
		key = (key<<2)&mask | uint64(c)
		*m.Ref(key)++
	}
	return m
}
