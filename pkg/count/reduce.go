package count

import "github.com/oisee/knucleotide/pkg/kmap"

// Reduce folds partial maps for one k into a single map by key-wise
// addition. The largest partial becomes the accumulator, so callers hand
// over ownership of every partial; none may be used afterwards.
func Reduce(partials []*kmap.Map) *kmap.Map {
	acc := -1
	for i, p := range partials {
		if p != nil && (acc < 0 || p.Len() > partials[acc].Len()) {
			acc = i
		}
	}
	if acc < 0 {
		return kmap.New(0)
	}
	dst := partials[acc]
	for i, p := range partials {
		if i == acc || p == nil {
			continue
		}
		for k, v := range p.All() {
			*dst.Ref(k) += v
		}
		partials[i] = nil
	}
	return dst
}
