// Package nucleo packs nucleotide text into 2-bit symbol codes and k-mer keys.
package nucleo

import (
	"github.com/pkg/errors"
	"github.com/shenwei356/kmers"
)

// Symbol codes, in key order.
const (
	A byte = iota
	C
	G
	T
)

// MaxK is the longest k-mer that fits in a 64-bit key.
const MaxK = 32

// Letters maps a symbol code back to its upper-case letter.
var Letters = [4]byte{'A', 'C', 'G', 'T'}

var (
	// ErrIllegalBase is returned for literals containing a non-ACGT byte.
	ErrIllegalBase = errors.New("nucleo: illegal base")
	// ErrKOverflow is returned for empty literals or literals longer than MaxK.
	ErrKOverflow = errors.New("nucleo: k-mer length overflow, valid range is [1-32]")
)

// invalid marks bytes that are not part of the alphabet.
const invalid = 0xFF

var codes = func() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = invalid
	}
	t['A'], t['a'] = A, A
	t['C'], t['c'] = C, C
	t['G'], t['g'] = G, G
	t['T'], t['t'] = T, T
	return t
}()

// Code returns the symbol for b and whether b is in the alphabet.
func Code(b byte) (byte, bool) {
	c := codes[b]
	return c, c != invalid
}

// Encode converts raw sequence text into a fresh buffer of symbol codes.
// Bytes outside {a,c,g,t} (either case) are dropped, so the result may be
// shorter than raw.
func Encode(raw []byte) []byte {
	return EncodeInto(make([]byte, 0, len(raw)), raw)
}

// EncodeInto appends the codes for raw to dst and returns the extended slice.
// dst may alias raw[:0]: the write cursor never passes the read cursor.
func EncodeInto(dst, raw []byte) []byte {
	for _, b := range raw {
		if c := codes[b]; c != invalid {
			dst = append(dst, c)
		}
	}
	return dst
}

// Key packs codes, most significant symbol first. Only the last 32 symbols
// survive for longer inputs.
func Key(codes []byte) uint64 {
	var k uint64
	for _, c := range codes {
		k = k<<2 | uint64(c&3)
	}
	return k
}

// Mask returns the key mask covering k symbols.
func Mask(k int) uint64 {
	if k <= 0 {
		return 0
	}
	if k >= MaxK {
		return ^uint64(0)
	}
	return 1<<(2*uint(k)) - 1
}

// KeyOf encodes a literal k-mer such as "GGTA". Unlike Encode, it rejects
// bytes outside the alphabet instead of skipping them.
func KeyOf(literal string) (uint64, error) {
	if len(literal) == 0 || len(literal) > MaxK {
		return 0, errors.Wrapf(ErrKOverflow, "literal %q", literal)
	}
	for i := 0; i < len(literal); i++ {
		if _, ok := Code(literal[i]); !ok {
			return 0, errors.Wrapf(ErrIllegalBase, "%q at offset %d of %q", literal[i], i, literal)
		}
	}
	key, err := kmers.Encode([]byte(literal))
	if err != nil {
		return 0, errors.Wrapf(err, "encoding %q", literal)
	}
	return key, nil
}

// Decode renders the k-symbol key as upper-case text.
func Decode(key uint64, k int) string {
	if k <= 0 {
		return ""
	}
	return string(kmers.MustDecode(key, k))
}
