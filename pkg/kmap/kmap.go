// Package kmap implements a hash map specialised for packed k-mer keys.
//
// Keys are uint64 values holding up to 32 two-bit symbols and values are
// uint32 counts. Entries live in one flat arena and chain through integer
// next-indices, so a collision never allocates. Removed entries are kept on a
// free list and reused before the arena grows. The key itself is the hash:
// packed k-mers are already spread uniformly over their 2k-bit range.
//
// A Map is not safe for concurrent mutation.
package kmap

import (
	"iter"

	"github.com/twotwotwo/sorts/sortutil"
)

// hashMask keeps hash codes non-negative in an int32.
const hashMask = 0x7FFFFFFF

type entry struct {
	hash  int32 // low 31 bits of key, -1 if on the free list
	next  int32 // next entry in chain (or free list), -1 terminates
	key   uint64
	value uint32
}

// Map is a fixed-key hash table from k-mer keys to counts.
type Map struct {
	buckets   []int32 // 1-based index into entries, 0 = empty
	entries   []entry
	count     int32 // used prefix of entries, live or freed
	freeList  int32
	freeCount int32
}

// New creates a map that holds capacity entries before its first resize.
func New(capacity int) *Map {
	m := &Map{freeList: -1}
	if capacity > 0 {
		m.initialize(capacity)
	}
	return m
}

func (m *Map) initialize(capacity int) int {
	size := getPrime(capacity)
	m.buckets = make([]int32, size)
	m.entries = make([]entry, size)
	m.freeList = -1
	return size
}

func bucketOf(hash int32, n int) int {
	return int(uint32(hash) % uint32(n))
}

// find returns the arena index of key, or -1.
func (m *Map) find(key uint64) int32 {
	if m.buckets == nil {
		return -1
	}
	h := int32(key & hashMask)
	for i := m.buckets[bucketOf(h, len(m.buckets))] - 1; i >= 0; {
		e := &m.entries[i]
		if e.hash == h && e.key == key {
			return i
		}
		i = e.next
	}
	return -1
}

// Ref returns the count cell for key, inserting a zero cell when the key is
// absent. Callers increment through the pointer:
//
//	*m.Ref(key)++
//
// The pointer stays valid until the next insertion of a new key, which may
// move the arena. Two calls with the same key and no insertion in between
// return the same cell.
func (m *Map) Ref(key uint64) *uint32 {
	if m.buckets == nil {
		m.initialize(0)
	}
	h := int32(key & hashMask)
	b := bucketOf(h, len(m.buckets))
	for i := m.buckets[b] - 1; i >= 0; {
		e := &m.entries[i]
		if e.hash == h && e.key == key {
			return &e.value
		}
		i = e.next
	}

	var idx int32
	if m.freeCount > 0 {
		idx = m.freeList
		m.freeList = m.entries[idx].next
		m.freeCount--
	} else {
		if int(m.count) == len(m.entries) {
			m.resize(expandPrime(int(m.count)))
			b = bucketOf(h, len(m.buckets))
		}
		idx = m.count
		m.count++
	}

	e := &m.entries[idx]
	e.hash = h
	e.next = m.buckets[b] - 1
	e.key = key
	e.value = 0
	m.buckets[b] = idx + 1
	return &e.value
}

// Inc adds one to the count for key.
func (m *Map) Inc(key uint64) {
	*m.Ref(key)++
}

// Add adds v to the count for key.
func (m *Map) Add(key uint64, v uint32) {
	*m.Ref(key) += v
}

// Get returns the count for key without inserting it.
func (m *Map) Get(key uint64) (uint32, bool) {
	if i := m.find(key); i >= 0 {
		return m.entries[i].value, true
	}
	return 0, false
}

// Count returns the count for key, 0 if absent.
func (m *Map) Count(key uint64) uint32 {
	v, _ := m.Get(key)
	return v
}

// Len returns the number of live entries.
func (m *Map) Len() int {
	return int(m.count - m.freeCount)
}

// Cap returns the arena size.
func (m *Map) Cap() int {
	return len(m.entries)
}

// Remove deletes key and reports whether it was present. The freed slot is
// reused by the next insertion.
func (m *Map) Remove(key uint64) bool {
	if m.buckets == nil {
		return false
	}
	h := int32(key & hashMask)
	b := bucketOf(h, len(m.buckets))
	last := int32(-1)
	for i := m.buckets[b] - 1; i >= 0; {
		e := &m.entries[i]
		if e.hash == h && e.key == key {
			if last < 0 {
				m.buckets[b] = e.next + 1
			} else {
				m.entries[last].next = e.next
			}
			e.hash = -1
			e.next = m.freeList
			e.key = 0
			e.value = 0
			m.freeList = i
			m.freeCount++
			return true
		}
		last = i
		i = e.next
	}
	return false
}

// EnsureCapacity grows the arena so that capacity entries fit without a
// resize and returns the resulting capacity.
func (m *Map) EnsureCapacity(capacity int) int {
	if len(m.entries) >= capacity {
		return len(m.entries)
	}
	if m.buckets == nil {
		return m.initialize(capacity)
	}
	size := getPrime(capacity)
	m.resize(size)
	return size
}

// Clear removes all entries and keeps the arena.
func (m *Map) Clear() {
	if m.count == 0 {
		return
	}
	clear(m.buckets)
	clear(m.entries[:m.count])
	m.count = 0
	m.freeList = -1
	m.freeCount = 0
}

// resize moves the used prefix into a larger arena and rebuilds the chains.
func (m *Map) resize(size int) {
	buckets := make([]int32, size)
	entries := make([]entry, size)
	copy(entries, m.entries[:m.count])
	for i := int32(0); i < m.count; i++ {
		e := &entries[i]
		if e.hash < 0 {
			continue
		}
		b := bucketOf(e.hash, size)
		e.next = buckets[b] - 1
		buckets[b] = i + 1
	}
	m.buckets = buckets
	m.entries = entries
}

// All yields every live (key, count) pair in arena order. Each call starts a
// fresh traversal. The map must not be modified during iteration.
func (m *Map) All() iter.Seq2[uint64, uint32] {
	return func(yield func(uint64, uint32) bool) {
		for i := int32(0); i < m.count; i++ {
			e := &m.entries[i]
			if e.hash < 0 {
				continue
			}
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Keys returns the live keys in ascending order.
func (m *Map) Keys() []uint64 {
	keys := make([]uint64, 0, m.Len())
	for k := range m.All() {
		keys = append(keys, k)
	}
	sortutil.Uint64s(keys)
	return keys
}

// Total returns the sum of all counts.
func (m *Map) Total() uint64 {
	var n uint64
	for _, v := range m.All() {
		n += uint64(v)
	}
	return n
}
