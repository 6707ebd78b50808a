package canon

import (
	"bytes"
	"sort"
	"strconv"

	"github.com/2x3systems/hexpack/molecule"
	"github.com/cespare/xxhash/v2"
)

// Entry is one distinct canonical result and how many distinct raw placement sets collapsed onto it.
type Entry struct {
	*Result
	Count int
}

type setKey struct {
	bucket string
	fp     Fingerprint
}

// Set dedupes canonical results by fingerprint within each bucket.
type Set struct {
	entries map[setKey]*Entry
	order   []*Entry
	raw     map[uint64][]byte // raw placement key by hash, linearly probed
	rawBuf  []byte
	numRaw  int
}

func NewSet() *Set {
	return &Set{
		entries: make(map[setKey]*Entry),
		raw:     make(map[uint64][]byte),
	}
}

// Add files res under its fingerprint.  isNew is true if res is the first result with that fingerprint.
// A placement set already seen (such as the same holes filled in another slot order) changes nothing.
func (set *Set) Add(res *Result) (entry *Entry, isNew bool) {
	key := setKey{res.Bucket, res.Fingerprint}
	entry = set.entries[key]

	if !set.tryAddRaw(res.Placements) {
		return entry, false
	}
	if entry != nil {
		entry.Count++
		return entry, false
	}

	entry = &Entry{
		Result: res,
		Count:  1,
	}
	set.entries[key] = entry
	set.order = append(set.order, entry)
	return entry, true
}

// tryAddRaw returns true if the given placement set was not seen before.
func (set *Set) tryAddRaw(placements []molecule.Placement) bool {
	rawKey := appendRawKey(set.rawBuf[:0], placements)
	set.rawBuf = rawKey

	hash := xxhash.Sum64(rawKey)
	existing, found := set.raw[hash]
	for found {
		if bytes.Equal(existing, rawKey) {
			return false
		}
		hash++
		existing, found = set.raw[hash]
	}
	set.raw[hash] = append([]byte(nil), rawKey...)
	set.numRaw++
	return true
}

// appendRawKey renders placements sorted by anchor as "anchor:variant:root;" runs.  Holes have variant 0.
func appendRawKey(dst []byte, placements []molecule.Placement) []byte {
	sorted := append([]molecule.Placement(nil), placements...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Anchor < sorted[j].Anchor })

	for _, p := range sorted {
		code := 0
		if p.Molecule.Orientation() != molecule.Circular {
			code = p.Molecule.VariantCode()
		}
		dst = strconv.AppendInt(dst, int64(p.Anchor), 10)
		dst = append(dst, ':')
		dst = strconv.AppendInt(dst, int64(code), 10)
		dst = append(dst, ':')
		dst = strconv.AppendInt(dst, int64(p.Root), 10)
		dst = append(dst, ';')
	}
	return dst
}

// Len returns the number of distinct canonical results.
func (set *Set) Len() int {
	return len(set.order)
}

// NumRaw returns the number of distinct raw placement sets added.
func (set *Set) NumRaw() int {
	return set.numRaw
}

// Entries returns every canonical result in the order first seen.
func (set *Set) Entries() []*Entry {
	return set.order
}

// Buckets returns the sorted bucket labels present.
func (set *Set) Buckets() []string {
	seen := make(map[string]struct{})
	var buckets []string
	for _, entry := range set.order {
		if _, ok := seen[entry.Bucket]; !ok {
			seen[entry.Bucket] = struct{}{}
			buckets = append(buckets, entry.Bucket)
		}
	}
	sort.Strings(buckets)
	return buckets
}

// InBucket returns the results in the given bucket in the order first seen.
func (set *Set) InBucket(bucket string) []*Entry {
	var out []*Entry
	for _, entry := range set.order {
		if entry.Bucket == bucket {
			out = append(out, entry)
		}
	}
	return out
}
