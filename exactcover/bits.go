package exactcover

import "math/bits"

// Bits is one matrix row: bit i set means the row covers column i.
type Bits []uint64

func NewBits(numCols int) Bits {
	return make(Bits, (numCols+63)>>6)
}

func (b Bits) Set(col int) {
	b[col>>6] |= 1 << uint(col&63)
}

func (b Bits) Has(col int) bool {
	wi := col >> 6
	return wi < len(b) && b[wi]&(1<<uint(col&63)) != 0
}

// Count returns the number of set columns.
func (b Bits) Count() int {
	count := 0
	for _, w := range b {
		count += bits.OnesCount64(w)
	}
	return count
}

// ForEach calls fn with each set column in ascending order.
func (b Bits) ForEach(fn func(col int)) {
	for wi, w := range b {
		for w != 0 {
			fn(wi<<6 + bits.TrailingZeros64(w))
			w &= w - 1
		}
	}
}
