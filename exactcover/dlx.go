// Package exactcover solves exact-cover problems with Knuth's Dancing Links.
package exactcover

import (
	"github.com/2x3systems/hexpack/hexpack"
	"github.com/pkg/errors"
)

// Matrix is a sparse exact-cover instance in toroidal doubly linked lists.
//
// Index 0 is the root header, 1..NumCols are column headers and every later index is a matrix entry.
// A Matrix is restored to its built state after every Solve but is not safe for concurrent Solve calls.
type Matrix struct {
	names   []string
	numRows int
	L, R    []int32
	U, D    []int32
	C       []int32 // column header of each entry
	row     []int32 // row ID of each entry
	size    []int32 // live entries per column header
}

// Stats summarizes one Solve call.
type Stats struct {
	Solutions int
	Nodes     int64 // rows tried
	Stopped   bool  // onSolution returned false
}

// Build links the given rows over len(names) columns.  Every row must cover at least one column.
func Build(rows []Bits, names []string) (*Matrix, error) {
	numCols := len(names)
	total := 1 + numCols
	for i, r := range rows {
		n := r.Count()
		if n == 0 {
			return nil, errors.Wrapf(hexpack.ErrBadMatrix, "row %d is empty", i)
		}
		if len(r) > (numCols+63)>>6 {
			return nil, errors.Wrapf(hexpack.ErrBadMatrix, "row %d is wider than %d columns", i, numCols)
		}
		total += n
	}

	m := &Matrix{
		names:   names,
		numRows: len(rows),
		L:       make([]int32, total),
		R:       make([]int32, total),
		U:       make([]int32, total),
		D:       make([]int32, total),
		C:       make([]int32, total),
		row:     make([]int32, total),
		size:    make([]int32, numCols+1),
	}

	for i := 0; i <= numCols; i++ {
		x := int32(i)
		m.L[i] = x - 1
		m.R[i] = int32((i + 1) % (numCols + 1))
		m.U[i] = x
		m.D[i] = x
		m.C[i] = x
		m.row[i] = -1
	}
	m.L[0] = int32(numCols)

	next := int32(numCols + 1)
	for ri, r := range rows {
		first := int32(-1)
		var err error
		r.ForEach(func(col int) {
			if col >= numCols {
				err = errors.Wrapf(hexpack.ErrBadMatrix, "row %d covers column %d of %d", ri, col, numCols)
				return
			}
			x, c := next, int32(col+1)
			next++
			m.C[x] = c
			m.row[x] = int32(ri)

			m.U[x] = m.U[c]
			m.D[x] = c
			m.D[m.U[c]] = x
			m.U[c] = x
			m.size[c]++

			if first < 0 {
				first = x
				m.L[x] = x
				m.R[x] = x
			} else {
				m.L[x] = m.L[first]
				m.R[x] = first
				m.R[m.L[first]] = x
				m.L[first] = x
			}
		})
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Matrix) NumRows() int {
	return m.numRows
}

func (m *Matrix) NumCols() int {
	return len(m.names)
}

func (m *Matrix) ColumnName(col int) string {
	return m.names[col]
}

// Solve calls onSolution with the row IDs of each exact cover, in the order the rows were chosen.
// The slice is only valid during the call.  Returning false stops the search at once.
//
// With useHeuristic set, the column with the fewest live rows is branched on first; otherwise the
// leftmost live column is.
func Solve(m *Matrix, useHeuristic bool, onSolution func(rowIDs []int) bool) Stats {
	s := solver{
		Matrix:     m,
		heuristic:  useHeuristic,
		onSolution: onSolution,
	}
	s.search(0)
	return s.stats
}

type solver struct {
	*Matrix
	heuristic  bool
	onSolution func(rowIDs []int) bool
	picked     []int32
	rowIDs     []int
	stats      Stats
}

// search returns true when the search must stop.
func (s *solver) search(k int) bool {
	if s.R[0] == 0 {
		s.stats.Solutions++
		s.rowIDs = s.rowIDs[:0]
		for _, x := range s.picked[:k] {
			s.rowIDs = append(s.rowIDs, int(s.row[x]))
		}
		if !s.onSolution(s.rowIDs) {
			s.stats.Stopped = true
			return true
		}
		return false
	}

	c := s.chooseColumn()
	if s.size[c] == 0 {
		return false
	}

	s.cover(c)
	for r := s.D[c]; r != c; r = s.D[r] {
		s.stats.Nodes++
		s.picked = append(s.picked[:k], r)
		for j := s.R[r]; j != r; j = s.R[j] {
			s.cover(s.C[j])
		}
		stop := s.search(k + 1)
		for j := s.L[r]; j != r; j = s.L[j] {
			s.uncover(s.C[j])
		}
		if stop {
			s.uncover(c)
			return true
		}
	}
	s.uncover(c)
	return false
}

func (s *solver) chooseColumn() int32 {
	best := s.R[0]
	if !s.heuristic {
		return best
	}
	for c := s.R[best]; c != 0; c = s.R[c] {
		if s.size[c] < s.size[best] {
			best = c
			if s.size[best] == 0 {
				break
			}
		}
	}
	return best
}

func (s *solver) cover(c int32) {
	s.R[s.L[c]] = s.R[c]
	s.L[s.R[c]] = s.L[c]
	for i := s.D[c]; i != c; i = s.D[i] {
		for j := s.R[i]; j != i; j = s.R[j] {
			s.D[s.U[j]] = s.D[j]
			s.U[s.D[j]] = s.U[j]
			s.size[s.C[j]]--
		}
	}
}

func (s *solver) uncover(c int32) {
	for i := s.U[c]; i != c; i = s.U[i] {
		for j := s.L[i]; j != i; j = s.L[j] {
			s.size[s.C[j]]++
			s.D[s.U[j]] = j
			s.U[s.D[j]] = j
		}
	}
	s.R[s.L[c]] = c
	s.L[s.R[c]] = c
}
