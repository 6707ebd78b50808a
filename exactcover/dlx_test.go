package exactcover

import (
	"errors"
	"sort"
	"testing"

	"github.com/2x3systems/hexpack/hexpack"
	"github.com/stretchr/testify/require"
)

func rowsOf(numCols int, cols ...[]int) []Bits {
	rows := make([]Bits, len(cols))
	for i, set := range cols {
		rows[i] = NewBits(numCols)
		for _, c := range set {
			rows[i].Set(c)
		}
	}
	return rows
}

func collect(m *Matrix, heuristic bool) [][]int {
	var found [][]int
	Solve(m, heuristic, func(rowIDs []int) bool {
		sol := append([]int(nil), rowIDs...)
		sort.Ints(sol)
		found = append(found, sol)
		return true
	})
	return found
}

// The example from Knuth's "Dancing Links" paper.
func TestKnuthExample(t *testing.T) {
	const A, B, C, D, E, F, G = 0, 1, 2, 3, 4, 5, 6
	rows := rowsOf(7,
		[]int{C, E, F},
		[]int{A, D, G},
		[]int{B, C, F},
		[]int{A, D},
		[]int{B, G},
		[]int{D, E, G},
	)
	m, err := Build(rows, []string{"A", "B", "C", "D", "E", "F", "G"})
	require.NoError(t, err)
	require.Equal(t, 6, m.NumRows())
	require.Equal(t, 7, m.NumCols())
	require.Equal(t, "E", m.ColumnName(E))

	for _, heuristic := range []bool{true, false} {
		require.Equal(t, [][]int{{0, 3, 4}}, collect(m, heuristic))
	}
}

func TestSetPartitions(t *testing.T) {
	var subsets [][]int
	for mask := 1; mask < 1<<3; mask++ {
		var set []int
		for i := 0; i < 3; i++ {
			if mask&(1<<i) != 0 {
				set = append(set, i)
			}
		}
		subsets = append(subsets, set)
	}
	m, err := Build(rowsOf(3, subsets...), []string{"a", "b", "c"})
	require.NoError(t, err)

	withHeuristic := collect(m, true)
	require.Len(t, withHeuristic, 5)
	require.ElementsMatch(t, withHeuristic, collect(m, false))
}

func TestStopUnwindsAndRestores(t *testing.T) {
	m, err := Build(rowsOf(3, []int{0}, []int{1}, []int{2}, []int{0, 1}, []int{1, 2}, []int{0, 2}, []int{0, 1, 2}), []string{"a", "b", "c"})
	require.NoError(t, err)

	calls := 0
	stats := Solve(m, true, func(rowIDs []int) bool {
		calls++
		return false
	})
	require.Equal(t, 1, calls)
	require.Equal(t, 1, stats.Solutions)
	require.True(t, stats.Stopped)

	stats = Solve(m, true, func(rowIDs []int) bool { return true })
	require.Equal(t, 5, stats.Solutions)
	require.False(t, stats.Stopped)
	require.Positive(t, stats.Nodes)
}

func TestNoSolution(t *testing.T) {
	m, err := Build(rowsOf(2, []int{0}), []string{"a", "b"})
	require.NoError(t, err)
	require.Empty(t, collect(m, true))
}

func TestBuildRejectsBadRows(t *testing.T) {
	_, err := Build([]Bits{NewBits(4)}, []string{"a", "b", "c", "d"})
	require.True(t, errors.Is(err, hexpack.ErrBadMatrix))

	wide := NewBits(8)
	wide.Set(6)
	_, err = Build([]Bits{wide}, []string{"a", "b"})
	require.True(t, errors.Is(err, hexpack.ErrBadMatrix))
}

func TestBits(t *testing.T) {
	b := NewBits(130)
	require.Len(t, b, 3)
	for _, c := range []int{0, 63, 64, 129} {
		b.Set(c)
	}
	require.Equal(t, 4, b.Count())
	require.True(t, b.Has(64))
	require.False(t, b.Has(65))
	require.False(t, b.Has(1000))

	var cols []int
	b.ForEach(func(col int) { cols = append(cols, col) })
	require.Equal(t, []int{0, 63, 64, 129}, cols)
}
