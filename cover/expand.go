package cover

import (
	"github.com/2x3systems/hexpack/hexpack"
	"github.com/2x3systems/hexpack/molecule"
	"github.com/pkg/errors"
)

// Expansions returns how many concrete placement sets the given rows stand for.
// Returns ErrExpansionLimit if that exceeds maxExpansions (0 denotes hexpack.DefaultMaxExpansions).
func Expansions(rows []*Row, maxExpansions int) (int, error) {
	if maxExpansions <= 0 {
		maxExpansions = hexpack.DefaultMaxExpansions
	}
	total := 1
	for _, row := range rows {
		n := len(row.Choices)
		if n == 0 {
			return 0, nil
		}
		if total > maxExpansions/n {
			return 0, errors.Wrapf(hexpack.ErrExpansionLimit, "more than %d placement sets", maxExpansions)
		}
		total *= n
	}
	return total, nil
}

// Expand calls onSet with every concrete placement set in the cartesian product of the rows' choices.
// The slice is reused between calls.  An error from onSet stops the expansion and is returned.
func Expand(rows []*Row, maxExpansions int, onSet func(placements []molecule.Placement) error) error {
	total, err := Expansions(rows, maxExpansions)
	if err != nil || total == 0 {
		return err
	}

	pick := make([]int, len(rows))
	var placements []molecule.Placement
	for {
		placements = placements[:0]
		for i, row := range rows {
			placements = append(placements, row.Choices[pick[i]]...)
		}
		if err = onSet(placements); err != nil {
			return err
		}

		// advance the odometer
		i := len(rows) - 1
		for ; i >= 0; i-- {
			pick[i]++
			if pick[i] < len(rows[i].Choices) {
				break
			}
			pick[i] = 0
		}
		if i < 0 {
			return nil
		}
	}
}
