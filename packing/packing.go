package packing

import (
	"context"
	"time"

	"github.com/2x3systems/hexpack/canon"
	"github.com/2x3systems/hexpack/cover"
	"github.com/2x3systems/hexpack/lattice"
	"github.com/2x3systems/hexpack/molecule"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

var errStop = errors.New("stop")

// Enumerate builds the exact-cover matrix of X for the given roots, runs the solver, and canonicalizes every
// concrete placement set of every solution.
//
// Deadline, MaxResults and ctx are checked each time the solver reports a solution.  Stopping early is not an
// error: the partial Run is returned with Stopped set.  A canonicalization failure aborts the run.
func Enumerate(ctx context.Context, X *lattice.Crystal, roots []molecule.Molecule, opts Opts) (*Run, error) {
	start := time.Now()

	M, err := cover.Build(X, cover.Opts{
		Roots:    roots,
		Symmetry: opts.Symmetry,
	})
	if err != nil {
		return nil, err
	}

	run := &Run{
		Crystal: X,
		Roots:   roots,
		Matrix:  M,
		Set:     canon.NewSet(),
	}

	onSet := func(placements []molecule.Placement) error {
		res, err := canon.New(X, roots, placements)
		if err != nil {
			return err
		}
		run.Set.Add(res)
		if opts.MaxResults > 0 && run.Set.Len() >= opts.MaxResults {
			run.Stopped = MaxResults
			return errStop
		}
		return nil
	}

	var runErr error
	run.Stats, err = M.Solve(opts.UseHeuristic, func(rows []*cover.Row) bool {
		run.Solutions++

		if err := cover.Expand(rows, opts.MaxExpansions, onSet); err != nil {
			if err != errStop {
				runErr = errors.WithMessagef(err, "lattice %q, solution %d", X.Name, run.Solutions)
			}
			return false
		}

		switch {
		case ctx.Err() != nil:
			run.Stopped = Canceled
		case !opts.Deadline.IsZero() && time.Now().After(opts.Deadline):
			run.Stopped = Deadline
		default:
			if run.Solutions%10000 == 0 {
				klog.V(2).Infof("lattice %q: %d solutions, %d canonical so far", X.Name, run.Solutions, run.Set.Len())
			}
			return true
		}
		return false
	})
	if err == nil {
		err = runErr
	}
	run.Elapsed = time.Since(start)
	if err != nil {
		return nil, err
	}

	klog.Infof("lattice %q x %s: %d solutions, %d raw, %d canonical in %v %s",
		X.Name, rootNames(roots), run.Solutions, run.Set.NumRaw(), run.Set.Len(), run.Elapsed.Round(time.Millisecond), run.Stopped)
	return run, nil
}

func rootNames(roots []molecule.Molecule) string {
	str := ""
	for i, m := range roots {
		if i > 0 {
			str += "+"
		}
		str += m.Name
	}
	return str
}
