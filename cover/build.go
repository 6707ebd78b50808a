package cover

import (
	"sort"
	"strconv"

	"github.com/2x3systems/hexpack/exactcover"
	"github.com/2x3systems/hexpack/hexpack"
	"github.com/2x3systems/hexpack/lattice"
	"github.com/2x3systems/hexpack/molecule"
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

type builder struct {
	X        *lattice.Crystal
	opts     Opts
	rows     *redblacktree.Tree // Row.Key -> *Row
	excluded []bool             // sites no molecule may cover
	keyBuf   []byte
}

// Build emits one row per fitting (anchor, variant), collapsing rows with equal footprints, plus the hole rows.
func Build(X *lattice.Crystal, opts Opts) (*Matrix, error) {
	if X == nil {
		return nil, hexpack.ErrNilCrystal
	}
	if err := checkRoots(opts.Roots); err != nil {
		return nil, err
	}

	N := X.NumNodes()
	b := builder{
		X:        X,
		opts:     opts,
		rows:     redblacktree.NewWithStringComparator(),
		excluded: make([]bool, N),
	}

	if hole := X.Hole(); hole != lattice.NilNode {
		b.excluded[hole] = true
		b.addHole(0, hole)
	}

	var err error
	if T := opts.Symmetry; T != nil {
		if err = T.Validate(N); err != nil {
			return nil, err
		}
		for _, id := range T.RequiredHoles() {
			if !b.excluded[id] {
				b.excluded[id] = true
				b.addHole(0, id)
			}
		}
	}

	holeSlots := X.ExtraHoles()
	for slot := 1; slot <= holeSlots; slot++ {
		for id := 0; id < N; id++ {
			if !b.excluded[id] {
				b.addHole(slot, lattice.NodeID(id))
			}
		}
	}

	if opts.Symmetry == nil {
		b.addMolecules()
	} else {
		err = b.addSymmetric()
	}
	if err != nil {
		return nil, err
	}

	M := &Matrix{
		Crystal:   X,
		Roots:     opts.Roots,
		Rows:      make([]*Row, 0, b.rows.Size()),
		Columns:   make([]string, 0, N+holeSlots),
		HoleSlots: holeSlots,
	}
	for id := 0; id < N; id++ {
		M.Columns = append(M.Columns, "n"+strconv.Itoa(id))
	}
	for slot := 1; slot <= holeSlots; slot++ {
		M.Columns = append(M.Columns, "h"+strconv.Itoa(slot))
	}

	itr := b.rows.Iterator()
	for itr.Next() {
		row := itr.Value().(*Row)
		bits := exactcover.NewBits(len(M.Columns))
		for _, id := range row.Occupied {
			bits.Set(int(id))
		}
		if row.HoleSlot > 0 {
			bits.Set(N + row.HoleSlot - 1)
		}
		M.Rows = append(M.Rows, row)
		M.Bits = append(M.Bits, bits)
	}

	klog.V(2).Infof("lattice %q: %d rows over %d columns", X.Name, len(M.Rows), len(M.Columns))
	return M, nil
}

func checkRoots(roots []molecule.Molecule) error {
	switch len(roots) {
	case 1:
	case 2:
		if roots[0].Size() != roots[1].Size() {
			return errors.Wrapf(hexpack.ErrBadMolecule, "dual roots %q and %q differ in size", roots[0].Name, roots[1].Name)
		}
	default:
		return errors.Wrapf(hexpack.ErrBadMolecule, "expected 1 or 2 root molecules, got %d", len(roots))
	}
	for _, root := range roots {
		if root.Size() == 0 || root.Orientation() == molecule.Circular {
			return errors.Wrapf(hexpack.ErrBadMolecule, "%q cannot be a root molecule", root.Name)
		}
	}
	return nil
}

func (b *builder) addHole(slot int, id lattice.NodeID) {
	key := "h" + strconv.Itoa(slot) + "-" + strconv.Itoa(int(id))
	if _, exists := b.rows.Get(key); exists {
		return
	}
	b.rows.Put(key, &Row{
		Key:      key,
		Occupied: []lattice.NodeID{id},
		HoleSlot: slot,
		Choices: []Choice{{
			{Anchor: id, Molecule: molecule.Hole},
		}},
	})
}

func (b *builder) addMolecules() {
	N := b.X.NumNodes()
	for ri, root := range b.opts.Roots {
		for _, variant := range root.Orbit() {
			for anchor := 0; anchor < N; anchor++ {
				if b.excluded[anchor] {
					continue
				}
				used, ok := variant.UsedNodeIDs(b.X, lattice.NodeID(anchor))
				if !ok || b.anyExcluded(used) {
					continue
				}
				b.addChoice(used, Choice{{
					Anchor:   lattice.NodeID(anchor),
					Molecule: variant,
					Root:     ri,
				}})
			}
		}
	}
}

// addSymmetric emits one row per representative and variant: the union of every image the group forces.
func (b *builder) addSymmetric() error {
	T := b.opts.Symmetry
	for _, rep := range T.Representatives() {
		if b.excluded[rep] {
			continue
		}
		for ri, root := range b.opts.Roots {
			for _, variant := range root.Orbit() {
				placements, err := T.Placements(rep, variant)
				if err != nil {
					return err
				}
				union, ok := b.forcedUnion(placements, ri)
				if ok {
					b.addChoice(union, Choice(placements))
				}
			}
		}
	}
	return nil
}

// forcedUnion returns the sorted sites of all placements if every one fits and none overlap.
func (b *builder) forcedUnion(placements []molecule.Placement, root int) ([]lattice.NodeID, bool) {
	var union []lattice.NodeID
	seen := make(map[lattice.NodeID]struct{})
	for i := range placements {
		p := &placements[i]
		p.Root = root
		used, ok := p.Molecule.UsedNodeIDs(b.X, p.Anchor)
		if !ok || b.anyExcluded(used) {
			return nil, false
		}
		for _, id := range used {
			if _, dupe := seen[id]; dupe {
				return nil, false
			}
			seen[id] = struct{}{}
		}
		union = append(union, used...)
	}
	sort.Slice(union, func(i, j int) bool { return union[i] < union[j] })
	return union, true
}

func (b *builder) anyExcluded(used []lattice.NodeID) bool {
	for _, id := range used {
		if b.excluded[id] {
			return true
		}
	}
	return false
}

func (b *builder) addChoice(used []lattice.NodeID, choice Choice) {
	key := b.footprintKey(used)
	if existing, found := b.rows.Get(key); found {
		row := existing.(*Row)
		row.Choices = append(row.Choices, choice)
		return
	}
	b.rows.Put(key, &Row{
		Key:      key,
		Occupied: used,
		HoleSlot: NoHole,
		Choices:  []Choice{choice},
	})
}

func (b *builder) footprintKey(used []lattice.NodeID) string {
	buf := b.keyBuf[:0]
	for i, id := range used {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendInt(buf, int64(id), 10)
	}
	b.keyBuf = buf
	return string(buf)
}

// Solve runs the exact-cover search, handing each solution's rows to onSolution in the order chosen.
// The slice is only valid during the call.  Returning false stops the search.
func (M *Matrix) Solve(useHeuristic bool, onSolution func(rows []*Row) bool) (exactcover.Stats, error) {
	if M.dlx == nil {
		dlx, err := exactcover.Build(M.Bits, M.Columns)
		if err != nil {
			return exactcover.Stats{}, err
		}
		M.dlx = dlx
	}

	selected := make([]*Row, 0, 64)
	stats := exactcover.Solve(M.dlx, useHeuristic, func(rowIDs []int) bool {
		selected = selected[:0]
		for _, id := range rowIDs {
			selected = append(selected, M.Rows[id])
		}
		return onSolution(selected)
	})
	return stats, nil
}
