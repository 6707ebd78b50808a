package canon

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/2x3systems/hexpack/hexpack"
	"github.com/2x3systems/hexpack/lattice"
	"github.com/2x3systems/hexpack/molecule"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

// New canonicalizes one concrete placement set: bead maps, adjacency counts, bucket and fingerprint.
// placements is copied.
func New(L Lattice, roots []molecule.Molecule, placements []molecule.Placement) (*Result, error) {
	if len(roots) == 0 {
		return nil, errors.Wrap(hexpack.ErrBadMolecule, "no root molecule")
	}
	res := &Result{
		Lattice:    L,
		Roots:      roots,
		Placements: append([]molecule.Placement(nil), placements...),
	}

	if err := res.assignBeads(); err != nil {
		return nil, err
	}
	if err := res.countAdjacency(); err != nil {
		return nil, err
	}
	res.Bucket = res.bucket()
	res.Fingerprint = Fingerprint{
		Adjacency: packCounts(res.Adjacency),
		Tag:       res.tag(),
	}
	return res, nil
}

// NumBeadIDs returns the number of distinct orientation-agnostic bead IDs of a run.
func NumBeadIDs(roots []molecule.Molecule) int {
	if len(roots) == 0 {
		return 0
	}
	return roots[0].Size() * len(roots)
}

// AdjacencyNames labels each adjacency count: "i-j" for bead IDs i <= j.
func AdjacencyNames(roots []molecule.Molecule) []string {
	B := NumBeadIDs(roots)
	names := make([]string, 0, B*(B+1)/2)
	for i := 1; i <= B; i++ {
		for j := i; j <= B; j++ {
			names = append(names, strconv.Itoa(i)+"-"+strconv.Itoa(j))
		}
	}
	return names
}

func pairIndex(B, i, j int) int {
	if i > j {
		i, j = j, i
	}
	return (i-1)*B - (i-1)*(i-2)/2 + (j - i)
}

func (res *Result) isDual() bool {
	return len(res.Roots) == 2
}

// isChiral is true when a global chirality flip is meaningful: a single chiral root.
func (res *Result) isChiral() bool {
	return len(res.Roots) == 1 && res.Roots[0].Orientation().IsChiral()
}

func (res *Result) assignBeads() error {
	N := res.Roots[0].Size()
	numSites := res.Lattice.NumNodes()
	res.Beads = make([]int, numSites)
	res.Agnostic = make([]int, numSites)
	res.Vector = make([]int, numSites)

	for _, p := range res.Placements {
		m := p.Molecule
		if m.Orientation() == molecule.Circular {
			res.Vector[p.Anchor] = -1
			continue
		}
		path, ok := m.Path(res.Lattice, p.Anchor)
		if !ok {
			return errors.Wrapf(hexpack.ErrAdjacencyIntegrity, "%q does not fit at site %d", m.Name, p.Anchor)
		}
		res.Vector[p.Anchor] = m.VariantCode()

		agnosticOffset, awareOffset := 0, 0
		if p.Root == 1 {
			agnosticOffset, awareOffset = N, N
		} else if m.Orientation() == molecule.Right {
			awareOffset = N
		}

		beads := m.Beads()
		for pos, site := range path {
			if res.Agnostic[site] != 0 {
				return errors.Wrapf(hexpack.ErrAdjacencyIntegrity, "site %d covered twice", site)
			}
			res.Agnostic[site] = beads[pos] + agnosticOffset
			res.Beads[site] = beads[pos] + awareOffset
		}
	}
	return nil
}

func (res *Result) countAdjacency() error {
	B := NumBeadIDs(res.Roots)
	counts := make([]int, B*(B+1)/2)

	L := res.Lattice
	for u, bu := range res.Agnostic {
		if bu == 0 {
			continue
		}
		for _, d := range lattice.Directions {
			v := L.Neighbor(lattice.NodeID(u), d)
			if v == lattice.NilNode || res.Agnostic[v] == 0 {
				continue
			}
			counts[pairIndex(B, bu, res.Agnostic[v])]++
		}
	}

	for i, c := range counts {
		if c&1 != 0 {
			return errors.Wrapf(hexpack.ErrAdjacencyIntegrity, "odd raw count %d for pair #%d", c, i)
		}
		counts[i] = c >> 1
	}

	for _, p := range res.Placements {
		if p.Molecule.Orientation() == molecule.Circular {
			continue
		}
		for _, key := range p.Molecule.BondKeys(L, p.Anchor) {
			i := pairIndex(B, res.Agnostic[key.Lo], res.Agnostic[key.Hi])
			counts[i]--
			if counts[i] < 0 {
				return errors.Wrapf(hexpack.ErrAdjacencyIntegrity, "bond %v subtracted below zero", key)
			}
		}
	}
	res.Adjacency = counts
	return nil
}

var orientationLetters = map[molecule.Orientation]string{
	molecule.Left:      "L",
	molecule.Right:     "R",
	molecule.AChiral:   "A",
	molecule.Symmetric: "S",
}

func (res *Result) bucket() string {
	switch {
	case res.isDual():
		counts := make(map[string]int)
		for _, p := range res.Placements {
			if p.Molecule.Orientation() == molecule.Circular {
				continue
			}
			key := string(rune('A'+p.Root)) + ":" + orientationLetters[p.Molecule.Orientation()]
			counts[key]++
		}
		keys := make([]string, 0, len(counts))
		for key := range counts {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for i, key := range keys {
			keys[i] = key + strconv.Itoa(counts[key])
		}
		return strings.Join(keys, "_")

	case res.isChiral():
		var left, right int
		for _, p := range res.Placements {
			switch p.Molecule.Orientation() {
			case molecule.Left:
				left++
			case molecule.Right:
				right++
			}
		}
		if left < right {
			left, right = right, left
		}
		return strconv.Itoa(left) + "-" + strconv.Itoa(right)
	}
	return BucketAll
}

// tag renders every track as a bead string and keeps the lesser of the direct and the chirally
// relabeled renderings.
func (res *Result) tag() string {
	direct := trackTag(res.Lattice.Tracks(), res.Beads)
	if !res.isChiral() {
		return direct
	}

	N := res.Roots[0].Size()
	flipped := make([]int, len(res.Beads))
	for i, b := range res.Beads {
		switch {
		case b == 0:
		case b <= N:
			flipped[i] = b + N
		default:
			flipped[i] = b - N
		}
	}
	if other := trackTag(res.Lattice.Tracks(), flipped); other < direct {
		return other
	}
	return direct
}

func trackTag(tracks []lattice.Track, beads []int) string {
	strs := make([][]byte, len(tracks))
	total := 0
	for i, tr := range tracks {
		str := make([]byte, len(tr.Nodes))
		for j, id := range tr.Nodes {
			str[j] = byte(beads[id])
		}
		if tr.Closed {
			str = rotateLeast(str)
		}
		strs[i] = str
		total += len(str) + 1
	}
	sort.Slice(strs, func(i, j int) bool { return bytes.Compare(strs[i], strs[j]) < 0 })

	var b strings.Builder
	b.Grow(total)
	for i, str := range strs {
		if i > 0 {
			b.WriteByte(TrackSep)
		}
		b.Write(str)
	}
	return b.String()
}

// rotateLeast returns the lexicographically least rotation of s.
func rotateLeast(s []byte) []byte {
	n := len(s)
	i, j, k := 0, 1, 0
	for i < n && j < n && k < n {
		a, b := s[(i+k)%n], s[(j+k)%n]
		if a == b {
			k++
			continue
		}
		if a > b {
			i += k + 1
		} else {
			j += k + 1
		}
		if i == j {
			j++
		}
		k = 0
	}
	if j < i {
		i = j
	}
	if i == 0 || n == 0 {
		return s
	}
	return append(append(make([]byte, 0, n), s[i:]...), s[:i]...)
}

func packCounts(counts []int) string {
	buf := proto.NewBuffer(make([]byte, 0, len(counts)+8))
	for _, c := range counts {
		buf.EncodeVarint(uint64(c))
	}
	return string(buf.Bytes())
}

// Bytes renders fp as a length-prefixed adjacency block followed by the tag.
func (fp Fingerprint) Bytes() []byte {
	buf := proto.NewBuffer(make([]byte, 0, len(fp.Adjacency)+len(fp.Tag)+4))
	buf.EncodeStringBytes(fp.Adjacency)
	return append(buf.Bytes(), fp.Tag...)
}

// FingerprintFromBytes is the inverse of Fingerprint.Bytes()
func FingerprintFromBytes(b []byte) (Fingerprint, error) {
	adjLen, n := proto.DecodeVarint(b)
	if n == 0 || n+int(adjLen) > len(b) {
		return Fingerprint{}, errors.Wrap(hexpack.ErrUnmarshal, "bad fingerprint length")
	}
	end := n + int(adjLen)
	return Fingerprint{
		Adjacency: string(b[n:end]),
		Tag:       string(b[end:]),
	}, nil
}

// UnpackCounts decodes an adjacency block packed by New.
func UnpackCounts(packed string) ([]int, error) {
	b := []byte(packed)
	var counts []int
	for len(b) > 0 {
		c, n := proto.DecodeVarint(b)
		if n == 0 {
			return nil, errors.Wrap(hexpack.ErrUnmarshal, "bad adjacency count")
		}
		counts = append(counts, int(c))
		b = b[n:]
	}
	return counts, nil
}

// WriteAsString prints res according to opts.
func (res *Result) WriteAsString(out io.Writer, opts hexpack.PrintOpts) {
	var b strings.Builder
	if opts.Label != "" {
		b.WriteString(opts.Label)
		b.WriteByte(' ')
	}
	b.WriteString(res.Bucket)
	if opts.Adjacency {
		fmt.Fprintf(&b, " adj=%v", res.Adjacency)
	}
	if opts.Beads {
		fmt.Fprintf(&b, " beads=%v", res.Beads)
	}
	if opts.Placements {
		fmt.Fprintf(&b, " placements=%v", res.Vector)
	}
	b.WriteByte('\n')
	io.WriteString(out, b.String())
}
