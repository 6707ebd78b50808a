package lattice

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/2x3systems/hexpack/hexpack"
	"github.com/pkg/errors"
)

// scanLines calls onLine with the whitespace-split fields of each non-blank, non-comment line.
func scanLines(r io.Reader, onLine func(lineNum int, fields []string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		if err := onLine(lineNum, strings.Fields(line)); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(hexpack.ErrMalformedInput, err.Error())
	}
	return nil
}

func parseInts(lineNum int, fields []string, out []int) error {
	for i, str := range fields {
		val, err := strconv.Atoi(str)
		if err != nil {
			return errors.Wrapf(hexpack.ErrMalformedInput, "line %d: bad integer %q", lineNum, str)
		}
		out[i] = val
	}
	return nil
}

// parseNeighbors reads "<nodeId> <directionCode> <neighborId>" lines into a node arena.
// A neighbor ID of -1 declares the slot an open boundary.
func parseNeighbors(r io.Reader) ([]Node, error) {
	if r == nil {
		return nil, errors.Wrap(hexpack.ErrMalformedInput, "missing neighbor description")
	}

	var nodes []Node
	var vals [3]int

	err := scanLines(r, func(lineNum int, fields []string) error {
		if len(fields) != 3 {
			return errors.Wrapf(hexpack.ErrMalformedInput, "line %d: expected 3 fields, got %d", lineNum, len(fields))
		}
		if err := parseInts(lineNum, fields, vals[:]); err != nil {
			return err
		}
		id, code, to := vals[0], vals[1], vals[2]
		if id < 0 || to < -1 {
			return errors.Wrapf(hexpack.ErrMalformedInput, "line %d: bad node ID", lineNum)
		}
		dir, err := DirectionFromCode(code)
		if err != nil || !dir.IsValid() {
			return errors.Wrapf(hexpack.ErrMalformedInput, "line %d: bad direction code %d", lineNum, code)
		}

		for len(nodes) <= id {
			nodes = append(nodes, newNode(NodeID(len(nodes))))
		}
		n := &nodes[id]
		if n.Get(dir) != NilNode || n.IsTerminal(dir) {
			return errors.Wrapf(hexpack.ErrMalformedInput, "line %d: node %d direction %v given twice", lineNum, id, dir)
		}
		if to < 0 {
			n.setTerminal(dir)
		} else {
			n.Set(dir, NodeID(to))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(nodes) == 0 {
		return nil, errors.Wrap(hexpack.ErrMalformedInput, "neighbor description is empty")
	}
	for _, n := range nodes {
		for _, to := range n.Links {
			if int(to) >= len(nodes) {
				return nil, errors.Wrapf(hexpack.ErrMalformedInput, "node %d links to unknown node %d", n.ID, to)
			}
		}
	}
	return nodes, nil
}

// parseCoords reads hexpack.NumReplicas "<nodeId> <x> <y> <z>" lines per node, in replica order.
func parseCoords(r io.Reader, numNodes int) ([][hexpack.NumReplicas]Vec3, error) {
	if r == nil {
		return nil, errors.Wrap(hexpack.ErrMalformedInput, "missing coordinate description")
	}

	replicas := make([][hexpack.NumReplicas]Vec3, numNodes)
	counts := make([]int, numNodes)

	err := scanLines(r, func(lineNum int, fields []string) error {
		if len(fields) != 4 {
			return errors.Wrapf(hexpack.ErrMalformedInput, "line %d: expected 4 fields, got %d", lineNum, len(fields))
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil || id < 0 || id >= numNodes {
			return errors.Wrapf(hexpack.ErrMalformedInput, "line %d: bad node ID %q", lineNum, fields[0])
		}
		ri := counts[id]
		if ri >= hexpack.NumReplicas {
			return errors.Wrapf(hexpack.ErrMalformedInput, "line %d: node %d has more than %d replicas", lineNum, id, hexpack.NumReplicas)
		}
		for i := 0; i < 3; i++ {
			replicas[id][ri][i], err = strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return errors.Wrapf(hexpack.ErrMalformedInput, "line %d: bad coordinate %q", lineNum, fields[i+1])
			}
		}
		counts[id]++
		return nil
	})
	if err != nil {
		return nil, err
	}

	for id, count := range counts {
		if count != hexpack.NumReplicas {
			return nil, errors.Wrapf(hexpack.ErrMalformedInput, "node %d has %d coordinate replicas", id, count)
		}
	}
	return replicas, nil
}
