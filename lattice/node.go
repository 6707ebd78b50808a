package lattice

// Node is one lattice site with six neighbor slots indexed by Direction.Slot().
type Node struct {
	ID       NodeID
	Links    [NumDirections]NodeID
	terminal uint8 // bit i set if slot i was declared a boundary
}

func newNode(id NodeID) Node {
	n := Node{ID: id}
	for i := range n.Links {
		n.Links[i] = NilNode
	}
	return n
}

// Set stores the neighbor for direction d.  Back panics.
func (n *Node) Set(d Direction, to NodeID) {
	n.Links[d.Slot()] = to
}

// Get fetches the neighbor for direction d, or NilNode.  Back panics.
func (n *Node) Get(d Direction) NodeID {
	return n.Links[d.Slot()]
}

// IsTerminal returns true if slot d was declared an open boundary.
func (n *Node) IsTerminal(d Direction) bool {
	return n.terminal&(1<<d.Slot()) != 0
}

func (n *Node) setTerminal(d Direction) {
	n.terminal |= 1 << d.Slot()
}

// Degree returns the number of occupied neighbor slots.
func (n *Node) Degree() int {
	count := 0
	for _, to := range n.Links {
		if to != NilNode {
			count++
		}
	}
	return count
}
