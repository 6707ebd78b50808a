package lattice

// computeTracks follows each direction from every node not yet visited in that direction.
// Open lines start at nodes with no predecessor; whatever remains lies on closed cycles.
func computeTracks(nodes []Node) []Track {
	var tracks []Track
	visited := make([]bool, len(nodes))

	for _, d := range Directions {
		for i := range visited {
			visited[i] = false
		}

		back := d.Opposite()
		for i := range nodes {
			if nodes[i].Get(back) == NilNode {
				tracks = append(tracks, walkTrack(nodes, NodeID(i), d, visited))
			}
		}
		for i := range nodes {
			if !visited[i] {
				tracks = append(tracks, walkTrack(nodes, NodeID(i), d, visited))
			}
		}
	}
	return tracks
}

func walkTrack(nodes []Node, start NodeID, d Direction, visited []bool) Track {
	tr := Track{
		Dir: d,
	}
	for cur := start; cur != NilNode; cur = nodes[cur].Get(d) {
		if visited[cur] {
			tr.Closed = cur == start
			break
		}
		visited[cur] = true
		tr.Nodes = append(tr.Nodes, cur)
	}
	return tr
}
