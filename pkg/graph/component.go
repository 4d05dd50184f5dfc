package graph

// UnionFind implements a disjoint-set data structure with path compression
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte
	size   []uint32
	sets   uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range n {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
		sets:   n,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}

	// Union by rank.
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	uf.sets--
	return true
}

// Sets returns the number of disjoint sets.
func (uf *UnionFind) Sets() uint32 { return uf.sets }

// weakComponents unions every edge of s, ignoring direction.
func weakComponents(s *Store) *UnionFind {
	uf := NewUnionFind(s.NumNodes())
	for u := uint32(0); u < s.NumNodes(); u++ {
		start, end := s.EdgesFrom(u)
		for e := start; e < end; e++ {
			uf.Union(u, s.head[e])
		}
	}
	return uf
}

// Components returns the number of connected components of the undirected
// projection of s. Isolated nodes count as their own component.
func Components(s *Store) int {
	return int(weakComponents(s).Sets())
}

// LargestComponent returns the ids of the largest weakly connected component
// (treating the directed graph as undirected), in construction order.
// Ties go to the component whose first node was inserted first.
func LargestComponent(s *Store) []NodeID {
	if s.NumNodes() == 0 {
		return nil
	}

	uf := weakComponents(s)

	// Find the representative with the largest size.
	bestRoot := uf.Find(0)
	bestSize := uf.size[bestRoot]
	for i := uint32(1); i < s.NumNodes(); i++ {
		root := uf.Find(i)
		if uf.size[root] > bestSize {
			bestRoot = root
			bestSize = uf.size[root]
		}
	}

	ids := make([]NodeID, 0, bestSize)
	for i := uint32(0); i < s.NumNodes(); i++ {
		if uf.Find(i) == bestRoot {
			ids = append(ids, s.nodes[i].ID)
		}
	}
	return ids
}

// FilterToComponent creates a new store containing only the specified nodes,
// in the given order, and the edges between them.
func FilterToComponent(s *Store, ids []NodeID) (*Store, error) {
	nodes := make([]uint32, len(ids))
	for i, id := range ids {
		idx, ok := s.index[id]
		if !ok {
			return nil, unknownNode(id)
		}
		nodes[i] = idx
	}
	return s.filter(nodes), nil
}
