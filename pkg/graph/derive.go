package graph

import "fmt"

// UndirectedProjection returns a store where every connected pair {u, v}
// carries one edge in each direction. Parallel and opposite edges collapse to
// the minimum weight found between the pair; self-loops are dropped.
// Pairs appear in the order they are first met in the CSR scan.
func (s *Store) UndirectedProjection() *Store {
	type pairKey struct{ lo, hi uint32 }
	type pair struct {
		pairKey
		weight float64
	}

	slot := make(map[pairKey]int, len(s.head))
	var pairs []pair

	for u := uint32(0); u < s.NumNodes(); u++ {
		start, end := s.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := s.head[e]
			if u == v {
				continue
			}
			k := pairKey{min(u, v), max(u, v)}
			if i, ok := slot[k]; ok {
				if s.weight[e] < pairs[i].weight {
					pairs[i].weight = s.weight[e]
				}
				continue
			}
			slot[k] = len(pairs)
			pairs = append(pairs, pair{pairKey: k, weight: s.weight[e]})
		}
	}

	type halfEdge struct {
		from, to uint32
		weight   float64
	}
	halves := make([]halfEdge, 0, 2*len(pairs))
	for _, p := range pairs {
		halves = append(halves,
			halfEdge{p.lo, p.hi, p.weight},
			halfEdge{p.hi, p.lo, p.weight},
		)
	}

	numNodes := s.NumNodes()
	firstOut := make([]uint32, numNodes+1)
	head := make([]uint32, len(halves))
	weight := make([]float64, len(halves))
	for _, h := range halves {
		firstOut[h.from+1]++
	}
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}
	pos := make([]uint32, numNodes)
	copy(pos, firstOut[:numNodes])
	for _, h := range halves {
		idx := pos[h.from]
		head[idx] = h.to
		weight[idx] = h.weight
		pos[h.from]++
	}

	return &Store{
		nodes:    s.nodes, // read-only, safe to share
		index:    s.index,
		firstOut: firstOut,
		head:     head,
		weight:   weight,
	}
}

// InducedSubstore returns the store restricted to the first count ids of
// order, keeping only edges with both endpoints inside that prefix. Nodes of
// the result follow the prefix order.
func (s *Store) InducedSubstore(order []NodeID, count int) (*Store, error) {
	if count < 2 || count > len(order) {
		return nil, fmt.Errorf("%w: requested %d of %d", ErrInsufficientNodes, count, len(order))
	}

	nodes := make([]uint32, count)
	seen := make(map[NodeID]struct{}, count)
	for i, id := range order[:count] {
		idx, ok := s.index[id]
		if !ok {
			return nil, unknownNode(id)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("node %d: %w", id, ErrDuplicateNode)
		}
		seen[id] = struct{}{}
		nodes[i] = idx
	}
	return s.filter(nodes), nil
}

// filter creates a new store containing only the specified node indices.
func (s *Store) filter(nodes []uint32) *Store {
	// Build old→new node index mapping.
	oldToNew := make(map[uint32]uint32, len(nodes))
	for newIdx, oldIdx := range nodes {
		oldToNew[oldIdx] = uint32(newIdx)
	}

	numNodes := uint32(len(nodes))

	// Collect edges that are fully within the subset, grouped by new source.
	firstOut := make([]uint32, numNodes+1)
	var head []uint32
	var weight []float64
	for newU, oldU := range nodes {
		start, end := s.EdgesFrom(oldU)
		for e := start; e < end; e++ {
			if newV, ok := oldToNew[s.head[e]]; ok {
				head = append(head, newV)
				weight = append(weight, s.weight[e])
			}
		}
		firstOut[newU+1] = uint32(len(head))
	}

	sub := make([]Node, numNodes)
	index := make(map[NodeID]uint32, numNodes)
	for newIdx, oldIdx := range nodes {
		sub[newIdx] = s.nodes[oldIdx]
		index[s.nodes[oldIdx].ID] = uint32(newIdx)
	}

	return &Store{
		nodes:    sub,
		index:    index,
		firstOut: firstOut,
		head:     head,
		weight:   weight,
	}
}
