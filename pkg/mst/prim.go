// Package mst computes minimum spanning forests with Prim's algorithm.
//
// The input is always projected to an undirected store first. Growth starts
// at the first node in construction order; once a tree can grow no further,
// the next unvisited node in construction order seeds a new tree. A connected
// projection therefore yields a single spanning tree, and a disconnected one
// yields one minimum tree per component.
package mst

import (
	"roadgraph/pkg/graph"
)

// Forest is a set of tree edges spanning every node of the projection.
type Forest struct {
	Edges      []graph.Edge
	Components int // number of trees, isolated nodes included
}

// TotalWeight returns the sum of all edge weights.
func (f Forest) TotalWeight() float64 {
	var total float64
	for _, e := range f.Edges {
		total += e.Weight
	}
	return total
}

// IsTree reports whether the forest is a single spanning tree.
func (f Forest) IsTree() bool { return f.Components == 1 }

// MinimumSpanningTree runs Prim over s.UndirectedProjection(). Each returned
// edge points from the tree side to the node it attached.
func MinimumSpanningTree(s *graph.Store) (Forest, error) {
	if s.NumNodes() == 0 {
		return Forest{}, graph.ErrEmptyGraph
	}

	u := s.UndirectedProjection()
	n := u.NumNodes()
	visited := make([]bool, n)
	forest := Forest{Edges: make([]graph.Edge, 0, n-1)}

	var pq edgeHeap
	for root := uint32(0); root < n; root++ {
		if visited[root] {
			continue
		}
		forest.Components++
		visited[root] = true
		pushCandidates(&pq, u, root, visited)

		for pq.Len() > 0 {
			c := pq.Pop()
			if visited[c.to] {
				continue // would form a cycle
			}
			visited[c.to] = true
			forest.Edges = append(forest.Edges, graph.Edge{
				From:   u.Node(c.from).ID,
				To:     u.Node(c.to).ID,
				Weight: c.weight,
			})
			pushCandidates(&pq, u, c.to, visited)
		}
	}
	return forest, nil
}

// pushCandidates queues every edge from v to a node outside the tree.
func pushCandidates(pq *edgeHeap, s *graph.Store, v uint32, visited []bool) {
	start, end := s.EdgesFrom(v)
	for e := start; e < end; e++ {
		if to := s.Head(e); !visited[to] {
			pq.Push(candidate{from: v, to: to, weight: s.Weight(e)})
		}
	}
}

type candidate struct {
	from, to uint32
	weight   float64
	seq      uint64
}

// edgeHeap is a min-heap of candidate edges ordered by (weight, insertion).
type edgeHeap struct {
	items []candidate
	seq   uint64
}

func (h *edgeHeap) Len() int { return len(h.items) }

func (h *edgeHeap) Push(c candidate) {
	c.seq = h.seq
	h.seq++
	h.items = append(h.items, c)
	i := len(h.items) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *edgeHeap) Pop() candidate {
	n := len(h.items)
	top := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	i := 0
	for {
		smallest := i
		left, right := 2*i+1, 2*i+2
		if left < len(h.items) && h.less(left, smallest) {
			smallest = left
		}
		if right < len(h.items) && h.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
	return top
}

func (h *edgeHeap) less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if a.weight != b.weight {
		return a.weight < b.weight
	}
	return a.seq < b.seq
}
