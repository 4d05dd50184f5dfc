package routing

import (
	"fmt"
	"math"

	"roadgraph/pkg/graph"
)

const noNode = ^uint32(0) // sentinel for "no node"

// Path is an ordered sequence of node ids from origin to destination.
type Path []graph.NodeID

// MinHeap is a concrete-typed min-heap for the Dijkstra priority queue.
// Entries with equal distance pop in insertion order.
type MinHeap struct {
	items []PQItem
	seq   uint64
}

// PQItem is a priority queue entry.
type PQItem struct {
	Node uint32
	Dist float64
	seq  uint64
}

func (h *MinHeap) Len() int { return len(h.items) }

func (h *MinHeap) Push(node uint32, dist float64) {
	h.items = append(h.items, PQItem{Node: node, Dist: dist, seq: h.seq})
	h.seq++
	h.siftUp(len(h.items) - 1)
}

func (h *MinHeap) Pop() PQItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *MinHeap) PeekDist() float64 {
	if len(h.items) == 0 {
		return math.Inf(1)
	}
	return h.items[0].Dist
}

func (h *MinHeap) Reset() {
	h.items = h.items[:0]
	h.seq = 0
}

func (h *MinHeap) less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if a.Dist != b.Dist {
		return a.Dist < b.Dist
	}
	return a.seq < b.seq
}

func (h *MinHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *MinHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.less(left, smallest) {
			smallest = left
		}
		if right < n && h.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// ShortestPath runs Dijkstra from origin to destination over the directed
// edges of s. ok is false when destination is unreachable; that is a normal
// outcome, not an error. Ties between equal-weight paths are settled by the
// store's edge order, so the same inputs always yield the same path.
func ShortestPath(s *graph.Store, origin, destination graph.NodeID) (path Path, ok bool, err error) {
	src, found := s.Index(origin)
	if !found {
		return nil, false, fmt.Errorf("origin %d: %w", origin, graph.ErrUnknownNode)
	}
	dst, found := s.Index(destination)
	if !found {
		return nil, false, fmt.Errorf("destination %d: %w", destination, graph.ErrUnknownNode)
	}
	if src == dst {
		return Path{origin}, true, nil
	}

	n := s.NumNodes()
	dist := make([]float64, n)
	pred := make([]uint32, n)
	settled := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		pred[i] = noNode
	}

	var pq MinHeap
	dist[src] = 0
	pq.Push(src, 0)

	for pq.Len() > 0 {
		item := pq.Pop()
		u := item.Node
		if settled[u] || item.Dist > dist[u] {
			continue // stale entry
		}
		settled[u] = true
		if u == dst {
			break
		}

		start, end := s.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := s.Head(e)
			if settled[v] {
				continue
			}
			newDist := item.Dist + s.Weight(e)
			if newDist < dist[v] {
				dist[v] = newDist
				pred[v] = u
				pq.Push(v, newDist)
			}
		}
	}

	if !settled[dst] {
		return nil, false, nil
	}
	return reconstructPath(s, pred, dst), true, nil
}

// reconstructPath walks predecessors back from dst and reverses the result.
func reconstructPath(s *graph.Store, pred []uint32, dst uint32) Path {
	var path Path
	for node := dst; node != noNode; node = pred[node] {
		path = append(path, s.Node(node).ID)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
