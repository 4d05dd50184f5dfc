package graph

import "errors"

var (
	// ErrInvalidEdgeReference is returned when an edge endpoint is not a known node.
	ErrInvalidEdgeReference = errors.New("edge references unknown node")
	// ErrNegativeWeight is returned when an edge weight is below zero.
	ErrNegativeWeight = errors.New("negative edge weight")
	// ErrInvalidWeight is returned for NaN or infinite edge weights.
	ErrInvalidWeight = errors.New("edge weight is not finite")
	// ErrInvalidCoordinate is returned for NaN or infinite node coordinates.
	ErrInvalidCoordinate = errors.New("node coordinate is not finite")
	// ErrDuplicateNode is returned when a node id appears more than once.
	ErrDuplicateNode = errors.New("duplicate node id")
	// ErrInsufficientNodes is returned when a sub-store would hold fewer than
	// two nodes or more nodes than are available.
	ErrInsufficientNodes = errors.New("insufficient nodes")
	// ErrEmptyGraph is returned by queries that need at least one node.
	ErrEmptyGraph = errors.New("graph has no nodes")
	// ErrUnknownNode is returned when a node id is not present in the store.
	ErrUnknownNode = errors.New("unknown node")
)

// NodeID identifies a node. OSM node ids are used as-is.
type NodeID int64

// Node is a graph vertex with its geographic coordinate.
type Node struct {
	ID NodeID
	X  float64 // longitude
	Y  float64 // latitude
}

// Edge is a directed, weighted connection. Weight is a length in meters.
type Edge struct {
	From   NodeID
	To     NodeID
	Weight float64
}

// Store is an immutable directed graph in CSR (Compressed Sparse Row) format.
// Node indices follow construction order.
type Store struct {
	nodes    []Node
	index    map[NodeID]uint32
	firstOut []uint32  // len: NumNodes + 1; firstOut[i]..firstOut[i+1] are edges from node i
	head     []uint32  // len: NumEdges; target node index for each edge
	weight   []float64 // len: NumEdges
}

// NumNodes returns the number of nodes.
func (s *Store) NumNodes() uint32 { return uint32(len(s.nodes)) }

// NumEdges returns the number of directed edges.
func (s *Store) NumEdges() uint32 { return uint32(len(s.head)) }

// Node returns the node at index i.
func (s *Store) Node(i uint32) Node { return s.nodes[i] }

// Index returns the index of the node with the given id.
func (s *Store) Index(id NodeID) (uint32, bool) {
	i, ok := s.index[id]
	return i, ok
}

// Has reports whether id is a node of the store.
func (s *Store) Has(id NodeID) bool {
	_, ok := s.index[id]
	return ok
}

// NodeIDs returns the node ids in construction order.
func (s *Store) NodeIDs() []NodeID {
	ids := make([]NodeID, len(s.nodes))
	for i, n := range s.nodes {
		ids[i] = n.ID
	}
	return ids
}

// EdgesFrom returns the range of edge indices for edges originating from node u.
func (s *Store) EdgesFrom(u uint32) (start, end uint32) {
	return s.firstOut[u], s.firstOut[u+1]
}

// Head returns the target node index of edge e.
func (s *Store) Head(e uint32) uint32 { return s.head[e] }

// Weight returns the weight of edge e.
func (s *Store) Weight(e uint32) float64 { return s.weight[e] }

// Edges returns all edges, grouped by source node in construction order.
func (s *Store) Edges() []Edge {
	edges := make([]Edge, 0, len(s.head))
	for u := uint32(0); u < s.NumNodes(); u++ {
		start, end := s.EdgesFrom(u)
		for e := start; e < end; e++ {
			edges = append(edges, Edge{
				From:   s.nodes[u].ID,
				To:     s.nodes[s.head[e]].ID,
				Weight: s.weight[e],
			})
		}
	}
	return edges
}

// PathWeight sums the lightest edge between each consecutive pair of ids.
// It fails with ErrUnknownNode for unknown ids and ErrInvalidEdgeReference
// when two consecutive ids are not connected.
func (s *Store) PathWeight(path []NodeID) (float64, error) {
	var total float64
	for i := 0; i+1 < len(path); i++ {
		u, ok := s.index[path[i]]
		if !ok {
			return 0, unknownNode(path[i])
		}
		v, ok := s.index[path[i+1]]
		if !ok {
			return 0, unknownNode(path[i+1])
		}
		w, ok := s.lightestEdge(u, v)
		if !ok {
			return 0, edgeReference(path[i], path[i+1])
		}
		total += w
	}
	if len(path) == 1 && !s.Has(path[0]) {
		return 0, unknownNode(path[0])
	}
	return total, nil
}

// lightestEdge returns the smallest weight among the parallel edges u→v.
func (s *Store) lightestEdge(u, v uint32) (float64, bool) {
	best, found := 0.0, false
	start, end := s.EdgesFrom(u)
	for e := start; e < end; e++ {
		if s.head[e] == v && (!found || s.weight[e] < best) {
			best, found = s.weight[e], true
		}
	}
	return best, found
}
