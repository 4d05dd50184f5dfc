package graph

import (
	"fmt"
	"math"
)

// Build creates a CSR Store from nodes and directed edges.
// Outgoing edges of a node keep their input order.
func Build(nodes []Node, edges []Edge) (*Store, error) {
	// Step 1: Validate nodes and build the id→index mapping.
	index := make(map[NodeID]uint32, len(nodes))
	for i, n := range nodes {
		if !finite(n.X) || !finite(n.Y) {
			return nil, fmt.Errorf("node %d: %w", n.ID, ErrInvalidCoordinate)
		}
		if _, dup := index[n.ID]; dup {
			return nil, fmt.Errorf("node %d: %w", n.ID, ErrDuplicateNode)
		}
		index[n.ID] = uint32(i)
	}

	// Step 2: Validate edges and remap endpoints to indices.
	type compactEdge struct {
		from, to uint32
		weight   float64
	}
	compact := make([]compactEdge, len(edges))
	for i, e := range edges {
		from, ok := index[e.From]
		if !ok {
			return nil, fmt.Errorf("edge %d: %w", i, edgeReference(e.From, e.To))
		}
		to, ok := index[e.To]
		if !ok {
			return nil, fmt.Errorf("edge %d: %w", i, edgeReference(e.From, e.To))
		}
		if math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
			return nil, fmt.Errorf("edge %d (%d->%d): %w", i, e.From, e.To, ErrInvalidWeight)
		}
		if e.Weight < 0 {
			return nil, fmt.Errorf("edge %d (%d->%d) weight %g: %w", i, e.From, e.To, e.Weight, ErrNegativeWeight)
		}
		compact[i] = compactEdge{from: from, to: to, weight: e.Weight}
	}

	// Step 3: Build CSR arrays.
	numNodes := uint32(len(nodes))
	firstOut := make([]uint32, numNodes+1)
	head := make([]uint32, len(compact))
	weight := make([]float64, len(compact))

	// Count edges per node, then prefix sum.
	for _, e := range compact {
		firstOut[e.from+1]++
	}
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	// Place edges into CSR order.
	pos := make([]uint32, numNodes)
	copy(pos, firstOut[:numNodes])
	for _, e := range compact {
		idx := pos[e.from]
		head[idx] = e.to
		weight[idx] = e.weight
		pos[e.from]++
	}

	ownNodes := make([]Node, len(nodes))
	copy(ownNodes, nodes)

	return &Store{
		nodes:    ownNodes,
		index:    index,
		firstOut: firstOut,
		head:     head,
		weight:   weight,
	}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func unknownNode(id NodeID) error {
	return fmt.Errorf("node %d: %w", id, ErrUnknownNode)
}

func edgeReference(from, to NodeID) error {
	return fmt.Errorf("%d->%d: %w", from, to, ErrInvalidEdgeReference)
}
