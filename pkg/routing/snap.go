package routing

import (
	"math"

	"github.com/tidwall/rtree"

	"roadgraph/pkg/geo"
	"roadgraph/pkg/graph"
)

// Nearest returns the node of s closest to the query point under
// geo.PlanarSquared. On ties the node inserted first wins.
func Nearest(s *graph.Store, lat, lon float64) (graph.NodeID, error) {
	if s.NumNodes() == 0 {
		return 0, graph.ErrEmptyGraph
	}

	best := uint32(0)
	bestDist := math.Inf(1)
	for i := uint32(0); i < s.NumNodes(); i++ {
		n := s.Node(i)
		d := geo.PlanarSquared(lat, lon, n.Y, n.X)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return s.Node(best).ID, nil
}

// NodeIndex answers Nearest queries through an R-tree over node coordinates.
// Results are identical to Nearest, including tie-breaking. It is read-only
// once built and safe for concurrent use.
type NodeIndex struct {
	tr rtree.RTreeG[uint32]
	s  *graph.Store
}

// NewNodeIndex builds an R-tree spatial index over the nodes of s.
func NewNodeIndex(s *graph.Store) *NodeIndex {
	ix := &NodeIndex{s: s}
	for i := uint32(0); i < s.NumNodes(); i++ {
		n := s.Node(i)
		p := [2]float64{n.X, n.Y}
		ix.tr.Insert(p, p, i)
	}
	return ix
}

// Store returns the indexed store.
func (ix *NodeIndex) Store() *graph.Store { return ix.s }

// Nearest returns the node closest to the query point.
func (ix *NodeIndex) Nearest(lat, lon float64) (graph.NodeID, error) {
	if ix.s.NumNodes() == 0 {
		return 0, graph.ErrEmptyGraph
	}

	q := [2]float64{lon, lat}
	itemDist := func(min, _ [2]float64, _ uint32) float64 {
		return geo.PlanarSquared(lat, lon, min[1], min[0])
	}

	best := noNode
	bestDist := math.Inf(1)
	// Nearby yields items in ascending distance; equal distances come in
	// tree order, so keep scanning the tie band for the lowest index.
	ix.tr.Nearby(rtree.BoxDist[float64, uint32](q, q, itemDist),
		func(_, _ [2]float64, i uint32, dist float64) bool {
			if dist > bestDist {
				return false
			}
			if dist < bestDist || i < best {
				best, bestDist = i, dist
			}
			return true
		})

	return ix.s.Node(best).ID, nil
}
