package routing

import (
	"context"
	"fmt"

	"roadgraph/pkg/graph"
)

// LatLng represents a geographic coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// RouteResult is the output of a route query. Found is false when the
// destination is not reachable from the origin; Path is then empty.
type RouteResult struct {
	Found               bool
	Origin              graph.NodeID
	Destination         graph.NodeID
	Path                Path
	TotalDistanceMeters float64
	Geometry            []LatLng
}

// Router is the interface for route queries.
type Router interface {
	Route(ctx context.Context, start, end LatLng) (*RouteResult, error)
}

// Engine implements Router over one immutable store.
type Engine struct {
	index *NodeIndex
}

// NewEngine creates a routing engine and its node index.
func NewEngine(s *graph.Store) *Engine {
	return &Engine{index: NewNodeIndex(s)}
}

// Store returns the store the engine routes on.
func (e *Engine) Store() *graph.Store { return e.index.Store() }

// Route resolves both coordinates to their nearest nodes and computes the
// shortest path between them.
func (e *Engine) Route(ctx context.Context, start, end LatLng) (*RouteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 1: Resolve points to nodes.
	origin, err := e.index.Nearest(start.Lat, start.Lng)
	if err != nil {
		return nil, fmt.Errorf("resolve start: %w", err)
	}
	destination, err := e.index.Nearest(end.Lat, end.Lng)
	if err != nil {
		return nil, fmt.Errorf("resolve end: %w", err)
	}

	// Step 2: Dijkstra.
	path, ok, err := ShortestPath(e.Store(), origin, destination)
	if err != nil {
		return nil, err
	}
	result := &RouteResult{
		Found:       ok,
		Origin:      origin,
		Destination: destination,
	}
	if !ok {
		return result, nil
	}

	// Step 3: Total weight and geometry.
	total, err := e.Store().PathWeight(path)
	if err != nil {
		return nil, fmt.Errorf("path weight: %w", err)
	}
	result.Path = path
	result.TotalDistanceMeters = total
	result.Geometry = e.buildGeometry(path)
	return result, nil
}

// buildGeometry converts a sequence of node ids into lat/lng coordinates.
func (e *Engine) buildGeometry(path Path) []LatLng {
	s := e.Store()
	geom := make([]LatLng, 0, len(path))
	for _, id := range path {
		i, _ := s.Index(id)
		n := s.Node(i)
		geom = append(geom, LatLng{Lat: n.Y, Lng: n.X})
	}
	return geom
}
