package osm

import (
	"context"
	"fmt"
	"io"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"

	"roadgraph/pkg/geo"
	"roadgraph/pkg/graph"
)

// ParseResult holds the drivable network read from an OSM PBF file, ready
// for graph.Build. Nodes are ordered by first reference in the ways.
type ParseResult struct {
	Nodes []graph.Node
	Edges []graph.Edge
}

// carHighways lists highway tag values accessible by car.
var carHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
}

// isCarAccessible returns true if the way is drivable by car.
func isCarAccessible(tags osm.Tags) bool {
	if !carHighways[tags.Find("highway")] {
		return false
	}
	// Pedestrian plazas.
	if tags.Find("area") == "yes" {
		return false
	}
	switch tags.Find("access") {
	case "no", "private":
		return false
	}
	return tags.Find("motor_vehicle") != "no"
}

// directionFlags returns (forward, backward) based on highway type and oneway tags.
func directionFlags(tags osm.Tags) (forward, backward bool) {
	forward, backward = true, true

	hw := tags.Find("highway")
	if hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		backward = false
	}

	switch tags.Find("oneway") {
	case "yes", "true", "1":
		forward, backward = true, false
	case "-1", "reverse":
		forward, backward = false, true
	case "no":
		forward, backward = true, true
	case "reversible":
		// Time-dependent, not routable.
		forward, backward = false, false
	}
	return forward, backward
}

type wayInfo struct {
	nodes    []osm.NodeID
	forward  bool
	backward bool
}

// BBox defines a geographic bounding box for filtering.
// If non-zero, only edges with both endpoints inside the box are kept.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// IsZero returns true if the bbox is unset.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

// Contains returns true if the point is inside the bounding box.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// ParseOptions configures the OSM parser.
type ParseOptions struct {
	BBox   BBox // if non-zero, filter edges to this bounding box
	Logger *zap.Logger
}

type coord struct{ lat, lon float64 }

// Parse reads an OSM PBF file and returns the directed car network. Edge
// weights are haversine metres between consecutive way nodes; a way drivable
// in both directions yields one edge each way.
//
// The reader is consumed twice (seeks back to start for the second pass),
// so it must implement io.ReadSeeker.
func Parse(ctx context.Context, rs io.ReadSeeker, opt ParseOptions) (*ParseResult, error) {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}

	// Pass 1: ways, and the node ids they reference.
	referenced := make(map[osm.NodeID]struct{})
	var ways []wayInfo

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok || !isCarAccessible(w.Tags) || len(w.Nodes) < 2 {
			continue
		}
		fwd, bwd := directionFlags(w.Tags)
		if !fwd && !bwd {
			continue
		}
		ids := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			ids[i] = wn.ID
			referenced[wn.ID] = struct{}{}
		}
		ways = append(ways, wayInfo{nodes: ids, forward: fwd, backward: bwd})
	}
	err := scanner.Err()
	scanner.Close()
	if err != nil {
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	log.Info("osm ways scanned", zap.Int("ways", len(ways)), zap.Int("referenced_nodes", len(referenced)))

	// Pass 2: coordinates of referenced nodes only.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}
	coords := make(map[osm.NodeID]coord, len(referenced))

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referenced[n.ID]; needed {
			coords[n.ID] = coord{lat: n.Lat, lon: n.Lon}
		}
	}
	err = scanner.Err()
	scanner.Close()
	if err != nil {
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	log.Info("osm node coordinates collected", zap.Int("nodes", len(coords)))

	res := assemble(ways, coords, opt.BBox)
	log.Info("osm network assembled",
		zap.Int("nodes", len(res.Nodes)),
		zap.Int("edges", len(res.Edges)),
	)
	return res, nil
}

// assemble turns ways into graph nodes and edges. Segments with a missing
// coordinate or an endpoint outside bbox are dropped, and only nodes that end
// up on a kept segment are emitted.
func assemble(ways []wayInfo, coords map[osm.NodeID]coord, bbox BBox) *ParseResult {
	useBBox := !bbox.IsZero()
	res := &ParseResult{}
	seen := make(map[osm.NodeID]struct{})
	addNode := func(id osm.NodeID, c coord) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		res.Nodes = append(res.Nodes, graph.Node{ID: graph.NodeID(id), X: c.lon, Y: c.lat})
	}

	for _, w := range ways {
		for i := 0; i < len(w.nodes)-1; i++ {
			fromID, toID := w.nodes[i], w.nodes[i+1]
			from, fromOK := coords[fromID]
			to, toOK := coords[toID]
			if !fromOK || !toOK {
				continue
			}
			if useBBox && (!bbox.Contains(from.lat, from.lon) || !bbox.Contains(to.lat, to.lon)) {
				continue
			}

			addNode(fromID, from)
			addNode(toID, to)
			dist := geo.Haversine(from.lat, from.lon, to.lat, to.lon)
			if w.forward {
				res.Edges = append(res.Edges, graph.Edge{From: graph.NodeID(fromID), To: graph.NodeID(toID), Weight: dist})
			}
			if w.backward {
				res.Edges = append(res.Edges, graph.Edge{From: graph.NodeID(toID), To: graph.NodeID(fromID), Weight: dist})
			}
		}
	}
	return res
}
