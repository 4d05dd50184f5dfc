package api

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"roadgraph/pkg/geo"
	"roadgraph/pkg/graph"
	"roadgraph/pkg/mst"
	"roadgraph/pkg/routing"
)

// routeCollection renders a found route as a single LineString feature.
func routeCollection(res *routing.RouteResult) *geojson.FeatureCollection {
	line := make(orb.LineString, len(res.Geometry))
	for i, ll := range res.Geometry {
		line[i] = geo.Point(ll.Lat, ll.Lng)
	}
	f := geojson.NewFeature(line)
	f.Properties["origin"] = int64(res.Origin)
	f.Properties["destination"] = int64(res.Destination)
	f.Properties["total_distance_meters"] = res.TotalDistanceMeters

	fc := geojson.NewFeatureCollection()
	fc.Append(f)
	return fc
}

// forestCollection renders each forest edge as a two-point LineString.
func forestCollection(s *graph.Store, forest mst.Forest) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, e := range forest.Edges {
		from, _ := s.Index(e.From)
		to, _ := s.Index(e.To)
		a, b := s.Node(from), s.Node(to)
		f := geojson.NewFeature(orb.LineString{{a.X, a.Y}, {b.X, b.Y}})
		f.Properties["from"] = int64(e.From)
		f.Properties["to"] = int64(e.To)
		f.Properties["weight"] = e.Weight
		fc.Append(f)
	}
	fc.ExtraMembers = geojson.Properties{
		"components":   forest.Components,
		"total_weight": forest.TotalWeight(),
	}
	return fc
}
