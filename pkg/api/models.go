package api

// RouteRequest is the JSON body for POST /api/v1/route.
type RouteRequest struct {
	Start *LatLngJSON `json:"start" validate:"required"`
	End   *LatLngJSON `json:"end" validate:"required"`
}

// LatLngJSON represents a lat/lng pair in JSON.
type LatLngJSON struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" validate:"min=-180,max=180"`
}

// RouteResponse is the JSON response for a successful route query.
type RouteResponse struct {
	Origin              int64        `json:"origin"`
	Destination         int64        `json:"destination"`
	Path                []int64      `json:"path"`
	TotalDistanceMeters float64      `json:"total_distance_meters"`
	Geometry            []LatLngJSON `json:"geometry"`
}

// EdgeJSON is one spanning forest edge.
type EdgeJSON struct {
	From   int64   `json:"from"`
	To     int64   `json:"to"`
	Weight float64 `json:"weight"`
}

// MSTResponse is the JSON response for GET /api/v1/mst.
type MSTResponse struct {
	Edges       []EdgeJSON `json:"edges"`
	Components  int        `json:"components"`
	TotalWeight float64    `json:"total_weight"`
	IsTree      bool       `json:"is_tree"`
}

// BenchmarkResponse is the JSON response for GET /api/v1/benchmark.
// InsufficientData is set when the graph is too small for any threshold.
type BenchmarkResponse struct {
	Sizes            []int     `json:"sizes"`
	DijkstraSeconds  []float64 `json:"dijkstra_seconds"`
	PrimSeconds      []float64 `json:"prim_seconds"`
	InsufficientData bool      `json:"insufficient_data"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumNodes   uint32 `json:"num_nodes"`
	NumEdges   uint32 `json:"num_edges"`
	Components int    `json:"components"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
