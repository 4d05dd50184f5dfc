package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadgraph/pkg/bench"
	"roadgraph/pkg/graph"
	"roadgraph/pkg/routing"
)

// mockRouter implements routing.Router for testing.
type mockRouter struct {
	result *routing.RouteResult
	err    error
}

func (m *mockRouter) Route(ctx context.Context, start, end routing.LatLng) (*routing.RouteResult, error) {
	return m.result, m.err
}

// triangle: 1 → 2 → 3 (weight 1 each) and 1 → 3 (weight 5).
func triangle(t *testing.T) *graph.Store {
	t.Helper()
	s, err := graph.Build(
		[]graph.Node{{ID: 1, X: 0, Y: 0}, {ID: 2, X: 0, Y: 1}, {ID: 3, X: 1, Y: 1}},
		[]graph.Edge{
			{From: 1, To: 2, Weight: 1},
			{From: 2, To: 3, Weight: 1},
			{From: 1, To: 3, Weight: 5},
		},
	)
	require.NoError(t, err)
	return s
}

func chain(t *testing.T, n int) *graph.Store {
	t.Helper()
	nodes := make([]graph.Node, n)
	var edges []graph.Edge
	for i := range nodes {
		nodes[i] = graph.Node{ID: graph.NodeID(i + 1), X: float64(i) * 0.01}
		if i > 0 {
			edges = append(edges, graph.Edge{From: graph.NodeID(i), To: graph.NodeID(i + 1), Weight: 1})
		}
	}
	s, err := graph.Build(nodes, edges)
	require.NoError(t, err)
	return s
}

func newHandlers(t *testing.T, router routing.Router, s *graph.Store) *Handlers {
	t.Helper()
	return NewHandlers(router, s, bench.New(bench.WithRepetitions(1)), NewMetrics("test"), nil)
}

func foundResult() *routing.RouteResult {
	return &routing.RouteResult{
		Found:               true,
		Origin:              1,
		Destination:         3,
		Path:                routing.Path{1, 2, 3},
		TotalDistanceMeters: 2,
		Geometry:            []routing.LatLng{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 0}, {Lat: 1, Lng: 1}},
	}
}

func postRoute(h *Handlers, url, body string, contentType bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if contentType {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.HandleRoute(w, req)
	return w
}

const validBody = `{"start":{"lat":0.01,"lng":0},"end":{"lat":1,"lng":0.98}}`

func TestHandleRoute_Success(t *testing.T) {
	h := newHandlers(t, &mockRouter{result: foundResult()}, triangle(t))

	w := postRoute(h, "/api/v1/route", validBody, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp RouteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Origin)
	assert.Equal(t, int64(3), resp.Destination)
	assert.Equal(t, []int64{1, 2, 3}, resp.Path)
	assert.Equal(t, 2.0, resp.TotalDistanceMeters)
	assert.Equal(t, []LatLngJSON{{0, 0}, {1, 0}, {1, 1}}, resp.Geometry)
}

func TestHandleRoute_RealEngine(t *testing.T) {
	h := newHandlers(t, routing.NewEngine(triangle(t)), triangle(t))

	w := postRoute(h, "/api/v1/route", validBody, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp RouteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []int64{1, 2, 3}, resp.Path)
}

func TestHandleRoute_GeoJSON(t *testing.T) {
	h := newHandlers(t, &mockRouter{result: foundResult()}, triangle(t))

	w := postRoute(h, "/api/v1/route?format=geojson", validBody, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/geo+json", w.Header().Get("Content-Type"))

	fc, err := geojson.UnmarshalFeatureCollection(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, orb.LineString{{0, 0}, {0, 1}, {1, 1}}, fc.Features[0].Geometry)
	assert.Equal(t, 2.0, fc.Features[0].Properties.MustFloat64("total_distance_meters"))
}

func TestHandleRoute_BadRequests(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType bool
		wantError   string
		wantField   string
	}{
		{"invalid json", "not json", true, "invalid_request", ""},
		{"missing content type", validBody, false, "invalid_request", ""},
		{"latitude out of range", `{"start":{"lat":91,"lng":0},"end":{"lat":1,"lng":1}}`, true, "invalid_coordinates", "start"},
		{"longitude out of range", `{"start":{"lat":1,"lng":1},"end":{"lat":1,"lng":-181}}`, true, "invalid_coordinates", "end"},
		{"missing end", `{"start":{"lat":1,"lng":1}}`, true, "invalid_coordinates", "end"},
	}

	h := newHandlers(t, &mockRouter{result: foundResult()}, triangle(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postRoute(h, "/api/v1/route", tt.body, tt.contentType)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Equal(t, tt.wantField, resp.Field)
		})
	}
}

func TestHandleRoute_Errors(t *testing.T) {
	tests := []struct {
		name       string
		router     *mockRouter
		wantStatus int
		wantError  string
	}{
		{"no path", &mockRouter{result: &routing.RouteResult{Origin: 3, Destination: 1}}, http.StatusNotFound, "no_route_found"},
		{"empty graph", &mockRouter{err: fmt.Errorf("resolve start: %w", graph.ErrEmptyGraph)}, http.StatusServiceUnavailable, "graph_unavailable"},
		{"timeout", &mockRouter{err: context.DeadlineExceeded}, http.StatusServiceUnavailable, "request_timeout"},
		{"unexpected", &mockRouter{err: graph.ErrUnknownNode}, http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandlers(t, tt.router, triangle(t))
			w := postRoute(h, "/api/v1/route", validBody, true)
			assert.Equal(t, tt.wantStatus, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantError, resp.Error)
		})
	}
}

func TestHandleMST(t *testing.T) {
	h := newHandlers(t, &mockRouter{}, triangle(t))

	w := httptest.NewRecorder()
	h.HandleMST(w, httptest.NewRequest(http.MethodGet, "/api/v1/mst", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp MSTResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []EdgeJSON{{From: 1, To: 2, Weight: 1}, {From: 2, To: 3, Weight: 1}}, resp.Edges)
	assert.Equal(t, 1, resp.Components)
	assert.Equal(t, 2.0, resp.TotalWeight)
	assert.True(t, resp.IsTree)
}

func TestHandleMST_GeoJSON(t *testing.T) {
	h := newHandlers(t, &mockRouter{}, triangle(t))

	w := httptest.NewRecorder()
	h.HandleMST(w, httptest.NewRequest(http.MethodGet, "/api/v1/mst?format=geojson", nil))
	require.Equal(t, http.StatusOK, w.Code)

	fc, err := geojson.UnmarshalFeatureCollection(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, orb.LineString{{0, 0}, {0, 1}}, fc.Features[0].Geometry)
	assert.Equal(t, 1.0, fc.Features[0].Properties.MustFloat64("weight"))
	assert.Equal(t, 2.0, fc.ExtraMembers.MustFloat64("total_weight"))
}

func TestHandleMST_EmptyGraph(t *testing.T) {
	s, err := graph.Build(nil, nil)
	require.NoError(t, err)
	h := newHandlers(t, &mockRouter{}, s)

	w := httptest.NewRecorder()
	h.HandleMST(w, httptest.NewRequest(http.MethodGet, "/api/v1/mst", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandleBenchmark(t *testing.T) {
	t.Run("insufficient data", func(t *testing.T) {
		h := newHandlers(t, &mockRouter{}, triangle(t))
		w := httptest.NewRecorder()
		h.HandleBenchmark(w, httptest.NewRequest(http.MethodGet, "/api/v1/benchmark", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp BenchmarkResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.InsufficientData)
		assert.Empty(t, resp.Sizes)
	})

	t.Run("series", func(t *testing.T) {
		h := newHandlers(t, &mockRouter{}, chain(t, 25))
		w := httptest.NewRecorder()
		h.HandleBenchmark(w, httptest.NewRequest(http.MethodGet, "/api/v1/benchmark", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp BenchmarkResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.InsufficientData)
		assert.Equal(t, []int{10, 20}, resp.Sizes)
		assert.Len(t, resp.DijkstraSeconds, 2)
		assert.Len(t, resp.PrimSeconds, 2)
	})

	t.Run("canceled", func(t *testing.T) {
		h := newHandlers(t, &mockRouter{}, chain(t, 25))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		w := httptest.NewRecorder()
		h.HandleBenchmark(w, httptest.NewRequest(http.MethodGet, "/api/v1/benchmark", nil).WithContext(ctx))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestHandleHealth(t *testing.T) {
	h := newHandlers(t, &mockRouter{}, triangle(t))

	w := httptest.NewRecorder()
	h.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleStats(t *testing.T) {
	h := newHandlers(t, &mockRouter{}, chain(t, 4))

	w := httptest.NewRecorder()
	h.HandleStats(w, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, StatsResponse{NumNodes: 4, NumEdges: 3, Components: 1}, resp)
}
