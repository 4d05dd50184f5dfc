package api

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"roadgraph/pkg/bench"
	"roadgraph/pkg/graph"
	"roadgraph/pkg/mst"
	"roadgraph/pkg/routing"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	router  routing.Router
	store   *graph.Store
	harness *bench.Harness
	metrics *Metrics
	log     *zap.Logger
	stats   StatsResponse

	forest func() (mst.Forest, error)
	// benchMu keeps benchmark series from overlapping.
	benchMu sync.Mutex
}

// NewHandlers creates handlers serving store. router answers route queries;
// harness runs benchmark series. metrics may be nil.
func NewHandlers(router routing.Router, store *graph.Store, harness *bench.Harness, metrics *Metrics, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{
		router:  router,
		store:   store,
		harness: harness,
		metrics: metrics,
		log:     log,
		stats: StatsResponse{
			NumNodes:   store.NumNodes(),
			NumEdges:   store.NumEdges(),
			Components: graph.Components(store),
		},
		forest: sync.OnceValues(func() (mst.Forest, error) {
			return mst.MinimumSpanningTree(store)
		}),
	}
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}()

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", invalidField(err))
		return
	}

	result, err := h.router.Route(r.Context(),
		routing.LatLng{Lat: req.Start.Lat, Lng: req.Start.Lng},
		routing.LatLng{Lat: req.End.Lat, Lng: req.End.Lng},
	)
	if err != nil {
		h.metrics.observeRoute("error")
		switch {
		case errors.Is(err, graph.ErrEmptyGraph):
			writeError(w, http.StatusServiceUnavailable, "graph_unavailable", "")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusServiceUnavailable, "request_timeout", "")
		default:
			h.log.Error("route failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal_error", "")
		}
		return
	}
	if !result.Found {
		h.metrics.observeRoute("no_path")
		writeError(w, http.StatusNotFound, "no_route_found", "")
		return
	}
	h.metrics.observeRoute("found")

	if wantsGeoJSON(r) {
		writeJSON(w, "application/geo+json", routeCollection(result))
		return
	}

	resp := RouteResponse{
		Origin:              int64(result.Origin),
		Destination:         int64(result.Destination),
		Path:                make([]int64, len(result.Path)),
		TotalDistanceMeters: result.TotalDistanceMeters,
		Geometry:            make([]LatLngJSON, len(result.Geometry)),
	}
	for i, id := range result.Path {
		resp.Path[i] = int64(id)
	}
	for i, ll := range result.Geometry {
		resp.Geometry[i] = LatLngJSON{Lat: ll.Lat, Lng: ll.Lng}
	}
	writeJSON(w, "application/json", resp)
}

// HandleMST handles GET /api/v1/mst. The forest is computed on first use.
func (h *Handlers) HandleMST(w http.ResponseWriter, r *http.Request) {
	forest, err := h.forest()
	if err != nil {
		if errors.Is(err, graph.ErrEmptyGraph) {
			writeError(w, http.StatusServiceUnavailable, "graph_unavailable", "")
			return
		}
		h.log.Error("spanning forest failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	if wantsGeoJSON(r) {
		writeJSON(w, "application/geo+json", forestCollection(h.store, forest))
		return
	}

	resp := MSTResponse{
		Edges:       make([]EdgeJSON, len(forest.Edges)),
		Components:  forest.Components,
		TotalWeight: forest.TotalWeight(),
		IsTree:      forest.IsTree(),
	}
	for i, e := range forest.Edges {
		resp.Edges[i] = EdgeJSON{From: int64(e.From), To: int64(e.To), Weight: e.Weight}
	}
	writeJSON(w, "application/json", resp)
}

// HandleBenchmark handles GET /api/v1/benchmark. Runs are serialised; a
// request arriving while one is in progress waits for it.
func (h *Handlers) HandleBenchmark(w http.ResponseWriter, r *http.Request) {
	h.benchMu.Lock()
	defer h.benchMu.Unlock()

	start := time.Now()
	ts, err := h.harness.RunSeries(r.Context(), h.store)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			writeError(w, http.StatusServiceUnavailable, "request_timeout", "")
			return
		}
		h.log.Error("benchmark failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}
	h.metrics.observeSeries(time.Since(start))

	writeJSON(w, "application/json", BenchmarkResponse{
		Sizes:            append([]int{}, ts.Sizes...),
		DijkstraSeconds:  ts.DijkstraSeconds(),
		PrimSeconds:      ts.PrimSeconds(),
		InsufficientData: ts.Empty(),
	})
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, "application/json", HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, "application/json", h.stats)
}

func wantsGeoJSON(r *http.Request) bool {
	return r.URL.Query().Get("format") == "geojson"
}

// invalidField names the top-level request field that failed validation.
func invalidField(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ""
	}
	parts := strings.Split(verrs[0].Namespace(), ".")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

func writeJSON(w http.ResponseWriter, contentType string, v any) {
	w.Header().Set("Content-Type", contentType)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Field: field})
}
