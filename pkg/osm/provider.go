package osm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"roadgraph/pkg/graph"
)

// ErrNoRoads is returned when a file holds no drivable road segment.
var ErrNoRoads = errors.New("no drivable roads found")

// DataUnavailableError reports that the map data for a location query could
// not be obtained or turned into a graph.
type DataUnavailableError struct {
	Query string
	Cause error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("map data unavailable for %q: %v", e.Query, e.Cause)
}

func (e *DataUnavailableError) Unwrap() error { return e.Cause }

// Provider produces a road graph for a free-form location query.
type Provider interface {
	ProvideGraph(ctx context.Context, query string) (*graph.Store, error)
}

// ProviderOptions tunes how a FileProvider post-processes parsed data.
type ProviderOptions struct {
	BBox BBox
	// LargestComponent keeps only the largest weakly connected component.
	LargestComponent bool
}

// FileProvider serves graphs from local OSM PBF extracts.
type FileProvider struct {
	Dir     string
	Options ProviderOptions
	Logger  *zap.Logger
}

// Resolve maps a query to a file path. A query that already names a file
// (absolute, or containing ".osm.pbf") is used as is; anything else becomes
// <Dir>/<slug>.osm.pbf, where slug is the lower-cased query with runs of
// spaces and commas collapsed to "-".
func (p *FileProvider) Resolve(query string) string {
	q := strings.TrimSpace(query)
	if filepath.IsAbs(q) || strings.HasSuffix(q, ".osm.pbf") {
		return q
	}
	return filepath.Join(p.Dir, slug(q)+".osm.pbf")
}

func slug(q string) string {
	fields := strings.FieldsFunc(strings.ToLower(q), func(r rune) bool {
		return r == ' ' || r == ',' || r == '/' || r == '\\'
	})
	return strings.Join(fields, "-")
}

// ProvideGraph parses the extract for query into a store. Every failure is
// reported as a *DataUnavailableError.
func (p *FileProvider) ProvideGraph(ctx context.Context, query string) (*graph.Store, error) {
	fail := func(err error) (*graph.Store, error) {
		return nil, &DataUnavailableError{Query: query, Cause: err}
	}
	if strings.TrimSpace(query) == "" {
		return fail(errors.New("empty query"))
	}

	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	path := p.Resolve(query)
	log = log.With(zap.String("query", query), zap.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return fail(err)
	}
	defer f.Close()

	res, err := Parse(ctx, f, ParseOptions{BBox: p.Options.BBox, Logger: log})
	if err != nil {
		return fail(err)
	}
	if len(res.Edges) == 0 {
		return fail(ErrNoRoads)
	}

	s, err := graph.Build(res.Nodes, res.Edges)
	if err != nil {
		return fail(err)
	}

	if p.Options.LargestComponent {
		keep := graph.LargestComponent(s)
		if len(keep) < int(s.NumNodes()) {
			log.Info("keeping largest component",
				zap.Int("kept", len(keep)),
				zap.Uint32("dropped", s.NumNodes()-uint32(len(keep))),
			)
			if s, err = graph.FilterToComponent(s, keep); err != nil {
				return fail(err)
			}
		}
	}

	log.Info("graph ready", zap.Uint32("nodes", s.NumNodes()), zap.Uint32("edges", s.NumEdges()))
	return s, nil
}
