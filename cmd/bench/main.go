package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"roadgraph/pkg/bench"
	"roadgraph/pkg/config"
	"roadgraph/pkg/osm"
)

type output struct {
	Query            string    `json:"query"`
	Sizes            []int     `json:"sizes"`
	DijkstraSeconds  []float64 `json:"dijkstra_seconds"`
	PrimSeconds      []float64 `json:"prim_seconds"`
	InsufficientData bool      `json:"insufficient_data"`
}

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	query := flag.String("query", "", "Location query or .osm.pbf path (overrides config)")
	dataDir := flag.String("data", "", "Directory holding .osm.pbf extracts (overrides config)")
	bbox := flag.String("bbox", "", "Bounding box filter: minLat,minLng,maxLat,maxLng")
	reps := flag.Int("reps", 0, "Repetitions per threshold (overrides config)")
	asJSON := flag.Bool("json", false, "Print the series as JSON instead of a table")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *query != "" {
		cfg.Data.Query = *query
	}
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
	}
	if *reps != 0 {
		cfg.Bench.Repetitions = *reps
	}
	if *bbox != "" {
		b := &cfg.Data.BBox
		if _, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &b.MinLat, &b.MinLng, &b.MaxLat, &b.MaxLng); err != nil {
			fmt.Fprintf(os.Stderr, "invalid bbox (expected minLat,minLng,maxLat,maxLng): %v\n", err)
			os.Exit(1)
		}
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *asJSON, os.Stdout, log); err != nil {
		log.Error("benchmark failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, asJSON bool, w io.Writer, log *zap.Logger) error {
	provider := &osm.FileProvider{
		Dir: cfg.Data.Dir,
		Options: osm.ProviderOptions{
			BBox:             osm.BBox(cfg.Data.BBox),
			LargestComponent: cfg.Data.LargestComponent,
		},
		Logger: log,
	}
	store, err := provider.ProvideGraph(ctx, cfg.Data.Query)
	if err != nil {
		return err
	}

	h := bench.New(
		bench.WithRepetitions(cfg.Bench.Repetitions),
		bench.WithStep(cfg.Bench.Step),
		bench.WithMaxSize(cfg.Bench.MaxSize),
		bench.WithLogger(log),
	)
	start := time.Now()
	ts, err := h.RunSeries(ctx, store)
	if err != nil {
		return err
	}
	log.Info("series complete", zap.Int("thresholds", ts.Len()), zap.Duration("elapsed", time.Since(start)))

	if asJSON {
		return writeJSON(w, cfg.Data.Query, ts)
	}
	return writeTable(w, ts)
}

func writeJSON(w io.Writer, query string, ts bench.TimingSeries) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output{
		Query:            query,
		Sizes:            append([]int{}, ts.Sizes...),
		DijkstraSeconds:  ts.DijkstraSeconds(),
		PrimSeconds:      ts.PrimSeconds(),
		InsufficientData: ts.Empty(),
	})
}

func writeTable(w io.Writer, ts bench.TimingSeries) error {
	if ts.Empty() {
		_, err := fmt.Fprintln(w, "insufficient data: the graph is too small for any threshold")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "nodes\tdijkstra (s)\tprim (s)\t")
	for i, n := range ts.Sizes {
		fmt.Fprintf(tw, "%d\t%.6f\t%.6f\t\n", n, ts.Dijkstra[i].Seconds(), ts.Prim[i].Seconds())
	}
	return tw.Flush()
}
