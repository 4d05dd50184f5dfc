package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"roadgraph/pkg/api"
	"roadgraph/pkg/bench"
	"roadgraph/pkg/config"
	"roadgraph/pkg/osm"
	"roadgraph/pkg/routing"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	query := flag.String("query", "", "Location query or .osm.pbf path (overrides config)")
	dataDir := flag.String("data", "", "Directory holding .osm.pbf extracts (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *query != "" {
		cfg.Data.Query = *query
	}
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
	}

	log, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	start := time.Now()

	provider := &osm.FileProvider{
		Dir: cfg.Data.Dir,
		Options: osm.ProviderOptions{
			BBox:             osm.BBox(cfg.Data.BBox),
			LargestComponent: cfg.Data.LargestComponent,
		},
		Logger: log,
	}
	store, err := provider.ProvideGraph(context.Background(), cfg.Data.Query)
	if err != nil {
		return err
	}

	log.Info("building node index")
	engine := routing.NewEngine(store)
	log.Info("ready", zap.Duration("load_time", time.Since(start).Round(time.Millisecond)))

	harness := bench.New(
		bench.WithRepetitions(cfg.Bench.Repetitions),
		bench.WithStep(cfg.Bench.Step),
		bench.WithMaxSize(cfg.Bench.MaxSize),
		bench.WithLogger(log.Named("bench")),
	)

	srvCfg := api.ServerConfig{
		Addr:           cfg.Server.Addr(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxConcurrent:  cfg.Server.MaxConcurrent,
		CORSOrigins:    cfg.Server.CORSOrigins,
	}
	metrics := api.NewMetrics("roadgraph")
	handlers := api.NewHandlers(engine, store, harness, metrics, log.Named("api"))
	srv := api.NewServer(srvCfg, api.NewRouter(srvCfg, handlers, metrics, log.Named("http")))

	return api.ListenAndServe(srv, log)
}
