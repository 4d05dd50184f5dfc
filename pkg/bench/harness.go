// Package bench measures how Dijkstra and Prim scale on growing prefixes of
// a road graph.
//
// Timing uses the monotonic clock and no warm-up run is discarded: every
// repetition counts toward the average.
package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"roadgraph/pkg/graph"
	"roadgraph/pkg/mst"
	"roadgraph/pkg/routing"
)

// ErrInvalidRepetitionCount is returned when fewer than one repetition is requested.
var ErrInvalidRepetitionCount = errors.New("repetitions must be at least 1")

const (
	DefaultRepetitions = 5
	DefaultStep        = 10
	DefaultMaxSize     = 100 // exclusive
)

// TimingSeries holds three parallel sequences: sub-graph node counts and the
// average Dijkstra and Prim durations measured on them.
type TimingSeries struct {
	Sizes    []int
	Dijkstra []time.Duration
	Prim     []time.Duration
}

// Len returns the number of measured thresholds.
func (ts TimingSeries) Len() int { return len(ts.Sizes) }

// Empty reports whether no threshold produced a usable sub-graph.
func (ts TimingSeries) Empty() bool { return len(ts.Sizes) == 0 }

// DijkstraSeconds returns the Dijkstra averages in seconds.
func (ts TimingSeries) DijkstraSeconds() []float64 { return seconds(ts.Dijkstra) }

// PrimSeconds returns the Prim averages in seconds.
func (ts TimingSeries) PrimSeconds() []float64 { return seconds(ts.Prim) }

func seconds(ds []time.Duration) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = d.Seconds()
	}
	return out
}

// MeasureAverage runs op repetitions times and returns the mean wall-clock
// duration of one run.
func MeasureAverage(op func(), repetitions int) (time.Duration, error) {
	return measureAverage(time.Now, op, repetitions)
}

func measureAverage(now func() time.Time, op func(), repetitions int) (time.Duration, error) {
	if repetitions < 1 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidRepetitionCount, repetitions)
	}
	var total time.Duration
	for range repetitions {
		start := now()
		op()
		total += now().Sub(start)
	}
	return total / time.Duration(repetitions), nil
}

// Options configures a Harness.
type Options struct {
	Repetitions int
	Step        int
	MaxSize     int
	Logger      *zap.Logger
	now         func() time.Time
}

// Option configures Options.
type Option func(*Options)

// WithRepetitions sets how many times each operation runs per threshold.
func WithRepetitions(n int) Option {
	return func(o *Options) { o.Repetitions = n }
}

// WithStep sets the distance between consecutive thresholds.
func WithStep(step int) Option {
	return func(o *Options) { o.Step = step }
}

// WithMaxSize sets the exclusive upper bound on thresholds.
func WithMaxSize(n int) Option {
	return func(o *Options) { o.MaxSize = n }
}

// WithLogger sets the logger used for per-threshold progress.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithClock replaces the monotonic clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.now = now }
}

// Harness runs timing series.
type Harness struct {
	opts Options
}

// New creates a Harness. Defaults: 5 repetitions, thresholds 10, 20, … below 100.
func New(opts ...Option) *Harness {
	o := Options{
		Repetitions: DefaultRepetitions,
		Step:        DefaultStep,
		MaxSize:     DefaultMaxSize,
		Logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return &Harness{opts: o}
}

// RunSeries measures both engines on the prefixes s.NodeIDs()[:k] for
// k = Step, 2·Step, … while k < min(MaxSize, |nodes|). Origin and
// destination are the first and last node of each prefix. An empty series is
// a normal result for small graphs.
//
// Measurements run strictly one after another. ctx is only consulted between
// thresholds; on cancellation the series measured so far is returned along
// with ctx.Err().
func (h *Harness) RunSeries(ctx context.Context, s *graph.Store) (TimingSeries, error) {
	var ts TimingSeries
	if h.opts.Repetitions < 1 {
		return ts, fmt.Errorf("%w: got %d", ErrInvalidRepetitionCount, h.opts.Repetitions)
	}
	if h.opts.Step < 1 {
		return ts, fmt.Errorf("bench: step must be positive, got %d", h.opts.Step)
	}

	order := s.NodeIDs()
	limit := min(h.opts.MaxSize, len(order))
	log := h.opts.Logger

	for size := h.opts.Step; size < limit; size += h.opts.Step {
		if err := ctx.Err(); err != nil {
			return ts, err
		}

		sub, err := s.InducedSubstore(order, size)
		if errors.Is(err, graph.ErrInsufficientNodes) {
			log.Debug("skipping threshold", zap.Int("threshold", size))
			continue
		}
		if err != nil {
			return ts, fmt.Errorf("threshold %d: %w", size, err)
		}
		if sub.NumNodes() < 2 {
			continue
		}

		ids := sub.NodeIDs()
		origin, destination := ids[0], ids[len(ids)-1]

		dijkstra, err := measureAverage(h.opts.now, func() {
			_, _, _ = routing.ShortestPath(sub, origin, destination)
		}, h.opts.Repetitions)
		if err != nil {
			return ts, err
		}
		prim, err := measureAverage(h.opts.now, func() {
			_, _ = mst.MinimumSpanningTree(sub)
		}, h.opts.Repetitions)
		if err != nil {
			return ts, err
		}

		ts.Sizes = append(ts.Sizes, int(sub.NumNodes()))
		ts.Dijkstra = append(ts.Dijkstra, dijkstra)
		ts.Prim = append(ts.Prim, prim)

		log.Info("threshold measured",
			zap.Int("nodes", int(sub.NumNodes())),
			zap.Uint32("edges", sub.NumEdges()),
			zap.Duration("dijkstra_avg", dijkstra),
			zap.Duration("prim_avg", prim),
		)
	}
	return ts, nil
}
