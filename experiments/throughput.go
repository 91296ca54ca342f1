package experiments

import (
	"fmt"

	"combatsim/game"
	"combatsim/metrics"
	"combatsim/simulator"
	"combatsim/stats"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultWorkers is the worker sweep used when none is given.
var DefaultWorkers = []int{1, 2, 4, 8, 16, 32}

type Option func(e *Throughput)

func WithWorkers(workers ...int) Option {
	return func(e *Throughput) {
		if len(workers) > 0 {
			e.workers = workers
		}
	}
}

// WithWriter stores the run metrics as throughput.csv once the sweep ends.
func WithWriter(w *metrics.Writer) Option {
	return func(e *Throughput) {
		e.writer = w
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Throughput) {
		e.logger = logger
	}
}

// Throughput runs the same simulation once per worker count. Every run uses
// the same seed, so the results must agree; only the timings differ.
type Throughput struct {
	lookup  game.Lookup
	workers []int
	writer  *metrics.Writer
	logger  zerolog.Logger
}

func NewThroughput(lookup game.Lookup, options ...Option) *Throughput {
	e := &Throughput{
		lookup:  lookup,
		workers: DefaultWorkers,
		logger:  log.Logger,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

func (e *Throughput) Run(cfg simulator.Config) ([]metrics.RunMetric, error) {
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	e.logger.Info().Msgf("starting throughput experiment over %v workers...", e.workers)

	runs := make([]metrics.RunMetric, 0, len(e.workers))
	var baseline *stats.SimulationResult
	for i, workers := range e.workers {
		runner := simulator.NewRunner(e.lookup,
			simulator.WithWorkers(workers),
			simulator.WithMetrics(),
			simulator.WithLogger(e.logger),
		)
		result, metric, err := runner.Run(cfg)
		if err != nil {
			return nil, fmt.Errorf("run with %d workers: %w", workers, err)
		}
		if baseline == nil {
			baseline = &result
		} else if result.CumulativeDamage != baseline.CumulativeDamage {
			return nil, fmt.Errorf("run with %d workers diverged: damage %d, want %d", workers, result.CumulativeDamage, baseline.CumulativeDamage)
		}
		runs = append(runs, metric)
		e.logger.Info().Msgf("completed run %d of %d: %d workers, %.0f trials/s", i+1, len(e.workers), metric.Workers, metric.Throughput())
	}

	e.logger.Info().Msg("completed throughput experiment")
	if e.writer != nil {
		if err := e.writer.WriteRunMetrics(runs); err != nil {
			return nil, fmt.Errorf("failed to write run metrics: %w", err)
		}
		e.logger.Info().Msg("stored run metrics")
	}
	return runs, nil
}
