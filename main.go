package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"combatsim/config"
	"combatsim/experiments"
	"combatsim/game"
	"combatsim/metrics"
	"combatsim/rules"
	"combatsim/server"
	"combatsim/simulator"
	"combatsim/stats"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `usage: combatsim <command> [flags]

commands:
  simulate  run a scenario and print the aggregate
  bench     run a scenario once per worker count and record throughput
  serve     start the HTTP API
  rules     list the rule catalog`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	level, _ := cfg.Level()
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	switch os.Args[1] {
	case "simulate":
		err = runSimulate(cfg, os.Args[2:])
	case "bench":
		err = runBench(cfg, os.Args[2:])
	case "serve":
		err = runServe(cfg, os.Args[2:])
	case "rules":
		runRules()
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Msgf("%s failed", os.Args[1])
		os.Exit(1)
	}
}

func runSimulate(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	scenario := fs.String("scenario", "", "Path to a YAML scenario")
	trials := fs.Int("trials", cfg.Trials, "Number of trials, overrides the scenario")
	seed := fs.Uint64("seed", 0, "Master seed, overrides the scenario; 0 keeps the scenario seed")
	workers := fs.Int("workers", cfg.Workers, "Number of trial workers")
	out := fs.String("out", cfg.OutputDir, "Directory to write CSV exports into")
	fs.Parse(args)

	if *scenario == "" {
		return fmt.Errorf("-scenario is required")
	}
	catalog, sim, err := simulator.LoadScenario(*scenario)
	if err != nil {
		return err
	}
	if *trials > 0 {
		sim.Trials = *trials
	}
	if *seed != 0 {
		sim.Seed = *seed
	}

	runner := simulator.NewRunner(catalog, simulator.WithWorkers(*workers), simulator.WithMetrics())
	result, metric, err := runner.Run(sim)
	if err != nil {
		return err
	}
	printSummary(result, metric)

	if *out != "" {
		w, err := metrics.NewWriter(*out)
		if err != nil {
			return err
		}
		if err := w.WriteAll(result, metric); err != nil {
			return err
		}
		log.Info().Msgf("Wrote exports to %s", w.Dir())
	}
	return nil
}

func runBench(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	scenario := fs.String("scenario", "", "Path to a YAML scenario")
	workers := fs.String("workers", "", "Comma-separated worker counts")
	out := fs.String("out", cfg.OutputDir, "Directory to write throughput.csv into")
	fs.Parse(args)

	if *scenario == "" {
		return fmt.Errorf("-scenario is required")
	}
	catalog, sim, err := simulator.LoadScenario(*scenario)
	if err != nil {
		return err
	}

	var options []experiments.Option
	if *workers != "" {
		counts, err := parseInts(*workers)
		if err != nil {
			return err
		}
		options = append(options, experiments.WithWorkers(counts...))
	}
	if *out != "" {
		w, err := metrics.NewWriter(*out)
		if err != nil {
			return err
		}
		options = append(options, experiments.WithWriter(w))
	}

	runs, err := experiments.NewThroughput(catalog, options...).Run(sim)
	if err != nil {
		return err
	}
	for _, m := range runs {
		fmt.Printf("%3d workers  %8s  %10.0f trials/s\n", m.Workers, m.Duration.Round(time.Millisecond), m.Throughput())
	}
	return nil
}

func runServe(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", cfg.ListenAddr, "Listen address")
	catalogPath := fs.String("catalog", cfg.CatalogPath, "Path to a YAML unit catalog")
	fs.Parse(args)

	board := game.NewBoard()
	if *catalogPath != "" {
		catalog, err := game.LoadCatalogFile(*catalogPath)
		if err != nil {
			return err
		}
		board = catalog.Board()
		log.Info().Msgf("Loaded %d units from %s", len(catalog.IDs()), *catalogPath)
	}
	return server.NewServer(board, server.WithWorkers(cfg.Workers)).Start(*addr)
}

func runRules() {
	for _, d := range rules.Default().All() {
		fmt.Printf("%-24s %-12s %s\n", d.ID, d.Category, d.Name)
	}
}

func printSummary(r stats.SimulationResult, m metrics.RunMetric) {
	p := r.Percentiles
	fmt.Printf("Trials:            %d (seed %d)\n", r.TrialsRun, r.Seed)
	fmt.Printf("Mean damage:       %.2f\n", r.MeanDamage)
	fmt.Printf("Mean models slain: %.2f of %d\n", r.MeanModelsKilled, r.DefenderModels)
	fmt.Printf("Kill probability:  %.1f%%\n", r.KillProbability*100)
	fmt.Printf("Survivors:         %.2f\n", r.ExpectedSurvivors)
	fmt.Printf("Efficiency:        %.1f%%\n", r.DamageEfficiency*100)
	fmt.Printf("Damage p0/25/50/75/95/100: %d/%d/%d/%d/%d/%d\n", p.P0, p.P25, p.P50, p.P75, p.P95, p.P100)
	for _, w := range r.Weapons {
		fmt.Printf("  %-28s %6.2f dmg  %5.2f kills\n", stats.WeaponKey(w.UnitID, w.WeaponID), w.Damage, w.ModelsKilled)
	}
	fmt.Printf("Ran on %d workers in %s (%.0f trials/s)\n", m.Workers, m.Duration.Round(time.Millisecond), m.Throughput())
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid worker count %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}
