package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"combatsim/stats"

	"github.com/google/uuid"
)

// Writer exports simulation results as CSV files into a run directory.
type Writer struct {
	baseDir string
}

// NewWriter creates a run directory under root named by the current time and
// a random run id.
func NewWriter(root string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, timestamp+"-"+uuid.NewString())
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

// WriteAll writes every export of a run.
func (w *Writer) WriteAll(result stats.SimulationResult, metric RunMetric) error {
	if err := w.WriteSummary(result, metric); err != nil {
		return err
	}
	if err := w.WriteHistogram(result); err != nil {
		return err
	}
	if err := w.WriteTrials(result.Trials); err != nil {
		return err
	}
	return w.WriteWeapons(result.Weapons)
}

func (w *Writer) WriteSummary(result stats.SimulationResult, metric RunMetric) error {
	header := []string{"metric", "value"}
	p := result.Percentiles
	rows := [][]string{
		{"trials_run", strconv.Itoa(result.TrialsRun)},
		{"seed", strconv.FormatUint(result.Seed, 10)},
		{"defender_models", strconv.Itoa(result.DefenderModels)},
		{"defender_wounds", strconv.Itoa(result.DefenderWounds)},
		{"cumulative_damage", strconv.Itoa(result.CumulativeDamage)},
		{"mean_damage", formatFloat(result.MeanDamage)},
		{"mean_models_killed", formatFloat(result.MeanModelsKilled)},
		{"kill_probability", formatFloat(result.KillProbability)},
		{"expected_survivors", formatFloat(result.ExpectedSurvivors)},
		{"damage_efficiency", formatFloat(result.DamageEfficiency)},
		{"p0", strconv.Itoa(p.P0)},
		{"p25", strconv.Itoa(p.P25)},
		{"p50", strconv.Itoa(p.P50)},
		{"p75", strconv.Itoa(p.P75)},
		{"p95", strconv.Itoa(p.P95)},
		{"p100", strconv.Itoa(p.P100)},
		{"workers", strconv.Itoa(metric.Workers)},
		{"duration", metric.Duration.String()},
		{"throughput", formatFloat(metric.Throughput())},
	}
	return w.write("summary.csv", header, rows)
}

func (w *Writer) WriteHistogram(result stats.SimulationResult) error {
	header := []string{"damage", "count"}
	var rows [][]string
	for _, k := range result.HistogramKeys() {
		rows = append(rows, []string{strconv.Itoa(k), strconv.Itoa(result.Histogram[k])})
	}
	return w.write("histogram.csv", header, rows)
}

func (w *Writer) WriteTrials(trials []stats.TrialResult) error {
	header := []string{"index", "total_damage", "applied_damage", "models_killed", "overkill", "attacks", "hits", "wounds", "mortal_wounds", "saves_failed"}
	rows := make([][]string, 0, len(trials))
	for _, t := range trials {
		rows = append(rows, []string{
			strconv.Itoa(t.Index),
			strconv.Itoa(t.TotalDamage),
			strconv.Itoa(t.AppliedDamage),
			strconv.Itoa(t.ModelsKilled),
			strconv.Itoa(t.Overkill),
			strconv.Itoa(t.Attacks),
			strconv.Itoa(t.Hits),
			strconv.Itoa(t.Wounds),
			strconv.Itoa(t.MortalWounds),
			strconv.Itoa(t.SavesFailed),
		})
	}
	return w.write("trials.csv", header, rows)
}

func (w *Writer) WriteWeapons(weapons []stats.WeaponSummary) error {
	header := []string{"unit", "weapon", "attacks", "hits", "wounds", "mortal_wounds", "saves_failed", "damage", "models_killed"}
	rows := make([][]string, 0, len(weapons))
	for _, s := range weapons {
		rows = append(rows, []string{
			s.UnitID,
			s.WeaponID,
			formatFloat(s.Attacks),
			formatFloat(s.Hits),
			formatFloat(s.Wounds),
			formatFloat(s.MortalWounds),
			formatFloat(s.SavesFailed),
			formatFloat(s.Damage),
			formatFloat(s.ModelsKilled),
		})
	}
	return w.write("weapons.csv", header, rows)
}

// WriteRunMetrics writes one row per run, as produced by a throughput sweep.
func (w *Writer) WriteRunMetrics(runs []RunMetric) error {
	header := []string{"workers", "trials", "completed", "resolutions", "start_time", "duration_ms", "throughput"}
	rows := make([][]string, 0, len(runs))
	for _, m := range runs {
		rows = append(rows, []string{
			strconv.Itoa(m.Workers),
			strconv.Itoa(m.Trials),
			strconv.Itoa(m.Completed),
			strconv.Itoa(m.Resolutions),
			m.StartTime.UTC().Format(time.RFC3339Nano),
			strconv.FormatInt(m.Duration.Milliseconds(), 10),
			formatFloat(m.Throughput()),
		})
	}
	return w.write("throughput.csv", header, rows)
}

func (w *Writer) write(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	err = writer.WriteAll(rows)
	if err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
