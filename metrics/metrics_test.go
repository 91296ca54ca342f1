package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"combatsim/stats"

	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	c := NewCollector()
	c.Start(4, 100)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				c.AddTrial()
				c.AddResolution()
				c.AddResolution()
			}
		}()
	}
	wg.Wait()

	m := c.Complete()
	require.Equal(t, 4, m.Workers)
	require.Equal(t, 100, m.Trials)
	require.Equal(t, 100, m.Completed, "Concurrent trials should all be counted")
	require.Equal(t, 200, m.Resolutions)
	require.False(t, m.StartTime.IsZero())
}

func TestDummyCollector(t *testing.T) {
	c := NewDummyCollector()
	c.Start(4, 100)
	c.AddTrial()
	require.Equal(t, RunMetric{}, c.Complete())
}

func TestThroughput(t *testing.T) {
	require.InDelta(t, 50.0, RunMetric{Completed: 100, Duration: 2 * time.Second}.Throughput(), 1e-9)
	require.Zero(t, RunMetric{Completed: 100}.Throughput())
}

func readCSV(t *testing.T, path string) [][]string {
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriter(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	agg := stats.NewAggregator(2, 4)
	agg.Add(stats.TrialResult{Index: 0, TotalDamage: 3, ModelsKilled: 1, Weapons: map[string]stats.WeaponBreakdown{
		"squad/bolter": {UnitID: "squad", WeaponID: "bolter", Attacks: 4, Damage: 3},
	}})
	agg.Add(stats.TrialResult{Index: 1, TotalDamage: 5, ModelsKilled: 2})
	result := agg.Result()

	require.NoError(t, w.WriteAll(result, RunMetric{Workers: 2, Completed: 2, Duration: time.Second}))

	histogram := readCSV(t, filepath.Join(w.Dir(), "histogram.csv"))
	require.Equal(t, [][]string{{"damage", "count"}, {"3", "1"}, {"5", "1"}}, histogram)

	trials := readCSV(t, filepath.Join(w.Dir(), "trials.csv"))
	require.Len(t, trials, 3, "One header and one row per trial")
	require.Equal(t, "5", trials[2][1])

	weapons := readCSV(t, filepath.Join(w.Dir(), "weapons.csv"))
	require.Equal(t, []string{"squad", "bolter", "2.0000", "0.0000", "0.0000", "0.0000", "0.0000", "1.5000", "0.0000"}, weapons[1])

	summary := readCSV(t, filepath.Join(w.Dir(), "summary.csv"))
	require.Equal(t, []string{"trials_run", "2"}, summary[1])
	require.Equal(t, []string{"kill_probability", "0.5000"}, summary[8])
}

func TestWriteRunMetrics(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	runs := []RunMetric{
		{Workers: 1, Trials: 100, Completed: 100, Resolutions: 200, StartTime: start, Duration: 2 * time.Second},
		{Workers: 4, Trials: 100, Completed: 100, Resolutions: 200, StartTime: start, Duration: 500 * time.Millisecond},
	}
	require.NoError(t, w.WriteRunMetrics(runs))

	rows := readCSV(t, filepath.Join(w.Dir(), "throughput.csv"))
	require.Len(t, rows, 3, "One header and one row per run")
	require.Equal(t, []string{"1", "100", "100", "200", "2024-01-02T03:04:05Z", "2000", "50.0000"}, rows[1])
	require.Equal(t, "200.0000", rows[2][6], "Four workers finishing in half a second should report 200 trials per second")
}
