package metrics

import (
	"sync/atomic"
	"time"
)

// RunMetric describes how a simulation run executed.
type RunMetric struct {
	Workers     int
	Trials      int
	Completed   int
	Resolutions int
	StartTime   time.Time
	Duration    time.Duration
}

// Throughput is the number of completed trials per second.
func (m RunMetric) Throughput() float64 {
	if m.Duration <= 0 {
		return 0
	}
	return float64(m.Completed) / m.Duration.Seconds()
}

type Collector interface {
	Start(workers, trials int)
	AddTrial()
	AddResolution()
	Complete() RunMetric
}

type collector struct {
	workers     int
	trials      int
	startTime   time.Time
	completed   atomic.Int64
	resolutions atomic.Int64
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(workers, trials int) {
	m.startTime = time.Now()
	m.workers = workers
	m.trials = trials
	m.completed.Store(0)
	m.resolutions.Store(0)
}

func (m *collector) AddTrial() {
	m.completed.Add(1)
}

func (m *collector) AddResolution() {
	m.resolutions.Add(1)
}

func (m *collector) Complete() RunMetric {
	return RunMetric{
		Workers:     m.workers,
		Trials:      m.trials,
		Completed:   int(m.completed.Load()),
		Resolutions: int(m.resolutions.Load()),
		StartTime:   m.startTime,
		Duration:    time.Since(m.startTime),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(workers, trials int) {}
func (m *dummyCollector) AddTrial()                 {}
func (m *dummyCollector) AddResolution()            {}
func (m *dummyCollector) Complete() RunMetric       { return RunMetric{} }
