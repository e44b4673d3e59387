package probe

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for the parse counter.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeTimedOut = "timeout"
)

// Stats counts probe outcomes. It is safe for concurrent use.
type Stats struct {
	mu         sync.Mutex
	total      int
	successful int

	registry *prometheus.Registry
	parses   *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewStats returns empty statistics backed by a private registry.
func NewStats() *Stats {
	s := &Stats{
		registry: prometheus.NewRegistry(),
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "treeprobe",
			Name:      "parses_total",
			Help:      "Files probed, by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "treeprobe",
			Name:      "parse_duration_seconds",
			Help:      "Wall time spent parsing and re-parsing one file.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
	}
	s.registry.MustRegister(s.parses, s.duration)
	return s
}

// Record adds one probe result.
func (s *Stats) Record(r *Result) {
	outcome := OutcomeSuccess
	switch {
	case r.TimedOut:
		outcome = OutcomeTimedOut
	case r.HasError():
		outcome = OutcomeError
	}

	s.mu.Lock()
	s.total++
	if outcome == OutcomeSuccess {
		s.successful++
	}
	s.mu.Unlock()

	s.parses.WithLabelValues(outcome).Inc()
	s.duration.Observe(r.Duration.Seconds())
}

// Total returns the number of recorded probes.
func (s *Stats) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Successful returns the number of probes that neither timed out nor located an error.
func (s *Stats) Successful() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.successful
}

// Registry exposes the metrics for scraping or export.
func (s *Stats) Registry() *prometheus.Registry {
	return s.registry
}

// WriteTextfile writes the metrics in the text exposition format, for the node
// exporter textfile collector.
func (s *Stats) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, s.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

func (s *Stats) String() string {
	s.mu.Lock()
	total, successful := s.total, s.successful
	s.mu.Unlock()

	percentage := 0.0
	if total > 0 {
		percentage = float64(successful) / float64(total) * 100
	}
	return fmt.Sprintf("Total parses: %d; successful parses: %d; failed parses: %d; success percentage: %.2f%%",
		total, successful, total-successful, percentage)
}
