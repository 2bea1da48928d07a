// Package metrics collects timing statistics for the slow paths of
// tsc-err-dirs: compiler runs, diagnostic parsing, directory reads,
// validation and frame rendering.
//
// Collection is on by default and can be disabled with
// TSC_ERR_DIRS_METRICS=0. The numbers are written to the debug log when a
// session ends.
//
// Usage:
//
//	defer metrics.Timer(metrics.Compile)()
package metrics

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// EnvDisable turns collection off when set to "0".
const EnvDisable = "TSC_ERR_DIRS_METRICS"

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv(EnvDisable) != "0")
}

// Enabled returns whether metrics are collected.
func Enabled() bool { return enabled.Load() }

// SetEnabled switches collection on or off.
func SetEnabled(e bool) { enabled.Store(e) }

// TimingMetric accumulates durations of one operation. It is safe for
// concurrent use.
type TimingMetric struct {
	name  string
	count atomic.Int64
	total atomic.Int64
	max   atomic.Int64
	// min is zero until the first sample.
	min atomic.Int64
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record adds one sample.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.total.Add(ns)
	for {
		old := m.max.Load()
		if ns <= old || m.max.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.min.Load()
		if old != 0 && ns >= old {
			break
		}
		if m.min.CompareAndSwap(old, ns) {
			break
		}
	}
}

// Name returns the metric name.
func (m *TimingMetric) Name() string { return m.name }

// Count returns the number of samples.
func (m *TimingMetric) Count() int64 { return m.count.Load() }

// Stats returns a snapshot.
func (m *TimingMetric) Stats() TimingStats {
	s := TimingStats{
		Name:  m.name,
		Count: m.count.Load(),
		Total: time.Duration(m.total.Load()),
		Max:   time.Duration(m.max.Load()),
		Min:   time.Duration(m.min.Load()),
	}
	if s.Count > 0 {
		s.Avg = s.Total / time.Duration(s.Count)
	}
	return s
}

// Reset drops all samples.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.total.Store(0)
	m.max.Store(0)
	m.min.Store(0)
}

// TimingStats is a snapshot of a TimingMetric.
type TimingStats struct {
	Name  string
	Count int64
	Total time.Duration
	Avg   time.Duration
	Max   time.Duration
	Min   time.Duration
}

func (s TimingStats) String() string {
	return fmt.Sprintf("%s: n=%d total=%s avg=%s min=%s max=%s",
		s.Name, s.Count, s.Total.Round(time.Microsecond), s.Avg.Round(time.Microsecond),
		s.Min.Round(time.Microsecond), s.Max.Round(time.Microsecond))
}

// Timer starts a measurement; call the result to record it.
//
//	defer metrics.Timer(metrics.Parse)()
func Timer(m *TimingMetric) func() {
	if !Enabled() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() { m.Record(time.Since(start)) }
}

var (
	Compile  = newTimingMetric("compile")
	Parse    = newTimingMetric("parse")
	DirRead  = newTimingMetric("dir_read")
	Validate = newTimingMetric("validate")
	Render   = newTimingMetric("render")
)

// All returns every registered metric.
func All() []*TimingMetric {
	return []*TimingMetric{Compile, Parse, DirRead, Validate, Render}
}

// ResetAll clears every metric.
func ResetAll() {
	for _, m := range All() {
		m.Reset()
	}
}

// AllStats returns snapshots of the metrics that have samples.
func AllStats() []TimingStats {
	var out []TimingStats
	for _, m := range All() {
		if m.Count() > 0 {
			out = append(out, m.Stats())
		}
	}
	return out
}

// Summary formats AllStats one metric per line.
func Summary() string {
	stats := AllStats()
	lines := make([]string, len(stats))
	for i, s := range stats {
		lines[i] = s.String()
	}
	return strings.Join(lines, "\n")
}
