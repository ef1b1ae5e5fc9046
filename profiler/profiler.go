// Package profiler - operation timing and memory reporting for filter runs.
package profiler

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Profiler tracks how long named operations take and how much they allocate.
// It is safe for concurrent use.
type Profiler struct {
	mu        sync.Mutex
	logger    logrus.FieldLogger
	startTime time.Time

	// Performance tracking
	operationTimes map[string]*TimeTracker
}

// TimeTracker tracks operation timing statistics.
type TimeTracker struct {
	Name       string        `json:"name"`
	Count      int64         `json:"count"`
	TotalTime  time.Duration `json:"total_time"`
	MinTime    time.Duration `json:"min_time"`
	MaxTime    time.Duration `json:"max_time"`
	AllocBytes uint64        `json:"alloc_bytes"`
}

// Average returns the mean duration, or 0 before the first sample.
func (t TimeTracker) Average() time.Duration {
	if t.Count == 0 {
		return 0
	}
	return t.TotalTime / time.Duration(t.Count)
}

// New creates a profiler that reports through logger.
//
// Arguments:
// - logger: Destination for Report. A nil logger discards reports.
//
// Returns:
// - A ready profiler.
func New(logger logrus.FieldLogger) *Profiler {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(nopWriter{})
		logger = discard
	}
	return &Profiler{
		logger:         logger,
		startTime:      time.Now(),
		operationTimes: make(map[string]*TimeTracker),
	}
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes
func (p *Profiler) StartOperation(name string) func() {
	var before runtime.MemStats
	runtime.ReadMemStats(&before)
	start := time.Now()

	return func() {
		duration := time.Since(start)
		var after runtime.MemStats
		runtime.ReadMemStats(&after)
		p.record(name, duration, after.TotalAlloc-before.TotalAlloc)
	}
}

// record folds one sample into the tracker for name.
func (p *Profiler) record(name string, duration time.Duration, alloc uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tracker, exists := p.operationTimes[name]
	if !exists {
		tracker = &TimeTracker{
			Name:    name,
			MinTime: duration,
			MaxTime: duration,
		}
		p.operationTimes[name] = tracker
	}

	tracker.Count++
	tracker.TotalTime += duration
	tracker.AllocBytes += alloc

	if duration < tracker.MinTime {
		tracker.MinTime = duration
	}
	if duration > tracker.MaxTime {
		tracker.MaxTime = duration
	}
}

// Snapshot returns a copy of every tracker, sorted by name.
func (p *Profiler) Snapshot() []TimeTracker {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]TimeTracker, 0, len(p.operationTimes))
	for _, tracker := range p.operationTimes {
		out = append(out, *tracker)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Report logs one line per tracked operation.
func (p *Profiler) Report() {
	for _, tracker := range p.Snapshot() {
		p.logger.WithFields(logrus.Fields{
			"operation": tracker.Name,
			"count":     tracker.Count,
			"avg":       tracker.Average().Truncate(time.Microsecond).String(),
			"min":       tracker.MinTime.Truncate(time.Microsecond).String(),
			"max":       tracker.MaxTime.Truncate(time.Microsecond).String(),
			"allocated": formatBytes(tracker.AllocBytes),
		}).Info("operation timing")
	}
	p.logger.WithField("uptime", time.Since(p.startTime).Truncate(time.Millisecond).String()).Debug("profiler report complete")
}

// formatBytes formats byte counts in human-readable format.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

type nopWriter struct{}

func (nopWriter) Write(b []byte) (int, error) { return len(b), nil }
