package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// CheckStats holds check statistics.
type CheckStats struct {
	// TotalChecks is the total number of checked clauses.
	TotalChecks atomic.Int64
	// TotalDuration is the total time spent preparing check statements.
	TotalDuration atomic.Int64 // nanoseconds
	// SlowChecks is the count of checks exceeding the slow threshold.
	SlowChecks atomic.Int64
	// Rejected is the count of clauses rejected by the database.
	Rejected atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *CheckStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalChecks:   s.TotalChecks.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowChecks:    s.SlowChecks.Load(),
		Rejected:      s.Rejected.Load(),
	}
}

// Reset resets all statistics to zero.
func (s *CheckStats) Reset() {
	s.TotalChecks.Store(0)
	s.TotalDuration.Store(0)
	s.SlowChecks.Store(0)
	s.Rejected.Store(0)
}

// StatsSnapshot is a point-in-time snapshot of check statistics.
type StatsSnapshot struct {
	TotalChecks   int64
	TotalDuration time.Duration
	SlowChecks    int64
	Rejected      int64
}

// AvgDuration returns the average check duration.
func (s StatsSnapshot) AvgDuration() time.Duration {
	if s.TotalChecks == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.TotalChecks)
}

// String returns a human-readable summary of the statistics.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"checks=%d duration=%s avg=%s slow=%d rejected=%d",
		s.TotalChecks, s.TotalDuration, s.AvgDuration(), s.SlowChecks, s.Rejected,
	)
}

// SlowCheckHook is a function called when a slow check is detected.
type SlowCheckHook func(ctx context.Context, query string, duration time.Duration)

// StatsDriver wraps a Driver with check statistics collection.
type StatsDriver struct {
	*Driver
	stats         *CheckStats
	slowThreshold time.Duration
	slowHook      SlowCheckHook
	mu            sync.RWMutex
}

// StatsOption configures the StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the threshold for slow check detection.
// Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.slowThreshold = d
	}
}

// WithSlowCheckHook sets a callback function for slow checks.
func WithSlowCheckHook(hook SlowCheckHook) StatsOption {
	return func(s *StatsDriver) {
		s.slowHook = hook
	}
}

// WithSlowCheckLog logs slow checks to the given logger.
func WithSlowCheckLog(logger *slog.Logger) StatsOption {
	return WithSlowCheckHook(func(ctx context.Context, query string, duration time.Duration) {
		logger.WarnContext(ctx, "slow check detected", "duration", duration, "query", query)
	})
}

// NewStatsDriver wraps a Driver with statistics collection.
//
//	drv, _ := sql.Open("postgres", dsn)
//	sd := sql.NewStatsDriver(drv, sql.WithSlowCheckLog(slog.Default()))
//	err := sd.Check(ctx, "users", clause)
//	fmt.Println(sd.CheckStats().Stats())
func NewStatsDriver(drv *Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{
		Driver:        drv,
		stats:         &CheckStats{},
		slowThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckStats returns the underlying CheckStats for reading statistics.
func (d *StatsDriver) CheckStats() *CheckStats {
	return d.stats
}

// SlowThreshold returns the current slow check threshold.
func (d *StatsDriver) SlowThreshold() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.slowThreshold
}

// SetSlowThreshold updates the slow check threshold.
func (d *StatsDriver) SetSlowThreshold(threshold time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slowThreshold = threshold
}

// Check checks the clause and records statistics.
func (d *StatsDriver) Check(ctx context.Context, table, clause string) error {
	start := time.Now()
	err := d.Driver.Check(ctx, table, clause)
	duration := time.Since(start)
	d.stats.TotalChecks.Add(1)
	d.stats.TotalDuration.Add(int64(duration))
	if err != nil {
		d.stats.Rejected.Add(1)
	}

	d.mu.RLock()
	threshold := d.slowThreshold
	hook := d.slowHook
	d.mu.RUnlock()

	if duration > threshold {
		d.stats.SlowChecks.Add(1)
		if hook != nil {
			hook(ctx, clause, duration)
		}
	}
	return err
}
