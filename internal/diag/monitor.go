package diag

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/htcacheclean/internal/logging"
)

// Bottleneck detection thresholds.
const (
	memoryPressureThreshold = 0.8
	gcPressureThreshold     = 2.0 // GC cycles/sec
)

// Monitor periodically logs goroutine, memory, and GC pressure indicators
// while an eviction pass runs, to help diagnose why a run is slow.
type Monitor struct {
	lastGCCount   uint32
	lastGCPauseNs uint64
	lastSample    time.Time
}

// NewMonitor constructs a Monitor seeded from current runtime stats.
func NewMonitor() *Monitor {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return &Monitor{
		lastGCCount:   m.NumGC,
		lastGCPauseNs: m.PauseTotalNs,
		lastSample:    time.Now(),
	}
}

// Run samples resource usage every interval until ctx is cancelled.
func (mon *Monitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mon.sample()
		}
	}
}

func (mon *Monitor) sample() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	now := time.Now()
	elapsed := now.Sub(mon.lastSample).Seconds()
	gcCount := m.NumGC - mon.lastGCCount
	gcPauseMs := float64(m.PauseTotalNs-mon.lastGCPauseNs) / 1e6

	allocMB := float64(m.Alloc) / (1024 * 1024)
	sysMB := float64(m.Sys) / (1024 * 1024)

	if sysMB > 0 && allocMB > sysMB*memoryPressureThreshold {
		logging.Warn("memory pressure",
			zap.Float64("alloc_mb", allocMB), zap.Float64("sys_mb", sysMB))
	}
	if elapsed > 0 && float64(gcCount)/elapsed > gcPressureThreshold {
		logging.Warn("gc pressure", zap.Float64("pause_ms", gcPauseMs))
	}

	logging.Debug("resource sample",
		zap.Int("goroutines", runtime.NumGoroutine()),
		zap.Float64("alloc_mb", allocMB),
		zap.Uint32("gc_count", m.NumGC),
	)

	mon.lastGCCount = m.NumGC
	mon.lastGCPauseNs = m.PauseTotalNs
	mon.lastSample = now
}
