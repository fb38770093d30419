// Package observability aggregates runtime counters for the stats endpoint.
package observability

import (
	"log/slog"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

// Stats is the snapshot served to operators.
type Stats struct {
	MessagesSent   uint64  `json:"messages_sent"`
	RevealsServed  uint64  `json:"reveals_served"`
	ExpiredServed  uint64  `json:"expired_served"`
	RequestCount   uint64  `json:"request_count"`
	ErrorCount     uint64  `json:"error_count"`
	AllocMemMb     uint64  `json:"alloc_mem_mb"`
	NumGC          uint32  `json:"num_gc"`
	ProcessRSSMb   uint64  `json:"process_rss_mb"`
	CPUPercent     float64 `json:"cpu_percent"`
	UptimeSeconds  int64   `json:"uptime_seconds"`
	SnapshotTakenAt string  `json:"snapshot_taken_at"`
}

// Monitor keeps cheap atomic counters updated on the hot path and builds
// full snapshots on demand.
type Monitor struct {
	log       *slog.Logger
	startedAt time.Time

	messagesSent  uint64
	revealsServed uint64
	expiredServed uint64
	requestCount  uint64
	errorCount    uint64
}

func NewMonitor(log *slog.Logger) *Monitor {
	return &Monitor{log: log, startedAt: time.Now()}
}

func (m *Monitor) IncrMessagesSent()  { atomic.AddUint64(&m.messagesSent, 1) }
func (m *Monitor) IncrRevealsServed() { atomic.AddUint64(&m.revealsServed, 1) }
func (m *Monitor) IncrExpiredServed() { atomic.AddUint64(&m.expiredServed, 1) }
func (m *Monitor) IncrRequestCount()  { atomic.AddUint64(&m.requestCount, 1) }
func (m *Monitor) IncrErrorCount()    { atomic.AddUint64(&m.errorCount, 1) }

// Snapshot gathers the counters plus Go runtime and OS process metrics.
// Process metrics are best effort; a failing probe only logs.
func (m *Monitor) Snapshot() Stats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := Stats{
		MessagesSent:   atomic.LoadUint64(&m.messagesSent),
		RevealsServed:  atomic.LoadUint64(&m.revealsServed),
		ExpiredServed:  atomic.LoadUint64(&m.expiredServed),
		RequestCount:   atomic.LoadUint64(&m.requestCount),
		ErrorCount:     atomic.LoadUint64(&m.errorCount),
		AllocMemMb:     memStats.Alloc / 1024 / 1024,
		NumGC:          memStats.NumGC,
		UptimeSeconds:  int64(time.Since(m.startedAt).Seconds()),
		SnapshotTakenAt: time.Now().UTC().Format(time.RFC3339),
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		m.log.Debug("Process probe failed", "error", err)
		return stats
	}
	if memInfo, err := proc.MemoryInfo(); err == nil {
		stats.ProcessRSSMb = memInfo.RSS / 1024 / 1024
	}
	if cpu, err := proc.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	}
	return stats
}
