package workers

import (
	"context"
	"log/slog"
	"os"
	"time"
	"watch-party/observability"

	"github.com/shirou/gopsutil/process"
)

// HealthWorker periodically logs the process footprint alongside the
// application counters.
type HealthWorker struct {
	log      *slog.Logger
	stats    *observability.Stats
	interval time.Duration
	pid      int32
}

func NewHealthWorker(log *slog.Logger, stats *observability.Stats, interval time.Duration) *HealthWorker {
	return &HealthWorker{log: log, stats: stats, interval: interval, pid: int32(os.Getpid())}
}

func (w *HealthWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(w.pid)
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health report")
			return nil
		case <-ticker.C:
			w.report(p)
		}
	}
}

func (w *HealthWorker) report(p *process.Process) {
	cpu, err := p.CPUPercent()
	if err != nil {
		w.log.Error("Error while finding process cpu usage", "err", err)
		return
	}
	memory, err := p.MemoryInfo()
	if err != nil {
		w.log.Error("Error while finding process ram usage", "err", err)
		return
	}
	snapshot := w.stats.Snapshot()
	w.log.Info("Health",
		"pid", w.pid,
		"cpu_percent", cpu,
		"rss_bytes", memory.RSS,
		"connections", snapshot.Connections,
		"commands_applied", snapshot.CommandsApplied,
		"commands_rejected", snapshot.CommandsRejected,
		"events_sent", snapshot.EventsSent,
		"events_dropped", snapshot.EventsDropped,
		"queue_length", snapshot.QueueLength,
	)
}
