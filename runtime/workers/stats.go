package workers

import (
	"context"
	"log/slog"
	"os"
	"reflect"
	"time"

	"schat/contract"

	"github.com/shirou/gopsutil/process"
)

type NamedChannel struct {
	Name    string
	Channel any
}

// StatsWorker periodically logs the server load: session, room and queued
// command counts, the process RSS and CPU, and the fill level of the given
// channels. Reading len and cap of a channel is non-blocking, so sampling
// never interferes with its producers.
type StatsWorker struct {
	log      *slog.Logger
	provider contract.StatsProvider
	channels []NamedChannel
	interval time.Duration
}

func NewStatsWorker(log *slog.Logger, provider contract.StatsProvider,
	interval time.Duration, channels ...NamedChannel) *StatsWorker {
	return &StatsWorker{
		log:      log,
		provider: provider,
		channels: channels,
		interval: interval,
	}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	if w.interval <= 0 {
		w.log.Debug("Stats disabled")
		return nil
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		w.log.Warn("Process metrics unavailable", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping stats worker")
			return nil
		case <-ticker.C:
			w.report(p)
		}
	}
}

func (w *StatsWorker) report(p *process.Process) {
	stats := w.provider.Stats()
	attrs := []any{"sessions", stats.Sessions, "rooms", stats.Rooms, "queued", stats.Queued}

	if p != nil {
		rss, cpu, err := selfStats(p)
		if err != nil {
			w.log.Debug("Failed to collect self stats", "error", err)
		} else {
			attrs = append(attrs, "rss_bytes", rss, "cpu_percent", cpu)
		}
	}

	for _, nc := range w.channels {
		v := reflect.ValueOf(nc.Channel)
		// Verify if this is a channel
		if v.Kind() != reflect.Chan {
			w.log.Error("Provided object is not a channel", "name", nc.Name)
			continue
		}
		attrs = append(attrs, nc.Name+"_len", v.Len(), nc.Name+"_cap", v.Cap())
	}
	w.log.Info("Server stats", attrs...)
}

func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpu, nil
}
