package telemetry

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentPerfStats samples process gauges every `interval` in its own
// goroutine until ctx is done.
func InstrumentPerfStats(ctx context.Context, interval time.Duration) {
	meter := otel.Meter("kabinet-assist/process")
	cpuPercent, _ := meter.Float64Gauge("process.cpu.percent", metric.WithUnit("%"))
	heapBytes, _ := meter.Int64Gauge("process.heap.alloc", metric.WithUnit("By"))
	goroutines, _ := meter.Int64Gauge("process.goroutines")

	sample := func() {
		usage, err := cpu.PercentWithContext(ctx, time.Second, false)
		if err != nil {
			slog.Debug("sample cpu usage", "err", err)
		} else if len(usage) > 0 {
			cpuPercent.Record(ctx, usage[0])
		}

		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)
		heapBytes.Record(ctx, int64(mem.HeapAlloc))
		goroutines.Record(ctx, int64(runtime.NumGoroutine()))
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sample()
			}
		}
	}()
}
