package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SystemMetrics records a snapshot of the Go runtime. The CLI is short
// lived, so the snapshot is taken once before metrics are flushed.
type SystemMetrics struct {
	goRoutines    metric.Int64Gauge
	heapAlloc     metric.Int64Gauge
	memorySystem  metric.Int64Gauge
	gcCount       metric.Int64Gauge
	processUptime metric.Float64Gauge

	started time.Time
}

// NewSystemMetrics creates the runtime gauges on meter.
func NewSystemMetrics(meter metric.Meter) (*SystemMetrics, error) {
	goRoutines, err := meter.Int64Gauge(
		"system_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create goroutine gauge: %w", err)
	}

	heapAlloc, err := meter.Int64Gauge(
		"system_memory_allocated_bytes",
		metric.WithDescription("Heap memory allocated by the Go runtime"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create heap gauge: %w", err)
	}

	memorySystem, err := meter.Int64Gauge(
		"system_memory_system_bytes",
		metric.WithDescription("Memory obtained from the OS"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create system memory gauge: %w", err)
	}

	gcCount, err := meter.Int64Gauge(
		"system_gc_cycles",
		metric.WithDescription("Completed garbage collection cycles"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gc gauge: %w", err)
	}

	processUptime, err := meter.Float64Gauge(
		"system_process_uptime_seconds",
		metric.WithDescription("Time since the process started its telemetry"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create uptime gauge: %w", err)
	}

	return &SystemMetrics{
		goRoutines:    goRoutines,
		heapAlloc:     heapAlloc,
		memorySystem:  memorySystem,
		gcCount:       gcCount,
		processUptime: processUptime,
		started:       time.Now(),
	}, nil
}

// Record takes one runtime snapshot.
func (s *SystemMetrics) Record(ctx context.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	attrs := metric.WithAttributes(attribute.String("go_version", runtime.Version()))

	s.goRoutines.Record(ctx, int64(runtime.NumGoroutine()), attrs)
	s.heapAlloc.Record(ctx, int64(m.HeapAlloc), attrs)
	s.memorySystem.Record(ctx, int64(m.Sys), attrs)
	s.gcCount.Record(ctx, int64(m.NumGC), attrs)
	s.processUptime.Record(ctx, time.Since(s.started).Seconds(), attrs)
}
