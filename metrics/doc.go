// Package metrics exposes the profiler's Prometheus series.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - MetricsCollector interface: CreateCounter, CreateHistogram and CreateGauge
//   - Metrics struct: the implementation, owning both registries and servers
//   - OperationObserver: turns observability.OperationContext reports into series
//   - FX module: provides *Metrics, MetricsCollector and observability.Observer
//
// # Dual Endpoint Design
//
// 1. System Metrics Endpoint (default: :9090)
//   - Go runtime metrics (goroutines, memory, GC stats)
//   - Process metrics (CPU, file descriptors, memory)
//
// 2. Application Metrics Endpoint (default: :9091)
//   - The profiler's own series only, prefixed with Config.Namespace
//
// A nil address uses the default, Ptr("") disables the endpoint:
//
//	cfg := metrics.Config{
//	    SystemMetricsAddress: metrics.Ptr(""),
//	    ServiceName:          "redis-profiler",
//	}
//
// # Direct Usage (Without FX)
//
//	m := metrics.NewMetrics(metrics.Config{ServiceName: "redis-profiler"})
//	obs := metrics.NewOperationObserver(m)
//	connector := monitor.NewShardConnector(prober, opener).WithObserver(obs)
//	observer := monitor.NewObserver(monitor.Config{Name: "cache-eu"}, connector).
//	    WithOperationObserver(obs)
//
// The packages doing the work never import Prometheus; they report operations and
// OperationObserver records them.
//
// # Series
//
// With the default namespace OperationObserver registers:
//
//	redis_profiler_operations_total{component, operation, result}
//	redis_profiler_operation_duration_seconds{component, operation}
//	redis_profiler_deliveries_total{instance}
//	redis_profiler_delivery_arguments{instance}
//	redis_profiler_consumers{instance}
//	redis_profiler_shards{instance}
//
// Every series carries the constant label service=Config.ServiceName.
//
// # Custom Metrics
//
//	sessions := m.CreateGauge("open_sessions", "Open websocket sessions.", []string{"instance"})
//	sessions.WithLabelValues("cache-eu").Inc()
//
// # FX Module Integration
//
// With FXModule the observer is provided as observability.Observer and picked up by the
// monitor and profiler modules automatically. Both servers start with the application and
// are shut down when it stops:
//
//	app := fx.New(
//	    fx.Supply(metrics.Config{ServiceName: "redis-profiler"}),
//	    metrics.FXModule,
//	    monitor.FXModule,
//	)
package metrics
