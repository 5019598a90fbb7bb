// Package logger is the zap based structured logger of the profiler.
//
// Entries are JSON (or console) on stderr with ISO8601 timestamps and the "pid" and
// "service" fields. Fields are passed as maps:
//
//	log := logger.NewLoggerClient(logger.Config{Level: logger.Info, ServiceName: "redis-profiler"})
//	log.InfoWithContext(ctx, "Monitor streams ready", nil, map[string]interface{}{
//	    "name":   "instance-1",
//	    "shards": 3,
//	})
//
// With EnableTracing the *WithContext methods add the trace_id and span_id of the span
// active in ctx, correlating log lines with the spans created by the tracer package.
package logger
