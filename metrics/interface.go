package metrics

// MetricsCollector creates metrics registered on the application registry.
// It is implemented by *Metrics and keeps Prometheus types out of callers.
type MetricsCollector interface {
	// CreateCounter registers a counter vector.
	//
	//	c := m.CreateCounter("sessions_total", "Profiler sessions", []string{"instance"})
	//	c.WithLabelValues("cache").Inc()
	CreateCounter(name, help string, labels []string) Counter

	// CreateHistogram registers a histogram vector. Nil buckets use the Prometheus defaults.
	CreateHistogram(name, help string, labels []string, buckets []float64) Histogram

	// CreateGauge registers a gauge vector.
	CreateGauge(name, help string, labels []string) Gauge
}
