package tracer

// Config configures the OpenTelemetry tracer provider.
type Config struct {
	// ServiceName is recorded as the service.name resource attribute.
	ServiceName string `yaml:"serviceName" envconfig:"SERVICE_NAME"`

	// AppEnv is recorded as deployment.environment.
	AppEnv string `yaml:"appEnv" envconfig:"APP_ENV"`

	// EnableExport sends spans to an OTLP/HTTP collector. Without it spans are created
	// (and correlate log lines) but never leave the process.
	EnableExport bool `yaml:"enableExport" envconfig:"TRACER_ENABLE_EXPORT"`

	// Endpoint is the collector host:port. Empty uses the OTEL_EXPORTER_OTLP_* environment.
	Endpoint string `yaml:"endpoint" envconfig:"TRACER_ENDPOINT"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure" envconfig:"TRACER_INSECURE"`

	// SampleRatio is the fraction of root traces sampled, in (0, 1].
	// Zero or out of range values sample everything.
	SampleRatio float64 `yaml:"sampleRatio" envconfig:"TRACER_SAMPLE_RATIO"`
}
