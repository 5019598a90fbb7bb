package metrics

// Default listen addresses of the two metrics endpoints.
const (
	DefaultSystemMetricsAddress      = ":9090"
	DefaultApplicationMetricsAddress = ":9091"
)

// Config configures the Prometheus endpoints.
//
// Runtime and process collectors are served on SystemMetricsAddress; the profiler's own
// series (operations, deliveries, consumers, shards) on ApplicationMetricsAddress.
// A nil address uses the default, a pointer to "" disables that endpoint.
type Config struct {
	SystemMetricsAddress *string `yaml:"system_metrics_address" envconfig:"METRICS_SYSTEM_ADDRESS"`

	ApplicationMetricsAddress *string `yaml:"application_metrics_address" envconfig:"METRICS_APPLICATION_ADDRESS"`

	// ServiceName becomes the constant "service" label of every series.
	ServiceName string `yaml:"service_name" envconfig:"METRICS_SERVICE_NAME"`

	// Namespace prefixes the profiler's series. Defaults to "redis_profiler".
	Namespace string `yaml:"namespace" envconfig:"METRICS_NAMESPACE"`
}

// DefaultNamespace prefixes the profiler series when Config.Namespace is empty.
const DefaultNamespace = "redis_profiler"

// Ptr returns a pointer to s.
//
//	cfg := metrics.Config{SystemMetricsAddress: metrics.Ptr("")} // system endpoint off
func Ptr(s string) *string {
	return &s
}

func addressOrDefault(addr *string, def string) string {
	if addr == nil {
		return def
	}
	return *addr
}

// Logger is the logging surface the metrics lifecycle needs.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}
