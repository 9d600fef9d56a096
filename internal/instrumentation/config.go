package instrumentation

import (
	"fmt"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	// ServiceName is the name of the service (default: larkdocs)
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// ServiceInstanceID is the unique instance identifier (default: hostname)
	// In Kubernetes, this is typically the pod name
	ServiceInstanceID string

	// K8sNamespace is the Kubernetes namespace where the service is running
	K8sNamespace string

	// K8sPodName is the Kubernetes pod name
	K8sPodName string

	// Enabled determines if instrumentation is active (default: true)
	// Set to false via INSTRUMENTATION_ENABLED=false to disable metrics and tracing
	Enabled bool

	// MetricsExporter specifies the metrics exporter type
	// Options: "prometheus", "otlp", "stdout" (default: "prometheus")
	MetricsExporter string

	// TracingExporter specifies the tracing exporter type
	// Options: "otlp", "stdout", "none" (default: "none")
	TracingExporter string

	// OTLPEndpoint is the OTLP collector endpoint
	// Example: "localhost:4318" (without protocol prefix)
	OTLPEndpoint string

	// OTLPInsecure controls whether to use insecure HTTP for OTLP export
	// When false (default), uses TLS for secure transport
	// Set to true only for local development or testing with unencrypted endpoints
	// WARNING: Never use insecure transport in production - traces may contain
	// sensitive metadata and should be encrypted in transit
	OTLPInsecure bool

	// TraceSamplingRate is the sampling rate for traces (0.0 to 1.0, default: 0.1)
	TraceSamplingRate float64

	// PrometheusEndpoint is the path for the Prometheus metrics endpoint (default: "/metrics")
	PrometheusEndpoint string

	// DetailedLabels controls whether high-cardinality labels are included.
	// When false (default), unknown job status codes are folded into "other".
	// When true, the raw status code becomes the label value.
	DetailedLabels bool

	// AuditLogging configures audit logging behavior.
	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig holds configuration for audit logging.
type AuditLoggingConfig struct {
	// Enabled determines if audit logging is active (default: true)
	Enabled bool

	// IncludeArguments adds the size of the tool arguments to audit entries.
	// Argument content is never logged.
	IncludeArguments bool

	// LogLevel sets the slog level for audit log messages (default: INFO).
	// Options: "debug", "info", "warn", "error"
	// Note: Audit events are always logged regardless of this level.
	LogLevel string
}

// DefaultConfig returns a Config with sensible defaults based on environment variables.
func DefaultConfig() Config {
	env := newEnvReader()

	return Config{
		ServiceName:        env.str("OTEL_SERVICE_NAME", "larkdocs"),
		ServiceVersion:     "unknown",
		ServiceInstanceID:  env.str("OTEL_SERVICE_INSTANCE_ID", ""),
		K8sNamespace:       env.str("K8S_NAMESPACE", ""),
		K8sPodName:         env.str("K8S_POD_NAME", ""),
		Enabled:            env.boolean("INSTRUMENTATION_ENABLED", true),
		MetricsExporter:    env.str("METRICS_EXPORTER", ExporterPrometheus),
		TracingExporter:    env.str("TRACING_EXPORTER", ExporterNone),
		OTLPEndpoint:       env.str("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:       env.boolean("OTEL_EXPORTER_OTLP_INSECURE", false),
		TraceSamplingRate:  env.float("OTEL_TRACES_SAMPLER_ARG", 0.1),
		PrometheusEndpoint: env.str("PROMETHEUS_ENDPOINT", "/metrics"),
		DetailedLabels:     env.boolean("METRICS_DETAILED_LABELS", false),
		AuditLogging: AuditLoggingConfig{
			Enabled:          env.boolean("AUDIT_LOGGING_ENABLED", true),
			IncludeArguments: env.boolean("AUDIT_LOGGING_INCLUDE_ARGUMENTS", false),
			LogLevel:         env.str("AUDIT_LOGGING_LEVEL", "info"),
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	// Validate sampling rate is within bounds
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	// Validate metrics exporter
	validMetricsExporters := map[string]bool{ExporterPrometheus: true, ExporterOTLP: true, ExporterStdout: true}
	if c.MetricsExporter != "" && !validMetricsExporters[c.MetricsExporter] {
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}

	// Validate tracing exporter
	validTracingExporters := map[string]bool{ExporterOTLP: true, ExporterStdout: true, ExporterNone: true}
	if c.TracingExporter != "" && !validTracingExporters[c.TracingExporter] {
		return fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter)
	}

	// OTLP endpoint required when using OTLP exporters
	if c.TracingExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP tracing exporter")
	}
	if c.MetricsExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP metrics exporter")
	}

	return nil
}

// envReader reads unprefixed environment variables through viper. Unset,
// empty and unparsable values yield the caller's default.
type envReader struct {
	v *viper.Viper
}

func newEnvReader() envReader {
	v := viper.New()
	v.AutomaticEnv()
	// Kubernetes downward API names differ between charts.
	_ = v.BindEnv("K8S_NAMESPACE", "K8S_NAMESPACE", "POD_NAMESPACE")
	_ = v.BindEnv("K8S_POD_NAME", "K8S_POD_NAME", "HOSTNAME")
	return envReader{v: v}
}

func (r envReader) str(key, defaultValue string) string {
	if value := r.v.GetString(key); value != "" {
		return value
	}
	return defaultValue
}

func (r envReader) boolean(key string, defaultValue bool) bool {
	value := r.v.GetString(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := cast.ToBoolE(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (r envReader) float(key string, defaultValue float64) float64 {
	value := r.v.GetString(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := cast.ToFloat64E(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// Constants for metric label values.
const (
	// Status values
	StatusSuccess = "success"
	StatusError   = "error"
	StatusUnknown = "unknown"

	// Import outcomes
	ImportOutcomeSucceeded   = "succeeded"
	ImportOutcomePassThrough = "pass_through"
	ImportOutcomeExhausted   = "exhausted"
	ImportOutcomeFailed      = "failed"

	// Platform service names
	ServiceDocx  = "docx"
	ServiceDrive = "drive"

	// Platform operations
	OperationSearch           = "search"
	OperationUploadMedia      = "upload_media"
	OperationCreateImportTask = "create_import_task"
	OperationGetImportTask    = "get_import_task"

	// Exporter types
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"

	// Metric recording intervals
	DefaultMetricInterval = 10 * time.Second
)
