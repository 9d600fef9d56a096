package instrumentation

import (
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	for _, key := range []string{
		"OTEL_SERVICE_NAME", "INSTRUMENTATION_ENABLED", "METRICS_EXPORTER",
		"TRACING_EXPORTER", "OTEL_TRACES_SAMPLER_ARG", "AUDIT_LOGGING_ENABLED",
		"AUDIT_LOGGING_INCLUDE_ARGUMENTS",
	} {
		t.Setenv(key, "")
	}

	config := DefaultConfig()

	if config.ServiceName != "larkdocs" {
		t.Errorf("expected ServiceName 'larkdocs', got %q", config.ServiceName)
	}
	if !config.Enabled {
		t.Error("expected Enabled to be true by default")
	}
	if config.MetricsExporter != ExporterPrometheus {
		t.Errorf("expected MetricsExporter 'prometheus', got %q", config.MetricsExporter)
	}
	if config.TracingExporter != ExporterNone {
		t.Errorf("expected TracingExporter 'none', got %q", config.TracingExporter)
	}
	if config.TraceSamplingRate != 0.1 {
		t.Errorf("expected TraceSamplingRate 0.1, got %f", config.TraceSamplingRate)
	}
	if !config.AuditLogging.Enabled {
		t.Error("expected audit logging enabled by default")
	}
	if config.AuditLogging.IncludeArguments {
		t.Error("expected IncludeArguments to be false by default")
	}
}

func TestDefaultConfig_FromEnv(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "docs-gateway")
	t.Setenv("INSTRUMENTATION_ENABLED", "false")
	t.Setenv("METRICS_EXPORTER", "stdout")
	t.Setenv("TRACING_EXPORTER", "stdout")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.5")
	t.Setenv("AUDIT_LOGGING_INCLUDE_ARGUMENTS", "true")

	config := DefaultConfig()

	if config.ServiceName != "docs-gateway" {
		t.Errorf("expected ServiceName 'docs-gateway', got %q", config.ServiceName)
	}
	if config.Enabled {
		t.Error("expected Enabled to be false")
	}
	if config.MetricsExporter != ExporterStdout {
		t.Errorf("expected MetricsExporter 'stdout', got %q", config.MetricsExporter)
	}
	if config.TracingExporter != ExporterStdout {
		t.Errorf("expected TracingExporter 'stdout', got %q", config.TracingExporter)
	}
	if config.TraceSamplingRate != 0.5 {
		t.Errorf("expected TraceSamplingRate 0.5, got %f", config.TraceSamplingRate)
	}
	if !config.AuditLogging.IncludeArguments {
		t.Error("expected IncludeArguments to be true")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		errContains string
	}{
		{
			name:   "prometheus metrics without tracing",
			config: Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterNone},
		},
		{
			name:   "otlp tracing with endpoint",
			config: Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterOTLP, OTLPEndpoint: "localhost:4318"},
		},
		{
			name:        "negative sampling rate",
			config:      Config{TraceSamplingRate: -0.5},
			errContains: "sampling rate",
		},
		{
			name:        "sampling rate above 1",
			config:      Config{TraceSamplingRate: 1.5},
			errContains: "sampling rate",
		},
		{
			name:        "unknown metrics exporter",
			config:      Config{MetricsExporter: "statsd"},
			errContains: "invalid metrics exporter",
		},
		{
			name:        "unknown tracing exporter",
			config:      Config{TracingExporter: "jaeger"},
			errContains: "invalid tracing exporter",
		},
		{
			name:        "otlp tracing without endpoint",
			config:      Config{TracingExporter: ExporterOTLP},
			errContains: "OTLP endpoint is required",
		},
		{
			name:        "otlp metrics without endpoint",
			config:      Config{MetricsExporter: ExporterOTLP},
			errContains: "OTLP endpoint is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.errContains == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("expected error containing %q, got %q", tt.errContains, err.Error())
			}
		})
	}
}

func TestEnvReader(t *testing.T) {
	t.Setenv("LARKDOCS_TEST_STR", "value")
	t.Setenv("LARKDOCS_TEST_BOOL", "true")
	t.Setenv("LARKDOCS_TEST_BAD_BOOL", "yes please")
	t.Setenv("LARKDOCS_TEST_FLOAT", "0.75")
	t.Setenv("LARKDOCS_TEST_BAD_FLOAT", "most")
	t.Setenv("LARKDOCS_TEST_EMPTY", "")

	env := newEnvReader()

	if v := env.str("LARKDOCS_TEST_STR", "default"); v != "value" {
		t.Errorf("expected 'value', got %q", v)
	}
	if v := env.str("LARKDOCS_TEST_UNSET", "default"); v != "default" {
		t.Errorf("expected 'default', got %q", v)
	}
	if v := env.str("LARKDOCS_TEST_EMPTY", "default"); v != "default" {
		t.Errorf("expected 'default' for empty value, got %q", v)
	}
	if v := env.boolean("LARKDOCS_TEST_BOOL", false); !v {
		t.Error("expected true")
	}
	if v := env.boolean("LARKDOCS_TEST_BAD_BOOL", true); !v {
		t.Error("expected default for unparsable bool")
	}
	if v := env.float("LARKDOCS_TEST_FLOAT", 0.5); v != 0.75 {
		t.Errorf("expected 0.75, got %f", v)
	}
	if v := env.float("LARKDOCS_TEST_BAD_FLOAT", 0.5); v != 0.5 {
		t.Errorf("expected default 0.5, got %f", v)
	}
}

func TestDefaultConfig_KubernetesFallbacks(t *testing.T) {
	t.Setenv("K8S_NAMESPACE", "")
	t.Setenv("POD_NAMESPACE", "docs")
	t.Setenv("K8S_POD_NAME", "larkdocs-0")
	t.Setenv("HOSTNAME", "node-1")

	config := DefaultConfig()

	if config.K8sNamespace != "docs" {
		t.Errorf("expected namespace from POD_NAMESPACE, got %q", config.K8sNamespace)
	}
	if config.K8sPodName != "larkdocs-0" {
		t.Errorf("expected K8S_POD_NAME to win over HOSTNAME, got %q", config.K8sPodName)
	}
}
