package common

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/teemow/larkdocs/internal/instrumentation"
	"github.com/teemow/larkdocs/internal/lark"
	"github.com/teemow/larkdocs/internal/server"
)

// stubPlatform records identities and returns canned answers.
type stubPlatform struct {
	identities []lark.Identity
	err        error
}

func (s *stubPlatform) Request(_ context.Context, _, _ string, _ any, id lark.Identity) (json.RawMessage, error) {
	s.identities = append(s.identities, id)
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(`{"code":0,"data":{}}`), nil
}

func (s *stubPlatform) UploadMedia(_ context.Context, _ lark.MediaUpload, id lark.Identity) (string, error) {
	s.identities = append(s.identities, id)
	return "file-token", s.err
}

func (s *stubPlatform) CreateImportTask(_ context.Context, _ lark.ImportTask, id lark.Identity) (string, error) {
	s.identities = append(s.identities, id)
	return "ticket", s.err
}

func (s *stubPlatform) GetImportTask(_ context.Context, _ string, id lark.Identity) (*lark.ImportTaskStatus, error) {
	s.identities = append(s.identities, id)
	if s.err != nil {
		return nil, s.err
	}
	done := lark.JobStatusSucceeded
	return &lark.ImportTaskStatus{JobStatus: &done}, nil
}

func newTestServerContext(t *testing.T, token string) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), &stubPlatform{}, token, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func newTestMetrics(t *testing.T) (*instrumentation.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := instrumentation.NewMetrics(provider.Meter("test"), false)
	require.NoError(t, err)
	return m, reader
}

// counter sums the data points of a counter whose attributes include want.
func counter(t *testing.T, reader *sdkmetric.ManualReader, name string, want map[string]string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is %T", name, m.Data)
			for _, dp := range sum.DataPoints {
				match := true
				for k, v := range want {
					got, ok := dp.Attributes.Value(attribute.Key(k))
					if !ok || got.AsString() != v {
						match = false
						break
					}
				}
				if match {
					total += dp.Value
				}
			}
		}
	}
	return total
}
