package license

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"licensekey/internal/batch"
	"licensekey/internal/shared/testutil"
	"licensekey/pkg/keyhash"
	"licensekey/pkg/licensekey"
	"licensekey/pkg/seed"
)

var testIVs = []licensekey.IV{
	{A: 114, B: 83, C: 170},
	{A: 60, B: 208, C: 27},
	{A: 69, B: 14, C: 202},
	{A: 61, B: 232, C: 54},
}

type harness struct {
	svc    *Service
	reader *sdkmetric.ManualReader
	spans  *tracetest.SpanRecorder
	logs   *testutil.CaptureHandler
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
		_ = tp.Shutdown(context.Background())
	})

	logger, logs := testutil.NewTestLogger(t)

	base := []Option{
		WithGenerator(licensekey.NewGenerator(keyhash.XOR, testIVs)),
		WithVerifier(licensekey.NewVerifier(keyhash.XOR, []licensekey.ByteCheck{
			licensekey.NewByteCheck(0, testIVs[0]),
			licensekey.NewByteCheck(2, testIVs[2]),
		})),
		WithLogger(logger),
		WithMeter(mp.Meter(MeterName)),
		WithTracer(tp.Tracer(TracerName)),
	}

	svc, err := NewService(append(base, opts...)...)
	require.NoError(t, err)

	return &harness{svc: svc, reader: reader, spans: spans, logs: logs}
}

// counter sums the data points of the named Int64 sum whose attributes
// include want.
func (h *harness) counter(t *testing.T, name string, want ...attribute.KeyValue) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, h.reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				if hasAttrs(dp.Attributes, want) {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func (h *harness) histogramCount(t *testing.T, name string) uint64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, h.reader.Collect(context.Background(), &rm))

	var total uint64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			hist, ok := m.Data.(metricdata.Histogram[float64])
			require.True(t, ok)
			for _, dp := range hist.DataPoints {
				total += dp.Count
			}
		}
	}
	return total
}

func hasAttrs(set attribute.Set, want []attribute.KeyValue) bool {
	for _, kv := range want {
		v, ok := set.Value(kv.Key)
		if !ok || v != kv.Value {
			return false
		}
	}
	return true
}

func TestNewServiceRequiresKeyring(t *testing.T) {
	_, err := NewService()
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestIssue(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	issued, err := h.svc.Issue(ctx, 12345, "acme")
	require.NoError(t, err)
	assert.Equal(t, uint64(12345), issued.Seed)
	assert.Equal(t, "acme", issued.Identity)
	assert.Equal(t, "0000000000003039b2ceb8da552e", issued.Text)

	assert.Equal(t, int64(1), h.counter(t, "license_keys_issued", attribute.String("codec", "hex")))

	ended := h.spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "license.issue", ended[0].Name())

	assert.False(t, h.logs.Contains(issued.Text), "full keys must not be logged")
	testutil.AssertLogged(t, h.logs, slog.LevelInfo, "license key issued", map[string]any{
		"component":   "license_service",
		"license_key": "0000****552e",
		"identity":    "acme",
	})
}

func TestIssueGroupedCodec(t *testing.T) {
	h := newHarness(t, WithCodec(licensekey.DefaultGroupedCodec))

	issued, err := h.svc.Issue(context.Background(), 12345, "")
	require.NoError(t, err)
	assert.Equal(t, "0000-0000-0000-3039-B2CE-B8DA-552E", issued.Text)
	assert.Equal(t, int64(1), h.counter(t, "license_keys_issued", attribute.String("codec", "grouped")))

	status, err := h.svc.Check(context.Background(), issued.Text)
	require.NoError(t, err)
	assert.Equal(t, licensekey.Valid, status)
}

func TestIssueIdentity(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	a, err := h.svc.IssueIdentity(ctx, "Customer@Example.com")
	require.NoError(t, err)
	b, err := h.svc.IssueIdentity(ctx, " customer@example.com ")
	require.NoError(t, err)

	assert.Equal(t, seed.FromIdentity("customer@example.com"), a.Seed)
	assert.Equal(t, a.Text, b.Text)

	_, err = h.svc.IssueIdentity(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyIdentity)
}

func TestIssueBatch(t *testing.T) {
	h := newHarness(t, WithWorkers(4))

	issued, err := h.svc.IssueBatch(context.Background(), batch.Range(100, 25))
	require.NoError(t, err)
	require.Len(t, issued, 25)
	assert.Equal(t, uint64(124), issued[24].Seed)
	assert.Equal(t, int64(25), h.counter(t, "license_keys_issued"))

	for _, is := range issued {
		status, err := h.svc.Check(context.Background(), is.Text)
		require.NoError(t, err)
		assert.Equal(t, licensekey.Valid, status)
	}
}

func TestIssueBatchCancelled(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.svc.IssueBatch(ctx, batch.Range(0, 10))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), h.counter(t, "license_keys_issued"))
}

func TestCheckStatuses(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	valid := "0000000000003039b2ceb8da552e"

	// Payload byte 2 altered with the checksum recomputed.
	forgedBytes := []byte{0, 0, 0, 0, 0, 0, 0x30, 0x39, 0xB2, 0xCE, 0xB9, 0xDA, 0, 0}
	cs := licensekey.Checksum(forgedBytes[:12])
	forgedBytes[12], forgedBytes[13] = cs[0], cs[1]
	forged := licensekey.HexCodec{}.Encode(forgedBytes)

	tests := []struct {
		name string
		text string
		want licensekey.Status
	}{
		{"valid", valid, licensekey.Valid},
		{"bad checksum", "0000000000003039b2ceb8da552f", licensekey.Invalid},
		{"forged", forged, licensekey.Forged},
		{"too short for checks", "00000000000030396d19", licensekey.Invalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := h.svc.Check(ctx, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
		})
	}

	assert.Equal(t, int64(1), h.counter(t, "license_verifications", attribute.String("status", "valid")))
	assert.Equal(t, int64(2), h.counter(t, "license_verifications", attribute.String("status", "invalid")))
	assert.Equal(t, int64(1), h.counter(t, "license_verifications", attribute.String("status", "forged")))
	assert.Equal(t, uint64(4), h.histogramCount(t, "license_verification_duration_seconds"))
}

func TestCheckDecodeError(t *testing.T) {
	h := newHarness(t)

	for _, text := range []string{"", "not-a-key", "0000"} {
		status, err := h.svc.Check(context.Background(), text)
		require.Error(t, err, "input %q", text)
		assert.Equal(t, licensekey.Invalid, status)
	}

	_, err := h.svc.Check(context.Background(), "zz")
	assert.ErrorIs(t, err, licensekey.ErrMalformedKey)
	_, err = h.svc.Check(context.Background(), "0000")
	assert.ErrorIs(t, err, licensekey.ErrKeyTooShort)

	assert.Equal(t, int64(5), h.counter(t, "license_decode_failures"))
	assert.Equal(t, int64(0), h.counter(t, "license_verifications"))
}

func TestRevokeAndRestore(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	key := "0000000000003039b2ceb8da552e"

	require.NoError(t, h.svc.Revoke(ctx, 12345, 7))
	assert.Equal(t, []uint64{7, 12345}, h.svc.Blocked())
	assert.Equal(t, int64(2), h.counter(t, "license_revocations"))

	status, err := h.svc.Check(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, licensekey.Blocked, status)

	testutil.AssertLogged(t, h.logs, slog.LevelWarn, "license key rejected", map[string]any{
		"status": "blocked",
		"seed":   uint64(12345),
	})

	removed, err := h.svc.Restore(ctx, 12345)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = h.svc.Restore(ctx, 12345)
	require.NoError(t, err)
	assert.False(t, removed)

	status, err = h.svc.Check(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, licensekey.Valid, status)
}

func TestCheckThrottled(t *testing.T) {
	h := newHarness(t, WithRateLimit(0.001, 1))
	key := "0000000000003039b2ceb8da552e"

	status, err := h.svc.Check(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, licensekey.Valid, status)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = h.svc.Check(ctx, key)
	require.Error(t, err)
	assert.Equal(t, int64(1), h.counter(t, "license_throttled"))
}

func TestRateLimitDisabled(t *testing.T) {
	h := newHarness(t, WithRateLimit(0, 0))
	assert.Nil(t, h.svc.limiter)

	for i := 0; i < 100; i++ {
		_, err := h.svc.Check(context.Background(), "0000000000003039b2ceb8da552e")
		require.NoError(t, err)
	}
}

func TestMissingCapabilities(t *testing.T) {
	ctx := context.Background()

	verifyOnly, err := NewService(WithVerifier(licensekey.NewVerifier(keyhash.XOR, nil)))
	require.NoError(t, err)
	_, err = verifyOnly.Issue(ctx, 1, "")
	assert.ErrorIs(t, err, ErrNoGenerator)
	_, err = verifyOnly.IssueBatch(ctx, batch.Range(0, 1))
	assert.ErrorIs(t, err, ErrNoGenerator)

	issueOnly, err := NewService(WithGenerator(licensekey.NewGenerator(keyhash.XOR, testIVs)))
	require.NoError(t, err)
	_, err = issueOnly.Check(ctx, "0000000000003039b2ceb8da552e")
	assert.ErrorIs(t, err, ErrNoVerifier)
	assert.ErrorIs(t, issueOnly.Revoke(ctx, 1), ErrNoVerifier)
	_, err = issueOnly.Restore(ctx, 1)
	assert.ErrorIs(t, err, ErrNoVerifier)
	assert.Nil(t, issueOnly.Blocked())
}

func TestCheckSpanAttributes(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Check(context.Background(), "0000000000003039b2ceb8da552e")
	require.NoError(t, err)

	ended := h.spans.Ended()
	require.Len(t, ended, 1)
	span := ended[0]
	assert.Equal(t, "license.check", span.Name())

	attrs := attribute.NewSet(span.Attributes()...)
	status, ok := attrs.Value("license.status")
	require.True(t, ok)
	assert.Equal(t, "valid", status.AsString())
	prefix, ok := attrs.Value("license.key_prefix")
	require.True(t, ok)
	assert.Equal(t, "0000****552e", prefix.AsString())
}
