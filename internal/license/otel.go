package license

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"licensekey/pkg/licensekey"
)

const (
	TracerName = "license-service"
	MeterName  = "license-service"
)

// LicenseMetrics holds the license service metrics.
type LicenseMetrics struct {
	KeysIssued           metric.Int64Counter
	Verifications        metric.Int64Counter
	DecodeFailures       metric.Int64Counter
	VerificationDuration metric.Float64Histogram
	Revocations          metric.Int64Counter
	Throttled            metric.Int64Counter
}

// InitializeLicenseMetrics creates all license service metrics.
func InitializeLicenseMetrics(meter metric.Meter) (*LicenseMetrics, error) {
	metrics := &LicenseMetrics{}

	var err error

	metrics.KeysIssued, err = meter.Int64Counter(
		"license_keys_issued",
		metric.WithDescription("Total number of license keys generated"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create keys issued counter: %w", err)
	}

	metrics.Verifications, err = meter.Int64Counter(
		"license_verifications",
		metric.WithDescription("Total number of license key verifications by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create verifications counter: %w", err)
	}

	metrics.DecodeFailures, err = meter.Int64Counter(
		"license_decode_failures",
		metric.WithDescription("Total number of inputs that could not be decoded as a key"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create decode failures counter: %w", err)
	}

	metrics.VerificationDuration, err = meter.Float64Histogram(
		"license_verification_duration_seconds",
		metric.WithDescription("License key decode and verification duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create verification duration histogram: %w", err)
	}

	metrics.Revocations, err = meter.Int64Counter(
		"license_revocations",
		metric.WithDescription("Total number of seeds added to the blocklist"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create revocations counter: %w", err)
	}

	metrics.Throttled, err = meter.Int64Counter(
		"license_throttled",
		metric.WithDescription("Total number of verifications abandoned while waiting for the rate limiter"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create throttled counter: %w", err)
	}

	return metrics, nil
}

func (m *LicenseMetrics) recordIssued(ctx context.Context, n int, codec string) {
	m.KeysIssued.Add(ctx, int64(n), metric.WithAttributes(attribute.String("codec", codec)))
}

func (m *LicenseMetrics) recordVerification(ctx context.Context, status licensekey.Status, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("status", status.String()))
	m.Verifications.Add(ctx, 1, attrs)
	m.VerificationDuration.Record(ctx, duration.Seconds(), attrs)
}
