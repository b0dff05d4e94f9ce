package license

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"licensekey/internal/batch"
	"licensekey/internal/infrastructure"
	"licensekey/pkg/licensekey"
	"licensekey/pkg/seed"
)

// Issued is a generated key with the seed and identity it was made for.
type Issued = batch.Issued

// Service issues and checks license keys.
type Service struct {
	generator *licensekey.Generator
	verifier  *licensekey.Verifier
	codec     licensekey.Codec
	limiter   *rate.Limiter
	workers   int

	logger  *slog.Logger
	tracer  trace.Tracer
	meter   metric.Meter
	metrics *LicenseMetrics
}

// Option configures a Service.
type Option func(*Service)

// WithGenerator lets the service issue keys.
func WithGenerator(g *licensekey.Generator) Option {
	return func(s *Service) { s.generator = g }
}

// WithVerifier lets the service check keys.
func WithVerifier(v *licensekey.Verifier) Option {
	return func(s *Service) { s.verifier = v }
}

// WithCodec sets the text form used for issued keys and accepted by Check.
// The default is lowercase hex.
func WithCodec(c licensekey.Codec) Option {
	return func(s *Service) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithRateLimit throttles Check to rps verifications per second. A rate of
// zero or less disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Service) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithWorkers bounds the goroutines used by IssueBatch.
func WithWorkers(n int) Option {
	return func(s *Service) { s.workers = n }
}

// WithLogger sets the logger. The default is the infrastructure logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithTracer sets the tracer. The default is the global tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithMeter sets the meter for the service metrics. The default is the
// global meter provider.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.meter = m }
}

// NewService creates a service. At least one of WithGenerator and
// WithVerifier is required.
func NewService(opts ...Option) (*Service, error) {
	s := &Service{
		codec:   licensekey.HexCodec{},
		workers: 1,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.generator == nil && s.verifier == nil {
		return nil, ErrNotConfigured
	}
	if s.logger == nil {
		s.logger = infrastructure.GetLogger()
	}
	s.logger = infrastructure.WithComponent(s.logger, "license_service")
	if s.tracer == nil {
		s.tracer = otel.Tracer(TracerName)
	}
	if s.meter == nil {
		s.meter = otel.Meter(MeterName)
	}

	metrics, err := InitializeLicenseMetrics(s.meter)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize license metrics: %w", err)
	}
	s.metrics = metrics

	return s, nil
}

// Codec returns the codec used for key text.
func (s *Service) Codec() licensekey.Codec {
	return s.codec
}

// Issue generates the key for seed.
func (s *Service) Issue(ctx context.Context, seedValue uint64, identity string) (Issued, error) {
	if s.generator == nil {
		return Issued{}, ErrNoGenerator
	}

	ctx, span := s.tracer.Start(ctx, "license.issue",
		trace.WithAttributes(
			attribute.String("license.operation", "issue"),
			attribute.Int("license.payload_len", s.generator.Len()),
		),
	)
	defer span.End()

	key := s.generator.Generate(seedValue)
	issued := Issued{
		Seed:     seedValue,
		Identity: identity,
		Key:      key,
		Text:     key.Format(s.codec),
	}

	s.metrics.recordIssued(ctx, 1, codecName(s.codec))
	span.SetStatus(codes.Ok, "License key issued")

	s.logger.InfoContext(ctx, "license key issued",
		slog.Uint64("seed", seedValue),
		slog.String("identity", identity),
		slog.String("license_key", infrastructure.MaskKey(issued.Text)),
	)

	return issued, nil
}

// IssueIdentity derives a seed from identity and issues its key.
func (s *Service) IssueIdentity(ctx context.Context, identity string) (Issued, error) {
	if seed.Normalize(identity) == "" {
		return Issued{}, ErrEmptyIdentity
	}
	return s.Issue(ctx, seed.FromIdentity(identity), identity)
}

// IssueBatch generates keys for every request. Results keep request order.
func (s *Service) IssueBatch(ctx context.Context, reqs []batch.Request) ([]Issued, error) {
	if s.generator == nil {
		return nil, ErrNoGenerator
	}

	ctx, span := s.tracer.Start(ctx, "license.issue_batch",
		trace.WithAttributes(
			attribute.String("license.operation", "issue_batch"),
			attribute.Int("license.batch_size", len(reqs)),
			attribute.Int("license.workers", s.workers),
		),
	)
	defer span.End()

	start := time.Now()
	issued, err := batch.Generate(ctx, s.generator, s.codec, reqs, s.workers)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.ErrorContext(ctx, "batch issue failed",
			slog.Int("requested", len(reqs)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.metrics.recordIssued(ctx, len(issued), codecName(s.codec))
	span.SetStatus(codes.Ok, "License keys issued")

	s.logger.InfoContext(ctx, "license keys issued",
		slog.Int("count", len(issued)),
		slog.Int("workers", s.workers),
		slog.Duration("duration", time.Since(start)),
	)

	return issued, nil
}

// Check decodes text and verifies the key. An error means the text could
// not be checked at all (it is not a key, or the context ended while
// throttled); the returned status is then Invalid and carries no meaning.
func (s *Service) Check(ctx context.Context, text string) (licensekey.Status, error) {
	if s.verifier == nil {
		return licensekey.Invalid, ErrNoVerifier
	}

	masked := infrastructure.MaskKey(text)
	ctx, span := s.tracer.Start(ctx, "license.check",
		trace.WithAttributes(
			attribute.String("license.operation", "check"),
			attribute.String("license.key_prefix", masked),
		),
	)
	defer span.End()

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			s.metrics.Throttled.Add(ctx, 1)
			span.RecordError(err)
			span.SetStatus(codes.Error, "verification throttled")
			s.logger.WarnContext(ctx, "license check throttled",
				slog.String("license_key", masked),
				slog.String("error", err.Error()),
			)
			return licensekey.Invalid, fmt.Errorf("license check throttled: %w", err)
		}
	}

	start := time.Now()
	key, err := licensekey.Parse(text, s.codec)
	if err != nil {
		s.metrics.DecodeFailures.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "undecodable license key")
		s.logger.WarnContext(ctx, "license key could not be decoded",
			slog.String("license_key", masked),
			slog.String("error", err.Error()),
		)
		return licensekey.Invalid, fmt.Errorf("failed to decode license key: %w", err)
	}

	status := s.verifier.Verify(key)
	duration := time.Since(start)

	s.metrics.recordVerification(ctx, status, duration)
	span.SetAttributes(
		attribute.String("license.status", status.String()),
		attribute.Float64("license.duration_ms", float64(duration.Microseconds())/1000),
	)

	attrs := []slog.Attr{
		slog.String("license_key", masked),
		slog.String("status", status.String()),
		slog.Duration("duration", duration),
	}

	switch status {
	case licensekey.Valid:
		span.SetStatus(codes.Ok, "License key valid")
		s.logger.LogAttrs(ctx, slog.LevelInfo, "license key verified", attrs...)
	case licensekey.Invalid:
		span.SetStatus(codes.Error, "License key invalid")
		s.logger.LogAttrs(ctx, slog.LevelInfo, "license key rejected", attrs...)
	default:
		// Blocked and forged keys are worth an operator's attention.
		span.SetStatus(codes.Error, "License key "+status.String())
		s.logger.LogAttrs(ctx, slog.LevelWarn, "license key rejected",
			append(attrs, slog.Uint64("seed", key.Seed()))...)
	}

	return status, nil
}

// Revoke blocks seeds so their keys verify as Blocked from now on.
func (s *Service) Revoke(ctx context.Context, seeds ...uint64) error {
	if s.verifier == nil {
		return ErrNoVerifier
	}

	s.verifier.BlockAll(seeds...)
	s.metrics.Revocations.Add(ctx, int64(len(seeds)))

	for _, sd := range seeds {
		s.logger.InfoContext(ctx, "license seed revoked", slog.Uint64("seed", sd))
	}
	return nil
}

// Restore removes seed from the blocklist. It reports whether the seed was
// blocked.
func (s *Service) Restore(ctx context.Context, seedValue uint64) (bool, error) {
	if s.verifier == nil {
		return false, ErrNoVerifier
	}

	removed := s.verifier.Unblock(seedValue)
	if removed {
		s.logger.InfoContext(ctx, "license seed restored", slog.Uint64("seed", seedValue))
	}
	return removed, nil
}

// Blocked returns the revoked seeds in ascending order.
func (s *Service) Blocked() []uint64 {
	if s.verifier == nil {
		return nil
	}
	return s.verifier.Blocked()
}

func codecName(c licensekey.Codec) string {
	switch c.(type) {
	case licensekey.HexCodec:
		return "hex"
	case licensekey.GroupedCodec:
		return "grouped"
	default:
		return "custom"
	}
}
