package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"licensekey/internal/config"
	"licensekey/internal/infrastructure"
	"licensekey/internal/keyring"
	"licensekey/internal/license"
	"licensekey/pkg/licensekey"
)

const AppName = "licensekey"

// Application holds the configuration and ambient services shared by every
// command.
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders // OpenTelemetry providers

	logFile *os.File
}

// NewApplication loads the configuration from configPath (or the discovered
// file when empty), builds the logger writing console output to logOut, and
// starts OpenTelemetry.
func NewApplication(ctx context.Context, configPath string, logOut io.Writer) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if logOut == nil {
		logOut = os.Stderr
	}
	logger, logFile, err := infrastructure.NewLogger(cfg.Logging, logOut)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(ctx, cfg.Telemetry, logger)
	if err != nil {
		if logFile != nil {
			logFile.Close()
		}
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	logger.DebugContext(ctx, "Application starting",
		slog.String("name", AppName),
		slog.String("version", infrastructure.ServiceVersion),
		slog.String("codec", cfg.Keyring.Codec))

	return &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		logFile:       logFile,
	}, nil
}

// Codec returns the configured key codec.
func (a *Application) Codec() licensekey.Codec {
	return a.Config.Codec()
}

// GeneratorPath returns path, or the configured generator keyring when path
// is empty.
func (a *Application) GeneratorPath(path string) string {
	if path != "" {
		return path
	}
	return a.Config.Keyring.GeneratorFile
}

// VerifierPath returns path, or the configured verifier keyring when path
// is empty.
func (a *Application) VerifierPath(path string) string {
	if path != "" {
		return path
	}
	return a.Config.Keyring.VerifierFile
}

// IssuerService loads the generator keyring and returns a service that can
// issue keys.
func (a *Application) IssuerService(generatorPath string) (*license.Service, error) {
	gf, err := keyring.LoadGenerator(a.GeneratorPath(generatorPath))
	if err != nil {
		return nil, err
	}
	gen, err := gf.Build()
	if err != nil {
		return nil, err
	}

	return license.NewService(append(a.serviceOptions(), license.WithGenerator(gen))...)
}

// VerifierService loads the verifier keyring and returns a service that can
// check keys.
func (a *Application) VerifierService(verifierPath string) (*license.Service, error) {
	vf, err := keyring.LoadVerifier(a.VerifierPath(verifierPath))
	if err != nil {
		return nil, err
	}
	v, err := vf.Build()
	if err != nil {
		return nil, err
	}

	return license.NewService(append(a.serviceOptions(), license.WithVerifier(v))...)
}

func (a *Application) serviceOptions() []license.Option {
	return []license.Option{
		license.WithCodec(a.Codec()),
		license.WithWorkers(a.Config.Batch.Workers),
		license.WithRateLimit(a.Config.Verify.RateLimit, a.Config.Verify.Burst),
		license.WithLogger(a.Logger),
		license.WithTracer(a.OTelProviders.Tracer),
		license.WithMeter(a.OTelProviders.Meter),
	}
}

// Stop records a runtime snapshot, writes the metrics textfile, flushes telemetry and closes the log
// file.
func (a *Application) Stop(ctx context.Context) error {
	var errs []error

	if sm, err := infrastructure.NewSystemMetrics(a.OTelProviders.Meter); err != nil {
		errs = append(errs, err)
	} else {
		sm.Record(ctx)
	}
	if err := a.OTelProviders.WriteMetrics(a.Config.Telemetry.MetricsTextfile); err != nil {
		errs = append(errs, err)
	}
	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("error shutting down OpenTelemetry: %w", err))
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close log file: %w", err))
		}
		a.logFile = nil
	}

	return errors.Join(errs...)
}
