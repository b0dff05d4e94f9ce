package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"licensekey/pkg/licensekey"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "LICENSEKEY"

// ConfigFileEnv names the variable holding the configuration file path.
const ConfigFileEnv = EnvPrefix + "_CONFIG"

// Config represents the complete tool configuration.
//
// Fields carry no envconfig default tags: defaults come from Default so that
// values read from the YAML file are not overwritten by tag defaults.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Keyring   KeyringConfig   `yaml:"keyring" envconfig:"KEYRING"`
	Batch     BatchConfig     `yaml:"batch" envconfig:"BATCH"`
	Verify    VerifyConfig    `yaml:"verify" envconfig:"VERIFY"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// KeyringConfig points at the generator and verifier keyring files.
type KeyringConfig struct {
	GeneratorFile string `yaml:"generator_file" envconfig:"GENERATOR_FILE"`
	VerifierFile  string `yaml:"verifier_file" envconfig:"VERIFIER_FILE"`
	Codec         string `yaml:"codec" envconfig:"CODEC"`
}

// BatchConfig controls bulk key generation.
type BatchConfig struct {
	Workers int `yaml:"workers" envconfig:"WORKERS"`
}

// VerifyConfig controls verification throttling. A RateLimit of zero
// disables throttling.
type VerifyConfig struct {
	RateLimit float64 `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	Burst     int     `yaml:"burst" envconfig:"BURST"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName     string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment     string `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter   string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricsEnabled  bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	MetricsTextfile string `yaml:"metrics_textfile" envconfig:"METRICS_TEXTFILE"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/licensekey.log",
		},
		Keyring: KeyringConfig{
			GeneratorFile: "generator.yaml",
			VerifierFile:  "verifier.yaml",
			Codec:         "hex",
		},
		Batch: BatchConfig{
			Workers: 4,
		},
		Verify: VerifyConfig{
			RateLimit: 0,
			Burst:     1,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "licensekey",
			Environment:    "development",
			TraceExporter:  "none",
			MetricsEnabled: true,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (or the
// discovered one when path is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file at filePath onto cfg. Keys missing from
// the file keep their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	return yaml.UnmarshalStrict(data, cfg)
}

// findConfigFile returns the configuration file to use, or "" when none exists
func findConfigFile() string {
	if p := os.Getenv(ConfigFileEnv); p != "" {
		return p
	}

	for _, location := range []string{"licensekey.yaml", "configs/licensekey.yaml"} {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Codec returns the key codec selected by the configuration.
func (c *Config) Codec() licensekey.Codec {
	codec, err := licensekey.CodecByName(c.Keyring.Codec)
	if err != nil {
		return licensekey.HexCodec{}
	}
	return codec
}

// validate validates the configuration
func (c *Config) validate() error {
	var errs []error

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level: %q", c.Logging.Level))
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("invalid log format: %q", c.Logging.Format))
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		errs = append(errs, fmt.Errorf("invalid log output: %q", c.Logging.Output))
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		errs = append(errs, errors.New("log file path must be set when logging to a file"))
	}

	if _, err := licensekey.CodecByName(c.Keyring.Codec); err != nil {
		errs = append(errs, err)
	}

	if c.Batch.Workers < 1 {
		errs = append(errs, fmt.Errorf("batch workers must be at least 1, got %d", c.Batch.Workers))
	}

	if c.Verify.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("verify rate limit cannot be negative, got %v", c.Verify.RateLimit))
	}
	if c.Verify.RateLimit > 0 && c.Verify.Burst < 1 {
		errs = append(errs, fmt.Errorf("verify burst must be at least 1 when rate limiting, got %d", c.Verify.Burst))
	}

	switch c.Telemetry.TraceExporter {
	case "stdout", "none":
	default:
		errs = append(errs, fmt.Errorf("unsupported trace exporter: %q", c.Telemetry.TraceExporter))
	}

	return errors.Join(errs...)
}
