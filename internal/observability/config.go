package observability

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the complete observability configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns the default observability configuration
func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:        true,
			PrometheusPort: 9090,
		},
		Tracing: TracingConfig{
			Enabled:        false,
			Exporter:       "otlp",
			OTLPEndpoint:   "localhost:4318",
			SampleRate:     1.0,
			ServiceName:    "userdata",
			ServiceVersion: "1.0.0",
		},
	}
}

// LoadConfig reads the observability block of a YAML config file. An empty
// path or a missing file yields the defaults.
func LoadConfig(configPath string) (Config, error) {
	config := DefaultConfig()
	if configPath == "" {
		return config, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return config, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileConfig struct {
		Observability struct {
			Logging LoggingConfig `yaml:"logging"`
			Metrics struct {
				Enabled        *bool `yaml:"enabled"`
				PrometheusPort int   `yaml:"prometheus_port"`
			} `yaml:"metrics"`
			Tracing TracingConfig `yaml:"tracing"`
		} `yaml:"observability"`
	}

	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return config, fmt.Errorf("failed to parse config file: %w", err)
	}
	parsed := fileConfig.Observability

	if parsed.Logging.Level != "" {
		config.Logging.Level = parsed.Logging.Level
	}
	if parsed.Logging.Format != "" {
		config.Logging.Format = parsed.Logging.Format
	}

	if parsed.Metrics.Enabled != nil {
		config.Metrics.Enabled = *parsed.Metrics.Enabled
	}
	if parsed.Metrics.PrometheusPort > 0 {
		config.Metrics.PrometheusPort = parsed.Metrics.PrometheusPort
	}

	// Tracing stays opt-in: the flag is taken from the file as-is.
	config.Tracing.Enabled = parsed.Tracing.Enabled
	if parsed.Tracing.Exporter != "" {
		config.Tracing.Exporter = parsed.Tracing.Exporter
	}
	if parsed.Tracing.OTLPEndpoint != "" {
		config.Tracing.OTLPEndpoint = parsed.Tracing.OTLPEndpoint
	}
	if parsed.Tracing.ZipkinEndpoint != "" {
		config.Tracing.ZipkinEndpoint = parsed.Tracing.ZipkinEndpoint
	}
	// A sample rate of 0 cannot be expressed here; disable tracing instead.
	if parsed.Tracing.SampleRate > 0 && parsed.Tracing.SampleRate <= 1.0 {
		config.Tracing.SampleRate = parsed.Tracing.SampleRate
	}
	if parsed.Tracing.ServiceName != "" {
		config.Tracing.ServiceName = parsed.Tracing.ServiceName
	}
	if parsed.Tracing.ServiceVersion != "" {
		config.Tracing.ServiceVersion = parsed.Tracing.ServiceVersion
	}

	return config, nil
}

// SaveConfig writes config under the observability key of configPath.
func SaveConfig(config Config, configPath string) error {
	if configPath == "" {
		return fmt.Errorf("config path is required")
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data := struct {
		Observability Config `yaml:"observability"`
	}{
		Observability: config,
	}

	yamlData, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, yamlData, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
