package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/datakit-go/datakit/logger"
)

// Runtime contains the configuration fields every pipeline host needs.
// Projects extend it by embedding it in their own config structs.
//
// Example:
//
//	type TrainerConfig struct {
//	    config.Runtime `yaml:",inline" mapstructure:",squash"`
//	    Shards []string `yaml:"shards" mapstructure:"shards"`
//	}
type Runtime struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
	Telemetry   Telemetry     `yaml:"telemetry" mapstructure:"telemetry"`
	Pipeline    Pipeline      `yaml:"pipeline" mapstructure:"pipeline"`
}

// Telemetry configures the OpenTelemetry exporters.
type Telemetry struct {
	// Enabled turns trace and metric export on.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Endpoint is the OTLP HTTP endpoint host:port.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure allows plain HTTP connections to the collector.
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// SampleRate is the trace sampling rate (0.0 to 1.0).
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// Pipeline carries host-level defaults for pipeline construction.
// Individual datasets may still override these per stage.
type Pipeline struct {
	// Parallelism is the default worker count for parallel transforms.
	// Zero means serial execution, negative means one worker per CPU.
	Parallelism int `yaml:"parallelism" mapstructure:"parallelism"`
	// PrefetchSize is the default lookahead depth for prefetching stages.
	PrefetchSize int `yaml:"prefetch_size" mapstructure:"prefetch_size"`
}

// GetRuntime returns the embedded Runtime.
// When embedded in a larger config struct, this method is promoted
// so the embedding struct automatically satisfies the bootstrap Config
// interface.
func (c *Runtime) GetRuntime() *Runtime {
	return c
}

// ApplyDefaults applies default values to the runtime configuration.
// Override this in embedding structs and call c.Runtime.ApplyDefaults() first.
func (c *Runtime) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
}

// Validate validates the runtime configuration fields.
// Override this in embedding structs and call c.Runtime.Validate() first.
func (c *Runtime) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	validEnvs := []string{"development", "staging", "production"}
	if !slices.Contains(validEnvs, c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", validEnvs, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("config.telemetry: %w", err)
	}
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("config.pipeline: %w", err)
	}
	return nil
}

// ApplyDefaults fills in collector defaults for enabled telemetry.
// A zero SampleRate means full sampling; disable tracing with Enabled=false.
func (t *Telemetry) ApplyDefaults() {
	if t.Endpoint == "" {
		t.Endpoint = "localhost:4318"
	}
	if t.SampleRate == 0 {
		t.SampleRate = 1.0
	}
	if t.Interval == 0 {
		t.Interval = 15 * time.Second
	}
}

// Validate validates the telemetry configuration.
func (t *Telemetry) Validate() error {
	if t.SampleRate < 0 || t.SampleRate > 1 {
		return fmt.Errorf("sample_rate must be between 0.0 and 1.0 (got: %g)", t.SampleRate)
	}
	if t.Enabled && t.Endpoint == "" {
		return fmt.Errorf("endpoint is required when telemetry is enabled")
	}
	return nil
}

// Validate validates the pipeline defaults.
func (p *Pipeline) Validate() error {
	if p.PrefetchSize < 0 {
		return fmt.Errorf("prefetch_size must not be negative (got: %d)", p.PrefetchSize)
	}
	return nil
}
