package config

import (
	"time"

	"github.com/flowforge/flowkit/errors"
	"github.com/flowforge/flowkit/logger"
)

// PipelineConfig is the top-level configuration of one flowkit pipeline.
// Projects extend it by embedding it in their own config structs.
//
// Example:
//
//	type MyConfig struct {
//	    config.PipelineConfig `yaml:",inline" mapstructure:",squash"`
//	    Broker broker.Config  `yaml:"broker" mapstructure:"broker"`
//	}
type PipelineConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
	Stages      []StageConfig `yaml:"stages" mapstructure:"stages"`
}

// StageConfig configures one processing stage of the pipeline.
type StageConfig struct {
	Name string `yaml:"name" mapstructure:"name"`

	// CompletionTimeout bounds how long an upstream error is held back
	// waiting for in-flight events. Zero selects the default.
	CompletionTimeout time.Duration `yaml:"completion_timeout" mapstructure:"completion_timeout"`

	// HandoffEnabled moves event processing onto a dedicated worker per
	// subscription; HandoffBuffer sizes its queue.
	HandoffEnabled bool `yaml:"handoff_enabled" mapstructure:"handoff_enabled"`
	HandoffBuffer  int  `yaml:"handoff_buffer" mapstructure:"handoff_buffer"`

	Diagnostics bool `yaml:"diagnostics" mapstructure:"diagnostics"`
	Tracing     bool `yaml:"tracing" mapstructure:"tracing"`
}

// ApplyDefaults applies default values to the pipeline configuration.
// Override this in embedding structs and call it first.
func (c *PipelineConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	c.Logging.ApplyDefaults()
	if c.Environment == "development" {
		c.Logging.Level = "debug"
	}
	for i := range c.Stages {
		c.Stages[i].ApplyDefaults()
	}
}

// Validate validates the pipeline configuration fields.
// Override this in embedding structs and call it first.
func (c *PipelineConfig) Validate() error {
	if c.Name == "" {
		return errors.InvalidConfig("name", "is required")
	}
	switch c.Environment {
	case "development", "staging", "production":
	default:
		return errors.InvalidConfig("environment",
			"must be one of [development, staging, production], got: "+c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidConfig, "logging")
	}
	seen := make(map[string]bool, len(c.Stages))
	for i := range c.Stages {
		if err := c.Stages[i].Validate(); err != nil {
			return err
		}
		if seen[c.Stages[i].Name] {
			return errors.InvalidConfig("stages", "duplicate stage name: "+c.Stages[i].Name)
		}
		seen[c.Stages[i].Name] = true
	}
	return nil
}

// Stage returns the configuration of the named stage, or false when the
// pipeline does not define it.
func (c *PipelineConfig) Stage(name string) (StageConfig, bool) {
	for _, sc := range c.Stages {
		if sc.Name == name {
			return sc, true
		}
	}
	return StageConfig{}, false
}

// ApplyDefaults applies default values to the stage configuration.
func (c *StageConfig) ApplyDefaults() {
	if c.HandoffEnabled && c.HandoffBuffer < 0 {
		c.HandoffBuffer = 0
	}
}

// Validate validates the stage configuration fields.
func (c *StageConfig) Validate() error {
	if c.Name == "" {
		return errors.InvalidConfig("stages.name", "is required")
	}
	if c.CompletionTimeout < 0 {
		return errors.InvalidConfig("stages.completion_timeout", "must not be negative")
	}
	if c.HandoffBuffer < 0 {
		return errors.InvalidConfig("stages.handoff_buffer", "must not be negative")
	}
	return nil
}
