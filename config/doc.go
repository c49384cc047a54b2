// Package config provides configuration loading and validation for flowkit
// pipelines.
//
// It uses Viper to load configuration from files and environment variables,
// supporting YAML files and environment-specific overrides.
//
// # Usage
//
//	var cfg config.PipelineConfig
//	err := config.Load("orders", &cfg)
//
// Environment variables override file values using underscore-separated
// paths (e.g., LOGGING_LEVEL).
package config
