package config

import (
	"github.com/flowforge/flowkit/logger"
	"github.com/flowforge/flowkit/stage"
)

// BuildStage constructs a stage from its configuration, wiring the given
// resolver and executor. The configuration must already be validated.
func BuildStage(cfg StageConfig, log *logger.Logger, r stage.Resolver, x stage.Executor) *stage.Stage {
	opts := []stage.Option{stage.WithLogger(log)}
	if cfg.CompletionTimeout > 0 {
		opts = append(opts, stage.WithCompletionTimeout(cfg.CompletionTimeout))
	}
	if cfg.HandoffEnabled {
		opts = append(opts, stage.WithHandoff(cfg.HandoffBuffer))
	}
	if cfg.Diagnostics {
		opts = append(opts, stage.WithDiagnostics())
	}
	if cfg.Tracing {
		opts = append(opts, stage.WithTracing())
	}
	return stage.New(cfg.Name, r, x, opts...)
}
