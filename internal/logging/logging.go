// Package logging builds the process logger from the service configuration.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hktikhin/personal-budget/internal/config"
)

const serviceName = "personal-budget"

// New builds the zap logger for cfg.
// Development and local runs log colored console lines at debug level.
// Every other environment logs JSON at info level. LOG_LEVEL overrides the level.
func New(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	level := zapcore.InfoLevel

	if cfg.IsDevelopment() {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		level = zapcore.DebugLevel
	} else {
		zc.EncoderConfig.TimeKey = "timestamp"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if raw := strings.TrimSpace(cfg.LogLevel); raw != "" {
		parsed, err := zapcore.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", raw, err)
		}
		level = parsed
	}

	zc.Level = zap.NewAtomicLevelAt(level)
	zc.DisableStacktrace = true
	zc.InitialFields = map[string]any{
		"service":     serviceName,
		"environment": cfg.Environment,
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
