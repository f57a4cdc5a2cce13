package config

import (
	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a logr.Logger backed by zap. Levels are zap names
// ("debug", "info", "warn", "error") or a logr verbosity such as "2", which
// enables V(2) lines.
func NewLogger(c LoggingConfig) (logr.Logger, *zap.Logger, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return logr.Discard(), nil, err
	}

	zc := zap.NewDevelopmentConfig()
	if c.Format == "json" {
		zc = zap.NewProductionConfig()
		zc.Sampling = nil
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	zc.DisableStacktrace = true

	zl, err := zc.Build()
	if err != nil {
		return logr.Discard(), nil, errors.Wrap(err, "failed to build logger")
	}
	return zapr.NewLogger(zl).WithName("vizgroup"), zl, nil
}

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	// logr V(n) maps to zap level -n
	if len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
		return zapcore.Level(-int8(s[0] - '0')), nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, &ConfigError{Field: "logging.level", Message: "unknown level " + s}
	}
	return l, nil
}
