// Package logging builds the zap logger shared by the canvas engine.
package logging

import (
	"errors"
	"fmt"
	"syscall"

	"ideamap-canvas/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New sets up structured logging with zap
func New(cfg config.Logging, env config.Environment) (*zap.Logger, error) {
	var zapConfig zap.Config

	if env == config.Production {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	zapConfig.Encoding = cfg.Format
	if zapConfig.Encoding == "" {
		zapConfig.Encoding = "json"
	}
	zapConfig.EncoderConfig.TimeKey = "ts"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger.With(zap.String("environment", string(env))), nil
}

// ParseLevel maps a config level name onto a zap level
func ParseLevel(level string) (zapcore.Level, error) {
	switch level {
	case "debug":
		return zap.DebugLevel, nil
	case "info", "":
		return zap.InfoLevel, nil
	case "warn":
		return zap.WarnLevel, nil
	case "error":
		return zap.ErrorLevel, nil
	default:
		return zap.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// Sync flushes the logger, ignoring the EINVAL/ENOTTY that stdout and
// stderr return on Linux.
func Sync(logger *zap.Logger) error {
	err := logger.Sync()
	if err == nil {
		return nil
	}
	var errno syscall.Errno
	if errors.As(err, &errno) && (errno == syscall.EINVAL || errno == syscall.ENOTTY) {
		return nil
	}
	return err
}
