// Package logging provides the server's structured logger: zap configured
// from LOG_FORMAT/LOG_LEVEL, with a per-logger name so messages can be
// traced back to the component that emitted them.
package logging

import (
	"context"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	baseConfig = NewConfig()
	baseLogger = zap.Must(baseConfig.Build())
)

type contextKey int

const contextFieldsKey contextKey = iota

// NewConfig builds a zap.Config from LOG_FORMAT ("development" selects the
// console encoder, anything else the production JSON one) and LOG_LEVEL.
func NewConfig() zap.Config {
	var config zap.Config

	if os.Getenv("LOG_FORMAT") == "development" {
		config = newDevelopmentConfig()
	} else {
		config = newProductionConfig()
	}

	level, ok := os.LookupEnv("LOG_LEVEL")
	if ok {
		if strings.ToLower(level) == "warning" {
			level = "warn"
		}
		if lvl, err := zap.ParseAtomicLevel(level); err == nil {
			config.Level = lvl
		}
	}

	return config
}

func newDevelopmentConfig() zap.Config {
	return zap.Config{
		Level:             zap.NewAtomicLevelAt(zap.DebugLevel),
		Development:       true,
		DisableStacktrace: true,
		Encoding:          "console",
		EncoderConfig:     newDevelopmentEncoderConfig(),
		OutputPaths:       []string{"stderr"},
	}
}

func newProductionConfig() zap.Config {
	return zap.Config{
		Level:       zap.NewAtomicLevelAt(zap.InfoLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:      "json",
		EncoderConfig: newProductionEncoderConfig(),
		OutputPaths:   []string{"stdout"},
	}
}

func newDevelopmentEncoderConfig() zapcore.EncoderConfig {
	encoderConfig := newProductionEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.NameKey = ""
	return encoderConfig
}

func newProductionEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "severity",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// New returns a named logger, tagged so log lines can be traced back to
// the component that emitted them.
func New(name string) *zap.Logger {
	return baseLogger.Named(name)
}

// GetFields returns the zap fields previously attached to ctx via
// AddFields, or an empty slice if none were.
func GetFields(ctx context.Context) []zap.Field {
	f := ctx.Value(contextFieldsKey)
	if f == nil {
		return []zap.Field{}
	}
	return f.([]zap.Field)
}

// AddFields returns a context carrying fields in addition to any already
// attached, so a connection's id and client id can ride along its
// context and get included on every log line written for it.
func AddFields(ctx context.Context, fields ...zap.Field) context.Context {
	f := GetFields(ctx)
	f = append(f, fields...)
	return context.WithValue(ctx, contextFieldsKey, f)
}

// LevelHandler exposes the running log level as an HTTP endpoint (GET
// returns it, PUT changes it), for ops to adjust verbosity without a
// config file edit.
func LevelHandler(w http.ResponseWriter, r *http.Request) {
	baseConfig.Level.ServeHTTP(w, r)
}

// SetLevel changes the running level of every logger returned by New. Used
// by the config package's fsnotify-driven hot reload.
func SetLevel(level string) error {
	if strings.ToLower(level) == "warning" {
		level = "warn"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	baseConfig.Level.SetLevel(lvl)
	return nil
}
