// Package logger builds the zap logger used by every command and the field
// helpers shared across packages.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a console or JSON logger. Log lines go to stderr so tables
// printed on stdout can be piped cleanly.
func New(json bool, debug bool) (*zap.Logger, error) {
	return build(config(json, debug))
}

func config(json bool, debug bool) zap.Config {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encoding := "console"
	encodeLevel := zapcore.CapitalColorLevelEncoder
	if json {
		encoding = "json"
		encodeLevel = zapcore.LowercaseLevelEncoder
	}

	return zap.Config{
		Encoding:          encoding,
		Level:             zap.NewAtomicLevelAt(level),
		DisableStacktrace: !debug,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "step",

			LevelKey:    "level",
			EncodeLevel: encodeLevel,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,

			NameKey:        "logger",
			StacktraceKey:  "stacktrace",
			EncodeDuration: zapcore.StringDurationEncoder,
		},
	}
}

func build(cfg zap.Config) (*zap.Logger, error) {
	return cfg.Build()
}
