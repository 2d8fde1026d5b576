// Package logger sets up the process logger: zap with a colored console core
// and an optional JSON file core rotated by lumberjack.
package logger

import (
	"os"

	"voxelmesh/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the process logger. It discards everything until Init runs.
var Log = zap.NewNop()

// Options selects the outputs of a logger.
type Options struct {
	Level string
	// Console receives human-readable output; nil disables it.
	Console zapcore.WriteSyncer
	// File is the rotating log file; nil disables it.
	File *lumberjack.Logger
}

// OptionsFromConfig maps the logging section onto logger options writing to
// stdout.
func OptionsFromConfig(cfg config.LoggingConfig) Options {
	opts := Options{
		Level:   cfg.Level,
		Console: zapcore.Lock(os.Stdout),
	}
	if cfg.LogFile != "" {
		opts.File = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}
	}
	return opts
}

// Init replaces Log with a logger built from the logging config.
func Init(cfg config.LoggingConfig) {
	Log = New(OptionsFromConfig(cfg))
}

// New builds a logger without touching Log.
func New(opts Options) *zap.Logger {
	lvl := parseLevel(opts.Level)

	var cores []zapcore.Core
	if opts.Console != nil {
		enc := encoderConfig()
		enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc.ConsoleSeparator = " "
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(enc), opts.Console, lvl))
	}
	if opts.File != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(opts.File), lvl))
	}

	if len(cores) == 0 {
		return zap.NewNop()
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:      "time",
		LevelKey:     "level",
		NameKey:      "logger",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.CapitalLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
		EncodeName:   zapcore.FullNameEncoder,
	}
}

// parseLevel falls back to info for unknown names; config validation
// rejects those before they get here.
func parseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// Sync flushes buffered entries.
func Sync() {
	_ = Log.Sync()
}
