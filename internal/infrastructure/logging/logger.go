package logging

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	BackendZap     = "zap"
	BackendZerolog = "zerolog"

	EncodingJSON    = "json"
	EncodingConsole = "console"
)

var ErrUnsupportedBackend = errors.New("logger not supported")

type Logger interface {
	Debug(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any)
	Debugf(template string, args ...any)

	Info(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any)
	Infof(template string, args ...any)

	Warn(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any)
	Warnf(template string, args ...any)

	Error(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any)
	Errorf(template string, args ...any)

	Fatal(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any)
	Fatalf(template string, args ...any)

	// Sync flushes any buffered entries.
	Sync() error
}

type LoggerConfig struct {
	// FilePath, when set, mirrors every entry into a size-rotated file.
	FilePath string
	Encoding string
	Level    string
	Logger   string
}

type level struct {
	zap  zapcore.Level
	zero zerolog.Level
}

// Severity names accepted in LOG_LEVEL. "trace" has no zap counterpart and
// maps to debug there; "silent" disables output entirely.
var levels = map[string]level{
	"trace":  {zap: zapcore.DebugLevel, zero: zerolog.TraceLevel},
	"debug":  {zap: zapcore.DebugLevel, zero: zerolog.DebugLevel},
	"info":   {zap: zapcore.InfoLevel, zero: zerolog.InfoLevel},
	"warn":   {zap: zapcore.WarnLevel, zero: zerolog.WarnLevel},
	"error":  {zap: zapcore.ErrorLevel, zero: zerolog.ErrorLevel},
	"fatal":  {zap: zapcore.FatalLevel, zero: zerolog.FatalLevel},
	"silent": {zap: zapcore.InvalidLevel, zero: zerolog.Disabled},
}

// IsValidLevel reports whether name is a supported severity.
func IsValidLevel(name string) bool {
	_, ok := levels[name]
	return ok
}

func lookupLevel(name string) (level, error) {
	lvl, ok := levels[name]
	if !ok {
		return level{}, fmt.Errorf("unknown log level %q", name)
	}
	return lvl, nil
}

func NewLogger(cfg *LoggerConfig) (Logger, error) {
	switch cfg.Logger {
	case BackendZap, "":
		return newZapLogger(cfg)
	case BackendZerolog:
		return newZeroLogger(cfg)
	}

	return nil, fmt.Errorf("%w: %q (supported loggers: [zap, zerolog])", ErrUnsupportedBackend, cfg.Logger)
}

func fileWriter(cfg *LoggerConfig) io.Writer {
	if cfg.FilePath == "" {
		return nil
	}

	return &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
}

func stdout() io.Writer {
	return os.Stdout
}
