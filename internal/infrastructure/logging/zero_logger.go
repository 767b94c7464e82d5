package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

type zeroLogger struct {
	logger *zerolog.Logger
}

func newZeroLogger(cfg *LoggerConfig) (*zeroLogger, error) {
	lvl, err := lookupLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var out io.Writer = stdout()
	if cfg.Encoding != EncodingJSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	if w := fileWriter(cfg); w != nil {
		out = zerolog.MultiLevelWriter(out, w)
	}

	logger := zerolog.New(out).
		Level(lvl.zero).
		With().
		Timestamp().
		Logger()

	return &zeroLogger{logger: &logger}, nil
}

func (l *zeroLogger) Debug(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any) {
	l.logger.Debug().Fields(logParamsToZeroParams(cat, sub, extra)).Msg(msg)
}

func (l *zeroLogger) Debugf(template string, args ...any) {
	l.logger.Debug().Msgf(template, args...)
}

func (l *zeroLogger) Info(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any) {
	l.logger.Info().Fields(logParamsToZeroParams(cat, sub, extra)).Msg(msg)
}

func (l *zeroLogger) Infof(template string, args ...any) {
	l.logger.Info().Msgf(template, args...)
}

func (l *zeroLogger) Warn(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any) {
	l.logger.Warn().Fields(logParamsToZeroParams(cat, sub, extra)).Msg(msg)
}

func (l *zeroLogger) Warnf(template string, args ...any) {
	l.logger.Warn().Msgf(template, args...)
}

func (l *zeroLogger) Error(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any) {
	l.logger.Error().Fields(logParamsToZeroParams(cat, sub, extra)).Msg(msg)
}

func (l *zeroLogger) Errorf(template string, args ...any) {
	l.logger.Error().Msgf(template, args...)
}

func (l *zeroLogger) Fatal(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any) {
	l.logger.Fatal().Fields(logParamsToZeroParams(cat, sub, extra)).Msg(msg)
}

func (l *zeroLogger) Fatalf(template string, args ...any) {
	l.logger.Fatal().Msgf(template, args...)
}

func (l *zeroLogger) Sync() error {
	return nil
}
