package providers

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"overlap/internal/structures"
)

type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeRoster
	TypeAggregate
	TypeStore
)

func (t TypeEnum) String() string {
	switch t {
	case TypeRoster:
		return "roster"
	case TypeAggregate:
		return "aggregate"
	case TypeStore:
		return "store"
	default:
		return "app"
	}
}

// Logger is the engine-wide logging interface. The type tag routes entries
// to a per-subsystem field so one run's roster noise can be filtered from
// its aggregation output.
type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

type ZeroLogger struct {
	logger zerolog.Logger
	file   *os.File
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(conf.Logger.Dir, 0755); err != nil {
		return nil, err
	}

	path := filepath.Join(conf.Logger.Dir, "overlap.log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, os.FileMode(conf.Logger.Mode))
	if err != nil {
		return nil, err
	}

	var out io.Writer = file
	if conf.Debug {
		out = zerolog.MultiLevelWriter(file, zerolog.ConsoleWriter{Out: os.Stderr})
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()

	return &ZeroLogger{logger: logger, file: file}, nil
}

func (z *ZeroLogger) Errorf(t TypeEnum, format string, args ...interface{}) {
	z.logger.Error().Str("type", t.String()).Msgf(format, args...)
}

func (z *ZeroLogger) Warnf(t TypeEnum, format string, args ...interface{}) {
	z.logger.Warn().Str("type", t.String()).Msgf(format, args...)
}

func (z *ZeroLogger) Infof(t TypeEnum, format string, args ...interface{}) {
	z.logger.Info().Str("type", t.String()).Msgf(format, args...)
}

func (z *ZeroLogger) Debugf(t TypeEnum, format string, args ...interface{}) {
	z.logger.Debug().Str("type", t.String()).Msgf(format, args...)
}

func (z *ZeroLogger) Fatalf(t TypeEnum, format string, args ...interface{}) {
	z.logger.Fatal().Str("type", t.String()).Msgf(format, args...)
}

func (z *ZeroLogger) Close() {
	if z.file != nil {
		z.file.Close()
	}
}
