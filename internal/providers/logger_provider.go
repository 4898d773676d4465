package providers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"seedvault/internal/structures"

	"github.com/rs/zerolog"
)

type TypeEnum string

const (
	TypeApp   TypeEnum = "app"
	TypeSeed  TypeEnum = "seed"
	TypePrefs TypeEnum = "prefs"
)

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

type ZeroLogger struct {
	log  zerolog.Logger
	file *os.File
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}

	var out io.Writer = os.Stderr
	var file *os.File
	if conf.Debug {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	} else if conf.Logger.Dir != "" {
		if err := os.MkdirAll(conf.Logger.Dir, 0755); err != nil {
			return nil, fmt.Errorf("unable to create log dir: %w", err)
		}
		f, err := os.OpenFile(
			filepath.Join(conf.Logger.Dir, "seedvault.log"),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND,
			os.FileMode(conf.Logger.Mode),
		)
		if err != nil {
			return nil, fmt.Errorf("unable to open log file: %w", err)
		}
		out = f
		file = f
	}

	l := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return &ZeroLogger{log: l, file: file}, nil
}

func (z *ZeroLogger) Errorf(t TypeEnum, format string, args ...interface{}) {
	z.log.Error().Str("type", string(t)).Msgf(format, args...)
}

func (z *ZeroLogger) Warnf(t TypeEnum, format string, args ...interface{}) {
	z.log.Warn().Str("type", string(t)).Msgf(format, args...)
}

func (z *ZeroLogger) Debugf(t TypeEnum, format string, args ...interface{}) {
	z.log.Debug().Str("type", string(t)).Msgf(format, args...)
}

func (z *ZeroLogger) Infof(t TypeEnum, format string, args ...interface{}) {
	z.log.Info().Str("type", string(t)).Msgf(format, args...)
}

func (z *ZeroLogger) Fatalf(t TypeEnum, format string, args ...interface{}) {
	z.log.Fatal().Str("type", string(t)).Msgf(format, args...)
}

func (z *ZeroLogger) Close() {
	if z.file != nil {
		_ = z.file.Close()
	}
}
