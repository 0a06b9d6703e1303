package diag

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a Sink backed by zerolog.
type Logger struct {
	log zerolog.Logger
}

// NewLogger wraps l as a Sink.
func NewLogger(l zerolog.Logger) *Logger { return &Logger{log: l} }

// Zerolog exposes the wrapped logger.
func (l *Logger) Zerolog() zerolog.Logger { return l.log }

func (l *Logger) Record(level Level, event string, fields Fields) {
	e := l.log.WithLevel(zerologLevel(level))
	if len(fields) > 0 {
		e = e.Fields(map[string]any(fields))
	}
	e.Msg(event)
}

func zerologLevel(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Options configure the process logger built by Setup.
type Options struct {
	Level      string // zerolog level name; empty means info
	Console    bool   // human-readable console output instead of JSON
	File       string // rotated log file; empty disables file output
	MaxSizeMB  int
	MaxBackups int
}

// Setup builds the zerolog logger used by the CLI: stderr output plus an
// optional rotating file. The returned closer releases the file.
func Setup(opts Options, stderr io.Writer) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if s := strings.TrimSpace(opts.Level); s != "" {
		lv, err := zerolog.ParseLevel(strings.ToLower(s))
		if err != nil {
			return zerolog.Nop(), nopCloser{}, err
		}
		level = lv
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	var out io.Writer = stderr
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}
		out = zerolog.MultiLevelWriter(out, lj)
		closer = lj
	}

	l := zerolog.New(out).Level(level).With().Timestamp().Caller().Logger()
	return l, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
