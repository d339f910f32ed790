package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with two independent sinks: operational messages
// (debug/info) go to the info sink, warnings and errors go to the error
// sink. Disabling logging silences both without touching the pipeline's
// behavior.
type Logger struct {
	zl zerolog.Logger
}

// Config controls logger construction.
type Config struct {
	Enabled     bool
	Level       string // debug, info, warn, error
	Format      string // json or console
	InfoOutput  string // stdout, stderr, or file path
	ErrorOutput string // stdout, stderr, or file path
	TimeFormat  string
}

// levelSplitWriter routes events by level: warn and above to the error
// sink, everything else to the info sink.
type levelSplitWriter struct {
	info io.Writer
	err  io.Writer
}

func (w levelSplitWriter) Write(p []byte) (int, error) {
	return w.info.Write(p)
}

func (w levelSplitWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= zerolog.WarnLevel {
		return w.err.Write(p)
	}
	return w.info.Write(p)
}

// New creates a logger instance.
func New(cfg *Config) (*Logger, error) {
	if !cfg.Enabled {
		zl := zerolog.New(io.Discard).Level(zerolog.Disabled)
		return &Logger{zl: zl}, nil
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339Nano
	}
	zerolog.TimeFieldFormat = cfg.TimeFormat

	infoW, err := openSink(cfg.InfoOutput)
	if err != nil {
		return nil, err
	}
	errW, err := openSink(cfg.ErrorOutput)
	if err != nil {
		return nil, err
	}

	if cfg.Format == "console" {
		infoW = zerolog.ConsoleWriter{Out: infoW, TimeFormat: cfg.TimeFormat}
		errW = zerolog.ConsoleWriter{Out: errW, TimeFormat: cfg.TimeFormat}
	}

	zl := zerolog.New(levelSplitWriter{info: infoW, err: errW}).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{zl: zl}, nil
}

func openSink(output string) (io.Writer, error) {
	switch output {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		file, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("could not open log file: %w", err)
		}
		return file, nil
	}
}

// Nop returns a logger that discards everything, for tests and disabled
// configurations.
func Nop() *Logger {
	return &Logger{zl: zerolog.New(io.Discard).Level(zerolog.Disabled)}
}

// --- Logger methods ---

func (l *Logger) Debug(msg string, fields ...Field) {
	event := l.zl.Debug()
	for _, field := range fields {
		field.AddTo(event)
	}
	event.Msg(msg)
}

func (l *Logger) Info(msg string, fields ...Field) {
	event := l.zl.Info()
	for _, field := range fields {
		field.AddTo(event)
	}
	event.Msg(msg)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	event := l.zl.Warn()
	for _, field := range fields {
		field.AddTo(event)
	}
	event.Msg(msg)
}

func (l *Logger) Error(msg string, fields ...Field) {
	event := l.zl.Error()
	for _, field := range fields {
		field.AddTo(event)
	}
	event.Msg(msg)
}

// Field types for structured logging.
type Field interface {
	AddTo(event *zerolog.Event)
}

type stringField struct {
	key   string
	value string
}

func (f stringField) AddTo(event *zerolog.Event) {
	event.Str(f.key, f.value)
}

type intField struct {
	key   string
	value int
}

func (f intField) AddTo(event *zerolog.Event) {
	event.Int(f.key, f.value)
}

type float64Field struct {
	key   string
	value float64
}

func (f float64Field) AddTo(event *zerolog.Event) {
	event.Float64(f.key, f.value)
}

type errorField struct {
	value error
}

func (f errorField) AddTo(event *zerolog.Event) {
	event.Err(f.value)
}

type durationField struct {
	key   string
	value time.Duration
}

func (f durationField) AddTo(event *zerolog.Event) {
	event.Dur(f.key, f.value)
}

type boolField struct {
	key   string
	value bool
}

func (f boolField) AddTo(event *zerolog.Event) {
	event.Bool(f.key, f.value)
}

// --- Field constructors ---

func String(key, value string) Field {
	return stringField{key: key, value: value}
}

func Int(key string, value int) Field {
	return intField{key: key, value: value}
}

func Float64(key string, value float64) Field {
	return float64Field{key: key, value: value}
}

func Error(err error) Field {
	return errorField{value: err}
}

func Duration(key string, value time.Duration) Field {
	return durationField{key: key, value: value}
}

func Bool(key string, value bool) Field {
	return boolField{key: key, value: value}
}

func Strings(key string, value []string) Field {
	return String(key, strings.Join(value, ", "))
}
