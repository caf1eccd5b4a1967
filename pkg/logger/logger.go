package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a thin structured-logging facade over zerolog.
type Logger struct {
	zl zerolog.Logger

	mu        sync.RWMutex
	collector *LogCollector
}

type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	Output     string // stdout, stderr, or a file path
	TimeFormat string
}

func New(cfg *Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	out, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}

	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}
	zerolog.TimeFieldFormat = timeFormat

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: timeFormat}
	}

	zl := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl}, nil
}

// Nop returns a logger that discards everything. Handy in tests.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func openOutput(name string) (io.Writer, error) {
	switch name {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// With returns a child logger carrying the given fields on every entry.
// The child shares the parent's collector.
func (l *Logger) With(fields ...Field) *Logger {
	ctx := l.zl.With()
	for _, f := range fields {
		ctx = f.addToContext(ctx)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return &Logger{zl: ctx.Logger(), collector: l.collector}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.write(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.write(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.write(l.zl.Warn(), msg, fields) }

func (l *Logger) Error(msg string, fields ...Field) {
	l.write(l.zl.Error(), msg, fields)
	l.collect("error", msg, fields)
}

func (l *Logger) write(ev *zerolog.Event, msg string, fields []Field) {
	if ev == nil {
		return
	}
	for _, f := range fields {
		f.addToEvent(ev)
	}
	ev.Msg(msg)
}

func (l *Logger) collect(level, msg string, fields []Field) {
	l.mu.RLock()
	c := l.collector
	l.mu.RUnlock()
	if c == nil {
		return
	}

	caller := "unknown"
	if _, file, line, ok := runtime.Caller(2); ok {
		if i := strings.LastIndex(file, "/internal/"); i >= 0 {
			file = file[i+1:]
		} else if i := strings.LastIndex(file, "/pkg/"); i >= 0 {
			file = file[i+1:]
		}
		caller = fmt.Sprintf("%s:%d", file, line)
	}

	values := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		values[f.Key] = f.value()
	}
	c.AddLog(level, msg, values, caller)
}

// AddCollector starts aggregating error entries and publishing them in batches.
func (l *Logger) AddCollector(cfg *CollectionConfig) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.collector != nil {
		l.collector.Close()
	}
	l.collector = NewLogCollector(cfg)
}

func (l *Logger) RemoveCollector() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.collector != nil {
		l.collector.Close()
		l.collector = nil
	}
}

type fieldKind uint8

const (
	kindString fieldKind = iota
	kindInt
	kindFloat
	kindBool
	kindErr
	kindAny
)

// Field is a typed key/value pair attached to a log entry.
type Field struct {
	Key  string
	kind fieldKind
	str  string
	num  int64
	flt  float64
	any  interface{}
}

func (f Field) addToEvent(ev *zerolog.Event) {
	switch f.kind {
	case kindString:
		ev.Str(f.Key, f.str)
	case kindInt:
		ev.Int64(f.Key, f.num)
	case kindFloat:
		ev.Float64(f.Key, f.flt)
	case kindBool:
		ev.Bool(f.Key, f.num == 1)
	case kindErr:
		if err, _ := f.any.(error); err != nil {
			ev.AnErr(f.Key, err)
		}
	default:
		ev.Interface(f.Key, f.any)
	}
}

func (f Field) addToContext(ctx zerolog.Context) zerolog.Context {
	switch f.kind {
	case kindString:
		return ctx.Str(f.Key, f.str)
	case kindInt:
		return ctx.Int64(f.Key, f.num)
	case kindFloat:
		return ctx.Float64(f.Key, f.flt)
	case kindBool:
		return ctx.Bool(f.Key, f.num == 1)
	case kindErr:
		if err, _ := f.any.(error); err != nil {
			return ctx.AnErr(f.Key, err)
		}
		return ctx
	default:
		return ctx.Interface(f.Key, f.any)
	}
}

func (f Field) value() interface{} {
	switch f.kind {
	case kindString:
		return f.str
	case kindInt:
		return f.num
	case kindFloat:
		return f.flt
	case kindBool:
		return f.num == 1
	case kindErr:
		if err, _ := f.any.(error); err != nil {
			return err.Error()
		}
		return nil
	default:
		return f.any
	}
}

func String(key, value string) Field { return Field{Key: key, kind: kindString, str: value} }

func Strings(key string, value []string) Field { return String(key, strings.Join(value, ", ")) }

func Int(key string, value int) Field { return Field{Key: key, kind: kindInt, num: int64(value)} }

func Int64(key string, value int64) Field { return Field{Key: key, kind: kindInt, num: value} }

func Float64(key string, value float64) Field { return Field{Key: key, kind: kindFloat, flt: value} }

func Bool(key string, value bool) Field {
	f := Field{Key: key, kind: kindBool}
	if value {
		f.num = 1
	}
	return f
}

// Duration logs d in milliseconds.
func Duration(key string, d time.Duration) Field { return Int64(key, d.Milliseconds()) }

func Error(err error) Field { return Field{Key: "error", kind: kindErr, any: err} }

func Any(key string, value interface{}) Field { return Field{Key: key, kind: kindAny, any: value} }
