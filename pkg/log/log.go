package log

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogLevel string

const (
	FatalLevel    = "fatal"
	ErrorLevel    = "error"
	WarningLevel  = "warn"
	DebugLevel    = "debug"
	InfoLevel     = "info"
	TraceLevel    = "trace"
	DisabledLevel = "disabled"
)

var levelmap = map[LogLevel]int{
	TraceLevel:    5,
	DebugLevel:    4,
	InfoLevel:     3,
	WarningLevel:  2,
	ErrorLevel:    1,
	FatalLevel:    0,
	DisabledLevel: -1,
}

// zap has no trace level, so one is placed below debug.
const zapTraceLevel = zapcore.DebugLevel - 1

var zapLevels = map[LogLevel]zapcore.Level{
	TraceLevel:    zapTraceLevel,
	DebugLevel:    zapcore.DebugLevel,
	InfoLevel:     zapcore.InfoLevel,
	WarningLevel:  zapcore.WarnLevel,
	ErrorLevel:    zapcore.ErrorLevel,
	FatalLevel:    zapcore.FatalLevel,
	DisabledLevel: zapcore.InvalidLevel,
}

var logfFuncMap = map[LogLevel]func(msg string, args ...interface{}){
	TraceLevel:   Tracef,
	DebugLevel:   Debugf,
	InfoLevel:    Infof,
	WarningLevel: Warnf,
	ErrorLevel:   Errorf,
	FatalLevel:   Fatalf,
}

var logFuncMap = map[LogLevel]func(args ...interface{}){
	TraceLevel:   Trace,
	DebugLevel:   Debug,
	InfoLevel:    Info,
	WarningLevel: Warn,
	ErrorLevel:   Error,
	FatalLevel:   Fatal,
}

// Options selects where log records are written.
type Options struct {
	// Rotated log file. Console output is kept when set.
	File string `mapstructure:"log_file"`
	// Maximum size in megabytes before the file is rotated.
	MaxSize int `mapstructure:"log_max_size"`
	// Number of rotated files to keep.
	MaxBackups int `mapstructure:"log_max_backups"`
}

var (
	mu      sync.RWMutex
	level   LogLevel = InfoLevel
	enabled          = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger  *zap.Logger
)

func init() {
	logger = newLogger(zapcore.Lock(os.Stdout), zapcore.Lock(os.Stderr))
}

func encoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: " - ",
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.Local().Format("2006-01-02 15:04:05.000"))
		},
		EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			if l == zapTraceLevel {
				enc.AppendString(fmt.Sprintf("%5s", TraceLevel))
				return
			}
			enc.AppendString(fmt.Sprintf("%5s", l.String()))
		},
		EncodeDuration: zapcore.StringDurationEncoder,
	})
}

// Records up to info go to out, warnings and above go to errOut.
func newLogger(out, errOut zapcore.WriteSyncer, extra ...zapcore.WriteSyncer) *zap.Logger {
	low := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return enabled.Enabled(l) && l < zapcore.WarnLevel
	})
	high := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return enabled.Enabled(l) && l >= zapcore.WarnLevel
	})

	cores := []zapcore.Core{
		zapcore.NewCore(encoder(), out, low),
		zapcore.NewCore(encoder(), errOut, high),
	}
	for _, w := range extra {
		cores = append(cores, zapcore.NewCore(encoder(), w, enabled))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zapcore.FatalLevel))
}

// Configure installs console output plus an optional rotated log file.
func Configure(opts Options) {
	var extra []zapcore.WriteSyncer
	if opts.File != "" {
		extra = append(extra, zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
		}))
	}

	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(zapcore.Lock(os.Stdout), zapcore.Lock(os.Stderr), extra...)
}

// SetOutput redirects all levels to w. Mostly useful in tests.
func SetOutput(w io.Writer) {
	ws := zapcore.AddSync(w)

	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(ws, ws)
}

// Sync flushes buffered records.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = logger.Sync()
}

func SetLevel(loglevel LogLevel) error {
	zl, ok := zapLevels[loglevel]
	if !ok {
		return fmt.Errorf("No such log level %s", loglevel)
	}

	mu.Lock()
	defer mu.Unlock()
	level = loglevel
	if loglevel == DisabledLevel {
		zl = zapcore.FatalLevel + 1
	}
	enabled.SetLevel(zl)
	return nil
}

func GetLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return level
}

func ValidLogLevel(level LogLevel) bool {
	_, ok := levelmap[level]
	return ok
}

func ShouldLog(logLevel, enabled LogLevel) bool {
	if !ValidLogLevel(logLevel) || !ValidLogLevel(enabled) {
		return false
	}
	return levelmap[logLevel] <= levelmap[enabled]
}

func Log(level LogLevel, msg string, args ...interface{}) {
	if ValidLogLevel(level) && level != DisabledLevel {
		if len(args) > 0 {
			logfFuncMap[level](msg, args...)
		} else {
			logFuncMap[level](msg)
		}
	}
}

func write(l zapcore.Level, msg string) {
	mu.RLock()
	lg := logger
	mu.RUnlock()

	if ce := lg.Check(l, msg); ce != nil {
		ce.Write()
	}
}

func logln(l zapcore.Level, args ...interface{}) {
	if !enabled.Enabled(l) {
		return
	}
	write(l, strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
}

func logf(l zapcore.Level, format string, args ...interface{}) {
	if !enabled.Enabled(l) {
		return
	}
	write(l, fmt.Sprintf(format, args...))
}

func Trace(args ...interface{}) {
	logln(zapTraceLevel, args...)
}

func Debug(args ...interface{}) {
	logln(zapcore.DebugLevel, args...)
}

func Info(args ...interface{}) {
	logln(zapcore.InfoLevel, args...)
}

func Warn(args ...interface{}) {
	logln(zapcore.WarnLevel, args...)
}

func Error(args ...interface{}) {
	logln(zapcore.ErrorLevel, args...)
}

func Fatal(args ...interface{}) {
	logln(zapcore.FatalLevel, args...)
	os.Exit(1)
}

func Tracef(format string, args ...interface{}) {
	logf(zapTraceLevel, format, args...)
}

func Debugf(format string, args ...interface{}) {
	logf(zapcore.DebugLevel, format, args...)
}

func Infof(format string, args ...interface{}) {
	logf(zapcore.InfoLevel, format, args...)
}

func Warnf(format string, args ...interface{}) {
	logf(zapcore.WarnLevel, format, args...)
}

func Errorf(format string, args ...interface{}) {
	logf(zapcore.ErrorLevel, format, args...)
}

func Fatalf(format string, args ...interface{}) {
	logf(zapcore.FatalLevel, format, args...)
	os.Exit(1)
}

func NewLogger() *log.Logger {
	return log.New(NewLogWriter(DebugLevel), "", 0)
}

type writeFunc func([]byte) (int, error)

func (fn writeFunc) Write(data []byte) (int, error) {
	return fn(data)
}

func NewLogWriter(level LogLevel) io.Writer {
	return writeFunc(func(data []byte) (int, error) {
		Log(level, "%s", strings.TrimSuffix(string(data), "\n"))
		return len(data), nil
	})
}

func DebugError(err error) {
	indent := 1

	Debug(err.Error())

	for {
		if err = errors.Unwrap(err); err == nil {
			break
		}

		Debugf("| %d: %s", indent, err.Error())
		indent += 1
	}
}
