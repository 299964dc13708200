// Package log wraps a global zerolog logger with leveled, structured helpers.
package log

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"path"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	RFC3339Milli = "2006-01-02T15:04:05.000Z07:00" // like time.RFC3339Nano but with 3 fixed-width decimals
)

var (
	log   zerolog.Logger
	logMu sync.RWMutex
)

func init() {
	// LOG_LEVEL overrides the default so tests can be run verbosely
	Init(cmp.Or(os.Getenv("LOG_LEVEL"), LogLevelError), "stderr", nil)
}

// Logger provides access to the global logger (zerolog).
func Logger() *zerolog.Logger {
	logMu.RLock()
	logger := log
	logMu.RUnlock()
	return &logger
}

// errorLevelWriter only forwards warnings and errors.
type errorLevelWriter struct {
	io.Writer
}

func (*errorLevelWriter) Write(_ []byte) (int, error) {
	panic("should be calling WriteLevel")
}

func (w *errorLevelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < zerolog.WarnLevel {
		return len(p), nil
	}
	return w.Writer.Write(p)
}

// Init replaces the global logger. output is "stdout", "stderr" or a file
// path; paths ending in .json get raw JSON lines while the console output
// goes to stdout. If errorOutput is not nil, warnings and errors are also
// copied to it without colors.
func Init(level, output string, errorOutput io.Writer) {
	zlevel, err := parseLevel(level)
	if err != nil {
		panic(err)
	}
	var out io.Writer
	outputs := []io.Writer{}
	switch output {
	case "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			panic(fmt.Sprintf("cannot create log output: %v", err))
		}
		out = f
		if strings.HasSuffix(output, ".json") {
			outputs = append(outputs, f)
			out = os.Stdout
		}
	}
	outputs = append(outputs, zerolog.ConsoleWriter{Out: out, TimeFormat: RFC3339Milli})
	if errorOutput != nil {
		outputs = append(outputs, &errorLevelWriter{zerolog.ConsoleWriter{
			Out:        errorOutput,
			TimeFormat: RFC3339Milli,
			NoColor:    true,
		}})
	}
	setLogger(newLogger(zerolog.MultiLevelWriter(outputs...), zlevel))
	Logger().Info().Msgf("logger construction succeeded at level %s with output %s", level, output)
}

func newLogger(out io.Writer, level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	// skip the frames of this package wrapper
	zerolog.CallerSkipFrameCount = 3
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return fmt.Sprintf("%s/%s:%d", path.Base(path.Dir(file)), path.Base(file), line)
	}
	return zerolog.New(out).With().Timestamp().Caller().Logger().Level(level)
}

func setLogger(logger zerolog.Logger) {
	logMu.Lock()
	log = logger
	logMu.Unlock()
}

func parseLevel(level string) (zerolog.Level, error) {
	switch level {
	case LogLevelDebug:
		return zerolog.DebugLevel, nil
	case LogLevelInfo:
		return zerolog.InfoLevel, nil
	case LogLevelWarn:
		return zerolog.WarnLevel, nil
	case LogLevelError:
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("invalid log level: %q", level)
	}
}

// ValidLevel reports whether level is one of the accepted level names.
func ValidLevel(level string) bool {
	_, err := parseLevel(level)
	return err == nil
}

// Level returns the current log level
func Level() string {
	return Logger().GetLevel().String()
}

// Fatalf sends a formatted fatal level log message and exits.
func Fatalf(template string, args ...any) {
	Logger().Fatal().Msgf(template+"\n"+string(debug.Stack()), args...)
}

// Debugw sends a debug level log message with key-value pairs.
func Debugw(msg string, keyvalues ...any) {
	Logger().Debug().Fields(keyvalues).Msg(msg)
}

// Infow sends an info level log message with key-value pairs.
func Infow(msg string, keyvalues ...any) {
	Logger().Info().Fields(keyvalues).Msg(msg)
}

// Warnw sends a warning level log message with key-value pairs.
func Warnw(msg string, keyvalues ...any) {
	Logger().Warn().Fields(keyvalues).Msg(msg)
}

// Errorw sends an error level log message with a special format for errors.
func Errorw(err error, msg string) {
	Logger().Error().Err(err).Msg(msg)
}

// Timed logs msg at debug level with the time elapsed since start.
func Timed(msg string, start time.Time, keyvalues ...any) {
	Logger().Debug().Fields(keyvalues).Dur("took", time.Since(start)).Msg(msg)
}
