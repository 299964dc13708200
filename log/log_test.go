package log

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/rs/zerolog"
)

func TestLevels(t *testing.T) {
	c := qt.New(t)
	c.Assert(ValidLevel(LogLevelDebug), qt.IsTrue)
	c.Assert(ValidLevel("trace"), qt.IsFalse)
	c.Assert(func() { Init("verbose", "stderr", nil) }, qt.PanicMatches, `invalid log level: "verbose"`)

	previous := *Logger()
	defer setLogger(previous)
	Init(LogLevelWarn, "stderr", nil)
	c.Assert(Level(), qt.Equals, LogLevelWarn)
}

func TestErrorOutput(t *testing.T) {
	c := qt.New(t)
	previous := *Logger()
	defer setLogger(previous)

	var errOut bytes.Buffer
	Init(LogLevelDebug, "stderr", &errOut)
	Debugw("hidden from the error output", "key", 1)
	Errorw(errors.New("boom"), "visible")
	c.Assert(errOut.String(), qt.Not(qt.Contains), "hidden")
	c.Assert(errOut.String(), qt.Contains, "visible")
	c.Assert(errOut.String(), qt.Contains, "boom")
}

func TestJSONFileOutput(t *testing.T) {
	c := qt.New(t)
	previous := *Logger()
	defer setLogger(previous)

	file := filepath.Join(t.TempDir(), "out.json")
	Init(LogLevelInfo, file, nil)
	Infow("cells computed", "count", 128)
	Debugw("not written")

	data, err := os.ReadFile(file)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Contains, `"message":"cells computed"`)
	c.Assert(string(data), qt.Contains, `"count":128`)
	c.Assert(string(data), qt.Not(qt.Contains), "not written")
	c.Assert(Logger().GetLevel(), qt.Equals, zerolog.InfoLevel)
}
