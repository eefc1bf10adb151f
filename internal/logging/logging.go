// Package logging builds the zap loggers used by the CLI and the generator.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the logger flavour.
type Options struct {
	// Verbose lowers the level to debug.
	Verbose bool
	// JSON switches to structured JSON output for machine consumption.
	JSON bool
	// Out receives log lines; defaults to stderr so generated output on stdout stays clean.
	Out io.Writer
}

// New returns a logger configured from opts.
func New(opts Options) *zap.Logger {
	level := zap.InfoLevel
	if opts.Verbose {
		level = zap.DebugLevel
	}
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	var enc zapcore.Encoder
	if opts.JSON {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.TimeKey = ""
		cfg.CallerKey = ""
		enc = zapcore.NewConsoleEncoder(cfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(out), level)
	return zap.New(core)
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger { return zap.NewNop() }
