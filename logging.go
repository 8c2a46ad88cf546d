package persist

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
)

// DiagnosticEvent describes a non-fatal fault encountered during load, save,
// or capability construction.
type DiagnosticEvent struct {
	Op    string
	Key   string
	Type  string
	Value any
	Err   error
}

// DiagnosticLogger records engine diagnostics.
type DiagnosticLogger interface {
	LogDiagnostic(DiagnosticEvent)
}

// DiagnosticLoggerFunc adapts a function to DiagnosticLogger.
type DiagnosticLoggerFunc func(DiagnosticEvent)

// LogDiagnostic implements DiagnosticLogger.
func (f DiagnosticLoggerFunc) LogDiagnostic(event DiagnosticEvent) {
	if f != nil {
		f(event)
	}
}

type noopDiagnosticLogger struct{}

func (noopDiagnosticLogger) LogDiagnostic(DiagnosticEvent) {}

// DumpLogger writes diagnostics to w, rendering attached values with
// go-spew so nested object graphs stay readable during debugging.
func DumpLogger(w io.Writer) DiagnosticLogger {
	return DiagnosticLoggerFunc(func(event DiagnosticEvent) {
		fmt.Fprintf(w, "persist: %s key=%q type=%s err=%v\n", event.Op, event.Key, event.Type, event.Err)
		if event.Value != nil {
			io.WriteString(w, spew.Sdump(event.Value))
		}
	})
}

// WithLogger attaches a diagnostic logger to the loader.
func WithLogger(logger DiagnosticLogger) Option {
	return func(cfg *loaderConfig) {
		if logger == nil {
			cfg.logger = noopDiagnosticLogger{}
			return
		}
		cfg.logger = logger
	}
}
