package log

import "log/slog"

// Logger is a minimal injectable logging surface for callers who want to
// redirect a CLI's own status output without adopting slog directly.
type (
	Logger interface {
		Debug(msg string, args ...any)
		Info(msg string, args ...any)
		Warn(msg string, args ...any)
		Error(msg string, args ...any)
	}
	NOOPLogger struct{}
)

func (NOOPLogger) Debug(msg string, args ...any) {}
func (NOOPLogger) Info(msg string, args ...any)  {}
func (NOOPLogger) Warn(msg string, args ...any)  {}
func (NOOPLogger) Error(msg string, args ...any) {}

// SlogLogger adapts a *slog.Logger to the Logger interface.
type SlogLogger struct {
	Target *slog.Logger
}

func (l SlogLogger) Debug(msg string, args ...any) { l.Target.Debug(msg, args...) }
func (l SlogLogger) Info(msg string, args ...any)  { l.Target.Info(msg, args...) }
func (l SlogLogger) Warn(msg string, args ...any)  { l.Target.Warn(msg, args...) }
func (l SlogLogger) Error(msg string, args ...any) { l.Target.Error(msg, args...) }

// New returns a SlogLogger wrapping slog.Default() when verbose is true,
// and a silent NOOPLogger otherwise.
func New(verbose bool) Logger {
	if !verbose {
		return NOOPLogger{}
	}
	return SlogLogger{Target: slog.Default()}
}
