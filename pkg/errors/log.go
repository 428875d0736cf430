package errors

import (
	"log/slog"
)

// LogHandler is an ErrorHandler that writes structured log records.
type LogHandler struct {
	// Logger receives the records. Nil means slog.Default().
	Logger *slog.Logger
	// Verbose adds stack traces to panic and callback records.
	Verbose bool
}

func (h *LogHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// HandleError logs a FastenError.
func (h *LogHandler) HandleError(err *FastenError) {
	if err == nil {
		return
	}
	attrs := []any{"op", err.Op, "kind", err.Kind.String(), "err", err.Err}
	if err.Fastener != "" {
		attrs = append(attrs, "owner", err.Owner, "fastener", err.Fastener)
	}
	h.logger().Warn("fasten error", attrs...)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	attrs := []any{"op", err.Op, "value", err.Value}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	h.logger().Error("fasten panic", attrs...)
}

// HandleCallbackError logs a CallbackError.
func (h *LogHandler) HandleCallbackError(err *CallbackError) {
	if err == nil {
		return
	}
	attrs := []any{"phase", err.Phase, "owner", err.Owner}
	if err.Recovered != nil {
		attrs = append(attrs, "panic", err.Recovered)
	}
	if err.Err != nil {
		attrs = append(attrs, "err", err.Err)
	}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	h.logger().Error("callback failed", attrs...)
}
