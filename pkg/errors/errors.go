// Package errors provides structured error reporting for the fastener engine.
//
// Most engine failures are not returned to a caller: they happen inside
// frame callbacks, where the only sensible reaction is to report and carry on.
// Such failures go to the process-wide [ErrorHandler] installed with
// [SetHandler]. Bind-time failures (cyclic inlets) are additionally returned.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindInletType indicates an inlet whose value type does not match.
	KindInletType
	// KindCyclicInlet indicates an inlet chain that loops back on itself.
	KindCyclicInlet
	// KindCallback indicates a lifecycle or value callback that failed.
	KindCallback
	// KindPanic indicates a recovered panic outside an owner boundary.
	KindPanic
	// KindConfig indicates invalid configuration or theme data.
	KindConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindInletType:
		return "inlet-type"
	case KindCyclicInlet:
		return "cyclic-inlet"
	case KindCallback:
		return "callback"
	case KindPanic:
		return "panic"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

var (
	// ErrCyclicInlet is returned when binding an inlet would create a cycle.
	ErrCyclicInlet = stderrors.New("cyclic inlet")
	// ErrInletType marks an inlet whose value cannot be converted.
	ErrInletType = stderrors.New("inlet value type mismatch")
)

// FastenError is a structured engine error.
type FastenError struct {
	// Op is the operation that failed (e.g., "fastener.BindInlet").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Owner names the owner involved, if any.
	Owner string
	// Fastener names the fastener involved, if any.
	Fastener string
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *FastenError) Error() string {
	if e.Fastener != "" {
		return fmt.Sprintf("%s [%s] %s.%s: %v", e.Op, e.Kind, e.Owner, e.Fastener, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *FastenError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked.
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// CallbackError is a failure inside an owner's lifecycle hook or a fastener
// callback, caught at the owner boundary during a frame.
type CallbackError struct {
	// Phase is the frame phase ("layout", "render", ...).
	Phase string
	// Owner is the name of the owner whose hook failed.
	Owner string
	// Recovered is the panic value (nil for returned errors).
	Recovered any
	// Err is the returned error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the failure.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *CallbackError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s %s: %v", e.Owner, e.Phase, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error in %s %s: %v", e.Owner, e.Phase, e.Err)
	}
	return fmt.Sprintf("unknown error in %s %s", e.Owner, e.Phase)
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives errors reported by the engine.
type ErrorHandler interface {
	// HandleError is called for structured engine errors.
	HandleError(err *FastenError)
	// HandlePanic is called when a panic is recovered outside an owner.
	HandlePanic(err *PanicError)
	// HandleCallbackError is called when an owner hook fails during a frame.
	HandleCallbackError(err *CallbackError)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return stderrors.As(err, target) }
