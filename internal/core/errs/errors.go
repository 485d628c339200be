package errs

import "fmt"

// Error is a classified error: a taxonomy kind plus a message and an
// optional wrapped cause. Fields are private to enforce construction through
// New, Newf and Wrap; the type is compatible with errors.Is, errors.As and
// errors.Unwrap.
type Error struct {
	kind    Kind
	message string
	context string
	cause   error
}

// New creates a classified error.
//
//	err := errs.New(errs.KindNotFound, "article not found")
func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an existing error, preserving it as the cause. Returns nil
// if err is nil.
//
//	if err := store.Load(ctx, id); err != nil {
//	    return errs.Wrap(err, errs.KindStorage, "loading document")
//	}
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, message: message, cause: err}
}

// Wrapf classifies an existing error with a formatted message. Returns nil
// if err is nil.
func Wrapf(err error, kind Kind, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, message: fmt.Sprintf(format, args...), cause: err}
}

// Error returns "[kind] message" or "[kind] message: cause".
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.kind, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.kind, e.message)
}

// Kind returns the taxonomy kind.
func (e *Error) Kind() Kind {
	return e.kind
}

// Severity returns the severity of the error's kind.
func (e *Error) Severity() Severity {
	return e.kind.Severity()
}

// Message returns the message without kind prefix or cause.
func (e *Error) Message() string {
	return e.message
}

// Context returns the operation context attached with WithContext, or "".
func (e *Error) Context() string {
	return e.context
}

// WithContext returns a copy of the error carrying an operation context,
// used by the pipeline when no explicit context is passed to Handle.
func (e *Error) WithContext(context string) *Error {
	clone := *e
	clone.context = context
	return &clone
}

// Unwrap returns the wrapped cause, or nil.
func (e *Error) Unwrap() error {
	return e.cause
}
