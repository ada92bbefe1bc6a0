package logging

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const Stacktrace = "stacktrace"

// Unexported but considered part of the stable interface of pkg/errors.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Unexported but considered part of the stable interface of pkg/errors.
type causer interface {
	Cause() error
}

// WithStacktrace returns an entry of the global logger carrying the error and, if one was
// recorded anywhere in the chain, its stack trace.
func WithStacktrace(err error) *logrus.Entry {
	return EntryWithStacktrace(logrus.NewEntry(stdLogger), err)
}

// EntryWithStacktrace adds error information and, if available, a stack trace to the given entry.
func EntryWithStacktrace(entry *logrus.Entry, err error) *logrus.Entry {
	entry = entry.WithError(err)
	if stack := ExtractStack(err); stack != nil {
		entry = entry.WithField(Stacktrace, stack)
	}
	return entry
}

// ExtractStack walks down the chain of errors and returns the first errors.StackTrace it finds,
// or nil when none of the errors carries one.
func ExtractStack(err error) errors.StackTrace {
	if stackErr, ok := err.(stackTracer); ok {
		return stackErr.StackTrace()
	} else if causeErr, ok := err.(causer); ok {
		return ExtractStack(causeErr.Cause())
	} else if unwrapped := errors.Unwrap(err); unwrapped != nil {
		return ExtractStack(unwrapped)
	}
	return nil
}
