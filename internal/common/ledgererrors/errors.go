// Package ledgererrors contains the error types returned when talking to the ledger API and when
// orchestrating setup workflows on top of it.
//
// Callers should match on these with errors.As; every constructor site wraps them with
// errors.WithStack so that logging.WithStacktrace can report where they were raised.
//
// If several errors occur in one operation (e.g., several invalid configuration fields), the
// operation should return a multierror.Error from github.com/hashicorp/go-multierror holding them.
package ledgererrors

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ErrHttp is returned whenever the ledger answers with anything other than HTTP 200.
type ErrHttp struct {
	Method     string
	URL        string
	StatusCode int
	// Body holds the raw response body, which the ledger uses to describe validation failures.
	Body string
}

func (err *ErrHttp) Error() string {
	return fmt.Sprintf("HTTP Error: %d %s : Message: %s (%s %s)",
		err.StatusCode, http.StatusText(err.StatusCode), err.Body, err.Method, err.URL)
}

// ErrNotFound is a generic error to be returned whenever some resource isn't found.
// Type and Message are optional and are omitted from the error message if not provided.
type ErrNotFound struct {
	Type    string
	Value   string
	Message string
}

func (err *ErrNotFound) Error() (s string) {
	if err.Type != "" {
		s = fmt.Sprintf("resource %q of type %q does not exist", err.Value, err.Type)
	} else {
		s = fmt.Sprintf("resource %q does not exist", err.Value)
	}
	if err.Message != "" {
		return s + fmt.Sprintf("; %s", err.Message)
	}
	return s
}

// ErrInvalidArgument is a generic error to be returned on invalid argument.
// Message is optional and is omitted from the error message if not provided.
type ErrInvalidArgument struct {
	Name    string      // Name of the field referred to, e.g., "users"
	Value   interface{} // The invalid value that was provided
	Message string      // An optional message explaining why the value is invalid
}

func (err *ErrInvalidArgument) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("value %q is invalid for field %q", fmt.Sprint(err.Value), err.Name)
	}
	return fmt.Sprintf("value %q is invalid for field %q; %s", fmt.Sprint(err.Value), err.Name, err.Message)
}

// ErrPollTimeout is returned when a resource did not become visible in list results within the
// polling budget.
type ErrPollTimeout struct {
	Resource string // e.g. "loan"
	Key      string // the external id or name polled for
	Attempts uint
	// Cause is the last error seen, if polling ended on context cancellation.
	Cause error
}

func (err *ErrPollTimeout) Error() string {
	s := fmt.Sprintf("%s %q not visible after %d attempts", err.Resource, err.Key, err.Attempts)
	if err.Cause != nil {
		s += fmt.Sprintf("; %s", err.Cause)
	}
	return s
}

func (err *ErrPollTimeout) Unwrap() error {
	return err.Cause
}

// ErrStep identifies which step of a multi-step workflow failed.
type ErrStep struct {
	Workflow string // e.g. "activate savings account"
	Step     string // e.g. "approve"
	Subject  string // the id the workflow operated on
	Cause    error
}

func (err *ErrStep) Error() string {
	return fmt.Sprintf("%s %s: step %s failed: %s", err.Workflow, err.Subject, err.Step, err.Cause)
}

func (err *ErrStep) Unwrap() error {
	return err.Cause
}

// StatusCodeFromError returns the HTTP status code carried anywhere in the chain, or 0.
func StatusCodeFromError(err error) int {
	var e *ErrHttp
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// IsPollTimeout reports whether err is, or wraps, an ErrPollTimeout.
func IsPollTimeout(err error) bool {
	var e *ErrPollTimeout
	return errors.As(err, &e)
}
