package ledgererrors

import (
	"context"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestStatusCodeFromError(t *testing.T) {
	tests := map[string]struct {
		err  error
		want int
	}{
		"ErrHttp":                 {&ErrHttp{StatusCode: http.StatusInternalServerError}, http.StatusInternalServerError},
		"pkg.Error => ErrHttp":    {errors.WithMessage(&ErrHttp{StatusCode: http.StatusForbidden}, "foo"), http.StatusForbidden},
		"ErrStep => ErrHttp":      {&ErrStep{Step: "approve", Cause: &ErrHttp{StatusCode: http.StatusBadRequest}}, http.StatusBadRequest},
		"ErrNotFound":             {&ErrNotFound{}, 0},
		"pkg.Error":               {errors.New("foo"), 0},
		"nil":                     {nil, 0},
		"WithStack => ErrHttp":    {errors.WithStack(&ErrHttp{StatusCode: http.StatusNotFound}), http.StatusNotFound},
		"ErrPollTimeout => other": {&ErrPollTimeout{Cause: context.Canceled}, 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusCodeFromError(tc.err))
		})
	}
}

func TestErrHttp_Error(t *testing.T) {
	err := &ErrHttp{Method: http.MethodPost, URL: "http://ledger/clients", StatusCode: 500, Body: `{"error":"boom"}`}
	assert.Equal(t, `HTTP Error: 500 Internal Server Error : Message: {"error":"boom"} (POST http://ledger/clients)`, err.Error())
}

func TestErrPollTimeout(t *testing.T) {
	err := errors.WithStack(&ErrPollTimeout{Resource: "loan", Key: "LoanAccount_1", Attempts: 3})
	assert.True(t, IsPollTimeout(err))
	assert.Equal(t, `loan "LoanAccount_1" not visible after 3 attempts`, errors.Cause(err).Error())

	wrapped := &ErrPollTimeout{Resource: "loan", Key: "x", Attempts: 1, Cause: context.DeadlineExceeded}
	assert.True(t, errors.Is(wrapped, context.DeadlineExceeded))
	assert.False(t, IsPollTimeout(errors.New("foo")))
}

func TestErrInvalidArgument_Error(t *testing.T) {
	assert.Equal(t, `value "0" is invalid for field "users"`, (&ErrInvalidArgument{Name: "users", Value: 0}).Error())
	assert.Equal(t, `value "" is invalid for field "url"; must be set`,
		(&ErrInvalidArgument{Name: "url", Value: "", Message: "must be set"}).Error())
}

func TestErrNotFound_Error(t *testing.T) {
	assert.Equal(t, `resource "7" of type "savings account" does not exist`, (&ErrNotFound{Type: "savings account", Value: "7"}).Error())
	assert.Equal(t, `resource "7" does not exist; gone`, (&ErrNotFound{Value: "7", Message: "gone"}).Error())
}
