package review

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrInvalidResponse marks a response that arrived but could not be used,
// such as an undecodable body or a completion without choices.
var ErrInvalidResponse = errors.New("invalid response")

// ErrorKind is a coarse classification of stage failures.
type ErrorKind string

// Error kinds.
const (
	KindTransport       ErrorKind = "transport"
	KindAuth            ErrorKind = "auth"
	KindRateLimited     ErrorKind = "rate_limited"
	KindInvalidResponse ErrorKind = "invalid_response"
	KindCanceled        ErrorKind = "canceled"
)

// StageError is returned by pipeline stages.
type StageError struct {
	Stage string
	Kind  ErrorKind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func newStageError(stage string, err error) *StageError {
	return &StageError{Stage: stage, Kind: Classify(err), Err: err}
}

// httpStatusError is implemented by the API errors of the backend clients.
type httpStatusError interface {
	HTTPStatus() int
}

// Classify maps an error to an ErrorKind. Only context.Canceled counts as
// canceled; a deadline hit by a client timeout is a transport failure.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, ErrInvalidResponse) {
		return KindInvalidResponse
	}
	var he httpStatusError
	if errors.As(err, &he) {
		switch he.HTTPStatus() {
		case http.StatusUnauthorized, http.StatusForbidden:
			return KindAuth
		case http.StatusTooManyRequests:
			return KindRateLimited
		}
	}
	return KindTransport
}

// MissingCredentialError lists the credentials that could not be found.
type MissingCredentialError struct {
	Names []string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("missing credentials: %s", strings.Join(e.Names, ", "))
}
