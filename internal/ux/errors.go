// Package ux enhances errors with recovery suggestions before they reach the
// terminal.
package ux

import (
	"errors"
	"fmt"

	"github.com/fluxcrm/flux/internal/api"
)

// ErrorWithSuggestion wraps an error with a helpful recovery suggestion
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\n💡 Suggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError analyzes an error and adds a contextual suggestion
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.Kind {
	case api.KindMissingOrg:
		return NewErrorWithSuggestion(err,
			"Select an organization with 'flux org select' or create one with 'flux org create'")
	case api.KindUnauthorized:
		return NewErrorWithSuggestion(err,
			"Your session has expired. Sign in again with 'flux auth login'")
	case api.KindTransport:
		return NewErrorWithSuggestion(err,
			"Check that the Flux API is reachable, or point the client elsewhere with 'flux config set api_url <url>'")
	}

	return err
}
