package ux

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxcrm/flux/internal/api"
)

func TestEnhanceErrorNil(t *testing.T) {
	assert.NoError(t, EnhanceError(nil))
}

func TestEnhanceErrorPassthrough(t *testing.T) {
	err := errors.New("something unrelated")
	assert.Equal(t, err, EnhanceError(err))
}

func TestEnhanceErrorSuggestions(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		contain string
	}{
		{
			name:    "missing organization",
			err:     api.ErrMissingOrganization(),
			contain: "flux org select",
		},
		{
			name:    "unauthorized",
			err:     &api.Error{Kind: api.KindUnauthorized, Message: "session expired"},
			contain: "flux auth login",
		},
		{
			name:    "transport",
			err:     &api.Error{Kind: api.KindTransport, Message: "connection refused"},
			contain: "flux config set api_url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enhanced := EnhanceError(tt.err)
			require.Error(t, enhanced)
			assert.Contains(t, enhanced.Error(), tt.contain)

			var suggestion *ErrorWithSuggestion
			require.True(t, errors.As(enhanced, &suggestion))
			assert.Equal(t, tt.err, suggestion.Unwrap())
		})
	}
}

func TestEnhanceErrorValidationHasNoSuggestion(t *testing.T) {
	err := &api.Error{Kind: api.KindValidation, Message: "email is required"}
	assert.Equal(t, error(err), EnhanceError(err))
}

func TestEnhanceErrorWrapped(t *testing.T) {
	wrapped := fmt.Errorf("fetch accounts: %w", &api.Error{Kind: api.KindUnauthorized})
	enhanced := EnhanceError(wrapped)
	assert.Contains(t, enhanced.Error(), "flux auth login")
}

func TestErrorWithSuggestionFormat(t *testing.T) {
	err := NewErrorWithSuggestion(errors.New("boom"), "try again")
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "try again")

	assert.NoError(t, NewErrorWithSuggestion(nil, "unused"))
}
