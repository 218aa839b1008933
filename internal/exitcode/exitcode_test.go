package exitcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fluxcrm/flux/internal/api"
)

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil error", err: nil, want: Success},
		{name: "plain error", err: errors.New("boom"), want: GeneralError},
		{
			name: "unauthorized",
			err:  &api.Error{Kind: api.KindUnauthorized, Message: "session expired"},
			want: AuthError,
		},
		{
			name: "transport",
			err:  &api.Error{Kind: api.KindTransport, Message: "connection refused"},
			want: NetworkError,
		},
		{
			name: "missing organization",
			err:  api.ErrMissingOrganization(),
			want: UsageError,
		},
		{
			name: "validation",
			err:  &api.Error{Kind: api.KindValidation, Message: "email is required"},
			want: UsageError,
		},
		{
			name: "wrapped taxonomy error",
			err:  fmt.Errorf("login: %w", &api.Error{Kind: api.KindUnauthorized}),
			want: AuthError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineExitCode(tt.err))
		})
	}
}
