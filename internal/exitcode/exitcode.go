package exitcode

import (
	"errors"
	"os"

	"github.com/fluxcrm/flux/internal/api"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// AuthError indicates an authentication failure
	AuthError = 5

	// NetworkError indicates a network connectivity issue
	NetworkError = 6

	// Interrupted indicates the operation was cancelled by the user
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode maps an error to an exit code based on its taxonomy kind
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case api.KindUnauthorized:
			return AuthError
		case api.KindTransport:
			return NetworkError
		case api.KindMissingOrg, api.KindValidation:
			return UsageError
		}
	}

	return GeneralError
}
