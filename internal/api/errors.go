package api

import "fmt"

// Kind classifies a gateway failure. Every error leaving the gateway carries
// exactly one kind so callers can branch without string matching.
type Kind int

const (
	// KindTransport is a network-level failure: the request never produced
	// a usable HTTP response.
	KindTransport Kind = iota
	// KindUnauthorized is an HTTP 401 that survived the refresh-and-retry
	// protocol (or occurred where no retry is permitted).
	KindUnauthorized
	// KindValidation is any other HTTP error status. The message is the
	// backend's structured message when one was present.
	KindValidation
	// KindMissingOrg is a precondition failure: an organization-scoped call
	// was attempted with no organization selected. Never reaches the network.
	KindMissingOrg
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindMissingOrg:
		return "missing_organization"
	default:
		return "unknown"
	}
}

// Error is the single error type produced by the gateway.
type Error struct {
	Kind    Kind
	Message string
	Status  int // HTTP status when one was received, else 0
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// Unwrap provides access to the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrMissingOrganization reports an organization-scoped call issued before an
// organization was selected.
func ErrMissingOrganization() *Error {
	return &Error{
		Kind:    KindMissingOrg,
		Message: "select an organization first",
	}
}

// errorBody is the shape the backend uses for structured error responses.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// normalize converts a non-2xx response into an Error. Fallthrough order:
// structured message field, then the raw error field, then a generic message
// naming the path.
func normalize(status int, body []byte, path string, decodeErr func([]byte, any) error) *Error {
	kind := KindValidation
	if status == 401 {
		kind = KindUnauthorized
	}

	var eb errorBody
	if err := decodeErr(body, &eb); err == nil {
		if eb.Message != "" {
			return &Error{Kind: kind, Message: eb.Message, Status: status}
		}
		if eb.Error != "" {
			return &Error{Kind: kind, Message: eb.Error, Status: status}
		}
	}

	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf("request to %s failed with status %d", path, status),
		Status:  status,
	}
}
