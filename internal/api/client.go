// Package api implements the authenticated request gateway: the sole path
// through which the client reaches the Flux backend. It attaches bearer and
// organization headers, performs one transparent refresh-and-retry cycle on
// expired credentials, and normalizes every failure into a tagged Error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fluxcrm/flux/internal/log"
)

// CredentialSource supplies the gateway with the current credentials and owns
// the refresh procedure. Implemented by the session controller.
type CredentialSource interface {
	// AccessToken returns the current access token, or "" when signed out.
	AccessToken() string

	// OrganizationID returns the selected organization id, or "" when none
	// is selected.
	OrganizationID() string

	// Refresh exchanges the refresh token for a new token pair. On failure
	// the implementation must tear the session down before returning.
	Refresh(ctx context.Context) error
}

// Descriptor describes one backend call. Transient, constructed per request.
type Descriptor struct {
	Method string
	Path   string
	Body   any
}

// Options modify how a Descriptor is issued.
type Options struct {
	// RequiresOrg attaches the selected organization id as a header. If no
	// organization is selected the call fails before any network I/O.
	RequiresOrg bool

	// TokenOverride bypasses the credential source's current access token.
	// Used during bootstrap, before session state is trusted.
	TokenOverride string
}

// Client is the Flux backend API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	creds  CredentialSource
	logger *log.Logger
}

// NewClient creates a gateway client for the given backend base URL.
func NewClient(baseURL string, creds CredentialSource, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		creds:  creds,
		logger: logger,
	}
}

// Do issues the request described by desc and decodes the response body into
// out (which may be nil for empty responses).
//
// Two-phase retry: attempt once; on 401, refresh the credentials and attempt
// exactly once more. The second attempt never refreshes again, so a second
// 401 propagates. A failed refresh propagates the original 401; session
// teardown is the credential source's responsibility.
func (c *Client) Do(ctx context.Context, desc Descriptor, opts Options, out any) error {
	if opts.RequiresOrg && c.creds.OrganizationID() == "" {
		return ErrMissingOrganization()
	}

	err := c.attempt(ctx, desc, opts, out, false)
	apiErr, ok := err.(*Error)
	if !ok || apiErr == nil {
		return err
	}

	if apiErr.Kind == KindUnauthorized {
		c.logger.Debug("access token rejected, refreshing", "path", desc.Path)
		if refreshErr := c.creds.Refresh(ctx); refreshErr != nil {
			return apiErr
		}
		// The refresh rotated the token pair; the retry must use the new
		// token, so any bootstrap override is dropped here.
		return c.attempt(ctx, desc, opts, out, true)
	}

	return err
}

// DoOnce issues the request without the refresh-and-retry phase. Used for the
// auth endpoints themselves: a 401 from login, register, or refresh must
// propagate rather than trigger another refresh.
func (c *Client) DoOnce(ctx context.Context, desc Descriptor, opts Options, out any) error {
	if opts.RequiresOrg && c.creds.OrganizationID() == "" {
		return ErrMissingOrganization()
	}
	return c.attempt(ctx, desc, opts, out, false)
}

// attempt performs one network round-trip. When isRetry is true the override
// token is ignored and a 401 is returned as-is.
func (c *Client) attempt(ctx context.Context, desc Descriptor, opts Options, out any, isRetry bool) error {
	var reqBody io.Reader
	if desc.Body != nil {
		payload, err := json.Marshal(desc.Body)
		if err != nil {
			return &Error{
				Kind:    KindTransport,
				Message: fmt.Sprintf("encode request for %s: %v", desc.Path, err),
				Cause:   err,
			}
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, desc.Method, c.BaseURL+desc.Path, reqBody)
	if err != nil {
		return &Error{
			Kind:    KindTransport,
			Message: fmt.Sprintf("create request for %s: %v", desc.Path, err),
			Cause:   err,
		}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	token := c.creds.AccessToken()
	if opts.TokenOverride != "" && !isRetry {
		token = opts.TokenOverride
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if opts.RequiresOrg {
		req.Header.Set("x-org-id", c.creds.OrganizationID())
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &Error{
			Kind:    KindTransport,
			Message: err.Error(),
			Cause:   err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{
			Kind:    KindTransport,
			Message: fmt.Sprintf("read response from %s: %v", desc.Path, err),
			Cause:   err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := normalize(resp.StatusCode, body, desc.Path, json.Unmarshal)
		c.logger.Debug("request failed",
			"method", desc.Method,
			"path", desc.Path,
			"status", resp.StatusCode,
			"kind", apiErr.Kind.String(),
		)
		return apiErr
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return &Error{
				Kind:    KindTransport,
				Message: fmt.Sprintf("decode response from %s: %v", desc.Path, err),
				Cause:   err,
			}
		}
	}

	return nil
}

// Request issues desc and decodes the response into a value of type T.
func Request[T any](ctx context.Context, c *Client, desc Descriptor, opts Options) (T, error) {
	var out T
	if err := c.Do(ctx, desc, opts, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
