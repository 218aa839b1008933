package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCreds is a scriptable CredentialSource.
type fakeCreds struct {
	mu           sync.Mutex
	token        string
	orgID        string
	refreshCalls int
	refreshErr   error
	refreshTo    string
}

func (f *fakeCreds) AccessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeCreds) OrganizationID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orgID
}

func (f *fakeCreds) Refresh(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	if f.refreshErr != nil {
		f.token = ""
		return f.refreshErr
	}
	f.token = f.refreshTo
	return nil
}

func TestDoMissingOrganization(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := NewClient(server.URL, &fakeCreds{token: "tok"}, nil)

	err := client.Do(context.Background(), Descriptor{Method: "GET", Path: "/deals"}, Options{RequiresOrg: true}, nil)
	require.Error(t, err)

	apiErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindMissingOrg, apiErr.Kind)

	// The precondition failure never reaches the network.
	assert.Equal(t, 0, calls)
}

func TestDoAttachesHeaders(t *testing.T) {
	var gotAuth, gotOrg, gotReqID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotOrg = r.Header.Get("x-org-id")
		gotReqID = r.Header.Get("X-Request-Id")
		_ = json.NewEncoder(w).Encode(map[string]string{"ok": "true"})
	}))
	defer server.Close()

	client := NewClient(server.URL, &fakeCreds{token: "tok-1", orgID: "org-1"}, nil)

	var out map[string]string
	err := client.Do(context.Background(), Descriptor{Method: "GET", Path: "/accounts"}, Options{RequiresOrg: true}, &out)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "org-1", gotOrg)
	assert.NotEmpty(t, gotReqID)
	assert.Equal(t, "true", out["ok"])
}

func TestDoTokenOverride(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, &fakeCreds{token: "current"}, nil)

	err := client.Do(context.Background(), Descriptor{Method: "GET", Path: "/auth/me"}, Options{TokenOverride: "stored"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer stored", gotAuth)
}

func TestDoRefreshAndRetryOnce(t *testing.T) {
	var mu sync.Mutex
	endpointCalls := 0
	var tokens []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		endpointCalls++
		tokens = append(tokens, r.Header.Get("Authorization"))
		first := endpointCalls == 1
		mu.Unlock()

		if first {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "token expired"})
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]string{{"id": "d1"}})
	}))
	defer server.Close()

	creds := &fakeCreds{token: "stale", orgID: "org-1", refreshTo: "fresh"}
	client := NewClient(server.URL, creds, nil)

	var out []map[string]string
	err := client.Do(context.Background(), Descriptor{Method: "GET", Path: "/deals"}, Options{RequiresOrg: true}, &out)
	require.NoError(t, err)

	// Exactly two calls to the endpoint, one refresh, and the retry carried
	// the rotated token. The caller never saw the 401.
	assert.Equal(t, 2, endpointCalls)
	assert.Equal(t, 1, creds.refreshCalls)
	assert.Equal(t, []string{"Bearer stale", "Bearer fresh"}, tokens)
	assert.Len(t, out, 1)
}

func TestDoNoSecondRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "still unauthorized"})
	}))
	defer server.Close()

	creds := &fakeCreds{token: "stale", refreshTo: "fresh"}
	client := NewClient(server.URL, creds, nil)

	err := client.Do(context.Background(), Descriptor{Method: "GET", Path: "/deals"}, Options{}, nil)
	require.Error(t, err)

	apiErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindUnauthorized, apiErr.Kind)

	// One retry only, no loop.
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, creds.refreshCalls)
}

func TestDoRefreshFailurePropagatesOriginalError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "expired"})
	}))
	defer server.Close()

	creds := &fakeCreds{token: "stale", refreshErr: &Error{Kind: KindUnauthorized, Message: "refresh rejected"}}
	client := NewClient(server.URL, creds, nil)

	err := client.Do(context.Background(), Descriptor{Method: "GET", Path: "/deals"}, Options{}, nil)
	require.Error(t, err)

	apiErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindUnauthorized, apiErr.Kind)
	assert.Equal(t, "expired", apiErr.Message)

	// The failing request is not re-issued after a failed refresh.
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, creds.refreshCalls)
}

func TestDoOnceNeverRefreshes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"bad credentials"}`))
	}))
	defer server.Close()

	creds := &fakeCreds{refreshTo: "fresh"}
	client := NewClient(server.URL, creds, nil)

	err := client.DoOnce(context.Background(), Descriptor{Method: "POST", Path: "/auth/login"}, Options{}, nil)
	require.Error(t, err)
	assert.Equal(t, 0, creds.refreshCalls)
}

func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    Kind
		message string
	}{
		{
			name:    "structured message field",
			status:  http.StatusBadRequest,
			body:    `{"message":"name is required"}`,
			kind:    KindValidation,
			message: "name is required",
		},
		{
			name:    "error field fallback",
			status:  http.StatusConflict,
			body:    `{"error":"duplicate domain"}`,
			kind:    KindValidation,
			message: "duplicate domain",
		},
		{
			name:    "generic fallback names the path",
			status:  http.StatusInternalServerError,
			body:    `not json`,
			kind:    KindValidation,
			message: "request to /things failed with status 500",
		},
		{
			name:    "unauthorized kind",
			status:  http.StatusUnauthorized,
			body:    `{}`,
			kind:    KindUnauthorized,
			message: "request to /things failed with status 401",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := normalize(tt.status, []byte(tt.body), "/things", json.Unmarshal)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}
}

func TestDoTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(server.URL, &fakeCreds{}, nil)

	err := client.Do(context.Background(), Descriptor{Method: "GET", Path: "/accounts"}, Options{}, nil)
	require.Error(t, err)

	apiErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindTransport, apiErr.Kind)
}
