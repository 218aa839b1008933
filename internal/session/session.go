// Package session owns the authenticated session lifecycle: bootstrap from
// persisted state, login, registration, token refresh, logout, and
// organization selection. The controller holds the authoritative session and
// mirrors it into the persistent store.
package session

import (
	"context"
	"sync"

	"github.com/fluxcrm/flux/internal/api"
	"github.com/fluxcrm/flux/internal/log"
	"github.com/fluxcrm/flux/internal/store"
)

// User is the authenticated identity.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Membership roles within an organization.
const (
	RoleOwner  = "OWNER"
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// Membership is one organization the user belongs to. Read-only from the
// client's perspective.
type Membership struct {
	ID   string
	Name string
	Role string
}

// authResponse is the token-bearing payload returned by the auth endpoints.
type authResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

// userResponse wraps endpoints that return just the user.
type userResponse struct {
	User User `json:"user"`
}

// membershipRecord is the wire shape of one GET /orgs entry.
type membershipRecord struct {
	Organization struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"organization"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// Organization is the wire shape of a created organization.
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Controller owns the session state and implements api.CredentialSource.
//
// Invariant: user is non-nil if and only if the access token is non-empty. A
// token without a resolved user is "initializing", never "authenticated".
//
// All mutations are serialized by a mutex: the TUI runs network calls from
// background goroutines, so the single-threaded assumption of the web client
// does not hold here. The mutex is never held across a network call;
// methods snapshot state, call the backend, then re-lock to commit.
type Controller struct {
	mu sync.Mutex

	client *api.Client
	store  store.Store
	logger *log.Logger

	accessToken  string
	refreshToken string
	user         *User
	orgID        string
	memberships  []Membership
}

// NewController creates a session controller backed by the given store and a
// gateway client for the backend at baseURL.
func NewController(baseURL string, st store.Store, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	c := &Controller{
		store:  st,
		logger: logger,
	}
	c.client = api.NewClient(baseURL, c, logger)
	return c
}

// Client returns the gateway client bound to this session.
func (c *Controller) Client() *api.Client {
	return c.client
}

// AccessToken implements api.CredentialSource.
func (c *Controller) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

// OrganizationID implements api.CredentialSource.
func (c *Controller) OrganizationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orgID
}

// User returns the authenticated user, or nil when signed out.
func (c *Controller) User() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// Authenticated reports whether the session holds a resolved user.
func (c *Controller) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user != nil && c.accessToken != ""
}

// Memberships returns the cached organization memberships.
func (c *Controller) Memberships() []Membership {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Membership, len(c.memberships))
	copy(out, c.memberships)
	return out
}

// setTokens commits a token pair to memory and the store. Must be called with
// the mutex held.
func (c *Controller) setTokensLocked(access, refresh string) {
	c.accessToken = access
	c.refreshToken = refresh
	_ = c.store.Set(store.KeyAccessToken, access)
	_ = c.store.Set(store.KeyRefreshToken, refresh)
}

// clearLocked tears the whole session down: tokens, user, organization, and
// all three persisted keys together. Must be called with the mutex held.
func (c *Controller) clearLocked() {
	c.accessToken = ""
	c.refreshToken = ""
	c.user = nil
	c.orgID = ""
	c.memberships = nil
	_ = c.store.Clear()
}

// Clear tears down the session. Used by logout and by bootstrap failure.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

// Hydrate loads the three stored keys into memory without verifying them
// against the backend. The session stays "initializing" (no resolved user);
// the gateway's refresh-and-retry path catches stale tokens on first use.
func (c *Controller) Hydrate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken, _ = c.store.Get(store.KeyAccessToken)
	c.refreshToken, _ = c.store.Get(store.KeyRefreshToken)
	c.orgID, _ = c.store.Get(store.KeyOrgID)
}

// BootstrapResult reports where a restored session landed.
type BootstrapResult struct {
	Authenticated bool
	// OrgSelected is true when a previously selected organization survived
	// the restore, meaning the client can go straight to the app screen.
	OrgSelected bool
}

// Bootstrap restores a persisted session at startup. With no stored access
// token the session stays signed out. Otherwise the stored tokens are
// hydrated tentatively and verified against the whoami endpoint, using the
// stored token as an explicit override since session state is not yet
// trusted. Any failure clears all persisted state.
func (c *Controller) Bootstrap(ctx context.Context) (BootstrapResult, error) {
	c.mu.Lock()
	storedAccess, _ := c.store.Get(store.KeyAccessToken)
	storedRefresh, _ := c.store.Get(store.KeyRefreshToken)
	storedOrg, _ := c.store.Get(store.KeyOrgID)

	if storedAccess == "" || storedRefresh == "" {
		c.mu.Unlock()
		return BootstrapResult{}, nil
	}

	c.accessToken = storedAccess
	c.refreshToken = storedRefresh
	c.orgID = storedOrg
	c.mu.Unlock()

	var whoami userResponse
	err := c.client.Do(ctx,
		api.Descriptor{Method: "GET", Path: "/auth/me"},
		api.Options{TokenOverride: storedAccess},
		&whoami,
	)
	if err != nil {
		c.logger.Debug("bootstrap rejected, clearing stored session", "error", err.Error())
		c.Clear()
		return BootstrapResult{}, err
	}

	c.mu.Lock()
	c.user = &whoami.User
	c.mu.Unlock()

	if err := c.LoadMemberships(ctx); err != nil {
		c.Clear()
		return BootstrapResult{}, err
	}

	return BootstrapResult{Authenticated: true, OrgSelected: storedOrg != ""}, nil
}

// Login authenticates with email and password. On failure nothing is mutated.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	return c.authenticate(ctx, "/auth/login", email, password)
}

// Register creates an account. Same contract as Login.
func (c *Controller) Register(ctx context.Context, email, password string) error {
	return c.authenticate(ctx, "/auth/register", email, password)
}

func (c *Controller) authenticate(ctx context.Context, path, email, password string) error {
	var resp authResponse
	err := c.client.DoOnce(ctx,
		api.Descriptor{
			Method: "POST",
			Path:   path,
			Body:   map[string]string{"email": email, "password": password},
		},
		api.Options{},
		&resp,
	)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.setTokensLocked(resp.AccessToken, resp.RefreshToken)
	c.user = &resp.User
	c.mu.Unlock()

	c.logger.Debug("authenticated", "user", resp.User.Email)
	return c.LoadMemberships(ctx)
}

// Refresh implements api.CredentialSource. Called by the gateway when a
// request came back 401. On failure the session is torn down so the original
// 401 propagates against a signed-out session.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	refresh := c.refreshToken
	c.mu.Unlock()

	if refresh == "" {
		c.Clear()
		return &api.Error{Kind: api.KindUnauthorized, Message: "no refresh token"}
	}

	var resp authResponse
	err := c.client.DoOnce(ctx,
		api.Descriptor{
			Method: "POST",
			Path:   "/auth/refresh",
			Body:   map[string]string{"refreshToken": refresh},
		},
		api.Options{},
		&resp,
	)
	if err != nil {
		c.logger.Debug("token refresh failed, clearing session")
		c.Clear()
		return err
	}

	c.mu.Lock()
	c.setTokensLocked(resp.AccessToken, resp.RefreshToken)
	c.user = &resp.User
	c.mu.Unlock()

	return nil
}

// Logout clears all tokens, the selected organization, and the user.
func (c *Controller) Logout() {
	c.Clear()
}

// SelectOrganization persists the chosen organization id.
func (c *Controller) SelectOrganization(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orgID = id
	_ = c.store.Set(store.KeyOrgID, id)
}

// LoadMemberships refetches the organization membership list.
func (c *Controller) LoadMemberships(ctx context.Context) error {
	records, err := api.Request[[]membershipRecord](ctx, c.client,
		api.Descriptor{Method: "GET", Path: "/orgs"},
		api.Options{},
	)
	if err != nil {
		return err
	}

	memberships := make([]Membership, 0, len(records))
	for _, r := range records {
		memberships = append(memberships, Membership{
			ID:   r.Organization.ID,
			Name: r.Organization.Name,
			Role: r.Role,
		})
	}

	c.mu.Lock()
	c.memberships = memberships
	c.mu.Unlock()
	return nil
}

// CreateOrganization creates an organization, appends it to the membership
// list with the OWNER role, auto-selects it, and persists the selection.
func (c *Controller) CreateOrganization(ctx context.Context, name, domain string) (Membership, error) {
	body := map[string]string{"name": name}
	if domain != "" {
		body["domain"] = domain
	}

	org, err := api.Request[Organization](ctx, c.client,
		api.Descriptor{Method: "POST", Path: "/orgs", Body: body},
		api.Options{},
	)
	if err != nil {
		return Membership{}, err
	}

	m := Membership{ID: org.ID, Name: org.Name, Role: RoleOwner}

	c.mu.Lock()
	c.memberships = append(c.memberships, m)
	c.orgID = m.ID
	_ = c.store.Set(store.KeyOrgID, m.ID)
	c.mu.Unlock()

	return m, nil
}

// Profile fetches the current user from the whoami endpoint.
func (c *Controller) Profile(ctx context.Context) (User, error) {
	resp, err := api.Request[userResponse](ctx, c.client,
		api.Descriptor{Method: "GET", Path: "/auth/me"},
		api.Options{},
	)
	if err != nil {
		return User{}, err
	}

	c.mu.Lock()
	if c.accessToken != "" {
		c.user = &resp.User
	}
	c.mu.Unlock()

	return resp.User, nil
}

// UpdateProfile changes the account email.
func (c *Controller) UpdateProfile(ctx context.Context, email string) (User, error) {
	resp, err := api.Request[userResponse](ctx, c.client,
		api.Descriptor{
			Method: "PUT",
			Path:   "/auth/profile",
			Body:   map[string]string{"email": email},
		},
		api.Options{},
	)
	if err != nil {
		return User{}, err
	}

	c.mu.Lock()
	if c.accessToken != "" {
		c.user = &resp.User
	}
	c.mu.Unlock()

	return resp.User, nil
}

// ChangePassword rotates the password. The backend responds with a fresh
// token pair, which is persisted like a login.
func (c *Controller) ChangePassword(ctx context.Context, current, next string) error {
	resp, err := api.Request[authResponse](ctx, c.client,
		api.Descriptor{
			Method: "POST",
			Path:   "/auth/change-password",
			Body: map[string]string{
				"currentPassword": current,
				"newPassword":     next,
			},
		},
		api.Options{},
	)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.setTokensLocked(resp.AccessToken, resp.RefreshToken)
	c.user = &resp.User
	c.mu.Unlock()

	return nil
}
