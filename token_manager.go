package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultRefreshBuffer is subtracted from the expiry instant when
	// judging validity, so consumers never hold a token about to expire
	// mid-request.
	DefaultRefreshBuffer = 60 * time.Second

	// DefaultTokenTTL is assumed when the backend reports no lifetime and
	// the token carries no readable exp claim.
	DefaultTokenTTL = 15 * time.Minute

	// DefaultRequestTimeout bounds the refresh and logout network calls so
	// a hung backend cannot block waiting callers indefinitely.
	DefaultRequestTimeout = 10 * time.Second

	defaultRefreshPath = "/api/auth/refresh"
	defaultLogoutPath  = "/api/auth/logout"

	refreshFlightKey = "refresh"
)

// TokenSnapshot is a point-in-time copy of the manager's memory state.
type TokenSnapshot struct {
	AccessToken string
	ExpiresAt   time.Time
}

// TokenManager is the single authority for the current access token. It
// holds the token in memory only, refreshes it against the backend using a
// browser-managed httpOnly cookie, and deduplicates concurrent refresh
// attempts so at most one request is in flight.
//
// Construct one instance per application at the composition root; tests can
// instantiate isolated instances with their own clock, transport, and event
// bundle.
type TokenManager struct {
	baseURL        string
	refreshPath    string
	logoutPath     string
	client         HTTPClient
	logger         Logger
	events         *Events
	now            Clock
	refreshBuffer  time.Duration
	defaultTTL     time.Duration
	requestTimeout time.Duration
	instanceID     string

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time

	flight singleflight.Group
}

// TokenManagerOption customizes manager construction.
type TokenManagerOption func(*TokenManager)

// WithHTTPClient injects the transport. The client should carry a cookie
// jar so the backend's Set-Cookie refresh rotation round-trips.
func WithHTTPClient(client HTTPClient) TokenManagerOption {
	return func(tm *TokenManager) {
		if client != nil {
			tm.client = client
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(logger Logger) TokenManagerOption {
	return func(tm *TokenManager) {
		if logger != nil {
			tm.logger = logger
		}
	}
}

// WithEvents shares an existing event bundle instead of creating one.
func WithEvents(events *Events) TokenManagerOption {
	return func(tm *TokenManager) {
		if events != nil {
			tm.events = events
		}
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock Clock) TokenManagerOption {
	return func(tm *TokenManager) {
		if clock != nil {
			tm.now = clock
		}
	}
}

// WithRefreshBuffer overrides the validity buffer.
func WithRefreshBuffer(buffer time.Duration) TokenManagerOption {
	return func(tm *TokenManager) {
		if buffer > 0 {
			tm.refreshBuffer = buffer
		}
	}
}

// WithDefaultTokenTTL overrides the assumed lifetime for responses that
// report none.
func WithDefaultTokenTTL(ttl time.Duration) TokenManagerOption {
	return func(tm *TokenManager) {
		if ttl > 0 {
			tm.defaultTTL = ttl
		}
	}
}

// WithRequestTimeout bounds the refresh and logout calls.
func WithRequestTimeout(timeout time.Duration) TokenManagerOption {
	return func(tm *TokenManager) {
		if timeout > 0 {
			tm.requestTimeout = timeout
		}
	}
}

// WithRefreshPath overrides the refresh endpoint path.
func WithRefreshPath(path string) TokenManagerOption {
	return func(tm *TokenManager) {
		if path != "" {
			tm.refreshPath = path
		}
	}
}

// WithLogoutPath overrides the logout endpoint path.
func WithLogoutPath(path string) TokenManagerOption {
	return func(tm *TokenManager) {
		if path != "" {
			tm.logoutPath = path
		}
	}
}

// NewTokenManager creates a manager talking to the auth backend at baseURL.
func NewTokenManager(baseURL string, opts ...TokenManagerOption) *TokenManager {
	tm := &TokenManager{
		baseURL:        baseURL,
		refreshPath:    defaultRefreshPath,
		logoutPath:     defaultLogoutPath,
		logger:         defLogger{},
		now:            time.Now,
		refreshBuffer:  DefaultRefreshBuffer,
		defaultTTL:     DefaultTokenTTL,
		requestTimeout: DefaultRequestTimeout,
		instanceID:     uuid.New().String(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(tm)
		}
	}

	if tm.client == nil {
		jar, _ := cookiejar.New(nil)
		tm.client = &http.Client{Jar: jar}
	}
	if tm.events == nil {
		tm.events = NewEvents(tm.logger)
	}

	return tm
}

// Events exposes the lifecycle channels for subscribers.
func (tm *TokenManager) Events() *Events {
	return tm.events
}

// InstanceID identifies this manager instance. It is used as the source
// marker when a logout is propagated to other tabs or processes.
func (tm *TokenManager) InstanceID() string {
	return tm.instanceID
}

// AccessToken returns whatever token is in memory, without any validity
// check or I/O. For callers that only need "is there something".
func (tm *TokenManager) AccessToken() string {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.accessToken
}

// Snapshot returns a copy of the current memory state.
func (tm *TokenManager) Snapshot() TokenSnapshot {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return TokenSnapshot{AccessToken: tm.accessToken, ExpiresAt: tm.expiresAt}
}

// IsAuthenticated reports whether a token is held and not inside the expiry
// buffer.
func (tm *TokenManager) IsAuthenticated() bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.validLocked()
}

func (tm *TokenManager) validLocked() bool {
	if tm.accessToken == "" || tm.expiresAt.IsZero() {
		return false
	}
	return tm.now().Before(tm.expiresAt.Add(-tm.refreshBuffer))
}

// SetTokens stores a token obtained by a login or OAuth flow and announces
// the authenticated state. expiresInSeconds may be 0, in which case the
// lifetime is read from the token's exp claim, falling back to the default
// TTL. The refresh cookie is the backend's business (Set-Cookie on the
// login response) and is not touched here.
func (tm *TokenManager) SetTokens(accessToken string, expiresInSeconds int64) {
	if accessToken == "" {
		return
	}

	tm.mu.Lock()
	tm.accessToken = accessToken
	tm.expiresAt = tm.resolveExpiry(accessToken, expiresInSeconds)
	tm.mu.Unlock()

	tm.events.AuthStateChanged.Emit(AuthStateChangedEvent{Authenticated: true})
}

// resolveExpiry picks the expiry instant for a fresh token: the reported
// lifetime when present, else the token's own exp claim, else the default.
func (tm *TokenManager) resolveExpiry(accessToken string, expiresInSeconds int64) time.Time {
	if expiresInSeconds > 0 {
		return tm.now().Add(time.Duration(expiresInSeconds) * time.Second)
	}
	if exp, ok := tokenExpiry(accessToken); ok && exp.After(tm.now()) {
		return exp
	}
	return tm.now().Add(tm.defaultTTL)
}

// tokenExpiry reads the exp claim without verifying the signature. The
// client never validates tokens, it only needs the expiry hint.
func tokenExpiry(accessToken string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// ClearState wipes the token state from memory. No events, no network.
func (tm *TokenManager) ClearState() {
	tm.mu.Lock()
	tm.accessToken = ""
	tm.expiresAt = time.Time{}
	tm.mu.Unlock()

	tm.flight.Forget(refreshFlightKey)
}

// ValidAccessToken returns a token guaranteed to outlive the refresh
// buffer. A cached valid token is returned without I/O; otherwise a refresh
// runs, with concurrent callers sharing one network call and one outcome.
//
// Failure modes: ErrSessionExpired when the backend rejected the refresh
// credential (state cleared, events emitted), ErrMalformedRefreshResponse
// and transient errors otherwise (state untouched; the caller may retry on
// its next request).
func (tm *TokenManager) ValidAccessToken(ctx context.Context) (string, error) {
	tm.mu.Lock()
	if tm.validLocked() {
		token := tm.accessToken
		tm.mu.Unlock()
		return token, nil
	}
	tm.mu.Unlock()

	result, err, _ := tm.flight.Do(refreshFlightKey, func() (any, error) {
		return tm.refresh(ctx)
	})
	if err != nil {
		return "", err
	}

	token, _ := result.(string)
	return token, nil
}

// refreshResponse accepts both the OAuth2-style snake_case shape and the
// legacy camelCase one.
type refreshResponse struct {
	AccessToken      string `json:"accessToken"`
	AccessTokenSnake string `json:"access_token"`
	ExpiresIn        int64  `json:"expiresIn"`
	ExpiresInSnake   int64  `json:"expires_in"`
}

func (r refreshResponse) token() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.AccessTokenSnake
}

func (r refreshResponse) expiresIn() int64 {
	if r.ExpiresIn > 0 {
		return r.ExpiresIn
	}
	return r.ExpiresInSnake
}

// refresh performs the single network leg of ValidAccessToken. The request
// body is empty: the refresh token lives in an httpOnly cookie carried by
// the transport's jar and is never readable here.
func (tm *TokenManager) refresh(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, tm.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tm.baseURL+tm.refreshPath, bytes.NewReader([]byte("{}")))
	if err != nil {
		return "", wrapTransient(err, "failed to build refresh request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := tm.client.Do(req)
	if err != nil {
		tm.logger.Error("token refresh request failed: %v", err)
		return "", wrapTransient(err, "refresh request failed")
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusOK:
		return tm.acceptRefresh(res.Body)
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		tm.logger.Info("token refresh rejected with status %d, session is over", res.StatusCode)
		tm.expireSession()
		return "", ErrSessionExpired
	default:
		// Transient server failure. State stays as-is; the next caller
		// attempt starts a fresh flight.
		tm.logger.Error("token refresh failed with status %d", res.StatusCode)
		return "", wrapTransient(fmt.Errorf("unexpected status %d", res.StatusCode), "refresh request failed")
	}
}

func (tm *TokenManager) acceptRefresh(body io.Reader) (string, error) {
	var payload refreshResponse
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		tm.logger.Error("token refresh response unreadable: %v", err)
		return "", ErrMalformedRefreshResponse
	}

	token := payload.token()
	if token == "" {
		tm.logger.Error("token refresh response carried no access token")
		return "", ErrMalformedRefreshResponse
	}

	expiresIn := payload.expiresIn()

	tm.mu.Lock()
	tm.accessToken = token
	tm.expiresAt = tm.resolveExpiry(token, expiresIn)
	tm.mu.Unlock()

	tm.events.TokensRefreshed.Emit(TokensRefreshedEvent{AccessToken: token, ExpiresIn: expiresIn})
	return token, nil
}

// expireSession handles the authentication-conclusive refresh rejection:
// wipe memory and broadcast.
func (tm *TokenManager) expireSession() {
	tm.mu.Lock()
	tm.accessToken = ""
	tm.expiresAt = time.Time{}
	tm.mu.Unlock()

	tm.events.TokensCleared.Emit(TokensClearedEvent{Reason: ClearReasonRefreshFailed})
	tm.events.AuthStateChanged.Emit(AuthStateChangedEvent{Authenticated: false})
}

// Logout clears local state immediately, then best-effort notifies the
// backend so it can invalidate the refresh cookie. A network failure here
// is swallowed: the user-visible effect of being logged out must not depend
// on backend reachability.
func (tm *TokenManager) Logout(ctx context.Context) {
	tm.mu.Lock()
	token := tm.accessToken
	tm.accessToken = ""
	tm.expiresAt = time.Time{}
	tm.mu.Unlock()

	tm.flight.Forget(refreshFlightKey)

	tm.postLogout(ctx, token)

	tm.events.TokensCleared.Emit(TokensClearedEvent{Reason: ClearReasonManualLogout})
	tm.events.AuthStateChanged.Emit(AuthStateChangedEvent{Authenticated: false})
}

func (tm *TokenManager) postLogout(ctx context.Context, token string) {
	ctx, cancel := context.WithTimeout(ctx, tm.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tm.baseURL+tm.logoutPath, nil)
	if err != nil {
		tm.logger.Error("failed to build logout request: %v", err)
		return
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := tm.client.Do(req)
	if err != nil {
		// Local state is already clear, nothing else to do.
		tm.logger.Info("logout request failed: %v", err)
		return
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)
}

// ApplyExternalLogout applies a logout that originated in another tab or
// process. The detection transport (storage events, a redis channel) is a
// collaborator; it calls this once per signal. source identifies the
// originating instance.
func (tm *TokenManager) ApplyExternalLogout(source string) {
	tm.ClearState()
	tm.events.CrossTabLogout.Emit(CrossTabLogoutEvent{Source: source})
	tm.events.AuthStateChanged.Emit(AuthStateChangedEvent{Authenticated: false})
}
