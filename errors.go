package session

import (
	stderrors "errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeSessionExpired    = "SESSION_EXPIRED"
	textCodeRefreshTransient  = "REFRESH_TRANSIENT_FAILURE"
	textCodeMalformedResponse = "MALFORMED_REFRESH_RESPONSE"
)

// ErrSessionExpired is returned when the backend conclusively rejects the
// refresh credential (401/403). The session is over; the user must sign in
// again.
var ErrSessionExpired = goerrors.New("session expired", goerrors.CategoryAuth).
	WithTextCode(textCodeSessionExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrMalformedRefreshResponse is returned when the refresh endpoint answered
// 200 but the body carried no recognizable access token. Existing state is
// left untouched: a bad response shape is not proof the session is invalid.
var ErrMalformedRefreshResponse = goerrors.New("refresh response missing access token", goerrors.CategoryInternal).
	WithTextCode(textCodeMalformedResponse)

// wrapTransient tags a refresh failure that is not authentication-conclusive
// (5xx, network error). Callers may retry on their next request.
func wrapTransient(err error, msg string) error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, msg).
		WithTextCode(textCodeRefreshTransient)
}

// IsSessionExpired reports whether err is the session-terminal refresh
// rejection.
func IsSessionExpired(err error) bool {
	return stderrors.Is(err, ErrSessionExpired)
}

// IsTransientRefreshError reports whether err was a retriable refresh
// failure rather than a session-terminal one.
func IsTransientRefreshError(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == textCodeRefreshTransient
}
