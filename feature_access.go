package session

import (
	"strings"
)

// ActionType names what the user must do next to reach a feature they are
// currently denied.
type ActionType string

const (
	ActionLogin        ActionType = "login"
	ActionVerifyEmail  ActionType = "verify_email"
	ActionSubscribe    ActionType = "subscribe"
	ActionRetryPayment ActionType = "retry_payment"
)

// RequiredAction pairs the action with the page that performs it.
type RequiredAction struct {
	Type           ActionType
	RedirectTarget string
}

// Redirect targets for RequiredAction.
const (
	RedirectSignIn      = "/sign-in"
	RedirectVerifyEmail = "/verify-email"
	RedirectBilling     = "/dashboard/settings/billing"
)

// AccessPolicy is the static access-control configuration: which states may
// use each feature, which nav groups are hidden from unverified and
// unsubscribed users, and which route prefixes are gated. It is plain data
// loaded once at startup and never mutated afterwards.
type AccessPolicy struct {
	// Features maps a feature identifier to the states allowed to use it.
	// A feature missing from this table is denied for everyone.
	Features map[string][]UserState

	// UnverifiedBlockedNavGroups are hidden from unverified_* states.
	UnverifiedBlockedNavGroups []string

	// UnsubscribedBlockedNavGroups are the paid-only sections hidden from
	// verified_free and verified_trial.
	UnsubscribedBlockedNavGroups []string

	// BlockedRoutePrefixes gate routes for users that are signed in but
	// not verified or subscribed.
	BlockedRoutePrefixes []string
}

// AccessResolver answers access-control queries against a static policy.
// It holds no mutable state and is safe to call from render paths; the
// caller passes the state it derived from the current auth data.
type AccessResolver struct {
	policy AccessPolicy
	logger Logger
}

// AccessResolverOption customizes resolver construction.
type AccessResolverOption func(*AccessResolver)

// WithAccessLogger overrides the logger used for misconfiguration warnings.
func WithAccessLogger(logger Logger) AccessResolverOption {
	return func(r *AccessResolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewAccessResolver creates a resolver over policy.
func NewAccessResolver(policy AccessPolicy, opts ...AccessResolverOption) *AccessResolver {
	r := &AccessResolver{
		policy: policy,
		logger: defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// CanAccess reports whether state may use feature. An unregistered feature
// is denied for every state: a newly added feature stays inaccessible until
// it is explicitly whitelisted. The miss is debug-logged so developers see
// the misconfiguration without users seeing an error.
func (r *AccessResolver) CanAccess(state UserState, feature string) bool {
	allowed, ok := r.policy.Features[feature]
	if !ok {
		r.logger.Debug("feature %q is not registered in the access table, denying", feature)
		return false
	}
	for _, candidate := range allowed {
		if candidate == state {
			return true
		}
	}
	return false
}

// NavGroupBlocked reports whether a navigation section is hidden from
// state. Anonymous users see nothing; unverified states lose the
// verification-gated groups; free/trial verified states lose the paid-only
// groups; past_due and verified_paid see everything.
func (r *AccessResolver) NavGroupBlocked(state UserState, navGroup string) bool {
	switch {
	case state == StateAnonymous:
		return true
	case state.RequiresVerification():
		return containsString(r.policy.UnverifiedBlockedNavGroups, navGroup)
	case state.RequiresSubscription():
		return containsString(r.policy.UnsubscribedBlockedNavGroups, navGroup)
	default:
		return false
	}
}

// RequiredAction returns what the user must do to reach feature, or nil
// when CanAccess already allows it. Unknown states fall back to login.
func (r *AccessResolver) RequiredAction(state UserState, feature string) *RequiredAction {
	if r.CanAccess(state, feature) {
		return nil
	}

	switch {
	case state == StateAnonymous:
		return &RequiredAction{Type: ActionLogin, RedirectTarget: RedirectSignIn}
	case state.RequiresVerification():
		return &RequiredAction{Type: ActionVerifyEmail, RedirectTarget: RedirectVerifyEmail}
	case state.RequiresSubscription():
		return &RequiredAction{Type: ActionSubscribe, RedirectTarget: RedirectBilling}
	case state == StatePastDue:
		return &RequiredAction{Type: ActionRetryPayment, RedirectTarget: RedirectBilling}
	default:
		// Covers verified_paid denied by the table (nothing actionable)
		// and any state we do not recognize.
		return &RequiredAction{Type: ActionLogin, RedirectTarget: RedirectSignIn}
	}
}

// RouteBlocked reports whether routePath is gated for state. Verified users
// are never blocked here. Anonymous is deliberately not blocked either:
// redirecting the signed-out is the auth guard's job, and doing it here too
// causes a flash of blocked content before that redirect fires.
func (r *AccessResolver) RouteBlocked(state UserState, routePath string) bool {
	if state == StateAnonymous || state.IsEmailVerified() {
		return false
	}
	for _, prefix := range r.policy.BlockedRoutePrefixes {
		if strings.HasPrefix(routePath, prefix) {
			return true
		}
	}
	return false
}

func containsString(list []string, target string) bool {
	for _, candidate := range list {
		if candidate == target {
			return true
		}
	}
	return false
}
