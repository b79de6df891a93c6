package session

// SubscriptionStatus is the raw subscription status string reported by the
// billing backend for a user or their firm.
type SubscriptionStatus = string

const (
	// SubscriptionActive is a paying subscription in good standing.
	SubscriptionActive SubscriptionStatus = "active"
	// SubscriptionTrial is a trial subscription.
	SubscriptionTrial SubscriptionStatus = "trial"
	// SubscriptionTrialing is the Stripe-style spelling of a trial.
	SubscriptionTrialing SubscriptionStatus = "trialing"
	// SubscriptionPastDue is a delinquent paying subscription.
	SubscriptionPastDue SubscriptionStatus = "past_due"
)

// UserState is the discrete state governing feature access. It is derived,
// never stored: a pure function of the upstream user and subscription data,
// recomputed on every query.
type UserState string

const (
	StateAnonymous       UserState = "anonymous"
	StateUnverifiedFree  UserState = "unverified_free"
	StateUnverifiedTrial UserState = "unverified_trial"
	StateVerifiedFree    UserState = "verified_free"
	StateVerifiedTrial   UserState = "verified_trial"
	StateVerifiedPaid    UserState = "verified_paid"
	StatePastDue         UserState = "past_due"
)

// Account is the slice of the authenticated user record the state
// derivation needs. SubscriptionStatus is the user's own subscription;
// FirmSubscriptionStatus is the firm's, used when the user has none.
type Account struct {
	EmailVerified          bool
	SubscriptionStatus     SubscriptionStatus
	FirmSubscriptionStatus SubscriptionStatus
}

// EffectiveSubscription resolves the status that governs access: the user's
// own subscription when present, otherwise the firm's.
func (a Account) EffectiveSubscription() SubscriptionStatus {
	if a.SubscriptionStatus != "" {
		return a.SubscriptionStatus
	}
	return a.FirmSubscriptionStatus
}

// ComputeUserState derives the discrete state. Priority order, first match
// wins:
//
//  1. no user record: anonymous
//  2. past_due: always wins over verification, a delinquent paying customer
//     is in this bucket no matter what
//  3. active: verified_paid even when the email is unverified, paying
//     customers are never blocked by a verification edge case (business
//     rule, not an oversight)
//  4. trial/trialing: split on email verification
//  5. everything else (none, canceled, unknown): free, split on email
//     verification
func ComputeUserState(account *Account) UserState {
	if account == nil {
		return StateAnonymous
	}

	switch account.EffectiveSubscription() {
	case SubscriptionPastDue:
		return StatePastDue
	case SubscriptionActive:
		return StateVerifiedPaid
	case SubscriptionTrial, SubscriptionTrialing:
		if account.EmailVerified {
			return StateVerifiedTrial
		}
		return StateUnverifiedTrial
	default:
		if account.EmailVerified {
			return StateVerifiedFree
		}
		return StateUnverifiedFree
	}
}

// IsEmailVerified reports whether the state implies a verified email.
func (s UserState) IsEmailVerified() bool {
	switch s {
	case StateAnonymous, StateUnverifiedFree, StateUnverifiedTrial:
		return false
	default:
		return true
	}
}

// IsPaid reports whether the state belongs to a subscription in good
// standing.
func (s UserState) IsPaid() bool {
	return s == StateVerifiedPaid
}

// RequiresVerification reports whether the next step for this user is email
// verification.
func (s UserState) RequiresVerification() bool {
	return s == StateUnverifiedFree || s == StateUnverifiedTrial
}

// RequiresSubscription reports whether the next step for this user is
// subscribing.
func (s UserState) RequiresSubscription() bool {
	return s == StateVerifiedFree || s == StateVerifiedTrial
}

// IsValid checks if the state is one of the seven defined states.
func (s UserState) IsValid() bool {
	switch s {
	case StateAnonymous, StateUnverifiedFree, StateUnverifiedTrial,
		StateVerifiedFree, StateVerifiedTrial, StateVerifiedPaid, StatePastDue:
		return true
	default:
		return false
	}
}
