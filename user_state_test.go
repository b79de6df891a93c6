package session_test

import (
	"fmt"
	"testing"

	session "github.com/traf3li/go-session"

	"github.com/stretchr/testify/assert"
)

func TestComputeUserStateNilAccountIsAnonymous(t *testing.T) {
	assert.Equal(t, session.StateAnonymous, session.ComputeUserState(nil))
}

func TestComputeUserStateTotality(t *testing.T) {
	subscriptions := []string{"", "active", "trial", "trialing", "past_due", "canceled"}

	for _, verified := range []bool{false, true} {
		for _, sub := range subscriptions {
			account := &session.Account{
				EmailVerified:      verified,
				SubscriptionStatus: sub,
			}
			state := session.ComputeUserState(account)
			label := fmt.Sprintf("verified=%v sub=%q", verified, sub)

			assert.True(t, state.IsValid(), "undefined state for %s", label)
			assert.NotEqual(t, session.StateAnonymous, state,
				"a present user record is never anonymous (%s)", label)

			switch sub {
			case "past_due":
				assert.Equal(t, session.StatePastDue, state,
					"past_due wins over verification (%s)", label)
			case "active":
				assert.Equal(t, session.StateVerifiedPaid, state,
					"active always yields verified_paid (%s)", label)
			case "trial", "trialing":
				if verified {
					assert.Equal(t, session.StateVerifiedTrial, state, label)
				} else {
					assert.Equal(t, session.StateUnverifiedTrial, state, label)
				}
			default:
				if verified {
					assert.Equal(t, session.StateVerifiedFree, state, label)
				} else {
					assert.Equal(t, session.StateUnverifiedFree, state, label)
				}
			}
		}
	}
}

func TestComputeUserStateFirmSubscriptionFallback(t *testing.T) {
	account := &session.Account{
		EmailVerified:          true,
		FirmSubscriptionStatus: session.SubscriptionActive,
	}
	assert.Equal(t, session.StateVerifiedPaid, session.ComputeUserState(account))

	// The user's own subscription wins over the firm's.
	account.SubscriptionStatus = session.SubscriptionPastDue
	assert.Equal(t, session.StatePastDue, session.ComputeUserState(account))
}

func TestUserStatePredicates(t *testing.T) {
	cases := []struct {
		state                session.UserState
		verified, paid       bool
		needsVerify, needSub bool
	}{
		{session.StateAnonymous, false, false, false, false},
		{session.StateUnverifiedFree, false, false, true, false},
		{session.StateUnverifiedTrial, false, false, true, false},
		{session.StateVerifiedFree, true, false, false, true},
		{session.StateVerifiedTrial, true, false, false, true},
		{session.StateVerifiedPaid, true, true, false, false},
		{session.StatePastDue, true, false, false, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.verified, tc.state.IsEmailVerified(), "%s IsEmailVerified", tc.state)
		assert.Equal(t, tc.paid, tc.state.IsPaid(), "%s IsPaid", tc.state)
		assert.Equal(t, tc.needsVerify, tc.state.RequiresVerification(), "%s RequiresVerification", tc.state)
		assert.Equal(t, tc.needSub, tc.state.RequiresSubscription(), "%s RequiresSubscription", tc.state)
	}
}
