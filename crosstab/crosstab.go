// Package crosstab propagates logout between session instances. In the
// browser the transport is a storage event; for server-side and desktop
// shells it is a shared channel. Either way the transport's only job is to
// call the token manager's ApplyExternalLogout: detection stays out of the
// manager itself.
package crosstab

import (
	"encoding/json"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// LogoutSignal is the payload carried over the transport.
type LogoutSignal struct {
	Source   string    `json:"source"`
	FiredAt  time.Time `json:"fired_at"`
	UserHint string    `json:"user_hint,omitempty"`
}

// Encode serializes the signal for the wire.
func (s LogoutSignal) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode logout signal")
	}
	return data, nil
}

// DecodeSignal parses a wire payload.
func DecodeSignal(data []byte) (LogoutSignal, error) {
	var signal LogoutSignal
	if err := json.Unmarshal(data, &signal); err != nil {
		return LogoutSignal{}, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to decode logout signal")
	}
	return signal, nil
}

// ShouldApply reports whether a received signal concerns us: signals we
// published ourselves bounce back on the channel and must be ignored.
func ShouldApply(signal LogoutSignal, localInstanceID string) bool {
	return signal.Source != "" && signal.Source != localInstanceID
}
