package core

import "encoding/json"

// User is a stored profile. Empty strings mean "not set".
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Discord   string `json:"discord"`
	Twitter   string `json:"twitter"`
	Wallet    string `json:"wallet"`
	CreatedAt int64  `json:"createdAt"` // Unix milliseconds
	UpdatedAt int64  `json:"updatedAt"` // Unix milliseconds
}

// ProfilePatch carries already-normalized profile fields; empty clears a field.
type ProfilePatch struct {
	Email   string
	Discord string
	Twitter string
	Wallet  string
}

// Interaction is a tracked user action
type Interaction struct {
	Type     string
	Value    int64
	Metadata json.RawMessage
}

// InteractionEvent is a stored Interaction
type InteractionEvent struct {
	ID       int64           `json:"id"`
	Type     string          `json:"type"`
	Value    int64           `json:"value"`
	Metadata json.RawMessage `json:"metadata"`
	TS       int64           `json:"ts"`
}

const (
	InteractionAuthLogin     = "auth_login"
	InteractionProfileUpdate = "profile_update"

	DefaultRecentLimit = 20
	MaxRecentLimit     = 200
)

// ClampRecentLimit bounds a requested history length to [1, MaxRecentLimit].
func ClampRecentLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxRecentLimit {
		return MaxRecentLimit
	}
	return limit
}
