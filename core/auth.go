package core

import "time"

// Provider identifies the kind of external identity a session was issued for
type Provider string

const (
	// ProviderWallet is an Ethereum wallet proven by a personal_sign challenge
	ProviderWallet Provider = "wallet"
)

const (
	// ChallengeTTL bounds how long a signed challenge can be redeemed
	ChallengeTTL = 15 * time.Minute

	// SessionTTL is the lifetime of a session cookie
	SessionTTL = 30 * 24 * time.Hour

	// NonceBytes is the entropy of a challenge nonce before hex encoding
	NonceBytes = 12
)

// Challenge represents an outstanding wallet login challenge
type Challenge struct {
	Address   string    // Lowercase Ethereum address the challenge was issued for
	Nonce     string    // Random hex nonce embedded in the message
	IssuedAt  time.Time // When the challenge was created
	ExpiresAt time.Time // When the challenge expires
}

// Session represents an authenticated user session
type Session struct {
	Provider   Provider `json:"provider"`
	UID        string   `json:"uid"`
	Identifier string   `json:"identifier"`
	At         int64    `json:"at"` // Unix milliseconds of the login
}

// Identity links an external account to a stored user
type Identity struct {
	Provider    Provider
	ProviderUID string
	Identifier  string
}

// AuthContext is what the session gate hands to protected endpoints
type AuthContext struct {
	Session *Session `json:"session"`
	User    *User    `json:"user"`
}
