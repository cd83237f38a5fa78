package tokenizer

import "github.com/golang-jwt/jwt/v5"

// EnvelopeClaims are the fields every signed token carries next to its payload.
// Audience names the payload variant.
type EnvelopeClaims struct {
	Audience  string           `json:"aud"`
	IssuedAt  *jwt.NumericDate `json:"iat"`
	ExpiresAt *jwt.NumericDate `json:"exp"`
}

// ChallengeClaims combines the envelope with a wallet challenge
type ChallengeClaims struct {
	Address string `json:"address"`
	Nonce   string `json:"nonce"`
	EnvelopeClaims
}

// SessionClaims combines the envelope with an authenticated session
type SessionClaims struct {
	Provider   string `json:"provider"`
	UID        string `json:"uid"`
	Identifier string `json:"identifier"`
	At         int64  `json:"at"`
	EnvelopeClaims
}
