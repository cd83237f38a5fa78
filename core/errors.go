package core

import "errors"

// Request validation
var (
	ErrInvalidBody      = errors.New("invalid request body")
	ErrInvalidAddress   = errors.New("invalid wallet address")
	ErrMissingSignature = errors.New("missing signature payload")
)

// Wallet authentication
var (
	ErrChallengeExpired  = errors.New("challenge expired")
	ErrWalletMismatch    = errors.New("wallet mismatch")
	ErrInvalidNonce      = errors.New("invalid challenge nonce")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrSignatureMismatch = errors.New("signature does not match address")
	ErrUnauthorized      = errors.New("unauthorized")
)

// Token handling. ErrInvalidToken covers every verification failure so callers
// cannot tell a bad signature from a bad body or an expired token.
var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrNotConfigured = errors.New("signing secret is not configured")
)

// User store
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrIdentityConflict   = errors.New("identity already exists")
	ErrContactTaken       = errors.New("contact already linked to another profile")
	ErrInvalidIdentity    = errors.New("invalid identity payload")
	ErrInvalidInteraction = errors.New("invalid interaction type")
)

// Profile validation
var (
	ErrInvalidEmail   = errors.New("invalid email format")
	ErrInvalidDiscord = errors.New("invalid discord handle")
	ErrInvalidTwitter = errors.New("invalid twitter handle")
)
