package ports

import (
	"context"
	"time"

	"github.com/siggy-land/siggy/core"
)

// NonceStore tracks issued challenge nonces so each can be redeemed once
type NonceStore interface {
	// Put registers nonce for address until ttl elapses
	Put(ctx context.Context, nonce, address string, ttl time.Duration) error

	// Consume atomically removes nonce and returns the address it was issued for.
	// It returns core.ErrChallengeExpired when the nonce is unknown, spent or expired.
	Consume(ctx context.Context, nonce string) (string, error)
}

// UserStore persists users, their linked identities and their interactions
type UserStore interface {
	// EnsureUserFromIdentity returns the user linked to identity, creating and
	// linking one if needed. A concurrent insert of the same identity surfaces
	// as core.ErrIdentityConflict.
	EnsureUserFromIdentity(ctx context.Context, identity core.Identity) (*core.User, error)

	// GetUserByIdentity returns core.ErrUserNotFound when nothing is linked
	GetUserByIdentity(ctx context.Context, provider core.Provider, providerUID string) (*core.User, error)

	GetUserByID(ctx context.Context, userID int64) (*core.User, error)
	UpdateProfile(ctx context.Context, userID int64, patch core.ProfilePatch) (*core.User, error)

	AddInteraction(ctx context.Context, userID int64, interaction core.Interaction) error
	ListRecentInteractions(ctx context.Context, userID int64, limit int) ([]core.InteractionEvent, error)
	InteractionTotals(ctx context.Context, userID int64) (map[string]int64, error)
}
