package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/siggy-land/siggy/core"
	"github.com/siggy-land/siggy/internal/eth"
	"github.com/siggy-land/siggy/ports"
	"github.com/sirupsen/logrus"
)

// IssuedChallenge is returned to a client that asked to sign in
type IssuedChallenge struct {
	Challenge core.Challenge
	Address   string // as submitted
	Message   string
}

// VerifyRequest is what a wallet sends back after signing the challenge message
type VerifyRequest struct {
	Address   string
	Message   string
	Signature string
}

// ChallengeReader loads the challenge the client was issued. It returns a nil
// challenge when none is readable and an error only for server-side failures.
type ChallengeReader func() (*core.Challenge, error)

// AuthService handles wallet authentication business logic
type AuthService struct {
	users  ports.UserStore
	nonces ports.NonceStore
	events ports.EventPublisher

	now          func() time.Time
	log          *logrus.Entry
	challengeTTL time.Duration
}

// Option configures an AuthService
type Option func(*AuthService)

// WithNonceStore makes every challenge redeemable at most once across all
// instances sharing store. Without it a challenge stays valid until its
// cookie is cleared or expires.
func WithNonceStore(store ports.NonceStore) Option {
	return func(s *AuthService) {
		s.nonces = store
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) {
		s.now = now
	}
}

// NewAuthService creates a new authentication service
func NewAuthService(users ports.UserStore, events ports.EventPublisher, opts ...Option) *AuthService {
	s := &AuthService{
		users:        users,
		events:       events,
		now:          time.Now,
		log:          logrus.WithField("component", "auth"),
		challengeTTL: core.ChallengeTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SingleUseNonces reports whether challenges are tracked server side
func (s *AuthService) SingleUseNonces() bool {
	return s.nonces != nil
}

// CreateChallenge generates a new challenge for address
func (s *AuthService) CreateChallenge(ctx context.Context, address string) (*IssuedChallenge, error) {
	address = strings.TrimSpace(address)
	if !core.IsAddress(address) {
		return nil, core.ErrInvalidAddress
	}

	nonceBytes := make([]byte, core.NonceBytes)
	if _, err := rand.Read(nonceBytes); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(nonceBytes)

	now := s.now()
	challenge := core.Challenge{
		Address:   core.NormalizeAddress(address),
		Nonce:     nonce,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.challengeTTL),
	}

	if s.nonces != nil {
		if err := s.nonces.Put(ctx, nonce, challenge.Address, s.challengeTTL); err != nil {
			return nil, fmt.Errorf("failed to register nonce: %w", err)
		}
	}

	return &IssuedChallenge{
		Challenge: challenge,
		Address:   address,
		Message:   core.ChallengeMessage(address, nonce),
	}, nil
}

// Login checks a signed challenge and returns the authenticated user.
// Each failed check returns its own sentinel error.
func (s *AuthService) Login(ctx context.Context, req VerifyRequest, read ChallengeReader) (*core.AuthContext, error) {
	address := strings.TrimSpace(req.Address)
	if !core.IsAddress(address) {
		return nil, core.ErrInvalidAddress
	}
	if req.Message == "" || req.Signature == "" {
		return nil, core.ErrMissingSignature
	}

	challenge, err := read()
	if err != nil {
		return nil, err
	}
	if challenge == nil {
		return nil, core.ErrChallengeExpired
	}

	if challenge.Address != core.NormalizeAddress(address) {
		return nil, core.ErrWalletMismatch
	}

	if !strings.Contains(req.Message, core.NonceLine(challenge.Nonce)) {
		return nil, core.ErrInvalidNonce
	}

	signer, err := eth.RecoverAddress(req.Message, req.Signature)
	if err != nil {
		s.log.WithError(err).Debug("signature recovery failed")
		return nil, core.ErrInvalidSignature
	}
	recovered := core.NormalizeAddress(signer.Hex())
	if recovered != challenge.Address {
		return nil, core.ErrSignatureMismatch
	}

	if s.nonces != nil {
		owner, err := s.nonces.Consume(ctx, challenge.Nonce)
		if err != nil {
			if errors.Is(err, core.ErrChallengeExpired) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to consume nonce: %w", err)
		}
		if owner != challenge.Address {
			return nil, core.ErrChallengeExpired
		}
	}

	user, err := s.ensureUser(ctx, core.Identity{
		Provider:    core.ProviderWallet,
		ProviderUID: recovered,
		Identifier:  recovered,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to attach wallet account: %w", err)
	}

	if err := s.users.AddInteraction(ctx, user.ID, core.Interaction{
		Type:     core.InteractionAuthLogin,
		Value:    1,
		Metadata: []byte(`{"provider":"wallet"}`),
	}); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	if err := s.events.PublishLogin(ctx, user.ID, recovered); err != nil {
		// best effort
		s.log.WithError(err).Warn("failed to publish login event")
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "address": recovered}).Info("wallet signed in")

	return &core.AuthContext{
		Session: &core.Session{
			Provider:   core.ProviderWallet,
			UID:        recovered,
			Identifier: recovered,
			At:         s.now().UnixMilli(),
		},
		User: user,
	}, nil
}

// Authenticate resolves a session read from a cookie to its user.
// A missing, malformed or orphaned session yields (nil, nil).
func (s *AuthService) Authenticate(ctx context.Context, session *core.Session) (*core.AuthContext, error) {
	if session == nil {
		return nil, nil
	}

	switch session.Provider {
	case core.ProviderWallet:
	default:
		return nil, nil
	}

	uid := strings.TrimSpace(session.UID)
	if uid == "" {
		return nil, nil
	}

	user, err := s.users.GetUserByIdentity(ctx, session.Provider, uid)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return &core.AuthContext{Session: session, User: user}, nil
}

// Logout records the end of a session. Clearing cookies is the caller's job.
func (s *AuthService) Logout(ctx context.Context, session *core.Session) {
	var address string
	if session != nil {
		address = session.UID
	}
	if err := s.events.PublishLogout(ctx, address); err != nil {
		s.log.WithError(err).Warn("failed to publish logout event")
	}
}

// ensureUser upserts the identity, re-reading when a concurrent request won the insert
func (s *AuthService) ensureUser(ctx context.Context, identity core.Identity) (*core.User, error) {
	user, err := s.users.EnsureUserFromIdentity(ctx, identity)
	if errors.Is(err, core.ErrIdentityConflict) {
		s.log.WithField("provider_uid", identity.ProviderUID).Debug("identity insert raced, re-reading")
		return s.users.GetUserByIdentity(ctx, identity.Provider, identity.ProviderUID)
	}
	return user, err
}
