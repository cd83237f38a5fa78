package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/siggy-land/siggy/core"
	"github.com/siggy-land/siggy/ports"
)

type identityKey struct {
	provider core.Provider
	uid      string
}

// MemoryStore is an in-memory implementation of the UserStore interface.
// It enforces the same uniqueness rules as the SQL schema.
type MemoryStore struct {
	mu          sync.RWMutex
	nextUserID  int64
	nextEventID int64
	users       map[int64]core.User
	identities  map[identityKey]int64
	events      map[int64][]core.InteractionEvent
	now         func() time.Time
}

// NewMemoryStore creates a new in-memory user store
func NewMemoryStore() ports.UserStore {
	return &MemoryStore{
		users:      make(map[int64]core.User),
		identities: make(map[identityKey]int64),
		events:     make(map[int64][]core.InteractionEvent),
		now:        time.Now,
	}
}

func (s *MemoryStore) EnsureUserFromIdentity(ctx context.Context, identity core.Identity) (*core.User, error) {
	identity, err := normalizeIdentity(identity)
	if err != nil {
		return nil, err
	}
	wallet := core.NormalizeAddress(identity.Identifier)

	s.mu.Lock()
	defer s.mu.Unlock()

	key := identityKey{identity.Provider, identity.ProviderUID}
	userID, ok := s.identities[key]
	if !ok {
		if existing, found := s.findBy(func(u core.User) bool { return u.Wallet == wallet }); found {
			userID = existing.ID
		} else {
			userID = s.createUser(wallet)
		}
		s.identities[key] = userID
	}

	user, ok := s.users[userID]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	if _, taken := s.findBy(func(u core.User) bool { return u.ID != userID && u.Wallet == wallet }); taken {
		return nil, core.ErrContactTaken
	}
	user.Wallet = wallet
	user.UpdatedAt = s.nowMs()
	s.users[userID] = user

	return &user, nil
}

func (s *MemoryStore) GetUserByIdentity(ctx context.Context, provider core.Provider, providerUID string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.identities[identityKey{provider, providerUID}]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	user, ok := s.users[userID]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return &user, nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, userID int64) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return &user, nil
}

func (s *MemoryStore) UpdateProfile(ctx context.Context, userID int64, patch core.ProfilePatch) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, core.ErrUserNotFound
	}

	_, conflict := s.findBy(func(u core.User) bool {
		if u.ID == userID {
			return false
		}
		return (patch.Email != "" && u.Email == patch.Email) ||
			(patch.Discord != "" && u.Discord == patch.Discord) ||
			(patch.Twitter != "" && u.Twitter == patch.Twitter) ||
			(patch.Wallet != "" && u.Wallet == patch.Wallet)
	})
	if conflict {
		return nil, core.ErrContactTaken
	}

	user.Email = patch.Email
	user.Discord = patch.Discord
	user.Twitter = patch.Twitter
	user.Wallet = patch.Wallet
	user.UpdatedAt = s.nowMs()
	s.users[userID] = user

	if patch.Wallet != "" {
		key := identityKey{core.ProviderWallet, patch.Wallet}
		if _, linked := s.identities[key]; !linked {
			s.identities[key] = userID
		}
	}

	return &user, nil
}

func (s *MemoryStore) AddInteraction(ctx context.Context, userID int64, interaction core.Interaction) error {
	interaction, err := normalizeInteraction(interaction)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return core.ErrUserNotFound
	}

	s.nextEventID++
	s.events[userID] = append(s.events[userID], core.InteractionEvent{
		ID:       s.nextEventID,
		Type:     interaction.Type,
		Value:    interaction.Value,
		Metadata: interaction.Metadata,
		TS:       s.nowMs(),
	})

	return nil
}

func (s *MemoryStore) ListRecentInteractions(ctx context.Context, userID int64, limit int) ([]core.InteractionEvent, error) {
	limit = core.ClampRecentLimit(limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	events := append([]core.InteractionEvent(nil), s.events[userID]...)
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].TS != events[j].TS {
			return events[i].TS > events[j].TS
		}
		return events[i].ID > events[j].ID
	})
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (s *MemoryStore) InteractionTotals(ctx context.Context, userID int64) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]int64)
	for _, e := range s.events[userID] {
		totals[e.Type] += e.Value
	}
	return totals, nil
}

// createUser and findBy expect mu to be held

func (s *MemoryStore) createUser(wallet string) int64 {
	s.nextUserID++
	now := s.nowMs()
	s.users[s.nextUserID] = core.User{
		ID:        s.nextUserID,
		Wallet:    wallet,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.nextUserID
}

func (s *MemoryStore) findBy(match func(core.User) bool) (core.User, bool) {
	for _, u := range s.users {
		if match(u) {
			return u, true
		}
	}
	return core.User{}, false
}

func (s *MemoryStore) nowMs() int64 {
	return s.now().UnixMilli()
}
