package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/siggy-land/siggy/core"
	"github.com/siggy-land/siggy/ports"
	"github.com/sirupsen/logrus"
)

var (
	emailPattern           = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	discordPattern         = regexp.MustCompile(`^[a-zA-Z0-9._-]{2,32}$`)
	twitterPattern         = regexp.MustCompile(`^[a-zA-Z0-9_]{1,15}$`)
	interactionTypePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{1,63}$`)
)

// ProfileInput is a raw profile update as submitted by the client
type ProfileInput struct {
	Email   string
	Discord string
	Twitter string
	Wallet  string
}

// Snapshot is the profile view returned to an authenticated user
type Snapshot struct {
	User   *core.User
	Totals map[string]int64
	Recent []core.InteractionEvent
}

// ProfileService handles profile reads, updates and interaction tracking
type ProfileService struct {
	users ports.UserStore
	log   *logrus.Entry
}

// NewProfileService creates a new profile service
func NewProfileService(users ports.UserStore) *ProfileService {
	return &ProfileService{
		users: users,
		log:   logrus.WithField("component", "profile"),
	}
}

// Snapshot loads the user with interaction totals and the most recent history
func (s *ProfileService) Snapshot(ctx context.Context, userID int64) (*Snapshot, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	totals, err := s.users.InteractionTotals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load totals: %w", err)
	}

	recent, err := s.users.ListRecentInteractions(ctx, userID, core.DefaultRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	if recent == nil {
		recent = []core.InteractionEvent{}
	}

	return &Snapshot{User: user, Totals: totals, Recent: recent}, nil
}

// Update validates input and replaces all four contact fields. A blank field clears it.
func (s *ProfileService) Update(ctx context.Context, userID int64, input ProfileInput) (*Snapshot, error) {
	patch, err := NormalizeProfile(input)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.UpdateProfile(ctx, userID, patch); err != nil {
		return nil, err
	}

	if err := s.users.AddInteraction(ctx, userID, core.Interaction{Type: core.InteractionProfileUpdate, Value: 1}); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("failed to record profile update")
	}

	return s.Snapshot(ctx, userID)
}

// TrackInteraction records a client-reported action. value is floored with a
// minimum of 1; metadata is dropped unless it is a JSON object or array.
func (s *ProfileService) TrackInteraction(ctx context.Context, userID int64, kind string, value *float64, metadata json.RawMessage) error {
	kind = strings.TrimSpace(kind)
	if !interactionTypePattern.MatchString(kind) {
		return core.ErrInvalidInteraction
	}

	return s.users.AddInteraction(ctx, userID, core.Interaction{
		Type:     kind,
		Value:    interactionValue(value),
		Metadata: structuredOrNil(metadata),
	})
}

// NormalizeProfile checks and canonicalizes a profile update
func NormalizeProfile(input ProfileInput) (core.ProfilePatch, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email != "" && !emailPattern.MatchString(email) {
		return core.ProfilePatch{}, core.ErrInvalidEmail
	}

	discord := stripHandle(input.Discord)
	if discord != "" && !discordPattern.MatchString(discord) {
		return core.ProfilePatch{}, core.ErrInvalidDiscord
	}

	twitter := stripHandle(input.Twitter)
	if twitter != "" && !twitterPattern.MatchString(twitter) {
		return core.ProfilePatch{}, core.ErrInvalidTwitter
	}

	wallet := strings.TrimSpace(input.Wallet)
	if wallet != "" && !core.IsAddress(wallet) {
		return core.ProfilePatch{}, core.ErrInvalidAddress
	}

	return core.ProfilePatch{
		Email:   email,
		Discord: withAt(discord),
		Twitter: withAt(twitter),
		Wallet:  core.NormalizeAddress(wallet),
	}, nil
}

func stripHandle(s string) string {
	return strings.TrimLeft(strings.TrimSpace(s), "@")
}

func withAt(handle string) string {
	if handle == "" {
		return ""
	}
	return "@" + handle
}

func interactionValue(v *float64) int64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 1
	}
	floored := math.Floor(*v)
	if floored < 1 {
		return 1
	}
	if floored > math.MaxInt32 {
		return math.MaxInt32
	}
	return int64(floored)
}

// ParseInteractionValue reads a client-supplied value that may be a JSON
// number or a numeric string. Anything else yields nil.
func ParseInteractionValue(raw json.RawMessage) *float64 {
	var v any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return nil
	}

	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil
		}
		f = parsed
	case bool:
		if t {
			f = 1
		}
	default:
		return nil
	}
	return &f
}

func structuredOrNil(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') || !json.Valid(trimmed) {
		return nil
	}
	return raw
}
