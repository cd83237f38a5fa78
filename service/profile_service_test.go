package service

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/siggy-land/siggy/adapters/users"
	"github.com/siggy-land/siggy/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profileWallet = "0x1111111111111111111111111111111111111111"

func newProfileFixture(t *testing.T) (*ProfileService, *core.User) {
	t.Helper()
	store := users.NewMemoryStore()
	user, err := store.EnsureUserFromIdentity(context.Background(), core.Identity{
		Provider:    core.ProviderWallet,
		ProviderUID: profileWallet,
		Identifier:  profileWallet,
	})
	require.NoError(t, err)
	return NewProfileService(store), user
}

func TestNormalizeProfile(t *testing.T) {
	patch, err := NormalizeProfile(ProfileInput{
		Email:   "  Cat@Siggy.Land ",
		Discord: "@@siggy.cat",
		Twitter: "siggy_cat",
		Wallet:  "0xAbCdEf0000000000000000000000000000000000",
	})
	require.NoError(t, err)
	assert.Equal(t, "cat@siggy.land", patch.Email)
	assert.Equal(t, "@siggy.cat", patch.Discord)
	assert.Equal(t, "@siggy_cat", patch.Twitter)
	assert.Equal(t, "0xabcdef0000000000000000000000000000000000", patch.Wallet)

	empty, err := NormalizeProfile(ProfileInput{Discord: "@", Twitter: " "})
	require.NoError(t, err)
	assert.Equal(t, core.ProfilePatch{}, empty)
}

func TestNormalizeProfileRejects(t *testing.T) {
	tests := []struct {
		input ProfileInput
		want  error
	}{
		{ProfileInput{Email: "not-an-email"}, core.ErrInvalidEmail},
		{ProfileInput{Discord: "x"}, core.ErrInvalidDiscord},
		{ProfileInput{Discord: "has space"}, core.ErrInvalidDiscord},
		{ProfileInput{Twitter: "sixteen_chars_xx"}, core.ErrInvalidTwitter},
		{ProfileInput{Twitter: "dots.not.ok"}, core.ErrInvalidTwitter},
		{ProfileInput{Wallet: "0x123"}, core.ErrInvalidAddress},
	}
	for _, tt := range tests {
		_, err := NormalizeProfile(tt.input)
		assert.ErrorIs(t, err, tt.want, "%+v", tt.input)
	}
}

func TestProfileUpdateAndSnapshot(t *testing.T) {
	ctx := context.Background()
	s, user := newProfileFixture(t)

	snap, err := s.Update(ctx, user.ID, ProfileInput{Email: "cat@siggy.land", Twitter: "@siggy", Wallet: profileWallet})
	require.NoError(t, err)
	assert.Equal(t, "cat@siggy.land", snap.User.Email)
	assert.Equal(t, "@siggy", snap.User.Twitter)
	assert.Equal(t, int64(1), snap.Totals[core.InteractionProfileUpdate])
	require.Len(t, snap.Recent, 1)
	assert.Equal(t, core.InteractionProfileUpdate, snap.Recent[0].Type)

	// Omitted fields are cleared
	snap, err = s.Update(ctx, user.ID, ProfileInput{Wallet: profileWallet})
	require.NoError(t, err)
	assert.Empty(t, snap.User.Email)
	assert.Empty(t, snap.User.Twitter)
	assert.Equal(t, int64(2), snap.Totals[core.InteractionProfileUpdate])
}

func TestProfileSnapshotUnknownUser(t *testing.T) {
	s, _ := newProfileFixture(t)
	_, err := s.Snapshot(context.Background(), 404)
	assert.ErrorIs(t, err, core.ErrUserNotFound)
}

func TestTrackInteraction(t *testing.T) {
	ctx := context.Background()
	s, user := newProfileFixture(t)

	three := 3.9
	negative := -2.0
	require.NoError(t, s.TrackInteraction(ctx, user.ID, "ask_prompt", &three, json.RawMessage(`{"len":12}`)))
	require.NoError(t, s.TrackInteraction(ctx, user.ID, " ask_prompt ", &negative, json.RawMessage(`[1,2]`)))
	require.NoError(t, s.TrackInteraction(ctx, user.ID, "visit_home", nil, json.RawMessage(`"str"`)))

	assert.ErrorIs(t, s.TrackInteraction(ctx, user.ID, "Bad", nil, nil), core.ErrInvalidInteraction)
	assert.ErrorIs(t, s.TrackInteraction(ctx, user.ID, "a", nil, nil), core.ErrInvalidInteraction)

	snap, err := s.Snapshot(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), snap.Totals["ask_prompt"])
	assert.Equal(t, int64(1), snap.Totals["visit_home"])

	require.Len(t, snap.Recent, 3)
	assert.Nil(t, snap.Recent[0].Metadata)
	assert.JSONEq(t, `[1,2]`, string(snap.Recent[1].Metadata))
	assert.JSONEq(t, `{"len":12}`, string(snap.Recent[2].Metadata))
}

func TestStructuredOrNil(t *testing.T) {
	for _, raw := range []string{`{"a":1}`, ` [1,2]`, `[]`} {
		assert.NotNil(t, structuredOrNil(json.RawMessage(raw)), raw)
	}
	for _, raw := range []string{``, `null`, `"str"`, `12`, `true`, `{broken`} {
		assert.Nil(t, structuredOrNil(json.RawMessage(raw)), raw)
	}
}

func TestParseInteractionValue(t *testing.T) {
	tests := []struct {
		raw  string
		want *float64
	}{
		{``, nil},
		{`null`, nil},
		{`5`, ptr(5)},
		{`2.7`, ptr(2.7)},
		{`"5"`, ptr(5)},
		{`" 12.5 "`, ptr(12.5)},
		{`"1e3"`, ptr(1000)},
		{`""`, nil},
		{`"abc"`, nil},
		{`true`, ptr(1)},
		{`false`, ptr(0)},
		{`{"n":5}`, nil},
	}
	for _, tt := range tests {
		got := ParseInteractionValue(json.RawMessage(tt.raw))
		if tt.want == nil {
			assert.Nil(t, got, tt.raw)
			continue
		}
		require.NotNil(t, got, tt.raw)
		assert.Equal(t, *tt.want, *got, tt.raw)
	}

	assert.Equal(t, int64(5), interactionValue(ParseInteractionValue(json.RawMessage(`"5"`))))
	assert.Equal(t, int64(1), interactionValue(ParseInteractionValue(json.RawMessage(`"Infinity"`))))
}

func ptr(f float64) *float64 { return &f }

func TestInteractionValue(t *testing.T) {
	v := func(f float64) *float64 { return &f }
	assert.Equal(t, int64(1), interactionValue(nil))
	assert.Equal(t, int64(1), interactionValue(v(math.NaN())))
	assert.Equal(t, int64(1), interactionValue(v(0.5)))
	assert.Equal(t, int64(7), interactionValue(v(7.99)))
	assert.Equal(t, int64(math.MaxInt32), interactionValue(v(1e30)))
}
