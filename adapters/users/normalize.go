// Package users holds UserStore adapters.
package users

import (
	"encoding/json"
	"strings"

	"github.com/siggy-land/siggy/core"
)

func normalizeIdentity(identity core.Identity) (core.Identity, error) {
	identity.ProviderUID = strings.TrimSpace(identity.ProviderUID)
	identity.Identifier = strings.TrimSpace(identity.Identifier)
	if identity.Provider == "" || identity.ProviderUID == "" || identity.Identifier == "" {
		return core.Identity{}, core.ErrInvalidIdentity
	}
	return identity, nil
}

func normalizeInteraction(interaction core.Interaction) (core.Interaction, error) {
	interaction.Type = strings.TrimSpace(interaction.Type)
	if interaction.Type == "" {
		return core.Interaction{}, core.ErrInvalidInteraction
	}
	if interaction.Value < 1 {
		interaction.Value = 1
	}
	if len(interaction.Metadata) > 0 && !json.Valid(interaction.Metadata) {
		interaction.Metadata = nil
	}
	return interaction, nil
}
