package secret

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveExplicitWins(t *testing.T) {
	s := Resolve("  top-secret ", []string{"hint"})
	assert.Equal(t, SourceExplicit, s.Source())
	assert.Equal(t, []byte("top-secret"), s.Bytes())
	assert.False(t, s.Insecure())
}

func TestResolveDerivesFromFirstHint(t *testing.T) {
	s := Resolve("", []string{"", "   ", "deploy-123", "ignored"})

	sum := sha256.Sum256([]byte("siggy-profile-auth:deploy-123"))
	assert.Equal(t, SourceDerived, s.Source())
	assert.Equal(t, hex.EncodeToString(sum[:]), string(s.Bytes()))
	assert.True(t, s.Insecure())
}

func TestResolveIsDeterministic(t *testing.T) {
	a := Resolve("", []string{"deploy-123"})
	b := Resolve("", []string{"deploy-123"})
	assert.Equal(t, a, b)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestResolveDevelopmentFallback(t *testing.T) {
	s := Resolve("", nil)
	assert.Equal(t, SourceDevelopment, s.Source())
	assert.Equal(t, DevelopmentSecret, string(s.Bytes()))
	assert.True(t, s.Insecure())
}

func TestFingerprintDoesNotLeak(t *testing.T) {
	s := Resolve("top-secret", nil)
	assert.NotContains(t, s.Fingerprint(), "top-secret")
	assert.Len(t, s.Fingerprint(), 16)
}
