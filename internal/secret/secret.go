// Package secret resolves the HMAC key used to sign auth cookies.
//
// Resolution happens once at startup and the result is passed to the tokenizer.
// An explicitly configured secret always wins. Without one, a key is derived from
// the first non-empty deployment hint so that every instance of the same deployment
// agrees on it. As a last resort a fixed, publicly known development key is used.
package secret

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Source records how a secret was obtained
type Source string

const (
	SourceExplicit    Source = "explicit"
	SourceDerived     Source = "derived"
	SourceDevelopment Source = "development"

	// DevelopmentSecret is shared by every deployment that reaches the last resort.
	DevelopmentSecret = "siggy-dev-secret-change-me"

	derivationSalt = "siggy-profile-auth:"
)

// Secret is a resolved signing key
type Secret struct {
	value  string
	source Source
}

// Resolve picks the signing secret. hints are tried in order.
func Resolve(explicit string, hints []string) Secret {
	if v := strings.TrimSpace(explicit); v != "" {
		return Secret{value: v, source: SourceExplicit}
	}
	if seed := firstNonEmpty(hints); seed != "" {
		return Secret{value: derive(seed), source: SourceDerived}
	}
	return Secret{value: DevelopmentSecret, source: SourceDevelopment}
}

// Bytes returns the key material
func (s Secret) Bytes() []byte {
	return []byte(s.value)
}

func (s Secret) Source() Source {
	return s.source
}

// Insecure reports whether the secret was not set by an operator.
// Derived secrets are only as private as the hint they came from.
func (s Secret) Insecure() bool {
	return s.source != SourceExplicit
}

// Fingerprint identifies the secret without revealing it.
func (s Secret) Fingerprint() string {
	sum := sha256.Sum256([]byte("fingerprint:" + s.value))
	return hex.EncodeToString(sum[:8])
}

func derive(seed string) string {
	sum := sha256.Sum256([]byte(derivationSalt + seed))
	return hex.EncodeToString(sum[:])
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
