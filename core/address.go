package core

import (
	"regexp"
	"strings"
)

// ProductName is shown on the first line of every challenge message.
const ProductName = "Siggy Profile"

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// IsAddress reports whether s is exactly 0x followed by 40 hex digits.
func IsAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// NormalizeAddress returns the canonical lowercase form used for storage and comparison.
func NormalizeAddress(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ChallengeMessage builds the text a wallet is asked to sign.
// The address is embedded as submitted, not normalized.
func ChallengeMessage(address, nonce string) string {
	return strings.Join([]string{
		"Sign in to " + ProductName,
		"Address: " + address,
		NonceLine(nonce),
	}, "\n")
}

// NonceLine is the line a signed message must contain to be bound to a challenge.
func NonceLine(nonce string) string {
	return "Nonce: " + nonce
}
