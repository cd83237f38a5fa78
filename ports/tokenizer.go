package ports

import (
	"time"

	"github.com/siggy-land/siggy/core"
)

// Tokenizer signs payloads into self-contained, expiring tokens and verifies them back
type Tokenizer interface {
	// Sign wraps payload in an envelope valid for ttl and returns the token
	Sign(payload core.Payload, ttl time.Duration) (string, error)

	// Verify returns the envelope carried by token. Any failure, whatever its
	// cause, is reported as core.ErrInvalidToken.
	Verify(token string) (*core.Envelope, error)
}
