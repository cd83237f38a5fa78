package core

import "time"

// PayloadKind discriminates the variants of Payload.
type PayloadKind string

const (
	PayloadChallenge PayloadKind = "siggy:challenge"
	PayloadSession   PayloadKind = "siggy:session"
)

// Payload is the closed set of shapes that can travel inside a signed envelope.
// The unexported method keeps the set closed to this package.
type Payload interface {
	Kind() PayloadKind
	payload()
}

// ChallengePayload is carried by the wallet challenge cookie
type ChallengePayload struct {
	Address string
	Nonce   string
}

// SessionPayload is carried by the session cookie
type SessionPayload struct {
	Session Session
}

func (ChallengePayload) Kind() PayloadKind { return PayloadChallenge }
func (SessionPayload) Kind() PayloadKind   { return PayloadSession }

func (ChallengePayload) payload() {}
func (SessionPayload) payload()   {}

// Envelope is a verified payload together with its signing window
type Envelope struct {
	Payload   Payload
	IssuedAt  time.Time
	ExpiresAt time.Time
}
