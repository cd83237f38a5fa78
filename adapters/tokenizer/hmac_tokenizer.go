package tokenizer

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/siggy-land/siggy/core"
	"github.com/siggy-land/siggy/ports"
	"github.com/sirupsen/logrus"
)

var (
	errMalformed = errors.New("malformed token")
	errSignature = errors.New("signature mismatch")
	errExpired   = errors.New("token expired")
	errAudience  = errors.New("unknown audience")
)

var encoding = base64.RawURLEncoding

// HMACTokenizer implements the Tokenizer interface as base64url(JSON) + "." +
// base64url(HMAC-SHA256(key, body)). Nothing is kept server side.
type HMACTokenizer struct {
	key []byte
	now func() time.Time
	log *logrus.Entry
}

// Option configures an HMACTokenizer
type Option func(*HMACTokenizer)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(t *HMACTokenizer) {
		t.now = now
	}
}

// NewHMACTokenizer creates a new HMAC tokenizer
func NewHMACTokenizer(key []byte, opts ...Option) ports.Tokenizer {
	t := &HMACTokenizer{
		key: key,
		now: time.Now,
		log: logrus.WithField("component", "tokenizer"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Sign wraps payload with iat/exp and signs it
func (t *HMACTokenizer) Sign(payload core.Payload, ttl time.Duration) (string, error) {
	if len(t.key) == 0 {
		return "", core.ErrNotConfigured
	}
	if ttl < time.Second {
		return "", fmt.Errorf("ttl must be at least one second, got %s", ttl)
	}

	now := t.now()
	envelope := EnvelopeClaims{
		Audience:  string(payload.Kind()),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	var claims any
	switch p := payload.(type) {
	case core.ChallengePayload:
		claims = ChallengeClaims{Address: p.Address, Nonce: p.Nonce, EnvelopeClaims: envelope}
	case core.SessionPayload:
		claims = SessionClaims{
			Provider:       string(p.Session.Provider),
			UID:            p.Session.UID,
			Identifier:     p.Session.Identifier,
			At:             p.Session.At,
			EnvelopeClaims: envelope,
		}
	default:
		return "", fmt.Errorf("unsupported payload %T", payload)
	}

	raw, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to encode token: %w", err)
	}
	body := encoding.EncodeToString(raw)

	sig, err := t.signature(body)
	if err != nil {
		return "", err
	}

	return body + "." + sig, nil
}

// Verify checks the signature and expiry of token and decodes its payload
func (t *HMACTokenizer) Verify(token string) (*core.Envelope, error) {
	if len(t.key) == 0 {
		return nil, core.ErrNotConfigured
	}

	envelope, err := t.verify(token)
	if err != nil {
		t.log.WithError(err).Debug("token rejected")
		return nil, core.ErrInvalidToken
	}

	return envelope, nil
}

func (t *HMACTokenizer) verify(token string) (*core.Envelope, error) {
	body, sig, ok := strings.Cut(token, ".")
	if !ok || body == "" || sig == "" {
		return nil, errMalformed
	}

	expected, err := t.signature(body)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(sig), []byte(expected)) != 1 {
		return nil, errSignature
	}

	raw, err := encoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}

	var envelope EnvelopeClaims
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if envelope.IssuedAt == nil || envelope.ExpiresAt == nil {
		return nil, errMalformed
	}
	if envelope.ExpiresAt.Unix() <= t.now().Unix() {
		return nil, errExpired
	}

	var payload core.Payload
	switch core.PayloadKind(envelope.Audience) {
	case core.PayloadChallenge:
		var claims ChallengeClaims
		if err := json.Unmarshal(raw, &claims); err != nil {
			return nil, fmt.Errorf("%w: %v", errMalformed, err)
		}
		payload = core.ChallengePayload{Address: claims.Address, Nonce: claims.Nonce}
	case core.PayloadSession:
		var claims SessionClaims
		if err := json.Unmarshal(raw, &claims); err != nil {
			return nil, fmt.Errorf("%w: %v", errMalformed, err)
		}
		payload = core.SessionPayload{Session: core.Session{
			Provider:   core.Provider(claims.Provider),
			UID:        claims.UID,
			Identifier: claims.Identifier,
			At:         claims.At,
		}}
	default:
		return nil, errAudience
	}

	return &core.Envelope{
		Payload:   payload,
		IssuedAt:  envelope.IssuedAt.Time,
		ExpiresAt: envelope.ExpiresAt.Time,
	}, nil
}

func (t *HMACTokenizer) signature(body string) (string, error) {
	sig, err := jwt.SigningMethodHS256.Sign(body, t.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return encoding.EncodeToString(sig), nil
}
