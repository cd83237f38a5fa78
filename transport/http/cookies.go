package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/siggy-land/siggy/core"
	"github.com/siggy-land/siggy/ports"
)

const (
	SessionCookie   = "siggy_profile_session"
	ChallengeCookie = "siggy_wallet_login"
)

// CookieCodec stores signed payloads in HTTP-only cookies
type CookieCodec struct {
	tokens ports.Tokenizer
	secure bool
}

// NewCookieCodec creates a codec. secure sets the Secure attribute on every cookie.
func NewCookieCodec(tokens ports.Tokenizer, secure bool) *CookieCodec {
	return &CookieCodec{tokens: tokens, secure: secure}
}

// Secure reports whether cookies carry the Secure attribute
func (cc *CookieCodec) Secure() bool {
	return cc.secure
}

// SetChallenge replaces any outstanding challenge cookie
func (cc *CookieCodec) SetChallenge(c *gin.Context, challenge core.Challenge) error {
	return cc.write(c, ChallengeCookie, core.ChallengePayload{
		Address: challenge.Address,
		Nonce:   challenge.Nonce,
	}, core.ChallengeTTL)
}

// ReadChallenge returns the challenge carried by the request, or nil when the
// cookie is absent, tampered with or expired. A missing secret is an error.
func (cc *CookieCodec) ReadChallenge(c *gin.Context) (*core.Challenge, error) {
	env, err := cc.read(c, ChallengeCookie)
	if env == nil || err != nil {
		return nil, err
	}

	p, ok := env.Payload.(core.ChallengePayload)
	if !ok || p.Address == "" || p.Nonce == "" {
		return nil, nil
	}

	return &core.Challenge{
		Address:   core.NormalizeAddress(p.Address),
		Nonce:     p.Nonce,
		IssuedAt:  env.IssuedAt,
		ExpiresAt: env.ExpiresAt,
	}, nil
}

// SetSession issues the session cookie
func (cc *CookieCodec) SetSession(c *gin.Context, session core.Session) error {
	return cc.write(c, SessionCookie, core.SessionPayload{Session: session}, core.SessionTTL)
}

// ReadSession returns the session carried by the request, or nil when there is none.
func (cc *CookieCodec) ReadSession(c *gin.Context) (*core.Session, error) {
	env, err := cc.read(c, SessionCookie)
	if env == nil || err != nil {
		return nil, err
	}

	p, ok := env.Payload.(core.SessionPayload)
	if !ok || p.Session.Provider == "" || strings.TrimSpace(p.Session.UID) == "" {
		return nil, nil
	}

	session := p.Session
	return &session, nil
}

// ClearChallenge expires the challenge cookie
func (cc *CookieCodec) ClearChallenge(c *gin.Context) {
	cc.clear(c, ChallengeCookie)
}

// ClearAll expires both auth cookies
func (cc *CookieCodec) ClearAll(c *gin.Context) {
	cc.clear(c, SessionCookie)
	cc.clear(c, ChallengeCookie)
}

func (cc *CookieCodec) write(c *gin.Context, name string, payload core.Payload, ttl time.Duration) error {
	token, err := cc.tokens.Sign(payload, ttl)
	if err != nil {
		return err
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   cc.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (cc *CookieCodec) read(c *gin.Context, name string) (*core.Envelope, error) {
	value, err := c.Cookie(name)
	if err != nil || value == "" {
		return nil, nil
	}

	env, err := cc.tokens.Verify(value)
	if err != nil {
		if errors.Is(err, core.ErrNotConfigured) {
			return nil, err
		}
		return nil, nil
	}
	return env, nil
}

func (cc *CookieCodec) clear(c *gin.Context, name string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   cc.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
