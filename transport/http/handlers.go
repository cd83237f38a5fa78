package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/siggy-land/siggy/core"
	"github.com/siggy-land/siggy/service"
	"github.com/sirupsen/logrus"
)

const notConfiguredMessage = "Wallet auth server is not configured. Set AUTH_SECRET."

// AuthHandlers contains HTTP handlers for wallet auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
	cookies     *CookieCodec
	metrics     *Metrics
	log         *logrus.Entry
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService, cookies *CookieCodec, metrics *Metrics) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		cookies:     cookies,
		metrics:     metrics,
		log:         logrus.WithField("component", "http"),
	}
}

// Challenge issues a wallet login challenge and stores it in a cookie
func (h *AuthHandlers) Challenge(c *gin.Context) {
	var req struct {
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, core.ErrInvalidBody)
		return
	}

	issued, err := h.authService.CreateChallenge(c.Request.Context(), req.Address)
	if err != nil {
		h.fail(c, err, "Failed to create challenge.")
		return
	}

	if err := h.cookies.SetChallenge(c, issued.Challenge); err != nil {
		h.fail(c, err, notConfiguredMessage)
		return
	}

	h.metrics.challengeIssued()
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": issued.Message,
		"nonce":   issued.Challenge.Nonce,
		"address": issued.Address,
	})
}

// Verify checks the signed challenge and starts a session
func (h *AuthHandlers) Verify(c *gin.Context) {
	var req struct {
		Address   string `json:"address"`
		Message   string `json:"message"`
		Signature string `json:"signature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.verified("invalid_body")
		respondError(c, core.ErrInvalidBody)
		return
	}

	auth, err := h.authService.Login(c.Request.Context(), service.VerifyRequest{
		Address:   req.Address,
		Message:   req.Message,
		Signature: req.Signature,
	}, func() (*core.Challenge, error) {
		return h.cookies.ReadChallenge(c)
	})
	if err != nil {
		h.metrics.verified(verifyResult(err))
		h.fail(c, err, "Failed to attach wallet account.")
		return
	}

	h.cookies.ClearChallenge(c)
	if err := h.cookies.SetSession(c, *auth.Session); err != nil {
		h.metrics.verified("error")
		h.fail(c, err, notConfiguredMessage)
		return
	}

	h.metrics.verified("ok")
	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"authenticated": true,
		"session":       auth.Session,
		"user":          auth.User,
	})
}

// Session reports the current session, if any
func (h *AuthHandlers) Session(c *gin.Context) {
	auth := authFrom(c)
	if auth == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "authenticated": false, "session": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"authenticated": true,
		"session":       auth.Session,
		"user":          auth.User,
	})
}

// Logout clears both auth cookies. It succeeds with or without a session.
func (h *AuthHandlers) Logout(c *gin.Context) {
	if auth := authFrom(c); auth != nil {
		h.authService.Logout(c.Request.Context(), auth.Session)
	}
	h.cookies.ClearAll(c)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// fail writes err as a JSON error. Server-side failures without a mapped
// message are reported as fallback.
func (h *AuthHandlers) fail(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	if status < http.StatusInternalServerError {
		respondError(c, err)
		return
	}

	h.log.WithError(err).Error("wallet auth failed")
	message := fallback
	if errors.Is(err, core.ErrNotConfigured) {
		message = notConfiguredMessage
	}
	c.JSON(status, errorBody(message))
}

// ProfileHandlers contains HTTP handlers for the authenticated profile
type ProfileHandlers struct {
	profiles *service.ProfileService
	log      *logrus.Entry
}

// NewProfileHandlers creates new profile handlers
func NewProfileHandlers(profiles *service.ProfileService) *ProfileHandlers {
	return &ProfileHandlers{
		profiles: profiles,
		log:      logrus.WithField("component", "http"),
	}
}

// Me returns the profile snapshot of the authenticated user
func (h *ProfileHandlers) Me(c *gin.Context) {
	auth := authFrom(c)

	snap, err := h.profiles.Snapshot(c.Request.Context(), auth.User.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"user":    snap.User,
		"stats":   gin.H{"totals": snap.Totals},
		"recent":  snap.Recent,
		"session": auth.Session,
	})
}

// Update replaces the authenticated user's contact fields
func (h *ProfileHandlers) Update(c *gin.Context) {
	auth := authFrom(c)

	var req struct {
		Email   string `json:"email"`
		Discord string `json:"discord"`
		Twitter string `json:"twitter"`
		Wallet  string `json:"wallet"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, core.ErrInvalidBody)
		return
	}

	snap, err := h.profiles.Update(c.Request.Context(), auth.User.ID, service.ProfileInput{
		Email:   req.Email,
		Discord: req.Discord,
		Twitter: req.Twitter,
		Wallet:  req.Wallet,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"user":   snap.User,
		"stats":  gin.H{"totals": snap.Totals},
		"recent": snap.Recent,
	})
}

// TrackInteraction records a client-side action for the authenticated user
func (h *ProfileHandlers) TrackInteraction(c *gin.Context) {
	auth := authFrom(c)

	var req struct {
		Type     string          `json:"type"`
		Value    json.RawMessage `json:"value"`
		Metadata json.RawMessage `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, core.ErrInvalidBody)
		return
	}

	if err := h.profiles.TrackInteraction(c.Request.Context(), auth.User.ID, req.Type, service.ParseInteractionValue(req.Value), req.Metadata); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *ProfileHandlers) fail(c *gin.Context, err error) {
	if statusFor(err) >= http.StatusInternalServerError {
		h.log.WithError(err).Error("profile request failed")
	}
	respondError(c, err)
}

func errorBody(message string) gin.H {
	return gin.H{"ok": false, "error": message}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), errorBody(messageFor(err)))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidBody),
		errors.Is(err, core.ErrInvalidAddress),
		errors.Is(err, core.ErrMissingSignature),
		errors.Is(err, core.ErrInvalidEmail),
		errors.Is(err, core.ErrInvalidDiscord),
		errors.Is(err, core.ErrInvalidTwitter),
		errors.Is(err, core.ErrInvalidInteraction):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrChallengeExpired),
		errors.Is(err, core.ErrWalletMismatch),
		errors.Is(err, core.ErrInvalidNonce),
		errors.Is(err, core.ErrInvalidSignature),
		errors.Is(err, core.ErrSignatureMismatch),
		errors.Is(err, core.ErrUnauthorized),
		errors.Is(err, core.ErrUserNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrContactTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidBody):
		return "Invalid JSON body."
	case errors.Is(err, core.ErrInvalidAddress):
		return "Invalid wallet address."
	case errors.Is(err, core.ErrMissingSignature):
		return "Missing signature payload."
	case errors.Is(err, core.ErrChallengeExpired):
		return "Challenge expired. Try again."
	case errors.Is(err, core.ErrWalletMismatch):
		return "Wallet mismatch."
	case errors.Is(err, core.ErrInvalidNonce):
		return "Invalid challenge nonce."
	case errors.Is(err, core.ErrInvalidSignature):
		return "Invalid signature."
	case errors.Is(err, core.ErrSignatureMismatch):
		return "Signature does not match address."
	case errors.Is(err, core.ErrUnauthorized), errors.Is(err, core.ErrUserNotFound):
		return "Unauthorized"
	case errors.Is(err, core.ErrContactTaken):
		return "This contact is already linked to another profile."
	case errors.Is(err, core.ErrInvalidEmail):
		return "Invalid email format."
	case errors.Is(err, core.ErrInvalidDiscord):
		return "Invalid Discord handle."
	case errors.Is(err, core.ErrInvalidTwitter):
		return "Invalid Twitter handle."
	case errors.Is(err, core.ErrInvalidInteraction):
		return "Invalid interaction type."
	case errors.Is(err, core.ErrNotConfigured):
		return notConfiguredMessage
	default:
		return "Internal server error."
	}
}

func verifyResult(err error) string {
	switch statusFor(err) {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusUnauthorized:
		return "rejected"
	default:
		return "error"
	}
}
