package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/siggy-land/siggy/core"
	"github.com/siggy-land/siggy/service"
	"github.com/sirupsen/logrus"
)

const (
	authContextKey  = "siggyAuth"
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
)

// SessionMiddleware resolves the session cookie to an AuthContext when one is
// present. It never rejects a request; see RequireAuth.
func SessionMiddleware(cookies *CookieCodec, authService *service.AuthService, metrics *Metrics) gin.HandlerFunc {
	log := logrus.WithField("component", "session")

	return func(c *gin.Context) {
		session, err := cookies.ReadSession(c)
		if err != nil {
			log.WithError(err).Warn("session cookie unreadable")
		}

		auth, err := authService.Authenticate(c.Request.Context(), session)
		if err != nil {
			log.WithError(err).Warn("session lookup failed")
			auth = nil
		}

		metrics.sessionLookup(auth != nil)
		if auth != nil {
			c.Set(authContextKey, auth)
		}

		c.Next()
	}
}

// RequireAuth rejects requests without an authenticated session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if authFrom(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("Unauthorized"))
			return
		}
		c.Next()
	}
}

// RequestLogger emits one structured entry per request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()

		entry := logrus.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"request_id": requestID,
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Info("request")
	}
}

func authFrom(c *gin.Context) *core.AuthContext {
	v, ok := c.Get(authContextKey)
	if !ok {
		return nil
	}
	auth, _ := v.(*core.AuthContext)
	return auth
}
