package api

import (
	"errors"
	"net/http"
	"time"

	"gymdesk/membership-app/internal/auth"
	"gymdesk/membership-app/internal/logger"
	"gymdesk/membership-app/internal/repository/rest"
	"gymdesk/membership-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"

	// ContextSessionKey holds the *service.ActiveSession of a guarded request.
	ContextSessionKey = "session"

	signInPath = "/auth/signin"
)

// RequestLogger tags the request context with a request id and logs every
// request once it completes.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := log.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		var lastErr error
		if last := c.Errors.Last(); last != nil {
			lastErr = last.Err
		}
		status := c.Writer.Status()
		ctx = log.WithFields(c.Request.Context(), map[string]any{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
		})
		switch {
		case status >= http.StatusInternalServerError:
			log.Error(ctx, "request failed", lastErr)
		case status >= http.StatusBadRequest:
			log.Warn(ctx, "request rejected", lastErr)
		default:
			log.Info(ctx, "request completed")
		}
	}
}

// SessionGuard admits requests carrying a live console session. The
// session's access token is forwarded to the backend through the request
// context.
func SessionGuard(sessions service.SessionService, signer *auth.CookieSigner, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(auth.SessionCookieName)
		if err != nil {
			abortUnauthenticated(c, "Sign in required")
			return
		}
		sessionID, err := signer.ParseSession(cookie)
		if err != nil {
			abortUnauthenticated(c, "Session is invalid or has expired")
			return
		}

		active, err := sessions.Resolve(c.Request.Context(), sessionID)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				abortUnauthenticated(c, "Session is invalid or has expired")
				return
			}
			log.Error(c.Request.Context(), "failed to resolve session", err)
			abortWithError(c, http.StatusInternalServerError, "Could not verify session")
			return
		}

		ctx := rest.WithAccessToken(c.Request.Context(), active.AccessToken)
		ctx = log.WithUser(ctx, active.Session.User.Subject)
		c.Request = c.Request.WithContext(ctx)
		c.Set(ContextSessionKey, active)
		c.Next()
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message, "redirect": signInPath})
}

// currentSession returns the session set by SessionGuard.
func currentSession(c *gin.Context) (*service.ActiveSession, bool) {
	raw, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil, false
	}
	active, ok := raw.(*service.ActiveSession)
	return active, ok
}
