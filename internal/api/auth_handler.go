package api

import (
	"errors"
	"net/http"
	"time"

	"gymdesk/membership-app/internal/auth"
	"gymdesk/membership-app/internal/logger"
	"gymdesk/membership-app/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler drives the browser sign-in flow against the identity provider.
type AuthHandler struct {
	sessions      service.SessionService
	signer        *auth.CookieSigner
	log           *logger.Logger
	secureCookies bool
	postLoginPath string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessions service.SessionService, signer *auth.CookieSigner, log *logger.Logger, secureCookies bool, postLoginPath string) *AuthHandler {
	if postLoginPath == "" {
		postLoginPath = "/clientes"
	}
	return &AuthHandler{
		sessions:      sessions,
		signer:        signer,
		log:           log,
		secureCookies: secureCookies,
		postLoginPath: postLoginPath,
	}
}

// SignIn godoc
// @Summary Start sign-in
// @Description Redirects to the identity provider. Signed-in users go straight to the console.
// @Tags Auth
// @Param returnTo query string false "Path to land on after sign-in"
// @Success 302 "Redirect"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /auth/signin [get]
func (h *AuthHandler) SignIn(c *gin.Context) {
	if h.hasLiveSession(c) {
		c.Redirect(http.StatusFound, h.postLoginPath)
		return
	}

	start, err := h.sessions.BeginLogin(c.Request.Context(), c.Query("returnTo"))
	if err != nil {
		h.log.Error(c.Request.Context(), "failed to start sign-in", err)
		abortWithError(c, http.StatusInternalServerError, "Could not start sign-in")
		return
	}
	flowCookie, err := h.signer.SignFlow(start.Flow)
	if err != nil {
		h.log.Error(c.Request.Context(), "failed to sign flow cookie", err)
		abortWithError(c, http.StatusInternalServerError, "Could not start sign-in")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.FlowCookieName, flowCookie, int(auth.FlowTTL/time.Second), "/auth", "", h.secureCookies, true)
	c.Redirect(http.StatusFound, start.RedirectURL)
}

// Callback godoc
// @Summary Finish sign-in
// @Description Exchanges the authorization code and opens a console session.
// @Tags Auth
// @Param code query string true "Authorization code"
// @Param state query string true "Sign-in state"
// @Success 302 "Redirect"
// @Failure 400 {object} gin.H "Invalid or expired sign-in"
// @Failure 401 {object} gin.H "Provider refused the sign-in"
// @Router /auth/callback [get]
func (h *AuthHandler) Callback(c *gin.Context) {
	ctx := c.Request.Context()
	if providerErr := c.Query("error"); providerErr != "" {
		h.log.Warn(ctx, "identity provider refused sign-in: "+providerErr, nil)
		abortUnauthenticated(c, "Sign-in was cancelled or refused: "+c.Query("error_description"))
		return
	}

	raw, err := c.Cookie(auth.FlowCookieName)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Sign-in session expired, start again")
		return
	}
	flow, err := h.signer.ParseFlow(raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Sign-in session expired, start again")
		return
	}

	session, err := h.sessions.CompleteLogin(ctx, flow, c.Query("state"), c.Query("code"))
	if err != nil {
		if errors.Is(err, service.ErrStateMismatch) {
			abortWithError(c, http.StatusBadRequest, "Sign-in state does not match, start again")
			return
		}
		h.log.Error(ctx, "failed to complete sign-in", err)
		abortUnauthenticated(c, "Could not complete sign-in")
		return
	}

	cookie, err := h.signer.SignSession(session.SessionID, session.ExpiresAt)
	if err != nil {
		h.log.Error(ctx, "failed to sign session cookie", err)
		abortWithError(c, http.StatusInternalServerError, "Could not complete sign-in")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.FlowCookieName, "", -1, "/auth", "", h.secureCookies, true)
	c.SetCookie(auth.SessionCookieName, cookie, int(time.Until(session.ExpiresAt)/time.Second), "/", "", h.secureCookies, true)
	h.log.Info(h.log.WithUser(ctx, session.User.Subject), "console session opened")

	returnTo := flow.ReturnTo
	if returnTo == "" {
		returnTo = h.postLoginPath
	}
	c.Redirect(http.StatusFound, returnTo)
}

// SignOut godoc
// @Summary Sign out
// @Description Ends the console session and redirects to the provider logout.
// @Tags Auth
// @Success 302 "Redirect"
// @Router /auth/signout [get]
func (h *AuthHandler) SignOut(c *gin.Context) {
	var sessionID string
	if raw, err := c.Cookie(auth.SessionCookieName); err == nil {
		sessionID, _ = h.signer.ParseSession(raw)
	}

	logoutURL, err := h.sessions.SignOut(c.Request.Context(), sessionID)
	if err != nil {
		h.log.Warn(c.Request.Context(), "failed to delete session", err)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookieName, "", -1, "/", "", h.secureCookies, true)
	if logoutURL == "" {
		logoutURL = "/"
	}
	c.Redirect(http.StatusFound, logoutURL)
}

// Me godoc
// @Summary Current user
// @Description Returns the profile of the signed-in staff member.
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.Session
// @Failure 401 {object} gin.H "Not signed in"
// @Router /api/v1/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	active, ok := currentSession(c)
	if !ok {
		abortUnauthenticated(c, "Sign in required")
		return
	}
	c.JSON(http.StatusOK, active.Session)
}

func (h *AuthHandler) hasLiveSession(c *gin.Context) bool {
	raw, err := c.Cookie(auth.SessionCookieName)
	if err != nil {
		return false
	}
	sessionID, err := h.signer.ParseSession(raw)
	if err != nil {
		return false
	}
	_, err = h.sessions.Resolve(c.Request.Context(), sessionID)
	return err == nil
}
