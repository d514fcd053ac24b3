package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"yatube/internal/http-api/models"
	"yatube/internal/http-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by Session
const (
	ContextUser   = "user"
	ContextUserID = "userID"
)

// LoginURL is where LoginRequired sends anonymous visitors.
const LoginURL = "/auth/login/"

// CookieOptions describes the session cookie.
type CookieOptions struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// Set writes the session cookie.
func (o CookieOptions) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(o.Name, token, int(o.MaxAge.Seconds()), "/", "", o.Secure, true)
}

// Clear expires the session cookie.
func (o CookieOptions) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(o.Name, "", -1, "/", "", o.Secure, true)
}

// Session resolves the session cookie into the current user.
// Anonymous requests pass through untouched; a stale cookie is cleared.
func Session(authService service.AuthService, cookies CookieOptions, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookies.Name)
		if err != nil || token == "" {
			c.Next()
			return
		}

		user, err := authService.ResolveSession(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrInvalidSession) {
				logger.Error("Failed to resolve session", zap.Error(err))
			}
			cookies.Clear(c)
			c.Next()
			return
		}

		// Set user info in context for handlers to use
		c.Set(ContextUser, user)
		c.Set(ContextUserID, user.ID)

		c.Next()
	}
}

// LoginRequired redirects anonymous visitors to the login page, keeping the
// requested URL in ?next=.
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, LoginURL+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the signed in user or nil.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(ContextUser)
	if !exists {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

// CurrentUserID returns the id of the signed in user or "".
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
