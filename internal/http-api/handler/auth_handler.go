package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"yatube/internal/http-api/dto"
	"yatube/internal/http-api/middleware"
	"yatube/internal/http-api/models"
	"yatube/internal/http-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	passwordChangeDoneURL    = "/auth/password_change/done/"
	passwordResetDoneURL     = "/auth/password_reset/done/"
	passwordResetCompleteURL = "/auth/reset/done/"
)

type AuthHandler struct {
	authService service.AuthService
	cookies     middleware.CookieOptions
	view        *View
	logger      *zap.Logger
}

func NewAuthHandler(authService service.AuthService, cookies middleware.CookieOptions, view *View, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
		view:        view,
		logger:      logger,
	}
}

// RegisterRoutes registers the account routes
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup, mw Middlewares) {
	auth := router.Group("/auth", mw.RateLimit)
	{
		auth.GET("/signup/", h.SignupForm)
		auth.POST("/signup/", h.Signup)
		auth.GET("/login/", h.LoginForm)
		auth.POST("/login/", h.Login)
		auth.GET("/logout/", h.Logout)
		auth.POST("/logout/", h.Logout)

		auth.GET("/password_reset/", h.PasswordResetForm)
		auth.POST("/password_reset/", h.PasswordReset)
		auth.GET("/password_reset/done/", h.static("users/password_reset_done.html"))
		auth.GET("/reset/:uidb64/:token/", h.PasswordResetConfirmForm)
		auth.POST("/reset/:uidb64/:token/", h.PasswordResetConfirm)
		auth.GET("/reset/done/", h.static("users/password_reset_complete.html"))

		protected := auth.Group("", mw.RequireLogin)
		protected.GET("/password_change/", h.PasswordChangeForm)
		protected.POST("/password_change/", h.PasswordChange)
		protected.GET("/password_change/done/", h.static("users/password_change_done.html"))
	}
}

func (h *AuthHandler) static(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.view.HTML(c, http.StatusOK, name, nil)
	}
}

// SignupForm GET /auth/signup/
func (h *AuthHandler) SignupForm(c *gin.Context) {
	h.renderSignup(c, dto.SignupForm{}, dto.FormErrors{})
}

// Signup creates an account and sends the visitor to the index
// POST /auth/signup/
func (h *AuthHandler) Signup(c *gin.Context) {
	var form dto.SignupForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderSignup(c, form, dto.NewFormErrors(err))
		return
	}

	_, err := h.authService.Register(c.Request.Context(), service.SignupInput{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Username:  form.Username,
		Email:     form.Email,
		Password:  form.Password1,
	})
	if err != nil {
		errs := dto.FormErrors{}
		var pwErr *service.PasswordError
		switch {
		case errors.Is(err, service.ErrNameInUse):
			errs.Add("username", "A user with that username already exists.")
		case errors.As(err, &pwErr):
			errs.Add("password2", pwErr.Reason)
		default:
			h.view.ServerError(c, err)
			return
		}
		h.renderSignup(c, form, errs)
		return
	}

	middleware.RecordAction(middleware.ActionSignup)
	redirectTo(c, "/")
}

func (h *AuthHandler) renderSignup(c *gin.Context, form dto.SignupForm, errs dto.FormErrors) {
	form.Password1, form.Password2 = "", ""
	h.view.HTML(c, http.StatusOK, "users/signup.html", gin.H{"form": form, "errors": errs})
}

// LoginForm GET /auth/login/
func (h *AuthHandler) LoginForm(c *gin.Context) {
	h.renderLogin(c, dto.LoginForm{Next: c.Query("next")}, dto.FormErrors{})
}

// Login starts a session and follows ?next= when it stays on this site
// POST /auth/login/
func (h *AuthHandler) Login(c *gin.Context) {
	var form dto.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderLogin(c, form, dto.NewFormErrors(err))
		return
	}
	if form.Next == "" {
		form.Next = c.Query("next")
	}

	user, err := h.authService.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			errs := dto.FormErrors{}
			errs.Add(dto.NonFieldErrors, "Please enter a correct username and password. Note that both fields may be case-sensitive.")
			h.renderLogin(c, form, errs)
			return
		}
		h.view.ServerError(c, err)
		return
	}

	if !h.startSession(c, user) {
		return
	}

	middleware.RecordAction(middleware.ActionLogin)
	redirectTo(c, safeNext(form.Next))
}

func (h *AuthHandler) renderLogin(c *gin.Context, form dto.LoginForm, errs dto.FormErrors) {
	form.Password = ""
	h.view.HTML(c, http.StatusOK, "users/login.html", gin.H{"form": form, "errors": errs, "next": form.Next})
}

// Logout ends the session
// GET|POST /auth/logout/
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookies.Clear(c)
	// the page must not show the user the cookie belonged to
	c.Set(middleware.ContextUser, nil)
	c.Set(middleware.ContextUserID, "")
	h.view.HTML(c, http.StatusOK, "users/logged_out.html", nil)
}

// PasswordChangeForm GET /auth/password_change/
func (h *AuthHandler) PasswordChangeForm(c *gin.Context) {
	h.view.HTML(c, http.StatusOK, "users/password_change_form.html", gin.H{"errors": dto.FormErrors{}})
}

// PasswordChange replaces the password and renews the session cookie
// POST /auth/password_change/
func (h *AuthHandler) PasswordChange(c *gin.Context) {
	render := func(errs dto.FormErrors) {
		h.view.HTML(c, http.StatusOK, "users/password_change_form.html", gin.H{"errors": errs})
	}

	var form dto.PasswordChangeForm
	if err := c.ShouldBind(&form); err != nil {
		render(dto.NewFormErrors(err))
		return
	}

	user, err := h.authService.ChangePassword(c.Request.Context(), middleware.CurrentUserID(c), form.OldPassword, form.NewPassword1)
	if err != nil {
		errs := dto.FormErrors{}
		var pwErr *service.PasswordError
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			errs.Add("old_password", "Your old password was entered incorrectly. Please enter it again.")
		case errors.As(err, &pwErr):
			errs.Add("new_password2", pwErr.Reason)
		default:
			h.view.ServerError(c, err)
			return
		}
		render(errs)
		return
	}

	if !h.startSession(c, user) {
		return
	}
	redirectTo(c, passwordChangeDoneURL)
}

// PasswordResetForm GET /auth/password_reset/
func (h *AuthHandler) PasswordResetForm(c *gin.Context) {
	h.view.HTML(c, http.StatusOK, "users/password_reset_form.html", gin.H{
		"form":   dto.PasswordResetForm{},
		"errors": dto.FormErrors{},
	})
}

// PasswordReset mails a reset link. The response does not reveal whether the
// address is registered.
// POST /auth/password_reset/
func (h *AuthHandler) PasswordReset(c *gin.Context) {
	var form dto.PasswordResetForm
	if err := c.ShouldBind(&form); err != nil {
		h.view.HTML(c, http.StatusOK, "users/password_reset_form.html", gin.H{
			"form":   form,
			"errors": dto.NewFormErrors(err),
		})
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), form.Email); err != nil {
		h.view.ServerError(c, err)
		return
	}
	redirectTo(c, passwordResetDoneURL)
}

// PasswordResetConfirmForm GET /auth/reset/:uidb64/:token/
func (h *AuthHandler) PasswordResetConfirmForm(c *gin.Context) {
	_, err := h.authService.CheckResetLink(c.Request.Context(), c.Param("uidb64"), c.Param("token"))
	if err != nil && !errors.Is(err, service.ErrInvalidResetLink) {
		h.view.ServerError(c, err)
		return
	}
	h.renderResetConfirm(c, err == nil, dto.FormErrors{})
}

// PasswordResetConfirm sets the new password through a reset link
// POST /auth/reset/:uidb64/:token/
func (h *AuthHandler) PasswordResetConfirm(c *gin.Context) {
	ctx := c.Request.Context()
	uidb64, token := c.Param("uidb64"), c.Param("token")

	if _, err := h.authService.CheckResetLink(ctx, uidb64, token); err != nil {
		if errors.Is(err, service.ErrInvalidResetLink) {
			h.renderResetConfirm(c, false, dto.FormErrors{})
			return
		}
		h.view.ServerError(c, err)
		return
	}

	var form dto.SetPasswordForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderResetConfirm(c, true, dto.NewFormErrors(err))
		return
	}

	if err := h.authService.ResetPassword(ctx, uidb64, token, form.NewPassword1); err != nil {
		var pwErr *service.PasswordError
		switch {
		case errors.As(err, &pwErr):
			errs := dto.FormErrors{}
			errs.Add("new_password2", pwErr.Reason)
			h.renderResetConfirm(c, true, errs)
		case errors.Is(err, service.ErrInvalidResetLink):
			h.renderResetConfirm(c, false, dto.FormErrors{})
		default:
			h.view.ServerError(c, err)
		}
		return
	}
	redirectTo(c, passwordResetCompleteURL)
}

func (h *AuthHandler) renderResetConfirm(c *gin.Context, valid bool, errs dto.FormErrors) {
	h.view.HTML(c, http.StatusOK, "users/password_reset_confirm.html", gin.H{
		"validlink": valid,
		"errors":    errs,
	})
}

// startSession sets the session cookie for user. It renders the error page
// and returns false when no token could be issued.
func (h *AuthHandler) startSession(c *gin.Context, user *models.User) bool {
	token, err := h.authService.IssueSession(user)
	if err != nil {
		h.view.ServerError(c, err)
		return false
	}
	h.cookies.Set(c, token)
	h.logger.Debug("Session started", zap.String("user_id", user.ID))
	return true
}

// safeNext returns next when it is a path on this site and "/" otherwise.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	return next
}
