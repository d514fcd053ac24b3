package handler

import (
	"errors"

	"yatube/internal/http-api/middleware"
	"yatube/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type FollowHandler struct {
	followService service.FollowService
	view          *View
}

func NewFollowHandler(followService service.FollowService, view *View) *FollowHandler {
	return &FollowHandler{
		followService: followService,
		view:          view,
	}
}

// RegisterRoutes registers follow-related routes
func (h *FollowHandler) RegisterRoutes(router *gin.RouterGroup, mw Middlewares) {
	profile := router.Group("/profile/:username", mw.RequireLogin)
	{
		profile.GET("/follow/", h.Follow)
		profile.POST("/follow/", h.Follow)
		profile.GET("/unfollow/", h.Unfollow)
		profile.POST("/unfollow/", h.Unfollow)
	}
}

// Follow subscribes the current user to an author
// GET|POST /profile/:username/follow/
func (h *FollowHandler) Follow(c *gin.Context) {
	author, err := h.followService.Follow(c.Request.Context(), middleware.CurrentUserID(c), c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	middleware.RecordAction(middleware.ActionFollow)
	redirectTo(c, profileURL(author.Username))
}

// Unfollow removes the subscription
// GET|POST /profile/:username/unfollow/
func (h *FollowHandler) Unfollow(c *gin.Context) {
	author, err := h.followService.Unfollow(c.Request.Context(), middleware.CurrentUserID(c), c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	middleware.RecordAction(middleware.ActionUnfollow)
	redirectTo(c, profileURL(author.Username))
}

func (h *FollowHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, service.ErrUserNotFound) {
		h.view.NotFound(c)
		return
	}
	h.view.ServerError(c, err)
}
