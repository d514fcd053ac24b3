package handler

import (
	"errors"
	"strconv"

	"yatube/internal/http-api/dto"
	"yatube/internal/http-api/middleware"
	"yatube/internal/http-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentHandler struct {
	commentService service.CommentService
	view           *View
	logger         *zap.Logger
}

func NewCommentHandler(commentService service.CommentService, view *View, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		view:           view,
		logger:         logger,
	}
}

// RegisterRoutes registers comment-related routes
func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup, mw Middlewares) {
	comments := router.Group("/posts/:id/comment", mw.RequireLogin)
	{
		comments.GET("/", h.RedirectToPost)
		comments.POST("/", h.Create)
	}
}

// RedirectToPost sends a GET of the comment URL back to the post
// GET /posts/:id/comment/
func (h *CommentHandler) RedirectToPost(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.view.NotFound(c)
		return
	}
	redirectTo(c, postURL(id))
}

// Create adds a comment to a post. Invalid comments are dropped and the
// browser goes back to the post either way.
// POST /posts/:id/comment/
func (h *CommentHandler) Create(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.view.NotFound(c)
		return
	}

	var form dto.CommentForm
	if err := c.ShouldBind(&form); err != nil {
		h.logger.Debug("Comment rejected", zap.Int64("post_id", id), zap.Error(err))
		redirectTo(c, postURL(id))
		return
	}

	if _, err := h.commentService.AddComment(c.Request.Context(), id, middleware.CurrentUserID(c), form.Text); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			h.view.NotFound(c)
			return
		}
		h.view.ServerError(c, err)
		return
	}

	middleware.RecordAction(middleware.ActionComment)
	redirectTo(c, postURL(id))
}
