package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type AboutHandler struct {
	view *View
}

func NewAboutHandler(view *View) *AboutHandler {
	return &AboutHandler{view: view}
}

func (h *AboutHandler) RegisterRoutes(router *gin.RouterGroup) {
	about := router.Group("/about")
	{
		about.GET("/author/", h.page("about/author.html"))
		about.GET("/tech/", h.page("about/tech.html"))
	}
}

func (h *AboutHandler) page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.view.HTML(c, http.StatusOK, name, nil)
	}
}
