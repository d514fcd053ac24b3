package handler

import (
	"github.com/gin-gonic/gin"
)

// Middlewares are the per-route middlewares the handlers attach.
type Middlewares struct {
	RequireLogin gin.HandlerFunc
	IndexCache   gin.HandlerFunc
	RateLimit    gin.HandlerFunc
}

func passThrough(c *gin.Context) {
	c.Next()
}

func (mw Middlewares) withDefaults() Middlewares {
	if mw.RequireLogin == nil {
		mw.RequireLogin = passThrough
	}
	if mw.IndexCache == nil {
		mw.IndexCache = passThrough
	}
	if mw.RateLimit == nil {
		mw.RateLimit = passThrough
	}
	return mw
}

// Handlers groups every page handler of the site.
type Handlers struct {
	Posts    *PostHandler
	Comments *CommentHandler
	Follows  *FollowHandler
	Auth     *AuthHandler
	About    *AboutHandler
	View     *View
}

// RegisterRoutes mounts all pages on engine and installs the custom 404 page.
func RegisterRoutes(engine *gin.Engine, h Handlers, mw Middlewares) {
	mw = mw.withDefaults()
	root := engine.Group("")

	h.Posts.RegisterRoutes(root, mw)
	h.Comments.RegisterRoutes(root, mw)
	h.Follows.RegisterRoutes(root, mw)
	h.Auth.RegisterRoutes(root, mw)
	h.About.RegisterRoutes(root)

	engine.NoRoute(h.View.NotFound)
}
