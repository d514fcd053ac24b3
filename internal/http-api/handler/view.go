package handler

import (
	"net/http"

	"yatube/internal/http-api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// View renders pages with the data every template expects.
type View struct {
	renderer render.HTMLRender
	mediaURL string
	logger   *zap.Logger
}

func NewView(renderer render.HTMLRender, mediaURL string, logger *zap.Logger) *View {
	return &View{
		renderer: renderer,
		mediaURL: mediaURL,
		logger:   logger,
	}
}

// HTML renders the page name with data plus the current user, the CSRF field
// and the media URL.
func (v *View) HTML(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["user"] = middleware.CurrentUser(c)
	data["csrfField"] = csrf.TemplateField(c.Request)
	data["mediaURL"] = v.mediaURL
	data["path"] = c.Request.URL.Path
	c.Render(status, v.renderer.Instance(name, data))
}

// NotFound renders the custom 404 page.
func (v *View) NotFound(c *gin.Context) {
	v.HTML(c, http.StatusNotFound, "core/404.html", nil)
	c.Abort()
}

// ServerError logs err and renders the custom 500 page.
func (v *View) ServerError(c *gin.Context, err error) {
	v.logger.Error("Request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	_ = c.Error(err)
	v.HTML(c, http.StatusInternalServerError, "core/500.html", nil)
	c.Abort()
}

// Panic renders the 500 page after a recovered panic.
func (v *View) Panic(c *gin.Context) {
	v.HTML(c, http.StatusInternalServerError, "core/500.html", nil)
}

// CSRFFailure is the error handler of the CSRF protection.
func (v *View) CSRFFailure() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reason := ""
		if err := csrf.FailureReason(r); err != nil {
			reason = err.Error()
		}
		v.logger.Warn("CSRF check failed",
			zap.String("path", r.URL.Path),
			zap.String("reason", reason),
		)

		page := v.renderer.Instance("core/403csrf.html", gin.H{
			"reason":   reason,
			"mediaURL": v.mediaURL,
			"path":     r.URL.Path,
		})
		page.WriteContentType(w)
		w.WriteHeader(http.StatusForbidden)
		if err := page.Render(w); err != nil {
			v.logger.Error("Render CSRF failure page", zap.Error(err))
		}
	})
}

// redirectTo sends the browser to location with 302, the way form views answer.
func redirectTo(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}
