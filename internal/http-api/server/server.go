// Package server assembles the site: repositories, services, middlewares and routes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"yatube/database"
	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/http-api/handler"
	"yatube/internal/http-api/middleware"
	"yatube/internal/http-api/repository"
	"yatube/internal/http-api/service"
	"yatube/internal/http-api/templates"
	"yatube/internal/mail"
	"yatube/internal/middleware/auth"
	"yatube/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// IndexCachePrefix is the cache key prefix of the index page.
	IndexCachePrefix = "index_page"

	// DefaultFromEmail is the sender of password reset mail.
	DefaultFromEmail = "webmaster@localhost"

	shutdownTimeout = 30 * time.Second
)

// Deps are the connections the server runs on.
type Deps struct {
	DB     *gorm.DB
	Cache  cache.Store
	Mailer mail.Mailer
}

type Server struct {
	cfg     *config.Config
	db      *gorm.DB
	logger  *zap.Logger
	handler http.Handler
}

// New wires every page of the site onto deps.
func New(cfg *config.Config, deps Deps, logger *zap.Logger) (*Server, error) {
	renderer, err := templates.New()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	view := handler.NewView(renderer, cfg.MediaURL, logger)

	// Repositories
	userRepo := repository.NewUserRepository(deps.DB)
	groupRepo := repository.NewGroupRepository(deps.DB)
	postRepo := repository.NewPostRepository(deps.DB)
	commentRepo := repository.NewCommentRepository(deps.DB)
	followRepo := repository.NewFollowRepository(deps.DB)
	resetRepo := repository.NewPasswordResetRepository(deps.DB)

	// Services
	images := storage.NewImageStore(cfg.MediaRoot, cfg.UploadMaxSize, logger)
	sessions := auth.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL)
	authService := service.NewAuthService(userRepo, resetRepo, sessions, deps.Mailer, service.AuthOptions{
		ResetTTL: cfg.PasswordResetTTL,
		SiteURL:  cfg.SiteURL,
	}, logger)
	postService := service.NewPostService(postRepo, groupRepo, userRepo, commentRepo, followRepo, images, cfg.PageSize, logger)
	groupService := service.NewGroupService(groupRepo)
	commentService := service.NewCommentService(commentRepo, postRepo)
	followService := service.NewFollowService(followRepo, userRepo, logger)

	cookies := middleware.CookieOptions{
		Name:   cfg.SessionCookieName,
		MaxAge: cfg.SessionTTL,
		Secure: cfg.IsProduction(),
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	engine.MaxMultipartMemory = cfg.UploadMaxSize

	engine.Use(
		middleware.Recovery(logger, view.Panic),
		middleware.RequestLogger(logger),
	)

	s := &Server{
		cfg:    cfg,
		db:     deps.DB,
		logger: logger,
	}

	// Service endpoints, outside of sessions and request metrics
	engine.GET("/healthz", s.health)
	if cfg.PrometheusEnabled {
		engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
		engine.Use(middleware.PrometheusMiddleware())
	}

	engine.Static(strings.TrimSuffix(cfg.MediaURL, "/"), cfg.MediaRoot)

	engine.Use(middleware.Session(authService, cookies, logger))

	mw := handler.Middlewares{
		RequireLogin: middleware.LoginRequired(),
		IndexCache:   cache.CachePage(deps.Cache, cfg.IndexCacheTTL, IndexCachePrefix, viewerVariant, logger),
	}
	if cfg.AuthRateLimitRPM > 0 {
		mw.RateLimit = middleware.RateLimit(middleware.NewIPRateLimiter(cfg.AuthRateLimitRPM), logger)
	}

	handler.RegisterRoutes(engine, handler.Handlers{
		Posts:    handler.NewPostHandler(postService, groupService, view),
		Comments: handler.NewCommentHandler(commentService, view, logger),
		Follows:  handler.NewFollowHandler(followService, view),
		Auth:     handler.NewAuthHandler(authService, cookies, view, logger),
		About:    handler.NewAboutHandler(view),
		View:     view,
	}, mw)

	s.handler = engine
	if cfg.CSRFEnabled {
		protect := csrf.Protect([]byte(cfg.CSRFKey),
			csrf.Secure(cfg.IsProduction()),
			csrf.Path("/"),
			csrf.CookieName("csrftoken"),
			csrf.FieldName("csrfmiddlewaretoken"),
			csrf.SameSite(csrf.SameSiteLaxMode),
			csrf.ErrorHandler(view.CSRFFailure()),
		)
		s.handler = protect(engine)
		if !cfg.IsProduction() {
			s.handler = plaintextHTTP(s.handler)
		}
	}

	return s, nil
}

// Handler is the root HTTP handler of the site.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// plaintextHTTP tells the CSRF check that requests arrive over plain HTTP, so
// Origin and Referer are compared against http:// URLs.
func plaintextHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

// viewerVariant keeps the cached index of every signed in user apart from the anonymous one.
func viewerVariant(c *gin.Context) string {
	if id := middleware.CurrentUserID(c); id != "" {
		return "user-" + id
	}
	return "anonymous"
}

// health GET /healthz
func (s *Server) health(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		s.logger.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
}

// Run serves HTTP on the configured address until ctx is done, then drains
// outstanding requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server starting", zap.String("addr", srv.Addr), zap.String("env", s.cfg.GoEnv))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		s.logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	s.logger.Info("Server stopped")
	return nil
}

// Serve opens the configured database and cache and runs the site until ctx ends.
func Serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}()

	if err := database.Migrate(db, logger); err != nil {
		return err
	}

	store, err := cache.New(cache.Options{RedisURL: cfg.RedisURL, RedisPassword: cfg.RedisPassword}, logger)
	if err != nil {
		return fmt.Errorf("page cache: %w", err)
	}
	defer store.Close()

	srv, err := New(cfg, Deps{
		DB:     db,
		Cache:  store,
		Mailer: mail.NewLogMailer(logger, DefaultFromEmail),
	}, logger)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
