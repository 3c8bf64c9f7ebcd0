// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns:
// tracing, correlation IDs, logging, panic recovery, metrics, the fixed
// window rate limiter, CORS, and security headers.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Fixed-window rate limiter (the gate in front of every handler)
//  8. gzip, CORS, security headers
//
// The rate limiter sits in front of identity resolution on purpose: an
// over-budget client is answered before any store access happens.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-board-backend/internal/config"
	"github.com/tbourn/go-board-backend/internal/domain"
	"github.com/tbourn/go-board-backend/internal/http/handlers"
	"github.com/tbourn/go-board-backend/internal/http/middleware"
	"github.com/tbourn/go-board-backend/internal/repo"
	"github.com/tbourn/go-board-backend/internal/services"
	"github.com/tbourn/go-board-backend/internal/view"
	"github.com/tbourn/go-board-backend/internal/web"
)

// userRepoShim adapts the repository free functions to the
// services.UserRepo interface. This keeps services decoupled from the
// concrete repo package while reusing existing functions.
type userRepoShim struct{}

// GetUserByToken proxies repo.GetUserByToken.
func (userRepoShim) GetUserByToken(ctx context.Context, db *gorm.DB, token string) (*domain.User, error) {
	return repo.GetUserByToken(ctx, db, token)
}

// CreateUser proxies repo.CreateUser.
func (userRepoShim) CreateUser(ctx context.Context, db *gorm.DB, token, userID string) (*domain.User, error) {
	return repo.CreateUser(ctx, db, token, userID)
}

// contentRepoShim adapts the repository free functions to the
// services.ContentRepo interface.
type contentRepoShim struct{}

func (contentRepoShim) CreateContent(ctx context.Context, db *gorm.DB, id, userID, title, body string, now time.Time) (*domain.Content, error) {
	return repo.CreateContent(ctx, db, id, userID, title, body, now)
}

func (contentRepoShim) GetContent(ctx context.Context, db *gorm.DB, id string) (*domain.Content, error) {
	return repo.GetContent(ctx, db, id)
}

func (contentRepoShim) ListContents(ctx context.Context, db *gorm.DB) ([]domain.Content, error) {
	return repo.ListContents(ctx, db)
}

func (contentRepoShim) ListContentsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Content, error) {
	return repo.ListContentsPage(ctx, db, offset, limit)
}

func (contentRepoShim) CountContents(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountContents(ctx, db)
}

func (contentRepoShim) BumpContent(ctx context.Context, db *gorm.DB, id string, ts time.Time) error {
	return repo.BumpContent(ctx, db, id, ts)
}

func (contentRepoShim) CreateComment(ctx context.Context, db *gorm.DB, contentID, userID, body string, now time.Time) (*domain.Comment, error) {
	return repo.CreateComment(ctx, db, contentID, userID, body, now)
}

func (contentRepoShim) ListComments(ctx context.Context, db *gorm.DB, contentID string) ([]domain.Comment, error) {
	return repo.ListComments(ctx, db, contentID)
}

// RegisterRoutes attaches all middleware and endpoints to the given Gin
// engine: the page routes, the form routes, the stylesheet, and the
// health and metrics endpoints.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	r.SetHTMLTemplate(web.Templates())

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging
	r.Use(middleware.Logger())

	// 4) Panic recovery (after logger so panics carry request context)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (64 KiB is plenty for two form fields)
	r.Use(limitBody(64 << 10))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Fixed-window limiter per client address
	rl := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	r.Use(rl.Handler())

	// 8) Compression, CORS, security headers
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if len(cfg.CORS.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORS.AllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders: []string{"X-Request-ID", "Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
	}))

	// Services
	identity := services.NewIdentityService(db, userRepoShim{})
	content := services.NewContentService(db, contentRepoShim{})
	content.BumpOnComment = cfg.BumpOnComment

	h := handlers.New(identity, content,
		view.Limits{Title: cfg.TitleCharLimit, Body: cfg.ContentCharLimit},
		handlers.CookieOptions{
			Name:   cfg.Cookie.Name,
			MaxAge: int(cfg.Cookie.MaxAge.Seconds()),
			Secure: cfg.Cookie.Secure,
		},
	)

	// Routes
	r.GET("/", h.Index)
	r.GET("/thread/:id", h.ShowThread)
	r.GET("/write", h.WriteForm)
	r.POST("/upload", h.Upload)
	r.POST("/comment/:id", h.CommentUpload)
	r.GET("/styles.css", h.Styles)
	r.GET("/healthz", h.Healthz)

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, "not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, "method not allowed")
	})
}

// limitBody caps request body size to protect the form endpoints from
// oversized uploads.
func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request != nil && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
