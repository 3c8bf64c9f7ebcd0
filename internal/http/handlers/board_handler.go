// Board HTTP handlers.
//
// This file exposes the page and form endpoints:
//   - GET  /            (thread listing)
//   - GET  /thread/:id  (thread detail with comments)
//   - GET  /write       (compose form)
//   - POST /upload      (new thread, redirects to its detail page)
//   - POST /comment/:id (new comment, redirects back to the thread)
//   - GET  /styles.css  (static stylesheet)
//
// Handlers are transport-thin: they resolve the visitor's identity from
// the cookie, call application services, and translate results into HTML
// pages or redirects. Every route resolves identity, and the cookie is set
// only when a token was freshly minted.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-board-backend/internal/domain"
	"github.com/tbourn/go-board-backend/internal/services"
	"github.com/tbourn/go-board-backend/internal/utils"
	"github.com/tbourn/go-board-backend/internal/view"
	"github.com/tbourn/go-board-backend/internal/web"
)

// pageSize is the number of threads shown per listing page.
const pageSize = 50

//
// Service contracts (context-aware)
//

// IdentityService resolves cookie tokens into confirmed pseudonyms.
//
// Implementations must be safe for concurrent use and honor the provided
// context for cancellation.
type IdentityService interface {
	// Resolve confirms an identity for an optional cookie token.
	Resolve(ctx context.Context, cookieToken string) (services.Resolution, error)
}

// ContentService defines thread and comment operations consumed by the
// HTTP handlers.
type ContentService interface {
	// Submit persists a new thread and returns the stored row.
	Submit(ctx context.Context, userID, title, body string) (*domain.Content, error)
	// Comment persists a comment and bumps the parent's freshness.
	Comment(ctx context.Context, userID, contentID, body string) error
	// ListPage returns one page of threads, freshest first, plus the total.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Content, int64, error)
	// Detail returns one thread and its comments, oldest comment first.
	Detail(ctx context.Context, id string) (*domain.Content, []domain.Comment, error)
}

//
// Handler wiring
//

// CookieOptions describes how the identity cookie is issued.
type CookieOptions struct {
	// Name is the cookie name, "userToken" by convention.
	Name string
	// MaxAge is the far-future lifetime applied when a token is minted.
	MaxAge int
	// Secure marks the cookie HTTPS-only.
	Secure bool
}

// Handlers groups the board's HTTP endpoints. It depends on abstract
// service interfaces to keep transport concerns separate from business
// logic.
type Handlers struct {
	identity IdentityService
	content  ContentService
	limits   view.Limits
	cookie   CookieOptions
}

// New constructs a Handlers instance bound to the given services.
func New(identity IdentityService, content ContentService, limits view.Limits, cookie CookieOptions) *Handlers {
	if cookie.Name == "" {
		cookie.Name = "userToken"
	}
	return &Handlers{identity: identity, content: content, limits: limits, cookie: cookie}
}

// resolveIdentity reads the identity cookie (absent cookies resolve as
// first contact), confirms a pseudonym, and sets the cookie when a fresh
// token was minted. Known tokens are never re-issued.
func (h *Handlers) resolveIdentity(c *gin.Context) (string, error) {
	token, err := c.Cookie(h.cookie.Name)
	if err != nil {
		token = ""
	}
	res, err := h.identity.Resolve(c.Request.Context(), token)
	if err != nil {
		return "", err
	}
	if res.Token != "" {
		c.SetCookie(h.cookie.Name, res.Token, h.cookie.MaxAge, "/", "", h.cookie.Secure, true)
	}
	return res.UserID, nil
}

// Index renders the thread listing, freshest first.
func (h *Handlers) Index(c *gin.Context) {
	userID, err := h.resolveIdentity(c)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	page := utils.AtoiDefault(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	items, total, err := h.content.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	totalPages := int((total + pageSize - 1) / pageSize)
	c.HTML(http.StatusOK, "index.html", view.IndexPage{
		UserID:     userID,
		NumThreads: total,
		Threads:    view.NewThreads(items, h.limits),
		Pagination: view.Pagination{
			CurrentPage: page,
			TotalPages:  totalPages,
			NextPage:    page + 1,
			PrevPage:    page - 1,
			HasNext:     page < totalPages,
			HasPrev:     page > 1,
		},
	})
}

// ShowThread renders one thread and its comments.
func (h *Handlers) ShowThread(c *gin.Context) {
	userID, err := h.resolveIdentity(c)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	id := c.Param("id")
	content, comments, err := h.content.Detail(c.Request.Context(), id)
	switch {
	case errors.Is(err, services.ErrContentNotFound):
		Fail(c, http.StatusNotFound, "thread not found")
		return
	case err != nil:
		Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.HTML(http.StatusOK, "thread.html", view.ThreadPage{
		UserID:      userID,
		Thread:      view.NewThread(*content, h.limits),
		NumComments: len(comments),
		Comments:    view.NewComments(comments, h.limits),
	})
}

// WriteForm renders the compose page. No data access beyond identity.
func (h *Handlers) WriteForm(c *gin.Context) {
	userID, err := h.resolveIdentity(c)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.HTML(http.StatusOK, "write.html", view.WritePage{UserID: userID})
}

// Upload accepts the compose form and redirects to the new thread.
func (h *Handlers) Upload(c *gin.Context) {
	userID, err := h.resolveIdentity(c)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	title := c.PostForm("title")
	body := c.PostForm("content")
	content, err := h.content.Submit(c.Request.Context(), userID, title, body)
	switch {
	case errors.Is(err, services.ErrEmptyTitle), errors.Is(err, services.ErrEmptyBody):
		Fail(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.Redirect(http.StatusSeeOther, "/thread/"+content.ID)
}

// CommentUpload accepts the comment form and redirects back to the thread.
func (h *Handlers) CommentUpload(c *gin.Context) {
	userID, err := h.resolveIdentity(c)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	id := c.Param("id")
	err = h.content.Comment(c.Request.Context(), userID, id, c.PostForm("content"))
	switch {
	case errors.Is(err, services.ErrEmptyBody):
		Fail(c, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrContentNotFound):
		Fail(c, http.StatusNotFound, "thread not found")
		return
	case err != nil:
		Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.Redirect(http.StatusSeeOther, "/thread/"+id)
}

// Styles serves the bundled stylesheet. No identity resolution here; the
// asset is static and cacheable.
func (h *Handlers) Styles(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "text/css; charset=utf-8", web.StyleCSS)
}

// Healthz is a liveness probe.
func (h *Handlers) Healthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
