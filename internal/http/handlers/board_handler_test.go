package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-board-backend/internal/domain"
	"github.com/tbourn/go-board-backend/internal/services"
	"github.com/tbourn/go-board-backend/internal/view"
	"github.com/tbourn/go-board-backend/internal/web"
)

// ----- Fake services -----

type fakeIdentity struct {
	userID    string
	mintToken string // returned only when the incoming token is empty
	err       error

	gotToken string
}

func (f *fakeIdentity) Resolve(ctx context.Context, cookieToken string) (services.Resolution, error) {
	f.gotToken = cookieToken
	if f.err != nil {
		return services.Resolution{}, f.err
	}
	if cookieToken == "" {
		return services.Resolution{UserID: f.userID, Token: f.mintToken}, nil
	}
	return services.Resolution{UserID: f.userID}, nil
}

type fakeContent struct {
	contents map[string]*domain.Content
	comments map[string][]domain.Comment

	submitErr  error
	commentErr error

	submittedTitle string
	submittedBody  string
	commentedID    string
	commentedBody  string
}

func (f *fakeContent) Submit(ctx context.Context, userID, title, body string) (*domain.Content, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submittedTitle, f.submittedBody = title, body
	now := time.Now().UTC()
	return &domain.Content{ID: "newid1", UserID: userID, Title: title, Body: body, CreatedAt: now, LastUpdated: now}, nil
}

func (f *fakeContent) Comment(ctx context.Context, userID, contentID, body string) error {
	if f.commentErr != nil {
		return f.commentErr
	}
	f.commentedID, f.commentedBody = contentID, body
	return nil
}

func (f *fakeContent) ListPage(ctx context.Context, page, pageSize int) ([]domain.Content, int64, error) {
	var out []domain.Content
	for _, c := range f.contents {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (f *fakeContent) Detail(ctx context.Context, id string) (*domain.Content, []domain.Comment, error) {
	c, ok := f.contents[id]
	if !ok {
		return nil, nil, services.ErrContentNotFound
	}
	return c, f.comments[id], nil
}

// ----- Harness -----

func newBoardRouter(id *fakeIdentity, fc *fakeContent) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(web.Templates())

	h := New(id, fc, view.DefaultLimits, CookieOptions{Name: "userToken", MaxAge: 3600})
	r.GET("/", h.Index)
	r.GET("/thread/:id", h.ShowThread)
	r.GET("/write", h.WriteForm)
	r.POST("/upload", h.Upload)
	r.POST("/comment/:id", h.CommentUpload)
	r.GET("/styles.css", h.Styles)
	r.GET("/healthz", h.Healthz)
	return r
}

func postForm(r *gin.Engine, path string, form url.Values, cookie string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "userToken", Value: cookie})
	}
	r.ServeHTTP(w, req)
	return w
}

func get(r *gin.Engine, path string, cookie string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "userToken", Value: cookie})
	}
	r.ServeHTTP(w, req)
	return w
}

// ----- Tests -----

func TestUpload_NoCookie_SetsCookieAndRedirects(t *testing.T) {
	id := &fakeIdentity{userID: "anon42", mintToken: "freshtoken123"}
	fc := &fakeContent{contents: map[string]*domain.Content{}}
	r := newBoardRouter(id, fc)

	w := postForm(r, "/upload", url.Values{"title": {"Hello"}, "content": {"World"}}, "")

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/thread/newid1" {
		t.Fatalf("Location = %q", loc)
	}
	setCookie := strings.Join(w.Header().Values("Set-Cookie"), ";")
	if !strings.Contains(setCookie, "userToken=freshtoken123") {
		t.Fatalf("identity cookie not set: %q", setCookie)
	}
	if fc.submittedTitle != "Hello" || fc.submittedBody != "World" {
		t.Fatalf("form fields not forwarded: %q %q", fc.submittedTitle, fc.submittedBody)
	}
}

func TestUpload_ValidCookie_NotReissued(t *testing.T) {
	id := &fakeIdentity{userID: "anon42"}
	fc := &fakeContent{contents: map[string]*domain.Content{}}
	r := newBoardRouter(id, fc)

	w := postForm(r, "/upload", url.Values{"title": {"t"}, "content": {"b"}}, "existingtok99")

	if id.gotToken != "existingtok99" {
		t.Fatalf("cookie token not passed to resolver: %q", id.gotToken)
	}
	if sc := w.Header().Values("Set-Cookie"); len(sc) != 0 {
		t.Fatalf("valid cookie must not be re-issued: %v", sc)
	}
}

func TestUpload_EmptyTitleIsBadRequest(t *testing.T) {
	id := &fakeIdentity{userID: "anon42"}
	fc := &fakeContent{submitErr: services.ErrEmptyTitle}
	r := newBoardRouter(id, fc)

	w := postForm(r, "/upload", url.Values{"title": {""}, "content": {"b"}}, "tok")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestShowThread_RendersStoredContentVerbatim(t *testing.T) {
	created := time.Date(2024, 7, 1, 8, 30, 0, 0, time.UTC)
	id := &fakeIdentity{userID: "anon42"}
	fc := &fakeContent{
		contents: map[string]*domain.Content{
			"abc123": {ID: "abc123", UserID: "poster", Title: "Hello", Body: "World", CreatedAt: created, LastUpdated: created},
		},
		comments: map[string][]domain.Comment{},
	}
	r := newBoardRouter(id, fc)

	w := get(r, "/thread/abc123", "tok")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Hello", "World", "0 comment(s)", "2024/07/01 08:30", "anon42"} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q:\n%s", want, body)
		}
	}
}

func TestShowThread_MissingIsNotFound(t *testing.T) {
	id := &fakeIdentity{userID: "anon42"}
	fc := &fakeContent{contents: map[string]*domain.Content{}}
	r := newBoardRouter(id, fc)

	if w := get(r, "/thread/ghost1", "tok"); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestCommentUpload_RedirectsToParent(t *testing.T) {
	id := &fakeIdentity{userID: "anon42"}
	fc := &fakeContent{contents: map[string]*domain.Content{}}
	r := newBoardRouter(id, fc)

	w := postForm(r, "/comment/par111", url.Values{"content": {"nice"}}, "tok")
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/thread/par111" {
		t.Fatalf("Location = %q", loc)
	}
	if fc.commentedID != "par111" || fc.commentedBody != "nice" {
		t.Fatalf("comment not forwarded: %q %q", fc.commentedID, fc.commentedBody)
	}
}

func TestCommentUpload_MissingParentIsNotFound(t *testing.T) {
	id := &fakeIdentity{userID: "anon42"}
	fc := &fakeContent{commentErr: services.ErrContentNotFound}
	r := newBoardRouter(id, fc)

	if w := postForm(r, "/comment/ghost1", url.Values{"content": {"x"}}, "tok"); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestIndex_RendersListingWithIdentity(t *testing.T) {
	id := &fakeIdentity{userID: "anon42", mintToken: "brandnewtok1"}
	fc := &fakeContent{
		contents: map[string]*domain.Content{
			"abc123": {ID: "abc123", UserID: "poster", Title: "A thread", Body: "text"},
		},
	}
	r := newBoardRouter(id, fc)

	w := get(r, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "A thread") {
		t.Fatalf("listing missing thread title")
	}
	if !strings.Contains(strings.Join(w.Header().Values("Set-Cookie"), ";"), "userToken=brandnewtok1") {
		t.Fatalf("listing must issue the identity cookie on first contact")
	}
}

func TestWriteForm_NoDataAccessBeyondIdentity(t *testing.T) {
	id := &fakeIdentity{userID: "anon42"}
	r := newBoardRouter(id, &fakeContent{})

	w := get(r, "/write", "tok")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `action="/upload"`) {
		t.Fatalf("compose form missing upload action")
	}
}

func TestStyles_ServedWithCSSContentType(t *testing.T) {
	r := newBoardRouter(&fakeIdentity{userID: "anon42"}, &fakeContent{})

	w := get(r, "/styles.css", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Fatalf("Content-Type = %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Fatalf("stylesheet body empty")
	}
}

func TestIdentityFailure_IsInternalError(t *testing.T) {
	id := &fakeIdentity{err: services.ErrMintCollision}
	r := newBoardRouter(id, &fakeContent{})

	if w := get(r, "/", ""); w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}
