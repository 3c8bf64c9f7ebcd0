// This file implements submission and retrieval of threads and comments.
// Thread ids are minted at request time from the alphanumeric alphabet;
// comment submission optionally bumps the parent thread's last_updated so
// it rises in the listing. The comment insert and the freshness bump are
// two separate statements, not one transaction: a bump that fails after
// the insert succeeded leaves the comment in place with a stale listing
// position. That inconsistency is tolerated; see DESIGN.md.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-board-backend/internal/domain"
)

// ContentRepo defines the repository contract required by ContentService.
type ContentRepo interface {
	CreateContent(ctx context.Context, db *gorm.DB, id, userID, title, body string, now time.Time) (*domain.Content, error)
	GetContent(ctx context.Context, db *gorm.DB, id string) (*domain.Content, error)
	ListContents(ctx context.Context, db *gorm.DB) ([]domain.Content, error)
	ListContentsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Content, error)
	CountContents(ctx context.Context, db *gorm.DB) (int64, error)
	BumpContent(ctx context.Context, db *gorm.DB, id string, ts time.Time) error
	CreateComment(ctx context.Context, db *gorm.DB, contentID, userID, body string, now time.Time) (*domain.Comment, error)
	ListComments(ctx context.Context, db *gorm.DB, contentID string) ([]domain.Comment, error)
}

// ContentService provides thread and comment operations: validated
// submission, id minting, freshness bumping, and retrieval in display
// order.
type ContentService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the content repository used by this service.
	Repo ContentRepo

	// IDLen is the length of minted thread ids.
	IDLen int
	// BumpOnComment gates the freshness bump on comment submission.
	// True for the thread-style schema; the post-style variant keeps
	// last_updated frozen at creation time.
	BumpOnComment bool
}

// DefaultContentIDLen is the minted thread id length.
const DefaultContentIDLen = 6

// NewContentService constructs a ContentService with thread-variant
// defaults (comments bump freshness).
func NewContentService(db *gorm.DB, r ContentRepo) *ContentService {
	return &ContentService{
		DB:            db,
		Repo:          r,
		IDLen:         DefaultContentIDLen,
		BumpOnComment: true,
	}
}

// Submit validates and persists a new thread, returning the stored row so
// the handler can redirect to its detail page. A duplicate minted id is a
// hard error (ErrMintCollision), not retried.
func (s *ContentService) Submit(ctx context.Context, userID, title, body string) (*domain.Content, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if body == "" {
		return nil, ErrEmptyBody
	}

	idLen := s.IDLen
	if idLen <= 0 {
		idLen = DefaultContentIDLen
	}
	id, err := randomAlphanumeric(idLen)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c, err := s.Repo.CreateContent(ctx, s.DB, id, userID, title, body, now)
	if err != nil {
		return nil, mapMintErr(err)
	}
	return c, nil
}

// Comment validates and persists a comment on the thread contentID, then
// bumps the parent's last_updated to the comment's timestamp when
// BumpOnComment is set. The parent is fetched first so a comment aimed at
// a nonexistent thread fails as not-found instead of inserting an orphan.
func (s *ContentService) Comment(ctx context.Context, userID, contentID, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return ErrEmptyBody
	}

	if _, err := s.Repo.GetContent(ctx, s.DB, contentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContentNotFound
		}
		return err
	}

	now := time.Now().UTC()
	if _, err := s.Repo.CreateComment(ctx, s.DB, contentID, userID, body, now); err != nil {
		return err
	}
	if !s.BumpOnComment {
		return nil
	}
	// Second, separate write. Not atomic with the insert above.
	return s.Repo.BumpContent(ctx, s.DB, contentID, now)
}

// List returns every thread, freshest first.
func (s *ContentService) List(ctx context.Context) ([]domain.Content, error) {
	return s.Repo.ListContents(ctx, s.DB)
}

// ListPage returns one page of threads, freshest first, together with the
// total thread count. Invalid page or pageSize values fall back to sane
// defaults.
func (s *ContentService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Content, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountContents(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Content{}, 0, nil
	}

	items, err := s.Repo.ListContentsPage(ctx, s.DB, offset, pageSize)
	return items, total, err
}

// Detail fetches one thread and its comments, oldest comment first.
func (s *ContentService) Detail(ctx context.Context, id string) (*domain.Content, []domain.Comment, error) {
	c, err := s.Repo.GetContent(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrContentNotFound
		}
		return nil, nil, err
	}
	comments, err := s.Repo.ListComments(ctx, s.DB, id)
	if err != nil {
		return nil, nil, err
	}
	return c, comments, nil
}
