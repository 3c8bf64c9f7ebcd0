// This file implements the anonymous identity issuance protocol. A visitor
// is identified by an opaque token held in a cookie and mapped server-side
// to a public pseudonym (user id). Resolution is tolerant by design: an
// unrecognized token is healed in place with a fresh pseudonym rather than
// rejected, so browsing is never interrupted by a stale or forged cookie.
package services

import (
	"context"
	"errors"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/go-board-backend/internal/domain"
)

// UserRepo defines the repository contract required by IdentityService.
type UserRepo interface {
	// GetUserByToken looks up the row holding a cookie token.
	GetUserByToken(ctx context.Context, db *gorm.DB, token string) (*domain.User, error)

	// CreateUser inserts a new (token, user id) pair.
	CreateUser(ctx context.Context, db *gorm.DB, token, userID string) (*domain.User, error)
}

// Resolution is the outcome of resolving an incoming cookie token.
type Resolution struct {
	// UserID is the public pseudonym confirmed for this request.
	UserID string
	// Token is non-empty only when a fresh token was minted and the
	// caller must set it as a cookie with a far-future expiry.
	Token string
}

// IdentityService turns an optional incoming cookie token into a confirmed
// identity, minting tokens and pseudonyms on demand. It performs one read
// and at most one write per call.
type IdentityService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the user repository used by this service.
	Repo UserRepo

	// TokenLen is the length of minted tokens (alphanumeric).
	TokenLen int
	// UserIDLen is the length of minted pseudonyms (alphanumeric,
	// case-normalized to lowercase).
	UserIDLen int
}

// Minted identifier lengths. Tokens are the client-held secret and get the
// larger space; user ids only need to be distinguishable on a page.
const (
	DefaultTokenLen  = 12
	DefaultUserIDLen = 6
)

// lowercase normalizes minted pseudonyms so that the rendered author id is
// case-stable regardless of the random draw.
var lowercase = cases.Lower(language.Und)

// NewIdentityService constructs an IdentityService with default id lengths.
func NewIdentityService(db *gorm.DB, r UserRepo) *IdentityService {
	return &IdentityService{
		DB:        db,
		Repo:      r,
		TokenLen:  DefaultTokenLen,
		UserIDLen: DefaultUserIDLen,
	}
}

// Resolve confirms an identity for the request carrying cookieToken, which
// may be empty when no cookie was sent.
//
// Behavior:
//   - Empty token: mint a token and a pseudonym, insert the pair, and
//     instruct the caller to set the cookie.
//   - Known token: return its pseudonym; the cookie is not re-issued.
//   - Unknown token: mint a new pseudonym under the existing token value
//     and return it without re-issuing the cookie. Identity is tied to
//     token validity, not to a stable human.
//
// A unique-index violation on insert means a mint collision and is
// surfaced as ErrMintCollision without retry. Two concurrent resolutions
// of the same never-seen token race on the insert; the loser of that race
// also surfaces as a collision rather than being serialized on the token.
func (s *IdentityService) Resolve(ctx context.Context, cookieToken string) (Resolution, error) {
	if cookieToken == "" {
		token, err := randomAlphanumeric(s.tokenLen())
		if err != nil {
			return Resolution{}, err
		}
		userID, err := s.mintUserID()
		if err != nil {
			return Resolution{}, err
		}
		if _, err := s.Repo.CreateUser(ctx, s.DB, token, userID); err != nil {
			return Resolution{}, mapMintErr(err)
		}
		return Resolution{UserID: userID, Token: token}, nil
	}

	u, err := s.Repo.GetUserByToken(ctx, s.DB, cookieToken)
	if err == nil {
		return Resolution{UserID: u.UserID}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Resolution{}, err
	}

	// Stale or forged token: heal in place with a fresh pseudonym under
	// the existing token value.
	userID, err := s.mintUserID()
	if err != nil {
		return Resolution{}, err
	}
	if _, err := s.Repo.CreateUser(ctx, s.DB, cookieToken, userID); err != nil {
		return Resolution{}, mapMintErr(err)
	}
	return Resolution{UserID: userID}, nil
}

// mintUserID draws a fresh lowercase pseudonym.
func (s *IdentityService) mintUserID() (string, error) {
	id, err := randomAlphanumeric(s.userIDLen())
	if err != nil {
		return "", err
	}
	return lowercase.String(id), nil
}

func (s *IdentityService) tokenLen() int {
	if s.TokenLen > 0 {
		return s.TokenLen
	}
	return DefaultTokenLen
}

func (s *IdentityService) userIDLen() int {
	if s.UserIDLen > 0 {
		return s.UserIDLen
	}
	return DefaultUserIDLen
}

// mapMintErr converts duplicate-key insert failures into ErrMintCollision
// and passes every other store error through unchanged.
func mapMintErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrMintCollision
	}
	return err
}
