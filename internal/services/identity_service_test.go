package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/tbourn/go-board-backend/internal/domain"
)

// ----- Fake repo -----

type fakeUserRepo struct {
	// users maps token -> user id.
	users map[string]string
	// createErr, when set, fails the next CreateUser call.
	createErr error
	// getErr, when set, fails GetUserByToken with a non-not-found error.
	getErr error

	created [][2]string // (token, userID) pairs passed to CreateUser
}

func (r *fakeUserRepo) GetUserByToken(ctx context.Context, db *gorm.DB, token string) (*domain.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	if uid, ok := r.users[token]; ok {
		return &domain.User{UserToken: token, UserID: uid}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) CreateUser(ctx context.Context, db *gorm.DB, token, userID string) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if r.users == nil {
		r.users = map[string]string{}
	}
	r.users[token] = userID
	r.created = append(r.created, [2]string{token, userID})
	return &domain.User{UserToken: token, UserID: userID}, nil
}

var alnumRE = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ----- Tests -----

func TestResolve_NoToken_MintsPair(t *testing.T) {
	r := &fakeUserRepo{}
	s := NewIdentityService(nil, r)

	res, err := s.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("fresh visitor must get a cookie token")
	}
	if len(res.Token) < 10 || !alnumRE.MatchString(res.Token) {
		t.Fatalf("token %q must be >=10 alphanumeric chars", res.Token)
	}
	if len(res.UserID) != DefaultUserIDLen || !alnumRE.MatchString(res.UserID) {
		t.Fatalf("user id %q must be %d alphanumeric chars", res.UserID, DefaultUserIDLen)
	}
	if res.UserID != strings.ToLower(res.UserID) {
		t.Fatalf("user id %q must be case-normalized", res.UserID)
	}
	if len(r.created) != 1 {
		t.Fatalf("expected exactly one insert, got %d", len(r.created))
	}
}

func TestResolve_NoToken_TwiceDistinctPairs(t *testing.T) {
	r := &fakeUserRepo{}
	s := NewIdentityService(nil, r)

	a, err := s.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	b, err := s.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if a.Token == b.Token {
		t.Fatalf("two mints produced the same token")
	}
	if a.UserID == b.UserID {
		t.Fatalf("two mints produced the same user id")
	}
}

func TestResolve_KnownToken_IdempotentNoReissue(t *testing.T) {
	r := &fakeUserRepo{users: map[string]string{"tok1234567890": "abc123"}}
	s := NewIdentityService(nil, r)

	for i := 0; i < 3; i++ {
		res, err := s.Resolve(context.Background(), "tok1234567890")
		if err != nil {
			t.Fatalf("Resolve #%d: %v", i, err)
		}
		if res.UserID != "abc123" {
			t.Fatalf("Resolve #%d user id = %q, want abc123", i, res.UserID)
		}
		if res.Token != "" {
			t.Fatalf("valid cookie must never be re-issued")
		}
	}
	if len(r.created) != 0 {
		t.Fatalf("no write expected for a known token")
	}
}

func TestResolve_UnknownToken_HealsInPlace(t *testing.T) {
	r := &fakeUserRepo{users: map[string]string{}}
	s := NewIdentityService(nil, r)

	res, err := s.Resolve(context.Background(), "forgedTOKEN42")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Token != "" {
		t.Fatalf("healing must reuse the existing token, not set a new cookie")
	}
	if res.UserID == "" {
		t.Fatalf("healing must mint a fresh user id")
	}
	if len(r.created) != 1 || r.created[0][0] != "forgedTOKEN42" {
		t.Fatalf("new pseudonym must be inserted under the presented token: %+v", r.created)
	}
}

func TestResolve_MintCollision_Propagated(t *testing.T) {
	r := &fakeUserRepo{createErr: gorm.ErrDuplicatedKey}
	s := NewIdentityService(nil, r)

	if _, err := s.Resolve(context.Background(), ""); !errors.Is(err, ErrMintCollision) {
		t.Fatalf("duplicate insert must surface as ErrMintCollision, got %v", err)
	}
	if len(r.created) != 0 {
		t.Fatalf("collision must not be retried")
	}
}

func TestResolve_StoreErrorPassedThrough(t *testing.T) {
	boom := errors.New("disk on fire")
	r := &fakeUserRepo{getErr: boom}
	s := NewIdentityService(nil, r)

	if _, err := s.Resolve(context.Background(), "sometoken99"); !errors.Is(err, boom) {
		t.Fatalf("store error must propagate, got %v", err)
	}
}
