// Package repo implements the data persistence layer for the board,
// backed by GORM. This file provides repository functions for the User
// model, which maps cookie tokens to public pseudonyms.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-board-backend/internal/domain"
)

// GetUserByToken fetches the user row holding the given cookie token.
// Returns gorm.ErrRecordNotFound when the token has never been issued.
func GetUserByToken(ctx context.Context, db *gorm.DB, token string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("user_token = ?", token).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new (token, user id) pair. A unique-index violation
// on either column surfaces as gorm.ErrDuplicatedKey; callers treat that
// as a mint collision and do not retry.
func CreateUser(ctx context.Context, db *gorm.DB, token, userID string) (*domain.User, error) {
	u := &domain.User{
		UserToken: token,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	return u, db.WithContext(ctx).Create(u).Error
}
