// Package repo implements the data persistence layer for the board,
// backed by GORM. This file provides repository functions for Content
// (threads) and Comment rows.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-board-backend/internal/domain"
)

// CreateContent inserts a new content row with created == last_updated.
func CreateContent(ctx context.Context, db *gorm.DB, id, userID, title, body string, now time.Time) (*domain.Content, error) {
	c := &domain.Content{
		ID:          id,
		UserID:      userID,
		Title:       title,
		Body:        body,
		CreatedAt:   now,
		LastUpdated: now,
	}
	return c, db.WithContext(ctx).Create(c).Error
}

// GetContent fetches a content row by id.
func GetContent(ctx context.Context, db *gorm.DB, id string) (*domain.Content, error) {
	var c domain.Content
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListContents returns all content rows, freshest first. LastUpdated is the
// sole feed ordering key; the id tiebreak keeps equal timestamps stable.
func ListContents(ctx context.Context, db *gorm.DB) ([]domain.Content, error) {
	var out []domain.Content
	err := db.WithContext(ctx).Order("last_updated DESC, id ASC").Find(&out).Error
	return out, err
}

// ListContentsPage returns a page of content rows ordered freshest first.
func ListContentsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Content, error) {
	var out []domain.Content
	err := db.WithContext(ctx).
		Order("last_updated DESC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountContents uses a raw COUNT so a missing table surfaces as an error.
func CountContents(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw("SELECT COUNT(*) FROM contents").Scan(&total).Error
	return total, err
}

// BumpContent advances a content row's last_updated so it sorts higher in
// the listing. Last writer wins under concurrent bumps.
func BumpContent(ctx context.Context, db *gorm.DB, id string, ts time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Content{}).
		Where("id = ?", id).
		Update("last_updated", ts).Error
}

// CreateComment inserts a comment row attached to a content id.
func CreateComment(ctx context.Context, db *gorm.DB, contentID, userID, body string, now time.Time) (*domain.Comment, error) {
	m := &domain.Comment{
		ContentID: contentID,
		UserID:    userID,
		Body:      body,
		CreatedAt: now,
	}
	return m, db.WithContext(ctx).Create(m).Error
}

// ListComments returns a thread's comments ordered deterministically,
// oldest first (CreatedAt ASC, ID ASC).
func ListComments(ctx context.Context, db *gorm.DB, contentID string) ([]domain.Comment, error) {
	var out []domain.Comment
	err := db.WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// CountComments returns the number of comments attached to a content id.
func CountComments(ctx context.Context, db *gorm.DB, contentID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw("SELECT COUNT(*) FROM comments WHERE content_id = ?", contentID).Scan(&total).Error
	return total, err
}
