// Package domain defines the persistence models for the anonymous board:
// pseudonymous users, top-level contents (threads), and comments. These
// types are mapped with GORM and form the core data layer of the
// application.
package domain

import "time"

// User maps a secret cookie token to a public pseudonym. A row is created
// on first contact and never updated or deleted afterwards.
//
// Fields:
//   - ID: internal row id, never exposed.
//   - UserToken: opaque secret held by the client's cookie; unique.
//   - UserID: public pseudonym shown next to content; unique.
//   - CreatedAt: timestamp of first contact.
type User struct {
	ID        uint      `json:"-"          gorm:"primaryKey;autoIncrement"`
	UserToken string    `json:"-"          gorm:"type:varchar(64);not null;uniqueIndex:ux_users_token"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(16);not null;uniqueIndex:ux_users_user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Content is a top-level thread with a title and body. LastUpdated starts
// equal to CreatedAt and is bumped whenever a comment lands on the thread;
// listings are ordered by it, newest first.
//
// The field is deliberately not named UpdatedAt: the freshness bump is an
// explicit write performed by the content service, never a GORM-managed
// timestamp.
type Content struct {
	ID          string    `json:"id"           gorm:"type:varchar(16);primaryKey"`
	UserID      string    `json:"user_id"      gorm:"type:varchar(16);not null;index"`
	Title       string    `json:"title"        gorm:"type:varchar(255);not null"`
	Body        string    `json:"body"         gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated" gorm:"index:idx_contents_freshness"`
}

// TableName returns the database table name for Content.
func (Content) TableName() string { return "contents" }

// Comment is a reply attached to a Content item. It has no public id of its
// own; for display purposes a comment is identified by (ContentID,
// CreatedAt, UserID). The referential link to Content is enforced at the
// application layer only. No foreign key constraint is declared, so a
// malformed direct request can orphan a row, which surfaces as the
// not-found case on the detail view.
type Comment struct {
	ID        uint      `json:"-"          gorm:"primaryKey;autoIncrement"`
	ContentID string    `json:"content_id" gorm:"type:varchar(16);not null;index:idx_comments_content,priority:1"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(16);not null"`
	Body      string    `json:"body"       gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_comments_content,priority:2"`
}

// TableName returns the database table name for Comment.
func (Comment) TableName() string { return "comments" }
