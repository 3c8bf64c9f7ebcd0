// Package view transforms stored rows into display-ready records: rune
// counted truncation with a fixed ellipsis marker, an overflow flag for
// bodies, and one shared timestamp format. It is pure data shaping; no
// store access and no template logic lives here.
package view

import (
	"unicode/utf8"

	"github.com/tbourn/go-board-backend/internal/domain"
)

// TimeFormat is the single timestamp layout shared by every listing and
// detail view. Divergence between views is a bug.
const TimeFormat = "2006/01/02 15:04"

// Ellipsis is appended to every truncated field.
const Ellipsis = "..."

// Limits holds the display truncation budgets in Unicode characters, not
// bytes. Zero or negative values disable truncation for that field.
type Limits struct {
	Title int
	Body  int
}

// DefaultLimits are the standard truncation budgets.
var DefaultLimits = Limits{Title: 60, Body: 700}

// Thread is a display-ready projection of a Content row.
type Thread struct {
	ID          string
	UserID      string
	Created     string
	LastUpdated string
	Title       string
	Body        string
	// Overflow reports that Body was truncated. Titles are always
	// silently truncated with the ellipsis and never set a flag.
	Overflow bool
}

// Comment is a display-ready projection of a Comment row.
type Comment struct {
	UserID   string
	Created  string
	Body     string
	Overflow bool
}

// Truncate clips s to limit characters and appends the ellipsis marker,
// reporting whether clipping happened. Counting is by rune so multi-byte
// sequences are never split. A limit <= 0 leaves s unchanged.
func Truncate(s string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s, false
	}
	return string([]rune(s)[:limit]) + Ellipsis, true
}

// NewThread projects one stored content row under the given limits.
func NewThread(c domain.Content, lim Limits) Thread {
	title, _ := Truncate(c.Title, lim.Title)
	body, overflow := Truncate(c.Body, lim.Body)
	return Thread{
		ID:          c.ID,
		UserID:      c.UserID,
		Created:     c.CreatedAt.Format(TimeFormat),
		LastUpdated: c.LastUpdated.Format(TimeFormat),
		Title:       title,
		Body:        body,
		Overflow:    overflow,
	}
}

// NewThreads projects a slice of content rows, preserving order.
func NewThreads(cs []domain.Content, lim Limits) []Thread {
	out := make([]Thread, 0, len(cs))
	for _, c := range cs {
		out = append(out, NewThread(c, lim))
	}
	return out
}

// NewComment projects one stored comment row. Comment bodies share the
// body budget with thread bodies.
func NewComment(c domain.Comment, lim Limits) Comment {
	body, overflow := Truncate(c.Body, lim.Body)
	return Comment{
		UserID:   c.UserID,
		Created:  c.CreatedAt.Format(TimeFormat),
		Body:     body,
		Overflow: overflow,
	}
}

// NewComments projects a slice of comment rows, preserving order.
func NewComments(cs []domain.Comment, lim Limits) []Comment {
	out := make([]Comment, 0, len(cs))
	for _, c := range cs {
		out = append(out, NewComment(c, lim))
	}
	return out
}
