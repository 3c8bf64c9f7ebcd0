// Package services defines the business logic for identity resolution and
// content submission. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed
// at the handler layer.
package services

import "errors"

var (
	// ErrContentNotFound indicates that the requested thread does not exist.
	ErrContentNotFound = errors.New("content not found")

	// ErrEmptyTitle is returned when a submission carries a blank title.
	ErrEmptyTitle = errors.New("title is empty")

	// ErrEmptyBody is returned when a submission or comment carries a
	// blank body.
	ErrEmptyBody = errors.New("body is empty")

	// ErrMintCollision is returned when a freshly generated id or token
	// collides with an existing row. The id space is large relative to
	// traffic, so the insert is not retried; the request fails outright.
	ErrMintCollision = errors.New("generated id already exists")
)
