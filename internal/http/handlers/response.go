// Package handlers provides the HTTP handlers for the board's pages and
// form submissions.
//
// This file defines the shared failure helper. Every error path surfaces
// per-request: a plain-text status response for the visitor and, for
// server-side errors, a structured log entry with request context. Nothing
// here ever terminates the process.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-board-backend/internal/http/middleware"
)

// Fail aborts the request with the given status and a plain-text message.
// Server errors (>= 500) are logged with the request-scoped logger.
func Fail(c *gin.Context, status int, msg string) {
	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("message", msg).
			Msg("request failed")
	}
	c.String(status, msg)
	c.Abort()
}
