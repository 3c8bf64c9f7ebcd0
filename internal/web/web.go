// Package web bundles the HTML templates and static assets served by the
// board. Everything is embedded so a single binary carries the whole site.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// StyleCSS is the single stylesheet served at /styles.css.
//
//go:embed assets/style.css
var StyleCSS []byte

// Templates parses the embedded page templates. It panics on malformed
// templates, which can only happen at build time.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}
