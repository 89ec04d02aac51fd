// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips unsafe markup from user-supplied text
// before it is stored or rendered. Notification messages embed the
// requester's username, so everything that passes through here must be
// safe to echo back to another user's browser.
package htmlsanitize

import (
	"html/template"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ugc keeps basic formatting (p, strong, em, links, tables) and
	// drops scripts, event handlers, and javascript: URLs.
	ugc = bluemonday.UGCPolicy()

	// strict strips all markup, leaving plain text.
	strict = bluemonday.StrictPolicy()
)

// Sanitize returns s with unsafe HTML removed, keeping user-generated
// content formatting.
func Sanitize(s string) string {
	return ugc.Sanitize(s)
}

// SanitizeHTML is Sanitize with the result marked safe for templates.
func SanitizeHTML(s string) template.HTML {
	return template.HTML(ugc.Sanitize(s))
}

// PlainText strips all markup. Used for values that must never carry
// formatting: usernames, team names, notification messages.
func PlainText(s string) string {
	return strict.Sanitize(s)
}
