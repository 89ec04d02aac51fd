// internal/app/system/normalize/normalize.go

// Package normalize trims and canonicalizes user-supplied input before
// validation or storage. Case-insensitive matching uses the folded
// *_ci fields written by the stores, not these helpers.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Username trims a username. Case is preserved for display; the
// folded username_ci field handles uniqueness.
func Username(s string) string {
	return strings.TrimSpace(s)
}

// TeamName trims a team name, preserving case.
func TeamName(s string) string {
	return strings.TrimSpace(s)
}

// AuthMethod lowercases and trims an auth method identifier.
func AuthMethod(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims a status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a query or form value, preserving case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
