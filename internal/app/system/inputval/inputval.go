// internal/app/system/inputval/inputval.go

// Package inputval validates user-supplied form input. Validate checks
// struct fields against `validate` tags; the IsValid* helpers cover
// one-off checks handlers need before touching the database.
package inputval

import (
	"fmt"
	"net/mail"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Result collects validation failures in field order.
type Result struct {
	Errors []string
}

// HasErrors reports whether any rule failed.
func (r Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first failure message, or "".
func (r Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0]
}

// Validate checks string fields of a struct against their `validate`
// tags. Supported rules: "required" and "max=N". The `label` tag names
// the field in messages.
//
//	type createTeamInput struct {
//	    Name string `validate:"required,max=100" label:"Team name"`
//	}
func Validate(v interface{}) Result {
	var res Result

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || rv.Field(i).Kind() != reflect.String {
			continue
		}
		label := field.Tag.Get("label")
		if label == "" {
			label = field.Name
		}
		val := rv.Field(i).String()

		for _, rule := range strings.Split(tag, ",") {
			switch {
			case rule == "required":
				if strings.TrimSpace(val) == "" {
					res.Errors = append(res.Errors, fmt.Sprintf("%s is required.", label))
				}
			case strings.HasPrefix(rule, "max="):
				n, err := strconv.Atoi(strings.TrimPrefix(rule, "max="))
				if err == nil && len(val) > n {
					res.Errors = append(res.Errors, fmt.Sprintf("%s must be at most %d characters.", label, n))
				}
			}
		}
	}
	return res
}

// IsValidEmail reports whether s is a plausible bare email address.
// Display-name forms ("Name <a@b>") are rejected; single-label domains
// are allowed for dev environments.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	local, domain := s[:at], s[at+1:]
	for _, part := range []string{local, domain} {
		if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") ||
			strings.Contains(part, "..") {
			return false
		}
	}
	return true
}

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// LooksLikeEmail reports whether s is email-shaped. Usernames must not
// look like emails, so the login form can tell the two apart.
func LooksLikeEmail(s string) bool {
	return emailShape.MatchString(strings.TrimSpace(s))
}

// IsValidObjectID reports whether s parses as a Mongo ObjectID hex.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}
