// internal/app/system/authutil/authutil.go
package authutil

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost  = 12
	minPassword = 8
	// bcrypt silently truncates beyond 72 bytes, so we refuse longer input.
	maxPassword = 72
)

// commonPasswords are refused outright, case-insensitively.
var commonPasswords = map[string]struct{}{
	"password":    {},
	"password1":   {},
	"password123": {},
	"12345678":    {},
	"123456789":   {},
	"qwerty123":   {},
	"letmein1":    {},
	"iloveyou":    {},
	"sunshine":    {},
	"welcome1":    {},
}

// PasswordRules returns the human-readable password requirements for
// display next to password forms.
func PasswordRules() string {
	return "Passwords must be 8–72 characters and not a commonly used password."
}

// ValidatePassword checks a candidate password against the rules.
func ValidatePassword(pw string) error {
	if len(pw) < minPassword {
		return errors.New("password must be at least 8 characters")
	}
	if len(pw) > maxPassword {
		return errors.New("password must be at most 72 characters")
	}
	if _, bad := commonPasswords[strings.ToLower(pw)]; bad {
		return errors.New("that password is too common; please choose another")
	}
	return nil
}

// HashPassword hashes a password using bcrypt.
func HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored hash.
func CheckPassword(pw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
