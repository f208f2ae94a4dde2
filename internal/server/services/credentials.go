// Package services contains the server-side business logic: credential
// policy, identity lifecycle, the social graph, profile media, watchlist
// authorization, and token issuance.
package services

import (
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the moderate work factor the platform has always used
// for stored credentials.
const bcryptCost = 10

// minCredentialLength is exclusive: usernames and passwords must be strictly
// longer than 7 characters.
const minCredentialLength = 7

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail reports whether email matches the local@domain.tld shape.
// No DNS or MX checking is performed.
func ValidateEmail(email string) bool {
	return emailRe.MatchString(email)
}

// ValidateCredentials reports whether both username and password satisfy the
// length policy.
func ValidateCredentials(username, password string) bool {
	return len(username) > minCredentialLength && len(password) > minCredentialLength
}

// HashPassword produces a one-way salted hash of the plaintext password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword compares a plaintext candidate against a stored hash using
// the hash library's constant-time compare.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
