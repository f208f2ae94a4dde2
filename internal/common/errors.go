// Package common defines shared sentinel errors used across the CineCircle
// server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Credential policy errors.
	ErrInvalidEmail       = errors.New("email is not valid")
	ErrInvalidCredentials = errors.New("username and password must be longer than 7 characters")
	ErrPasswordTooShort   = errors.New("password must be longer than 7 characters")

	// Identity errors.
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")
	ErrUserNotFound  = errors.New("user could not be found")

	// Social graph errors.
	ErrMissingUserID          = errors.New("need a valid user id")
	ErrFriendsListUnavailable = errors.New("friends list not retrieved")
	ErrAlreadyFriends         = errors.New("users already friends")

	// Watchlist errors.
	ErrListNameEmpty      = errors.New("list name cannot be empty")
	ErrIsPublicNotBoolean = errors.New("isPublic must be a boolean")
	ErrWatchlistNotFound  = errors.New("watchlist not found")
	ErrNotListOwner       = errors.New("only the owner may modify this watchlist")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
