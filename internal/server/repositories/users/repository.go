// Package users declares the repository contract for the user-record store.
package users

import (
	"context"

	"github.com/cinecircle/cinecircle/internal/server/models"
)

// ProfileFields is the subset of a user record mutated by a profile update.
type ProfileFields struct {
	Biography       string
	PreferredGenres []string
	ProfilePicture  string
}

// Repository defines operations over stored user records. Lookups return
// common.ErrorNotFound when no record matches.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, userID string) error

	// ChangePassword replaces the stored password hash.
	ChangePassword(ctx context.Context, userID string, passwordHash string) error

	// SetBanned sets the moderation flag.
	SetBanned(ctx context.Context, userID string, banned bool) error

	// UpdateFriends replaces the user's embedded friend list wholesale.
	UpdateFriends(ctx context.Context, friends []models.Friend, userID string) error

	// UpdateProfile persists the merged profile fields and returns the
	// updated record.
	UpdateProfile(ctx context.Context, userID string, fields ProfileFields) (*models.User, error)

	// FriendsListByUserID projects the user's friends down to the reduced
	// summary, joining against live user rows so edges pointing at deleted
	// accounts never surface.
	FriendsListByUserID(ctx context.Context, userID string) ([]*models.FriendSummary, error)
}
