package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cinecircle/cinecircle/internal/common"
	"github.com/cinecircle/cinecircle/internal/logging"
	"github.com/cinecircle/cinecircle/internal/server/blob"
	"github.com/cinecircle/cinecircle/internal/server/models"
	"github.com/cinecircle/cinecircle/internal/server/repositories/repomanager"
)

// CreateUserInput is the candidate identity supplied at registration.
type CreateUserInput struct {
	Username string
	Password string
	Email    string
}

// UserListing is one entry of the admin-facing user listing: the redacted
// record plus a signed URL for its profile picture (nil when unset).
type UserListing struct {
	User      *models.User
	SignedURL *string
}

// IdentityService creates, deletes, bans/unbans, and fetches users. It
// enforces identity uniqueness and post-fetch redaction/enrichment.
type IdentityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blob.Store
	logger      logging.Logger
}

func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, blobs blob.Store, logger logging.Logger) *IdentityService {
	return &IdentityService{db: db, repomanager: m, blobs: blobs, logger: logger}
}

// CreateUser validates the candidate, checks username and email uniqueness,
// and persists a record with all social and moderation fields at their
// defaults. The two uniqueness lookups are sequential; the store's unique
// constraints backstop the remaining race window.
func (s *IdentityService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if !ValidateEmail(in.Email) {
		return nil, common.ErrInvalidEmail
	}
	if !ValidateCredentials(in.Username, in.Password) {
		return nil, common.ErrInvalidCredentials
	}

	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByUsername(ctx, in.Username); err == nil {
		return nil, common.ErrUsernameTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error checking username: %w", err)
	}

	if _, err := repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, common.ErrEmailTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error checking email: %w", err)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		ID:                 uuid.NewString(),
		Username:           in.Username,
		Email:              in.Email,
		PasswordHash:       hash,
		ProfilePicture:     "",
		Biography:          "",
		PreferredGenres:    []string{},
		Friends:            []models.Friend{},
		RecentlyAdded:      []string{},
		CollaborativeLists: []string{},
		LikedLists:         []string{},
	}

	created, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrUsernameTaken) || errors.Is(err, common.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user created", "username", created.Username)

	created.PasswordHash = ""
	return created, nil
}

// DeleteUser removes the requester's own record. Friend edges in other
// users' records are left in place as tombstones; the friends projection
// filters them lazily on read.
func (s *IdentityService) DeleteUser(ctx context.Context, requesterID string) error {
	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByID(ctx, requesterID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return fmt.Errorf("error fetching user: %w", err)
	}

	if err := repo.Delete(ctx, requesterID); err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}

	s.logger.Info(ctx, "user deleted", "userId", requesterID)
	return nil
}

// GetUserByID fetches a user, strips the password hash, and attaches a
// time-limited signed URL when a profile picture key is set.
func (s *IdentityService) GetUserByID(ctx context.Context, userID string) (*models.User, *string, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("error fetching user: %w", err)
	}

	var signedURL *string
	if user.ProfilePicture != "" {
		url, err := s.blobs.SignedURL(ctx, user.ProfilePicture)
		if err != nil {
			return nil, nil, fmt.Errorf("error generating signed url: %w", err)
		}
		signedURL = &url
	}

	user.PasswordHash = ""
	return user, signedURL, nil
}

// GetAllUsers returns every user with credentials and list references
// stripped, each augmented with a signed URL (or nil) for its profile
// picture. Intended for small admin-facing listings only.
func (s *IdentityService) GetAllUsers(ctx context.Context) ([]*UserListing, error) {
	repo := s.repomanager.Users(s.db)

	all, err := repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	listings := make([]*UserListing, 0, len(all))
	for _, u := range all {
		u.PasswordHash = ""
		u.LikedLists = nil
		u.CollaborativeLists = nil
		u.RecentlyAdded = nil

		var signedURL *string
		if u.ProfilePicture != "" {
			url, err := s.blobs.SignedURL(ctx, u.ProfilePicture)
			if err != nil {
				return nil, fmt.Errorf("error generating signed url: %w", err)
			}
			signedURL = &url
		}
		listings = append(listings, &UserListing{User: u, SignedURL: signedURL})
	}
	return listings, nil
}

// BanUser sets the moderation flag according to status ("banned" or
// "unbanned"). Any other status value leaves the record unchanged.
func (s *IdentityService) BanUser(ctx context.Context, userID string, status string) error {
	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return fmt.Errorf("error fetching user: %w", err)
	}

	switch status {
	case "banned":
		if err := repo.SetBanned(ctx, userID, true); err != nil {
			return fmt.Errorf("error banning user: %w", err)
		}
		s.logger.Info(ctx, "user ban status changed", "userId", userID, "status", status)
	case "unbanned":
		if err := repo.SetBanned(ctx, userID, false); err != nil {
			return fmt.Errorf("error unbanning user: %w", err)
		}
		s.logger.Info(ctx, "user ban status changed", "userId", userID, "status", status)
	default:
		// Unrecognized statuses are a deliberate no-op.
	}
	return nil
}

// ChangePassword hashes and persists a new password for the requester.
func (s *IdentityService) ChangePassword(ctx context.Context, requesterID string, newPassword string) error {
	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByID(ctx, requesterID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return fmt.Errorf("error fetching user: %w", err)
	}

	if len(newPassword) <= minCredentialLength {
		return common.ErrPasswordTooShort
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return common.ErrorInternal
	}

	if err := repo.ChangePassword(ctx, requesterID, hash); err != nil {
		return fmt.Errorf("error changing password: %w", err)
	}

	s.logger.Info(ctx, "password changed", "userId", requesterID)
	return nil
}
