package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cinecircle/cinecircle/internal/common"
	"github.com/cinecircle/cinecircle/internal/logging"
	"github.com/cinecircle/cinecircle/internal/server/blob"
	"github.com/cinecircle/cinecircle/internal/server/models"
	"github.com/cinecircle/cinecircle/internal/server/repositories/repomanager"
	"github.com/cinecircle/cinecircle/internal/server/repositories/users"
)

// ProfileInput carries the mutable profile text fields.
type ProfileInput struct {
	Biography       string
	PreferredGenres []string
}

// ProfileUpload is an optional replacement profile picture.
type ProfileUpload struct {
	FileName string
	Content  io.Reader
	Size     int64
}

// ProfileStorageKey computes a fresh blob key for an uploaded picture.
func ProfileStorageKey(fileName string) string {
	return fmt.Sprintf("profile/%v-%s", uuid.New(), fileName)
}

// ProfileService updates biography, genres, and the profile picture,
// coordinating the blob replace-then-swap against the object store.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blob.Store
	logger      logging.Logger
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager, blobs blob.Store, logger logging.Logger) *ProfileService {
	return &ProfileService{db: db, repomanager: m, blobs: blobs, logger: logger}
}

// UpdateProfile merges the given fields into the user's profile. When a new
// picture is uploaded, the new blob is stored and the previous one deleted
// concurrently; either failure aborts the call and the record is not
// touched. There is no rollback of a half-completed upload/delete pair.
// Returns the updated record and a signed URL for the current picture key,
// or nil when no key is set.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, in ProfileInput, upload *ProfileUpload) (*models.User, *string, error) {
	repo := s.repomanager.Users(s.db)

	old, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("error fetching user: %w", err)
	}

	// Retain the existing key unless a new file replaces it.
	key := old.ProfilePicture

	if upload != nil {
		key = ProfileStorageKey(upload.FileName)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return s.blobs.Upload(gctx, key, upload.Content, upload.Size) })
		g.Go(func() error { return s.blobs.Delete(gctx, old.ProfilePicture) })
		if err := g.Wait(); err != nil {
			return nil, nil, fmt.Errorf("error replacing profile picture: %w", err)
		}
	}

	genres := in.PreferredGenres
	if len(genres) == 0 {
		genres = []string{}
	}

	updated, err := repo.UpdateProfile(ctx, userID, users.ProfileFields{
		Biography:       strings.TrimSpace(in.Biography),
		PreferredGenres: genres,
		ProfilePicture:  key,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error updating profile: %w", err)
	}

	var signedURL *string
	if key != "" {
		url, err := s.blobs.SignedURL(ctx, key)
		if err != nil {
			return nil, nil, fmt.Errorf("error generating signed url: %w", err)
		}
		signedURL = &url
	}

	s.logger.Info(ctx, "profile updated", "userId", userID)

	updated.PasswordHash = ""
	return updated, signedURL, nil
}
