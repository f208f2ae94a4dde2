package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cinecircle/cinecircle/internal/common"
	"github.com/cinecircle/cinecircle/internal/logging"
	"github.com/cinecircle/cinecircle/internal/server/models"
	"github.com/cinecircle/cinecircle/internal/server/repositories/repomanager"
	"github.com/cinecircle/cinecircle/internal/server/repositories/watchlists"
)

// WatchlistService owns watchlist records and the authorization gate over
// them: only owners mutate, and private lists are readable by owners only.
type WatchlistService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewWatchlistService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *WatchlistService {
	return &WatchlistService{db: db, repomanager: m, logger: logger}
}

// Create persists a new watchlist owned by ownerID. Visibility defaults to
// the store's column default (private).
func (s *WatchlistService) Create(ctx context.Context, ownerID string, listName string) (*models.Watchlist, error) {
	if listName == "" {
		return nil, common.ErrListNameEmpty
	}

	repo := s.repomanager.Watchlists(s.db)

	w, err := repo.Create(ctx, ownerID, uuid.NewString(), listName)
	if err != nil {
		return nil, fmt.Errorf("error creating watchlist: %w", err)
	}

	s.logger.Info(ctx, "watchlist created", "listId", w.ID, "ownerId", ownerID)
	return w, nil
}

// Update persists only the provided fields. Ownership is settled before the
// payload is validated, so a non-owner is refused regardless of what they
// sent. A nil pointer leaves the field unchanged.
func (s *WatchlistService) Update(ctx context.Context, requesterID string, listID string, fields watchlists.UpdateFields) (*models.Watchlist, error) {
	repo := s.repomanager.Watchlists(s.db)

	w, err := repo.GetByID(ctx, listID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrWatchlistNotFound
		}
		return nil, fmt.Errorf("error fetching watchlist: %w", err)
	}

	if w.OwnerID != requesterID {
		return nil, common.ErrNotListOwner
	}

	if fields.Name != nil && *fields.Name == "" {
		return nil, common.ErrListNameEmpty
	}

	updated, err := repo.Update(ctx, listID, fields)
	if err != nil {
		return nil, fmt.Errorf("error updating watchlist: %w", err)
	}

	s.logger.Info(ctx, "watchlist updated", "listId", listID)
	return updated, nil
}

// Get resolves the record and applies the read gate: public lists are
// visible to anyone, private lists to their owner only. Denial is not an
// error; it is reported as a nil watchlist so callers can translate it to
// their own "no permission" outcome.
func (s *WatchlistService) Get(ctx context.Context, requesterID string, listID string) (*models.Watchlist, error) {
	repo := s.repomanager.Watchlists(s.db)

	w, err := repo.GetByID(ctx, listID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrWatchlistNotFound
		}
		return nil, fmt.Errorf("error fetching watchlist: %w", err)
	}

	if w.IsPublic || w.OwnerID == requesterID {
		return w, nil
	}
	return nil, nil
}
