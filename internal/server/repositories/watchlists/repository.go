// Package watchlists declares the repository contract for the watchlist
// record store.
package watchlists

import (
	"context"

	"github.com/cinecircle/cinecircle/internal/server/models"
)

// UpdateFields carries the mutable watchlist attributes; nil pointers mean
// "leave unchanged".
type UpdateFields struct {
	Name     *string
	IsPublic *bool
}

// Repository defines operations over stored watchlist records. Lookups
// return common.ErrorNotFound when no record matches.
type Repository interface {
	// Create persists a new watchlist; visibility defaults to the store's
	// column default (private).
	Create(ctx context.Context, ownerID string, listID string, name string) (*models.Watchlist, error)

	GetByID(ctx context.Context, listID string) (*models.Watchlist, error)

	// Update persists only the provided fields and returns the updated record.
	Update(ctx context.Context, listID string, fields UpdateFields) (*models.Watchlist, error)
}
