package watchlists

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cinecircle/cinecircle/internal/common"
	"github.com/cinecircle/cinecircle/internal/dbx"
	"github.com/cinecircle/cinecircle/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, ownerID string, listID string, name string) (*models.Watchlist, error) {
	query := `
		INSERT INTO watchlists (list_id, owner_id, list_name)
		VALUES ($1, $2, $3)
		RETURNING is_public, created_at
	`
	w := &models.Watchlist{ID: listID, OwnerID: ownerID, Name: name}
	if err := r.db.QueryRowContext(ctx, query, listID, ownerID, name).Scan(&w.IsPublic, &w.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return w, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, listID string) (*models.Watchlist, error) {
	query := `
		SELECT list_id, owner_id, list_name, is_public, created_at
		FROM watchlists
		WHERE list_id = $1
	`
	w := &models.Watchlist{}
	err := r.db.QueryRowContext(ctx, query, listID).Scan(&w.ID, &w.OwnerID, &w.Name, &w.IsPublic, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return w, nil
}

// Update writes only the provided fields, leaving nil pointers untouched.
func (r *PostgresRepository) Update(ctx context.Context, listID string, fields UpdateFields) (*models.Watchlist, error) {
	query := `
		UPDATE watchlists
		SET list_name = COALESCE($1, list_name),
		    is_public = COALESCE($2, is_public)
		WHERE list_id = $3
		RETURNING list_id, owner_id, list_name, is_public, created_at
	`
	w := &models.Watchlist{}
	err := r.db.QueryRowContext(ctx, query, fields.Name, fields.IsPublic, listID).
		Scan(&w.ID, &w.OwnerID, &w.Name, &w.IsPublic, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return w, nil
}
