package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cinecircle/cinecircle/internal/common"
	"github.com/cinecircle/cinecircle/internal/dbx"
	"github.com/cinecircle/cinecircle/internal/server/models"
)

const userColumns = `user_id, username, email, password_hash, is_admin, is_banned,
	profile_picture, biography, preferred_genres, friends,
	recently_added, collaborative_lists, liked_lists, created_at`

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx). List-valued fields live in jsonb columns.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var genres, friends, recent, collab, liked []byte
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.IsBanned,
		&u.ProfilePicture, &u.Biography, &genres, &friends, &recent, &collab, &liked, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	for _, col := range []struct {
		raw []byte
		dst any
	}{
		{genres, &u.PreferredGenres},
		{friends, &u.Friends},
		{recent, &u.RecentlyAdded},
		{collab, &u.CollaborativeLists},
		{liked, &u.LikedLists},
	} {
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return nil, fmt.Errorf("decoding jsonb column: %w", err)
		}
	}
	return u, nil
}

// marshalJSONB encodes a list value for a jsonb column. Nil slices become
// empty arrays so the columns never hold JSON null.
func marshalJSONB(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return []byte("[]"), nil
	}
	return b, nil
}

// Create inserts the full record. Unique violations on username/email map to
// the corresponding taxonomy errors, so the store-level constraint surfaces
// the same way as the service-level pre-checks.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	var encErr error
	encode := func(v any) []byte {
		b, err := marshalJSONB(v)
		if err != nil && encErr == nil {
			encErr = err
		}
		return b
	}
	genres := encode(user.PreferredGenres)
	friends := encode(user.Friends)
	recent := encode(user.RecentlyAdded)
	collab := encode(user.CollaborativeLists)
	liked := encode(user.LikedLists)
	if encErr != nil {
		return nil, fmt.Errorf("encoding user lists: %w", encErr)
	}

	query := `
		INSERT INTO users (user_id, username, email, password_hash, is_admin, is_banned,
			profile_picture, biography, preferred_genres, friends,
			recently_added, collaborative_lists, liked_lists)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.IsAdmin, user.IsBanned,
		user.ProfilePicture, user.Biography, genres, friends, recent, collab, liked,
	).Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "users_username_key":
				return nil, common.ErrUsernameTaken
			case "users_email_key":
				return nil, common.ErrEmailTaken
			}
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) getBy(ctx context.Context, column, value string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, column)
	u, err := scanUser(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	return r.getBy(ctx, "user_id", userID)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *PostgresRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users`, userColumns)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ChangePassword(ctx context.Context, userID string, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1 WHERE user_id = $2`
	if _, err := r.db.ExecContext(ctx, query, passwordHash, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetBanned(ctx context.Context, userID string, banned bool) error {
	query := `UPDATE users SET is_banned = $1 WHERE user_id = $2`
	if _, err := r.db.ExecContext(ctx, query, banned, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateFriends(ctx context.Context, friends []models.Friend, userID string) error {
	raw, err := marshalJSONB(friends)
	if err != nil {
		return fmt.Errorf("encoding friends: %w", err)
	}
	query := `UPDATE users SET friends = $1 WHERE user_id = $2`
	if _, err := r.db.ExecContext(ctx, query, raw, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, userID string, fields ProfileFields) (*models.User, error) {
	genres, err := marshalJSONB(fields.PreferredGenres)
	if err != nil {
		return nil, fmt.Errorf("encoding genres: %w", err)
	}
	query := fmt.Sprintf(`
		UPDATE users
		SET biography = $1, preferred_genres = $2, profile_picture = $3
		WHERE user_id = $4
		RETURNING %s`, userColumns)
	u, err := scanUser(r.db.QueryRowContext(ctx, query, fields.Biography, genres, fields.ProfilePicture, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// FriendsListByUserID reads the user's embedded edge list, then projects the
// referenced users that still exist. Order follows store return order.
func (r *PostgresRepository) FriendsListByUserID(ctx context.Context, userID string) ([]*models.FriendSummary, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `SELECT friends FROM users WHERE user_id = $1`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	var edges []models.Friend
	if err := json.Unmarshal(raw, &edges); err != nil {
		return nil, fmt.Errorf("decoding friends: %w", err)
	}
	result := []*models.FriendSummary{}
	if len(edges) == 0 {
		return result, nil
	}

	query := `
		SELECT user_id, username, profile_picture, biography, preferred_genres
		FROM users
		WHERE user_id IN (
			SELECT (jsonb_array_elements(friends)->>'userId')::uuid
			FROM users WHERE user_id = $1
		)
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		f := &models.FriendSummary{}
		var genres []byte
		if err := rows.Scan(&f.UserID, &f.Username, &f.ProfilePicture, &f.Biography, &genres); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if err := json.Unmarshal(genres, &f.PreferredGenres); err != nil {
			return nil, fmt.Errorf("decoding genres: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
