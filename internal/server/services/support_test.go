package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/cinecircle/cinecircle/internal/common"
	"github.com/cinecircle/cinecircle/internal/dbx"
	"github.com/cinecircle/cinecircle/internal/logging"
	"github.com/cinecircle/cinecircle/internal/server/models"
	refreshtokensrepo "github.com/cinecircle/cinecircle/internal/server/repositories/refreshtokens"
	usersrepo "github.com/cinecircle/cinecircle/internal/server/repositories/users"
	watchlistsrepo "github.com/cinecircle/cinecircle/internal/server/repositories/watchlists"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// --- fakes ---

type friendsWrite struct {
	userID  string
	friends []models.Friend
}

type fakeUsersRepo struct {
	byID       map[string]*models.User
	byUsername map[string]*models.User
	byEmail    map[string]*models.User
	getErr     error

	createOut *models.User
	createErr error
	created   *models.User

	deleted   []string
	deleteErr error

	changedHash       string
	changePasswordErr error

	bans         map[string]bool
	setBannedErr error

	friendsWrites    []friendsWrite
	updateFriendsErr error

	updateProfileOut    *models.User
	updateProfileErr    error
	updateProfileFields usersrepo.ProfileFields

	getAllOut []*models.User
	getAllErr error

	friendsListOut []*models.FriendSummary
	friendsListErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = u
	if f.createOut != nil {
		return f.createOut, nil
	}
	return u, nil
}

func (f *fakeUsersRepo) lookup(m map[string]*models.User, key string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := m[key]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return f.lookup(f.byID, id)
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return f.lookup(f.byUsername, username)
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.lookup(f.byEmail, email)
}

func (f *fakeUsersRepo) GetAll(ctx context.Context) ([]*models.User, error) {
	return f.getAllOut, f.getAllErr
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeUsersRepo) ChangePassword(ctx context.Context, id string, hash string) error {
	if f.changePasswordErr != nil {
		return f.changePasswordErr
	}
	f.changedHash = hash
	return nil
}

func (f *fakeUsersRepo) SetBanned(ctx context.Context, id string, banned bool) error {
	if f.setBannedErr != nil {
		return f.setBannedErr
	}
	if f.bans == nil {
		f.bans = map[string]bool{}
	}
	f.bans[id] = banned
	return nil
}

func (f *fakeUsersRepo) UpdateFriends(ctx context.Context, friends []models.Friend, id string) error {
	if f.updateFriendsErr != nil {
		return f.updateFriendsErr
	}
	f.friendsWrites = append(f.friendsWrites, friendsWrite{userID: id, friends: friends})
	return nil
}

func (f *fakeUsersRepo) UpdateProfile(ctx context.Context, id string, fields usersrepo.ProfileFields) (*models.User, error) {
	if f.updateProfileErr != nil {
		return nil, f.updateProfileErr
	}
	f.updateProfileFields = fields
	if f.updateProfileOut != nil {
		return f.updateProfileOut, nil
	}
	u := &models.User{ID: id, Biography: fields.Biography, PreferredGenres: fields.PreferredGenres, ProfilePicture: fields.ProfilePicture}
	return u, nil
}

func (f *fakeUsersRepo) FriendsListByUserID(ctx context.Context, id string) ([]*models.FriendSummary, error) {
	return f.friendsListOut, f.friendsListErr
}

type fakeRefreshRepo struct {
	findOut   *models.RefreshToken
	findErr   error
	delErr    error
	createErr error
	created   []string
	deleted   []string
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, token)
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, token)
	return nil
}

type fakeWatchlistsRepo struct {
	createOut *models.Watchlist
	createErr error

	getOut *models.Watchlist
	getErr error

	updateOut    *models.Watchlist
	updateErr    error
	updateFields watchlistsrepo.UpdateFields
	updateCalls  int
}

func (f *fakeWatchlistsRepo) Create(ctx context.Context, ownerID, listID, name string) (*models.Watchlist, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return &models.Watchlist{ID: listID, OwnerID: ownerID, Name: name}, nil
}

func (f *fakeWatchlistsRepo) GetByID(ctx context.Context, listID string) (*models.Watchlist, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.getOut == nil {
		return nil, common.ErrorNotFound
	}
	cp := *f.getOut
	return &cp, nil
}

func (f *fakeWatchlistsRepo) Update(ctx context.Context, listID string, fields watchlistsrepo.UpdateFields) (*models.Watchlist, error) {
	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updateFields = fields
	if f.updateOut != nil {
		return f.updateOut, nil
	}
	return f.getOut, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	w *fakeWatchlistsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository {
	return m.r
}
func (m *fakeRepoManager) Watchlists(db dbx.DBTX) watchlistsrepo.Repository { return m.w }

type fakeBlobStore struct {
	uploads   []string
	deletes   []string
	uploadErr error
	deleteErr error

	signedURL    string
	signedURLErr error
}

func (f *fakeBlobStore) Upload(ctx context.Context, key string, body io.Reader, size int64) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, key)
	return nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, key)
	return nil
}

func (f *fakeBlobStore) SignedURL(ctx context.Context, key string) (string, error) {
	if f.signedURLErr != nil {
		return "", f.signedURLErr
	}
	if f.signedURL != "" {
		return f.signedURL, nil
	}
	return "https://signed.example/" + key, nil
}
