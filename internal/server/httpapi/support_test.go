package httpapi

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/cinecircle/cinecircle/internal/common"
	"github.com/cinecircle/cinecircle/internal/dbx"
	"github.com/cinecircle/cinecircle/internal/logging"
	"github.com/cinecircle/cinecircle/internal/server/auth"
	"github.com/cinecircle/cinecircle/internal/server/config"
	"github.com/cinecircle/cinecircle/internal/server/models"
	refreshtokensrepo "github.com/cinecircle/cinecircle/internal/server/repositories/refreshtokens"
	"github.com/cinecircle/cinecircle/internal/server/repositories/repomanager"
	usersrepo "github.com/cinecircle/cinecircle/internal/server/repositories/users"
	watchlistsrepo "github.com/cinecircle/cinecircle/internal/server/repositories/watchlists"
	"github.com/cinecircle/cinecircle/internal/server/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "handler-test-secret"

// --- in-memory repositories ---

type memUsersRepo struct {
	users map[string]*models.User // by ID
}

func newMemUsersRepo(users ...*models.User) *memUsersRepo {
	m := &memUsersRepo{users: map[string]*models.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return nil, common.ErrUsernameTaken
		}
		if existing.Email == u.Email {
			return nil, common.ErrEmailTaken
		}
	}
	u.CreatedAt = time.Now()
	m.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (m *memUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (m *memUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsersRepo) GetAll(ctx context.Context) ([]*models.User, error) {
	out := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memUsersRepo) Delete(ctx context.Context, id string) error {
	delete(m.users, id)
	return nil
}

func (m *memUsersRepo) ChangePassword(ctx context.Context, id string, hash string) error {
	if u, ok := m.users[id]; ok {
		u.PasswordHash = hash
	}
	return nil
}

func (m *memUsersRepo) SetBanned(ctx context.Context, id string, banned bool) error {
	if u, ok := m.users[id]; ok {
		u.IsBanned = banned
	}
	return nil
}

func (m *memUsersRepo) UpdateFriends(ctx context.Context, friends []models.Friend, id string) error {
	if u, ok := m.users[id]; ok {
		u.Friends = friends
	}
	return nil
}

func (m *memUsersRepo) UpdateProfile(ctx context.Context, id string, fields usersrepo.ProfileFields) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.Biography = fields.Biography
	u.PreferredGenres = fields.PreferredGenres
	u.ProfilePicture = fields.ProfilePicture
	cp := *u
	return &cp, nil
}

func (m *memUsersRepo) FriendsListByUserID(ctx context.Context, id string) ([]*models.FriendSummary, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := []*models.FriendSummary{}
	for _, f := range u.Friends {
		if live, ok := m.users[f.UserID]; ok {
			out = append(out, &models.FriendSummary{
				UserID:          live.ID,
				Username:        live.Username,
				ProfilePicture:  live.ProfilePicture,
				Biography:       live.Biography,
				PreferredGenres: live.PreferredGenres,
			})
		}
	}
	return out, nil
}

type memRefreshRepo struct {
	tokens map[string]*models.RefreshToken
}

func newMemRefreshRepo() *memRefreshRepo {
	return &memRefreshRepo{tokens: map[string]*models.RefreshToken{}}
}

func (m *memRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	m.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (m *memRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := m.tokens[token]; ok {
		return t, nil
	}
	return nil, common.ErrorNotFound
}

func (m *memRefreshRepo) Delete(ctx context.Context, token string) error {
	delete(m.tokens, token)
	return nil
}

type memWatchlistsRepo struct {
	lists map[string]*models.Watchlist
}

func newMemWatchlistsRepo(lists ...*models.Watchlist) *memWatchlistsRepo {
	m := &memWatchlistsRepo{lists: map[string]*models.Watchlist{}}
	for _, l := range lists {
		m.lists[l.ID] = l
	}
	return m
}

func (m *memWatchlistsRepo) Create(ctx context.Context, ownerID, listID, name string) (*models.Watchlist, error) {
	w := &models.Watchlist{ID: listID, OwnerID: ownerID, Name: name, CreatedAt: time.Now()}
	m.lists[listID] = w
	cp := *w
	return &cp, nil
}

func (m *memWatchlistsRepo) GetByID(ctx context.Context, listID string) (*models.Watchlist, error) {
	if w, ok := m.lists[listID]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (m *memWatchlistsRepo) Update(ctx context.Context, listID string, fields watchlistsrepo.UpdateFields) (*models.Watchlist, error) {
	w, ok := m.lists[listID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if fields.Name != nil {
		w.Name = *fields.Name
	}
	if fields.IsPublic != nil {
		w.IsPublic = *fields.IsPublic
	}
	cp := *w
	return &cp, nil
}

type memRepoManager struct {
	u *memUsersRepo
	r *memRefreshRepo
	w *memWatchlistsRepo
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.u }
func (m *memRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository {
	return m.r
}
func (m *memRepoManager) Watchlists(db dbx.DBTX) watchlistsrepo.Repository { return m.w }

type memBlobStore struct{}

func (memBlobStore) Upload(ctx context.Context, key string, body io.Reader, size int64) error {
	return nil
}
func (memBlobStore) Delete(ctx context.Context, key string) error { return nil }
func (memBlobStore) SignedURL(ctx context.Context, key string) (string, error) {
	return "https://signed.example/" + key, nil
}

// --- test harness ---

type testEnv struct {
	router *gin.Engine
	users  *memUsersRepo
	lists  *memWatchlistsRepo
	mock   sqlmock.Sqlmock
}

func newTestEnv(t *testing.T, users *memUsersRepo, lists *memWatchlistsRepo) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	if users == nil {
		users = newMemUsersRepo()
	}
	if lists == nil {
		lists = newMemWatchlistsRepo()
	}
	m := &memRepoManager{u: users, r: newMemRefreshRepo(), w: lists}

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = testSecret

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	blobs := memBlobStore{}

	router := NewRouter(RouterDeps{
		Config:    cfg,
		Redis:     nil, // limiter disabled in handler tests
		Identity:  services.NewIdentityService(db, m, blobs, logger),
		Social:    services.NewSocialService(db, m, logger),
		Profile:   services.NewProfileService(db, m, blobs, logger),
		Tokens:    services.NewTokenService(db, m, cfg),
		Watchlist: services.NewWatchlistService(db, m, logger),
	})
	return &testEnv{router: router, users: users, lists: lists, mock: mock}
}

func (e *testEnv) request(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func accessTokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, []byte(testSecret), time.Minute)
	require.NoError(t, err)
	return token
}

var _ repomanager.RepositoryManager = (*memRepoManager)(nil)
