package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinecircle/cinecircle/internal/common"
	"github.com/cinecircle/cinecircle/internal/server/models"
)

func TestProfileStorageKey(t *testing.T) {
	key := ProfileStorageKey("avatar.png")
	assert.True(t, strings.HasPrefix(key, "profile/"))
	assert.True(t, strings.HasSuffix(key, "-avatar.png"))

	// every key is unique
	assert.NotEqual(t, key, ProfileStorageKey("avatar.png"))
}

func newProfileService(t *testing.T, users *fakeUsersRepo, blobs *fakeBlobStore) *ProfileService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	t.Cleanup(func() { db.Close() })
	return NewProfileService(db, &fakeRepoManager{u: users}, blobs, discardLogger())
}

func TestProfileServiceUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("text only keeps existing picture", func(t *testing.T) {
		repo := &fakeUsersRepo{byID: map[string]*models.User{
			"u1": {ID: "u1", ProfilePicture: "profile/old-key.png"},
		}}
		blobs := &fakeBlobStore{}
		svc := newProfileService(t, repo, blobs)

		_, url, err := svc.UpdateProfile(ctx, "u1", ProfileInput{
			Biography:       "  likes slow cinema  ",
			PreferredGenres: []string{"drama", "noir"},
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, "likes slow cinema", repo.updateProfileFields.Biography)
		assert.Equal(t, []string{"drama", "noir"}, repo.updateProfileFields.PreferredGenres)
		assert.Equal(t, "profile/old-key.png", repo.updateProfileFields.ProfilePicture)
		assert.Empty(t, blobs.uploads)
		assert.Empty(t, blobs.deletes)
		require.NotNil(t, url)
		assert.Equal(t, "https://signed.example/profile/old-key.png", *url)
	})

	t.Run("nil genres persist as empty list", func(t *testing.T) {
		repo := &fakeUsersRepo{byID: map[string]*models.User{"u1": {ID: "u1"}}}
		svc := newProfileService(t, repo, &fakeBlobStore{})

		_, url, err := svc.UpdateProfile(ctx, "u1", ProfileInput{}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{}, repo.updateProfileFields.PreferredGenres)
		assert.Nil(t, url)
	})

	t.Run("upload swaps the blob", func(t *testing.T) {
		repo := &fakeUsersRepo{byID: map[string]*models.User{
			"u1": {ID: "u1", ProfilePicture: "profile/old-key.png"},
		}}
		blobs := &fakeBlobStore{}
		svc := newProfileService(t, repo, blobs)

		_, url, err := svc.UpdateProfile(ctx, "u1", ProfileInput{}, &ProfileUpload{
			FileName: "new-face.jpg",
			Content:  strings.NewReader("imagebytes"),
			Size:     10,
		})
		require.NoError(t, err)

		require.Len(t, blobs.uploads, 1)
		assert.True(t, strings.HasPrefix(blobs.uploads[0], "profile/"))
		assert.True(t, strings.HasSuffix(blobs.uploads[0], "-new-face.jpg"))
		assert.Equal(t, []string{"profile/old-key.png"}, blobs.deletes)
		assert.Equal(t, blobs.uploads[0], repo.updateProfileFields.ProfilePicture)
		require.NotNil(t, url)
	})

	t.Run("upload failure leaves the record untouched", func(t *testing.T) {
		repo := &fakeUsersRepo{byID: map[string]*models.User{"u1": {ID: "u1"}}}
		blobs := &fakeBlobStore{uploadErr: errBoom{}}
		svc := newProfileService(t, repo, blobs)

		_, _, err := svc.UpdateProfile(ctx, "u1", ProfileInput{}, &ProfileUpload{
			FileName: "new-face.jpg",
			Content:  strings.NewReader("imagebytes"),
			Size:     10,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, errBoom{})
		assert.Empty(t, repo.updateProfileFields.ProfilePicture)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := newProfileService(t, &fakeUsersRepo{}, &fakeBlobStore{})
		_, _, err := svc.UpdateProfile(ctx, "ghost", ProfileInput{}, nil)
		assert.ErrorIs(t, err, common.ErrUserNotFound)
	})
}
