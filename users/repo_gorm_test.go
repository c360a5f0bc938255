package users_test

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-signin-gate/internal/database"
	apperrors "github.com/jrsteele09/go-signin-gate/internal/errors"
	"github.com/jrsteele09/go-signin-gate/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newGormRepo(t *testing.T) *users.GormRepo {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "users.sqlite"), zerolog.New(io.Discard), users.Models()...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return users.NewGormRepo(db)
}

func TestGormRepo(t *testing.T) {
	ctx := context.Background()
	repo := newGormRepo(t)

	user := &users.User{Email: "jane@example.com", Name: "Jane"}
	require.NoError(t, repo.Create(ctx, user))
	require.NotEmpty(t, user.ID)

	t.Run("get by id and email", func(t *testing.T) {
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, "jane@example.com", got.Email)
		require.False(t, got.HasSetPassword)

		got, err = repo.GetByEmail(ctx, "jane@example.com")
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "missing")
		require.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("link account", func(t *testing.T) {
		_, err := repo.GetByAccount(ctx, users.ProviderGoogle, "sub-1")
		require.ErrorIs(t, err, apperrors.ErrAccountNotFound)

		require.NoError(t, repo.LinkAccount(ctx, &users.Account{
			UserID:            user.ID,
			Provider:          users.ProviderGoogle,
			ProviderAccountID: "sub-1",
		}))

		got, err := repo.GetByAccount(ctx, users.ProviderGoogle, "sub-1")
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)

		err = repo.LinkAccount(ctx, &users.Account{
			UserID:            user.ID,
			Provider:          users.ProviderGoogle,
			ProviderAccountID: "sub-1",
		})
		require.Error(t, err)
	})

	t.Run("set password", func(t *testing.T) {
		require.NoError(t, repo.SetPassword(ctx, user.ID, "hash"))
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		require.True(t, got.HasSetPassword)
		require.Equal(t, "hash", got.PasswordHash)

		require.ErrorIs(t, repo.SetPassword(ctx, "missing", "hash"), apperrors.ErrUserNotFound)
	})

	t.Run("update profile", func(t *testing.T) {
		require.NoError(t, repo.UpdateProfile(ctx, user.ID, "Jane Doe", "https://img.example.com/j.png"))
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, "Jane Doe", got.Name)
		require.Equal(t, "https://img.example.com/j.png", got.Image)
	})
}
