package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fastygo/ecowork/domain"
	"github.com/fastygo/ecowork/internal/infrastructure/kvstore"
	"github.com/fastygo/ecowork/repository"
)

func newRepo(t *testing.T) (repository.SessionRepository, *kvstore.Store) {
	t.Helper()
	store, err := kvstore.Open(filepath.Join(t.TempDir(), "session.db"), "session")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewSessionRepository(store), store
}

func TestSessionRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty storage", func(t *testing.T) {
		repo, _ := newRepo(t)
		_, err := repo.Load(ctx)
		require.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("save and load", func(t *testing.T) {
		repo, _ := newRepo(t)
		identity := &domain.Identity{ID: "emp-1", Email: "joao@tech.com", DisplayName: "João Silva", Kind: domain.KindEmployee, CompanyID: "comp-1"}
		require.NoError(t, repo.Save(ctx, repository.StoredSession{Identity: identity, Token: "tok"}))

		got, err := repo.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, identity, got.Identity)
		require.Equal(t, "tok", got.Token)
	})

	t.Run("saving without token drops the stale one", func(t *testing.T) {
		repo, _ := newRepo(t)
		identity := &domain.Identity{ID: "emp-1", Kind: domain.KindEmployee}
		require.NoError(t, repo.Save(ctx, repository.StoredSession{Identity: identity, Token: "old"}))
		require.NoError(t, repo.Save(ctx, repository.StoredSession{Identity: identity}))

		got, err := repo.Load(ctx)
		require.NoError(t, err)
		require.Empty(t, got.Token)
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		repo, store := newRepo(t)
		require.NoError(t, repo.Save(ctx, repository.StoredSession{Identity: &domain.Identity{ID: "x"}, Token: "t"}))
		require.NoError(t, repo.Clear(ctx))
		require.NoError(t, repo.Clear(ctx))

		size, err := store.Size()
		require.NoError(t, err)
		require.Zero(t, size)
	})

	t.Run("corrupt identity", func(t *testing.T) {
		repo, store := newRepo(t)
		require.NoError(t, store.PutAll(map[string][]byte{repository.KeyIdentity: []byte("{nope")}))
		_, err := repo.Load(ctx)
		require.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	})

	t.Run("nil identity rejected", func(t *testing.T) {
		repo, _ := newRepo(t)
		require.ErrorIs(t, repo.Save(ctx, repository.StoredSession{}), domain.ErrInvalidPayload)
	})
}
