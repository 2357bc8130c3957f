package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/ecowork/domain"
	"github.com/fastygo/ecowork/repository"
)

func newRepo(t *testing.T, ttl time.Duration) (repository.SessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionRepository(client, "ecowork:", ttl), mr
}

func TestSessionRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRepo(t, 0)

	_, err := repo.Load(ctx)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)

	identity := &domain.Identity{ID: "comp-1", Email: "rh@empresa.com", DisplayName: "Tech Solutions Ltda", Kind: domain.KindCompany, CompanyID: "comp-1"}
	require.NoError(t, repo.Save(ctx, repository.StoredSession{Identity: identity, Token: "tok"}))
	require.True(t, mr.Exists("ecowork:"+repository.KeyIdentity))
	require.True(t, mr.Exists("ecowork:"+repository.KeyToken))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, identity, got.Identity)
	require.Equal(t, "tok", got.Token)

	require.NoError(t, repo.Clear(ctx))
	require.False(t, mr.Exists("ecowork:"+repository.KeyIdentity))
	require.False(t, mr.Exists("ecowork:"+repository.KeyToken))
	require.NoError(t, repo.Clear(ctx))
}

func TestSessionRepositoryTTL(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRepo(t, time.Hour)

	require.NoError(t, repo.Save(ctx, repository.StoredSession{Identity: &domain.Identity{ID: "emp-1"}, Token: "t"}))
	mr.FastForward(2 * time.Hour)

	_, err := repo.Load(ctx)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionRepositoryPing(t *testing.T) {
	repo, mr := newRepo(t, 0)
	require.NoError(t, repo.Ping(context.Background()))

	mr.Close()
	require.Error(t, repo.Ping(context.Background()))
}
