package session

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/fasthttp/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/fastygo/ecowork/domain"
	"github.com/fastygo/ecowork/internal/apiclient"
	"github.com/fastygo/ecowork/internal/fallback"
	"github.com/fastygo/ecowork/internal/infrastructure/kvstore"
	"github.com/fastygo/ecowork/internal/token"
	"github.com/fastygo/ecowork/repository"
	boltrepo "github.com/fastygo/ecowork/repository/bolt"
)

type stubBackend struct {
	login   func(apiclient.Credentials) (apiclient.AuthResponse, apiclient.Source, error)
	healthy bool
}

func (b *stubBackend) Login(_ context.Context, in apiclient.Credentials) (apiclient.AuthResponse, apiclient.Source, error) {
	return b.login(in)
}

func (b *stubBackend) RegisterCompany(context.Context, apiclient.CompanySignup) (apiclient.AuthResponse, apiclient.Source, error) {
	return apiclient.AuthResponse{}, apiclient.SourceEmpty, domain.ErrNotFound
}

func (b *stubBackend) RegisterEmployee(context.Context, apiclient.EmployeeSignup) (apiclient.AuthResponse, apiclient.Source, error) {
	return apiclient.AuthResponse{}, apiclient.SourceEmpty, domain.ErrNotFound
}

func (b *stubBackend) FindCompanyByInvite(context.Context, string) (domain.Company, apiclient.Source, error) {
	return domain.Company{}, apiclient.SourceEmpty, domain.ErrInvalidInviteCode
}

func (b *stubBackend) CheckHealth(context.Context) bool { return b.healthy }

type failingRepo struct{}

func (failingRepo) Load(context.Context) (*repository.StoredSession, error) {
	return nil, errors.New("disk on fire")
}
func (failingRepo) Save(context.Context, repository.StoredSession) error { return errors.New("disk on fire") }
func (failingRepo) Clear(context.Context) error                          { return errors.New("disk on fire") }
func (failingRepo) Ping(context.Context) error                           { return errors.New("disk on fire") }

func newRepo(t *testing.T) repository.SessionRepository {
	t.Helper()
	kv, err := kvstore.Open(filepath.Join(t.TempDir(), "session.db"), "session")
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return boltrepo.NewSessionRepository(kv)
}

func newIssuer() *token.Issuer {
	return token.NewIssuer("test-secret", "", time.Hour)
}

// offlineStore wires a store to a client whose backend is unreachable.
func offlineStore(t *testing.T, repo repository.SessionRepository) *Store {
	t.Helper()
	fb := fallback.New()
	client := apiclient.New("http://backend.test",
		apiclient.WithHTTPClient(&fasthttp.Client{Dial: func(string) (net.Conn, error) {
			return nil, errors.New("connection refused")
		}}),
		apiclient.WithFallback(fb),
		apiclient.WithHealthTimeout(100*time.Millisecond),
	)
	return New(client, repo, newIssuer(), fb, nil)
}

// failingBackendStore wires a store to an in-memory backend answering every
// route in r and 404 elsewhere.
func failingBackendStore(t *testing.T, r *router.Router) *Store {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: r.Handler}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	fb := fallback.New()
	client := apiclient.New("http://backend.test",
		apiclient.WithHTTPClient(&fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }}),
		apiclient.WithFallback(fb),
	)
	return New(client, newRepo(t), newIssuer(), fb, nil)
}

func TestInitializeEmpty(t *testing.T) {
	store := offlineStore(t, newRepo(t))
	assert.True(t, store.Snapshot().Loading)

	snap := store.Initialize(context.Background())
	assert.False(t, snap.Loading)
	assert.False(t, snap.Authenticated())
	assert.False(t, snap.BackendReachable)
}

func TestInitializeSurvivesStorageFailure(t *testing.T) {
	store := New(&stubBackend{healthy: true}, failingRepo{}, newIssuer(), fallback.New(), nil)
	snap := store.Initialize(context.Background())
	assert.False(t, snap.Loading)
	assert.False(t, snap.Authenticated())
	assert.True(t, snap.BackendReachable)
}

func TestLoginOfflineUsesMockIdentity(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	store := offlineStore(t, repo)
	store.Initialize(ctx)

	snap, err := store.Login(ctx, "rh@empresa.com.br", "anything")
	require.NoError(t, err)
	require.NotNil(t, snap.Identity)
	assert.Equal(t, domain.KindCompany, snap.Identity.Kind)
	assert.Equal(t, fallback.SeedCompanyID, snap.Identity.ID)
	assert.True(t, snap.Degraded)
	assert.False(t, snap.Loading)
	assert.True(t, newIssuer().IsDemo(store.Token()))

	stored, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.Identity, stored.Identity)
	assert.Equal(t, store.Token(), stored.Token)

	snap, err = store.Login(ctx, "ana@gmail.com", "anything")
	require.NoError(t, err)
	assert.Equal(t, domain.KindEmployee, snap.Identity.Kind)
	assert.Equal(t, fallback.SeedEmployeeID, snap.Identity.ID)
}

func TestLoginRejectsBlankInput(t *testing.T) {
	store := offlineStore(t, newRepo(t))
	_, err := store.Login(context.Background(), "  ", "pw")
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))

	_, err = store.Login(context.Background(), "a@b.com", "")
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
	assert.Nil(t, store.Current())
}

func TestLoginMalformedEmailIsInvalidCredentials(t *testing.T) {
	store := offlineStore(t, newRepo(t))
	_, err := store.Login(context.Background(), "not-an-email", "pw")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalidCredentials))
	assert.False(t, store.Snapshot().Loading)
}

func TestLoginBackendRejectionKeepsSession(t *testing.T) {
	ctx := context.Background()
	backend := &stubBackend{login: func(in apiclient.Credentials) (apiclient.AuthResponse, apiclient.Source, error) {
		return apiclient.AuthResponse{
			User:  domain.Identity{ID: "u-9", Email: in.Email, DisplayName: "Nine", Kind: domain.KindEmployee, CompanyID: "c-9"},
			Token: "backend-token",
		}, apiclient.SourceBackend, nil
	}}
	repo := newRepo(t)
	store := New(backend, repo, newIssuer(), fallback.New(), nil)

	snap, err := store.Login(ctx, "nine@corp.example", "pw")
	require.NoError(t, err)
	assert.False(t, snap.Degraded)
	assert.Equal(t, "backend-token", store.Token())

	backend.login = func(apiclient.Credentials) (apiclient.AuthResponse, apiclient.Source, error) {
		return apiclient.AuthResponse{}, apiclient.SourceBackend, domain.ErrInvalidCredentials
	}
	_, err = store.Login(ctx, "nine@corp.example", "wrong")
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
	require.NotNil(t, store.Current())
	assert.Equal(t, "u-9", store.Current().ID)
	assert.False(t, store.Snapshot().Loading)

	stored, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "backend-token", stored.Token)
}

func TestLoginRecoverableErrorUsesMocks(t *testing.T) {
	backend := &stubBackend{login: func(apiclient.Credentials) (apiclient.AuthResponse, apiclient.Source, error) {
		return apiclient.AuthResponse{}, apiclient.SourceEmpty, domain.ErrNetworkUnavailable
	}}
	store := New(backend, newRepo(t), newIssuer(), fallback.New(), nil)

	snap, err := store.Login(context.Background(), "ops@empresa.io", "pw")
	require.NoError(t, err)
	assert.Equal(t, domain.KindCompany, snap.Identity.Kind)
	assert.True(t, snap.Degraded)
}

func TestLoginSurvivesBackendOutage(t *testing.T) {
	r := router.New()
	r.POST("/api/auth/login", func(ctx *fasthttp.RequestCtx) { ctx.SetStatusCode(fasthttp.StatusBadGateway) })
	store := failingBackendStore(t, r)

	snap, err := store.Login(context.Background(), "rh@empresa.com.br", "pw")
	require.NoError(t, err)
	require.NotNil(t, snap.Identity)
	assert.Equal(t, domain.KindCompany, snap.Identity.Kind)
	assert.Equal(t, fallback.SeedCompanyID, snap.Identity.ID)
	assert.True(t, snap.Degraded)
	assert.False(t, snap.Loading)
}

func TestRegisterEmployeeWithProtectedCompanies(t *testing.T) {
	r := router.New()
	r.GET("/empresas", func(ctx *fasthttp.RequestCtx) { ctx.SetStatusCode(fasthttp.StatusUnauthorized) })
	store := failingBackendStore(t, r)

	snap, err := store.RegisterEmployee(context.Background(), apiclient.EmployeeSignup{
		Name: "Maria", Email: "maria@example.com", Password: "secret1", InviteCode: "ECOWORK2025",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.KindEmployee, snap.Identity.Kind)
	assert.Equal(t, fallback.SeedCompanyID, snap.Identity.CompanyID)
	assert.True(t, snap.Degraded)
}

func TestLoginKindFollowsCompanyMarker(t *testing.T) {
	ctx := context.Background()

	t.Run("backend identity", func(t *testing.T) {
		backend := &stubBackend{login: func(in apiclient.Credentials) (apiclient.AuthResponse, apiclient.Source, error) {
			return apiclient.AuthResponse{
				User:  domain.Identity{ID: "u-1", Email: in.Email, Kind: domain.KindEmployee},
				Token: "backend-token",
			}, apiclient.SourceBackend, nil
		}}
		store := New(backend, newRepo(t), newIssuer(), fallback.New(), nil)

		snap, err := store.Login(ctx, "x@empresa.com", "pw")
		require.NoError(t, err)
		assert.Equal(t, domain.KindCompany, snap.Identity.Kind)
		assert.Equal(t, "u-1", snap.Identity.CompanyID)

		backend.login = func(in apiclient.Credentials) (apiclient.AuthResponse, apiclient.Source, error) {
			return apiclient.AuthResponse{
				User:  domain.Identity{ID: "c-1", Email: in.Email, Kind: domain.KindCompany, CompanyID: "c-1"},
				Token: "backend-token",
			}, apiclient.SourceBackend, nil
		}
		snap, err = store.Login(ctx, "ops@corp.example", "pw")
		require.NoError(t, err)
		assert.Equal(t, domain.KindEmployee, snap.Identity.Kind)
	})

	t.Run("registered fallback account", func(t *testing.T) {
		store := offlineStore(t, newRepo(t))

		snap, err := store.RegisterEmployee(ctx, apiclient.EmployeeSignup{
			Name: "Ana", Email: "ana@empresa.com.br", Password: "secret1", InviteCode: fallback.SeedInviteCode,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.KindEmployee, snap.Identity.Kind)

		store.Logout(ctx)
		snap, err = store.Login(ctx, "ana@empresa.com.br", "secret1")
		require.NoError(t, err)
		assert.Equal(t, domain.KindCompany, snap.Identity.Kind)
		assert.Equal(t, fallback.SeedCompanyID, snap.Identity.CompanyID)
		assert.Equal(t, "Ana", snap.Identity.DisplayName)
	})
}

func TestLoadingCoversConcurrentOperations(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{}, 2)
	release := make(chan struct{})
	backend := &stubBackend{healthy: true, login: func(in apiclient.Credentials) (apiclient.AuthResponse, apiclient.Source, error) {
		entered <- struct{}{}
		<-release
		return apiclient.AuthResponse{User: domain.Identity{ID: "u", Email: in.Email}, Token: "t"}, apiclient.SourceBackend, nil
	}}
	store := New(backend, newRepo(t), newIssuer(), nil, nil)
	require.False(t, store.Initialize(ctx).Loading)

	done := make(chan error, 2)
	for _, email := range []string{"a@example.com", "b@example.com"} {
		go func(email string) {
			_, err := store.Login(ctx, email, "pw")
			done <- err
		}(email)
	}
	<-entered
	<-entered
	assert.True(t, store.Snapshot().Loading)

	release <- struct{}{}
	require.NoError(t, <-done)
	assert.True(t, store.Snapshot().Loading, "second login still running")

	release <- struct{}{}
	require.NoError(t, <-done)
	assert.False(t, store.Snapshot().Loading)
}

func TestInitializeRestoresSession(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	first := offlineStore(t, repo)
	_, err := first.Login(ctx, "ana@gmail.com", "pw")
	require.NoError(t, err)

	second := offlineStore(t, repo)
	snap := second.Initialize(ctx)
	require.True(t, snap.Authenticated())
	assert.Equal(t, fallback.SeedEmployeeID, snap.Identity.ID)
	assert.True(t, snap.Degraded)
	assert.Equal(t, first.Token(), second.Token())
}

func TestInitializeDropsInvalidDemoToken(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	forged, err := token.NewIssuer("other-secret", "", time.Hour).Issue(domain.Identity{ID: "emp-1"})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, repository.StoredSession{
		Identity: &domain.Identity{ID: "emp-1", Kind: domain.KindEmployee},
		Token:    forged,
	}))

	store := offlineStore(t, repo)
	snap := store.Initialize(ctx)
	assert.False(t, snap.Authenticated())

	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestInitializeKeepsOpaqueBackendToken(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	require.NoError(t, repo.Save(ctx, repository.StoredSession{
		Identity: &domain.Identity{ID: "u-1", Kind: domain.KindEmployee},
		Token:    "opaque",
	}))

	store := New(&stubBackend{healthy: true}, repo, newIssuer(), nil, nil)
	snap := store.Initialize(ctx)
	require.True(t, snap.Authenticated())
	assert.False(t, snap.Degraded)
	assert.True(t, snap.BackendReachable)
	assert.Equal(t, "opaque", store.Token())
}

func TestInitializeRunsOnce(t *testing.T) {
	ctx := context.Background()
	backend := &stubBackend{healthy: true}
	store := New(backend, newRepo(t), newIssuer(), nil, nil)

	store.Initialize(ctx)
	backend.healthy = false
	snap := store.Initialize(ctx)
	assert.True(t, snap.BackendReachable)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	store := offlineStore(t, repo)

	store.Logout(ctx)
	assert.Nil(t, store.Current())

	_, err := store.Login(ctx, "ana@gmail.com", "pw")
	require.NoError(t, err)

	store.Logout(ctx)
	assert.Nil(t, store.Current())
	assert.Empty(t, store.Token())
	assert.False(t, store.Snapshot().Degraded)

	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	store.Logout(ctx)
	assert.Nil(t, store.Current())
}

func TestLogoutClearsMemoryWhenStorageFails(t *testing.T) {
	ctx := context.Background()
	backend := &stubBackend{login: func(in apiclient.Credentials) (apiclient.AuthResponse, apiclient.Source, error) {
		return apiclient.AuthResponse{User: domain.Identity{ID: "u", Kind: domain.KindEmployee}, Token: "t"}, apiclient.SourceBackend, nil
	}}
	store := New(backend, failingRepo{}, newIssuer(), nil, nil)

	_, err := store.Login(ctx, "u@example.com", "pw")
	require.NoError(t, err)
	require.NotNil(t, store.Current())

	store.Logout(ctx)
	assert.Nil(t, store.Current())
	assert.Empty(t, store.Token())
}

func TestRegisterEmployee(t *testing.T) {
	ctx := context.Background()
	store := offlineStore(t, newRepo(t))

	_, err := store.RegisterEmployee(ctx, apiclient.EmployeeSignup{
		Name: "Maria", Email: "maria@example.com", Password: "secret1", InviteCode: "WRONG",
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInviteCode))
	assert.Nil(t, store.Current())

	_, err = store.RegisterEmployee(ctx, apiclient.EmployeeSignup{Name: "Maria", Email: "maria@example.com", Password: "secret1"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInviteCode))

	snap, err := store.RegisterEmployee(ctx, apiclient.EmployeeSignup{
		Name: "Maria", Email: "maria@example.com", Password: "secret1", InviteCode: fallback.SeedInviteCode,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.KindEmployee, snap.Identity.Kind)
	assert.Equal(t, fallback.SeedCompanyID, snap.Identity.CompanyID)
	assert.Equal(t, "Maria", snap.Identity.DisplayName)
	assert.True(t, snap.Degraded)

	// The account now exists in the fallback dataset and checks its password.
	store.Logout(ctx)
	_, err = store.Login(ctx, "maria@example.com", "wrong-password")
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
	_, err = store.Login(ctx, "maria@example.com", "secret1")
	require.NoError(t, err)
}

func TestRegisterCompany(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	store := offlineStore(t, repo)

	snap, company, err := store.RegisterCompany(ctx, apiclient.CompanySignup{
		Name: "Green Ltda", TaxID: "11.222.333/0001-44", Email: "admin@green.example", Password: "secret1", Plan: domain.PlanEnterprise,
	})
	require.NoError(t, err)
	require.NotNil(t, company)
	assert.NotEmpty(t, company.InviteCode)
	assert.Equal(t, domain.KindCompany, snap.Identity.Kind)
	assert.Equal(t, company.ID, snap.Identity.CompanyID)

	stored, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, company.ID, stored.Identity.ID)

	_, _, err = store.RegisterCompany(ctx, apiclient.CompanySignup{Name: "No Plan"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Equal(t, company.ID, store.Current().ID)
}
