package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/ecowork/domain"
	"github.com/fastygo/ecowork/internal/apiclient"
	"github.com/fastygo/ecowork/internal/token"
	appLogger "github.com/fastygo/ecowork/pkg/logger"
	"github.com/fastygo/ecowork/repository"
)

// Backend is the part of the API client the store needs.
type Backend interface {
	Login(ctx context.Context, in apiclient.Credentials) (apiclient.AuthResponse, apiclient.Source, error)
	RegisterCompany(ctx context.Context, in apiclient.CompanySignup) (apiclient.AuthResponse, apiclient.Source, error)
	RegisterEmployee(ctx context.Context, in apiclient.EmployeeSignup) (apiclient.AuthResponse, apiclient.Source, error)
	FindCompanyByInvite(ctx context.Context, code string) (domain.Company, apiclient.Source, error)
	CheckHealth(ctx context.Context) bool
}

// MockIdentities derives an identity from an email when nothing else answers
// and decides the identity kind from the email.
type MockIdentities interface {
	MockIdentity(email string) domain.Identity
	Classify(email string, identity domain.Identity) domain.Identity
}

// Store owns the current session. State changes are written through to the
// repository; memory stays authoritative when storage fails.
type Store struct {
	backend Backend
	repo    repository.SessionRepository
	tokens  *token.Issuer
	mocks   MockIdentities
	logger  *zap.Logger

	mu       sync.RWMutex
	state    domain.Session
	token    string
	inflight int
	initOnce sync.Once
}

func New(backend Backend, repo repository.SessionRepository, tokens *token.Issuer, mocks MockIdentities, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	// The pending Initialize counts as the first operation in flight.
	return &Store{
		backend:  backend,
		repo:     repo,
		tokens:   tokens,
		mocks:    mocks,
		logger:   logger,
		inflight: 1,
		state:    domain.Session{Loading: true},
	}
}

// Initialize restores the persisted session and checks the backend. It runs
// once; later calls return the current snapshot.
func (s *Store) Initialize(ctx context.Context) domain.Session {
	s.initOnce.Do(func() {
		defer s.endLoading()
		s.restore(ctx)
		s.SetBackendReachable(s.backend.CheckHealth(ctx))
	})
	return s.Snapshot()
}

func (s *Store) restore(ctx context.Context) {
	stored, err := s.repo.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			s.logger.Warn("failed to restore session", zap.Error(err))
		}
		return
	}
	if stored.Identity == nil {
		return
	}

	demo := s.tokens != nil && s.tokens.IsDemo(stored.Token)
	if demo {
		if _, err := s.tokens.Verify(stored.Token); err != nil {
			s.logger.Info("discarding stored demo session", zap.Error(err))
			if err := s.repo.Clear(ctx); err != nil {
				s.logger.Warn("failed to clear session storage", zap.Error(err))
			}
			return
		}
	}

	s.mu.Lock()
	s.state.Identity = stored.Identity.Clone()
	s.state.Degraded = demo
	s.token = stored.Token
	s.mu.Unlock()

	s.logger.Info("session restored",
		zap.String("user_id", stored.Identity.ID),
		zap.Bool("degraded", demo),
	)
}

// Login authenticates with the backend or, when it cannot answer, the
// fallback dataset. InvalidCredentials leaves the session unchanged.
func (s *Store) Login(ctx context.Context, email, password string) (domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return s.Snapshot(), domain.ErrInvalidCredentials
	}

	s.beginLoading()
	defer s.endLoading()

	resp, source, err := s.backend.Login(ctx, apiclient.Credentials{Email: email, Password: password})
	switch {
	case err == nil:
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return s.Snapshot(), domain.WrapError(domain.ErrCodeInvalidCredentials, domain.ErrInvalidCredentials.Message, err)
	case domain.Recoverable(err) && s.mocks != nil:
		resp = apiclient.AuthResponse{User: s.mocks.MockIdentity(email)}
		source = apiclient.SourceFallback
	default:
		return s.Snapshot(), err
	}
	if s.mocks != nil {
		resp.User = s.mocks.Classify(email, resp.User)
	}

	if err := s.commit(ctx, resp, source); err != nil {
		return s.Snapshot(), err
	}
	appLogger.For(ctx, s.logger).Info("logged in",
		zap.String("user_id", resp.User.ID),
		zap.String("source", string(source)),
	)
	return s.Snapshot(), nil
}

// RegisterCompany creates a company account and signs it in.
func (s *Store) RegisterCompany(ctx context.Context, in apiclient.CompanySignup) (domain.Session, *domain.Company, error) {
	s.beginLoading()
	defer s.endLoading()

	resp, source, err := s.backend.RegisterCompany(ctx, in)
	if err != nil {
		return s.Snapshot(), nil, err
	}
	if resp.Company != nil && resp.User.CompanyID == "" {
		resp.User.CompanyID = resp.Company.ID
	}
	if err := s.commit(ctx, resp, source); err != nil {
		return s.Snapshot(), nil, err
	}
	appLogger.For(ctx, s.logger).Info("company registered",
		zap.String("user_id", resp.User.ID),
		zap.String("source", string(source)),
	)
	return s.Snapshot(), resp.Company, nil
}

// RegisterEmployee checks the invite code, creates the employee and signs it
// in. An unknown code returns InvalidInviteCode and leaves the session unchanged.
func (s *Store) RegisterEmployee(ctx context.Context, in apiclient.EmployeeSignup) (domain.Session, error) {
	if strings.TrimSpace(in.InviteCode) == "" {
		return s.Snapshot(), domain.ErrInvalidInviteCode
	}

	s.beginLoading()
	defer s.endLoading()

	company, _, err := s.backend.FindCompanyByInvite(ctx, in.InviteCode)
	if err != nil {
		return s.Snapshot(), err
	}

	resp, source, err := s.backend.RegisterEmployee(ctx, in)
	if err != nil {
		return s.Snapshot(), err
	}
	resp.User.Kind = domain.KindEmployee
	if resp.User.CompanyID == "" {
		resp.User.CompanyID = company.ID
	}
	if err := s.commit(ctx, resp, source); err != nil {
		return s.Snapshot(), err
	}
	appLogger.For(ctx, s.logger).Info("employee registered",
		zap.String("user_id", resp.User.ID),
		zap.String("company_id", resp.User.CompanyID),
		zap.String("source", string(source)),
	)
	return s.Snapshot(), nil
}

// commit installs a new identity. Results not served by the backend get a
// locally signed demo token.
func (s *Store) commit(ctx context.Context, resp apiclient.AuthResponse, source apiclient.Source) error {
	identity := resp.User
	degraded := source != apiclient.SourceBackend
	tok := resp.Token
	if degraded && tok == "" && s.tokens != nil {
		issued, err := s.tokens.Issue(identity)
		if err != nil {
			return err
		}
		tok = issued
	}

	s.mu.Lock()
	s.state.Identity = identity.Clone()
	s.state.Degraded = degraded
	s.token = tok
	s.mu.Unlock()

	if err := s.repo.Save(ctx, repository.StoredSession{Identity: &identity, Token: tok}); err != nil {
		appLogger.For(ctx, s.logger).Warn("failed to persist session", zap.Error(err))
	}
	return nil
}

// Logout forgets the identity in memory and in storage. It is idempotent.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.state.Identity = nil
	s.state.Degraded = false
	s.token = ""
	s.mu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		appLogger.For(ctx, s.logger).Warn("failed to clear session storage", zap.Error(err))
	}
}

// Current returns a copy of the identity, nil when anonymous.
func (s *Store) Current() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Identity.Clone()
}

// Token returns the bearer token of the session.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.state
	snap.Identity = s.state.Identity.Clone()
	return snap
}

func (s *Store) SetBackendReachable(ok bool) {
	s.mu.Lock()
	s.state.BackendReachable = ok
	s.mu.Unlock()
}

// beginLoading and endLoading count operations in flight; Loading holds
// while any of them runs.
func (s *Store) beginLoading() {
	s.mu.Lock()
	s.inflight++
	s.state.Loading = true
	s.mu.Unlock()
}

func (s *Store) endLoading() {
	s.mu.Lock()
	if s.inflight > 0 {
		s.inflight--
	}
	s.state.Loading = s.inflight > 0
	s.mu.Unlock()
}
