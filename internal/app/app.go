// Package app wires the client core from configuration. Both the CLI
// commands and the session gateway build on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/fastygo/ecowork/internal/apiclient"
	"github.com/fastygo/ecowork/internal/config"
	"github.com/fastygo/ecowork/internal/fallback"
	"github.com/fastygo/ecowork/internal/infrastructure/kvstore"
	redisInfra "github.com/fastygo/ecowork/internal/infrastructure/redis"
	"github.com/fastygo/ecowork/internal/services/lifecycle"
	"github.com/fastygo/ecowork/internal/token"
	"github.com/fastygo/ecowork/repository"
	boltRepo "github.com/fastygo/ecowork/repository/bolt"
	redisRepo "github.com/fastygo/ecowork/repository/redis"
	companyUC "github.com/fastygo/ecowork/usecase/company"
	directoryUC "github.com/fastygo/ecowork/usecase/directory"
	rewardsUC "github.com/fastygo/ecowork/usecase/rewards"
	sessionUC "github.com/fastygo/ecowork/usecase/session"
)

type closer struct {
	name string
	io.Closer
}

// App holds the wired components.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Fallback  *fallback.Dataset
	Client    *apiclient.Client
	Tokens    *token.Issuer
	Storage   repository.SessionRepository
	Session   *sessionUC.Store
	Rewards   *rewardsUC.UseCase
	Company   *companyUC.UseCase
	Directory *directoryUC.UseCase

	closers []closer
}

// New opens session storage and builds every component. The session store is
// not initialized; callers decide when to run Initialize.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	storage, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}
	a.Storage = storage

	a.Fallback = fallback.New(fallback.WithCompanyMarkers(cfg.API.CompanyMarkers))
	a.Tokens = token.NewIssuer(cfg.DemoToken.Secret, cfg.DemoToken.Issuer, cfg.DemoToken.TTL)

	// The token source reads the store lazily; the store is assigned below.
	var store *sessionUC.Store
	a.Client = apiclient.New(cfg.API.BaseURL,
		apiclient.WithFallback(a.Fallback),
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithHealthTimeout(cfg.API.HealthTimeout),
		apiclient.WithLogger(logger.Named("apiclient")),
		apiclient.WithTokenSource(func() string {
			if store == nil {
				return ""
			}
			return store.Token()
		}),
	)
	store = sessionUC.New(a.Client, a.Storage, a.Tokens, a.Fallback, logger.Named("session"))
	a.Session = store

	a.Rewards = rewardsUC.New(a.Client, logger.Named("rewards"))
	a.Company = companyUC.New(a.Client, logger.Named("company"))
	a.Directory = directoryUC.New(a.Client, logger.Named("directory"))
	return a, nil
}

func (a *App) openStorage(ctx context.Context) (repository.SessionRepository, error) {
	switch a.Config.Storage.Driver {
	case config.StorageDriverRedis:
		client, err := redisInfra.NewClient(ctx, a.Config.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, closer{name: "redis", Closer: client})
		return redisRepo.NewSessionRepository(client, a.Config.Redis.Prefix, 0), nil
	default:
		kv, err := kvstore.Open(a.Config.Storage.Path, a.Config.Storage.Bucket)
		if err != nil {
			return nil, fmt.Errorf("open session storage %s: %w", a.Config.Storage.Path, err)
		}
		a.closers = append(a.closers, closer{name: "session_storage", Closer: kv})
		return boltRepo.NewSessionRepository(kv), nil
	}
}

// RegisterShutdown hands the storage closers to the lifecycle manager.
func (a *App) RegisterShutdown(m *lifecycle.Manager) {
	for _, c := range a.closers {
		m.RegisterCloser(c.name, c.Closer)
	}
	a.closers = nil
}

// Close releases storage handles that were not handed to a lifecycle manager.
func (a *App) Close() error {
	var result error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			result = errors.Join(result, fmt.Errorf("close %s: %w", a.closers[i].name, err))
		}
	}
	a.closers = nil
	return result
}
