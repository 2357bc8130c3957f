// Package directory serves the user and company detail views.
package directory

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/ecowork/domain"
	"github.com/fastygo/ecowork/internal/apiclient"
)

// Backend is the part of the API client the directory reads.
type Backend interface {
	GetUser(ctx context.Context, id string) (domain.Identity, apiclient.Source, error)
	ListUsers(ctx context.Context) ([]domain.Identity, apiclient.Source, error)
	GetCompany(ctx context.Context, id string) (domain.Company, apiclient.Source, error)
}

type UseCase struct {
	backend Backend
	logger  *zap.Logger
}

func New(backend Backend, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{backend: backend, logger: logger}
}

// User returns one account by id.
func (uc *UseCase) User(ctx context.Context, identity *domain.Identity, id string) (domain.Identity, apiclient.Source, error) {
	if identity == nil {
		return domain.Identity{}, apiclient.SourceEmpty, domain.ErrNotAuthenticated
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Identity{}, apiclient.SourceEmpty, domain.NewError(domain.ErrCodeInvalid, "user id is required")
	}
	return uc.backend.GetUser(ctx, id)
}

// Users lists the accounts that belong to the identity's company.
func (uc *UseCase) Users(ctx context.Context, identity *domain.Identity) ([]domain.Identity, apiclient.Source, error) {
	if identity == nil {
		return nil, apiclient.SourceEmpty, domain.ErrNotAuthenticated
	}
	if !identity.IsCompany() {
		return nil, apiclient.SourceEmpty, domain.ErrCompanyOnly
	}
	companyID := ownCompany(identity)

	all, source, err := uc.backend.ListUsers(ctx)
	if err != nil {
		return nil, source, err
	}
	out := make([]domain.Identity, 0, len(all))
	for _, u := range all {
		if u.CompanyID == companyID || u.ID == companyID {
			out = append(out, u)
		}
	}
	uc.logger.Debug("company users listed",
		zap.String("company_id", companyID),
		zap.Int("users", len(out)),
	)
	return out, source, nil
}

// Company returns a company profile. An empty id selects the identity's own
// company.
func (uc *UseCase) Company(ctx context.Context, identity *domain.Identity, id string) (domain.Company, apiclient.Source, error) {
	if identity == nil {
		return domain.Company{}, apiclient.SourceEmpty, domain.ErrNotAuthenticated
	}
	id = strings.TrimSpace(id)
	if id == "" {
		id = ownCompany(identity)
	}
	if id == "" {
		return domain.Company{}, apiclient.SourceEmpty, domain.NewError(domain.ErrCodeInvalid, "company id is required")
	}
	return uc.backend.GetCompany(ctx, id)
}

func ownCompany(identity *domain.Identity) string {
	if identity.CompanyID != "" {
		return identity.CompanyID
	}
	if identity.IsCompany() {
		return identity.ID
	}
	return ""
}
