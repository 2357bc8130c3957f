package company

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/ecowork/domain"
	"github.com/fastygo/ecowork/internal/apiclient"
)

// Backend is the part of the API client used by company views.
type Backend interface {
	GetCompany(ctx context.Context, id string) (domain.Company, apiclient.Source, error)
	CompanyDashboard(ctx context.Context, companyID string) (domain.CompanyDashboard, apiclient.Source, error)
	CompanyEmployees(ctx context.Context, companyID string) ([]domain.EmployeeSummary, apiclient.Source, error)
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

// Overview is the company dashboard plus the company profile.
type Overview struct {
	Company   domain.Company          `json:"company"`
	Dashboard domain.CompanyDashboard `json:"dashboard"`
}

// Dashboard aggregates the employees of the identity's company. Totals are
// recomputed from the employee rows when the backend omits them.
func (uc *UseCase) Dashboard(ctx context.Context, identity *domain.Identity) (Overview, apiclient.Source, error) {
	if identity == nil {
		return Overview{}, apiclient.SourceEmpty, domain.ErrNotAuthenticated
	}
	if !identity.IsCompany() {
		return Overview{}, apiclient.SourceEmpty, domain.ErrCompanyOnly
	}
	companyID := identity.CompanyID
	if companyID == "" {
		companyID = identity.ID
	}

	profile, profileSource, err := uc.backend.GetCompany(ctx, companyID)
	if err != nil && !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return Overview{}, profileSource, err
	}
	if err != nil {
		profile = domain.Company{ID: companyID, Name: identity.DisplayName}
	}

	dash, dashSource, err := uc.backend.CompanyDashboard(ctx, companyID)
	switch {
	case err == nil && dash.TotalEmployees == 0 && len(dash.Employees) > 0:
		dash = domain.BuildDashboard(companyID, dash.Employees)
	case err != nil && domain.IsDomainError(err, domain.ErrCodeNotFound):
		rows, rowsSource, rowsErr := uc.backend.CompanyEmployees(ctx, companyID)
		if rowsErr != nil {
			return Overview{}, rowsSource, rowsErr
		}
		dash, dashSource = domain.BuildDashboard(companyID, rows), rowsSource
	case err != nil:
		return Overview{}, dashSource, err
	}
	if dash.CompanyID == "" {
		dash.CompanyID = companyID
	}

	uc.logger.Debug("company dashboard loaded",
		zap.String("company_id", companyID),
		zap.Int("employees", dash.TotalEmployees),
	)
	return Overview{Company: profile, Dashboard: dash}, apiclient.Combine(profileSource, dashSource), nil
}
