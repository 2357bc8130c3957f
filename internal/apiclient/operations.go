package apiclient

import (
	"context"
	"encoding/json"
	"net/url"
	"reflect"

	"go.uber.org/zap"

	"github.com/fastygo/ecowork/domain"
)

// Credentials is the login request.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CompanySignup is the company registration request.
type CompanySignup struct {
	Name     string      `json:"companyName" validate:"required"`
	TaxID    string      `json:"cnpj" validate:"required"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Phone    string      `json:"phone,omitempty"`
	Address  string      `json:"address,omitempty"`
	Plan     domain.Plan `json:"plan" validate:"required,oneof=BASIC PREMIUM ENTERPRISE"`
}

// EmployeeSignup is the employee registration request.
type EmployeeSignup struct {
	Name           string               `json:"name" validate:"required"`
	Email          string               `json:"email" validate:"required,email"`
	Password       string               `json:"password" validate:"required,min=6"`
	InviteCode     string               `json:"inviteCode" validate:"required"`
	Transportation domain.TransportMode `json:"transportation,omitempty"`
	DistanceKm     float64              `json:"distance,omitempty" validate:"gte=0,lte=500"`
}

// HomeOfficeEntry registers one remote-work day.
type HomeOfficeEntry struct {
	UserID        string               `json:"userId" validate:"required"`
	CompanyID     string               `json:"companyId,omitempty"`
	Date          string               `json:"recordDate" validate:"required,datetime=2006-01-02"`
	Mode          domain.TransportMode `json:"transportation" validate:"required"`
	DistanceKm    float64              `json:"distance" validate:"gte=0,lte=500"`
	CO2SavedKg    float64              `json:"co2Saved"`
	CreditsEarned int                  `json:"creditsEarned"`
}

// RedeemRequest spends credits on a benefit.
type RedeemRequest struct {
	UserID    string `json:"userId" validate:"required"`
	BenefitID string `json:"benefitId" validate:"required"`
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	User    domain.Identity `json:"user"`
	Company *domain.Company `json:"company,omitempty"`
	Token   string          `json:"token"`
}

const (
	pathAuth             = "/api/auth"
	pathLogin            = "/api/auth/login"
	pathRegisterCompany  = "/api/auth/register/company"
	pathRegisterEmployee = "/api/auth/register/employee"
	pathUsers            = "/usuarios"
	pathCompanies        = "/empresas"
	pathHomeOffice       = "/api/employee/home-office"
	pathBenefits         = "/api/benefits"
	pathRedeem           = "/api/benefits/redeem"
	pathHealth           = "/health"
)

func employeePath(id, leaf string) string {
	return "/api/employee/" + url.PathEscape(id) + "/" + leaf
}

func companyPath(id, leaf string) string {
	return "/api/company/" + url.PathEscape(id) + "/" + leaf
}

func (c *Client) Login(ctx context.Context, in Credentials) (AuthResponse, Source, error) {
	if err := c.checkRequest(in); err != nil {
		return AuthResponse{}, SourceEmpty, err
	}
	return one[AuthResponse](ctx, c, "POST", pathLogin, in)
}

func (c *Client) RegisterCompany(ctx context.Context, in CompanySignup) (AuthResponse, Source, error) {
	if err := c.checkRequest(in); err != nil {
		return AuthResponse{}, SourceEmpty, err
	}
	return one[AuthResponse](ctx, c, "POST", pathRegisterCompany, in)
}

func (c *Client) RegisterEmployee(ctx context.Context, in EmployeeSignup) (AuthResponse, Source, error) {
	if err := c.checkRequest(in); err != nil {
		return AuthResponse{}, SourceEmpty, err
	}
	return one[AuthResponse](ctx, c, "POST", pathRegisterEmployee, in)
}

func (c *Client) GetUser(ctx context.Context, id string) (domain.Identity, Source, error) {
	return one[domain.Identity](ctx, c, "GET", pathUsers+"/"+url.PathEscape(id), nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.Identity, Source, error) {
	return many[domain.Identity](ctx, c, "GET", pathUsers, nil)
}

func (c *Client) GetCompany(ctx context.Context, id string) (domain.Company, Source, error) {
	return one[domain.Company](ctx, c, "GET", pathCompanies+"/"+url.PathEscape(id), nil)
}

func (c *Client) ListCompanies(ctx context.Context) ([]domain.Company, Source, error) {
	return many[domain.Company](ctx, c, "GET", pathCompanies, nil)
}

// FindCompanyByInvite matches code against the backend companies first and
// the fallback companies second.
func (c *Client) FindCompanyByInvite(ctx context.Context, code string) (domain.Company, Source, error) {
	companies, source, err := c.ListCompanies(ctx)
	if err != nil {
		return domain.Company{}, source, err
	}
	for i := range companies {
		if companies[i].MatchesInvite(code) {
			return companies[i], source, nil
		}
	}
	if source == SourceBackend && c.fallback != nil {
		res, err := c.substitute("GET", pathCompanies, nil, domain.ErrNotFound)
		if err == nil && res.Source == SourceFallback {
			var local []domain.Company
			if json.Unmarshal(res.Body, &local) == nil {
				for i := range local {
					if local[i].MatchesInvite(code) {
						return local[i], SourceFallback, nil
					}
				}
			}
		}
	}
	return domain.Company{}, source, domain.ErrInvalidInviteCode
}

func (c *Client) RegisterHomeOffice(ctx context.Context, in HomeOfficeEntry) (domain.HomeOfficeRecord, Source, error) {
	if err := c.checkRequest(in); err != nil {
		return domain.HomeOfficeRecord{}, SourceEmpty, err
	}
	return one[domain.HomeOfficeRecord](ctx, c, "POST", pathHomeOffice, in)
}

func (c *Client) History(ctx context.Context, userID string) ([]domain.HomeOfficeRecord, Source, error) {
	return many[domain.HomeOfficeRecord](ctx, c, "GET", employeePath(userID, "history"), nil)
}

func (c *Client) Redemptions(ctx context.Context, userID string) ([]domain.Redemption, Source, error) {
	return many[domain.Redemption](ctx, c, "GET", employeePath(userID, "redemptions"), nil)
}

func (c *Client) Benefits(ctx context.Context) ([]domain.Benefit, Source, error) {
	return many[domain.Benefit](ctx, c, "GET", pathBenefits, nil)
}

func (c *Client) RedeemBenefit(ctx context.Context, in RedeemRequest) (domain.Redemption, Source, error) {
	if err := c.checkRequest(in); err != nil {
		return domain.Redemption{}, SourceEmpty, err
	}
	return one[domain.Redemption](ctx, c, "POST", pathRedeem, in)
}

func (c *Client) CompanyDashboard(ctx context.Context, companyID string) (domain.CompanyDashboard, Source, error) {
	dash, source, err := one[domain.CompanyDashboard](ctx, c, "GET", companyPath(companyID, "dashboard"), nil)
	if err == nil && dash.Employees == nil {
		dash.Employees = []domain.EmployeeSummary{}
	}
	return dash, source, err
}

func (c *Client) CompanyEmployees(ctx context.Context, companyID string) ([]domain.EmployeeSummary, Source, error) {
	return many[domain.EmployeeSummary](ctx, c, "GET", companyPath(companyID, "employees"), nil)
}

// one fetches a single object; an empty result is reported as NotFound.
func one[T any](ctx context.Context, c *Client, method, path string, body any) (T, Source, error) {
	var out T
	source, err := fetch(ctx, c, method, path, body, &out)
	if err != nil {
		return out, source, err
	}
	if source == SourceEmpty {
		return out, source, domain.ErrNotFound
	}
	return out, source, nil
}

// many fetches a collection; an empty result is an empty slice.
func many[T any](ctx context.Context, c *Client, method, path string, body any) ([]T, Source, error) {
	out := make([]T, 0)
	source, err := fetch(ctx, c, method, path, body, &out)
	if err != nil {
		return nil, source, err
	}
	if out == nil {
		out = make([]T, 0)
	}
	return out, source, nil
}

// fetch runs Do and decodes into target. A backend body that does not decode
// or validate is replaced by the fallback answer.
func fetch(ctx context.Context, c *Client, method, path string, body any, target any) (Source, error) {
	res, err := c.Do(ctx, method, path, body)
	if err != nil {
		return res.Source, err
	}
	if res.Source == SourceEmpty {
		return SourceEmpty, nil
	}

	decodeErr := c.decode(res.Body, target)
	if decodeErr == nil {
		return res.Source, nil
	}
	if res.Source != SourceBackend {
		return res.Source, domain.WrapError(domain.ErrCodeMalformedResponse, domain.ErrMalformedResponse.Message, decodeErr)
	}

	c.logger.Warn("backend response rejected",
		zap.String("path", path),
		zap.Error(decodeErr),
	)
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	res, err = c.substitute(method, path, payload, domain.WrapError(domain.ErrCodeMalformedResponse, domain.ErrMalformedResponse.Message, decodeErr))
	if err != nil {
		return res.Source, err
	}
	if res.Source == SourceEmpty {
		return SourceEmpty, nil
	}
	resetTarget(target)
	if err := c.decode(res.Body, target); err != nil {
		return res.Source, domain.WrapError(domain.ErrCodeMalformedResponse, domain.ErrMalformedResponse.Message, err)
	}
	return res.Source, nil
}

func (c *Client) decode(raw []byte, target any) error {
	if err := json.Unmarshal(raw, target); err != nil {
		return err
	}
	v := reflect.Indirect(reflect.ValueOf(target))
	switch v.Kind() {
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			if elem := v.Index(i); elem.Kind() == reflect.Struct {
				if err := c.validate.Struct(elem.Interface()); err != nil {
					return err
				}
			}
		}
	case reflect.Struct:
		return c.validate.Struct(v.Interface())
	}
	return nil
}

func resetTarget(target any) {
	v := reflect.ValueOf(target).Elem()
	v.Set(reflect.Zero(v.Type()))
}

func (c *Client) checkRequest(in any) error {
	if err := c.validate.Struct(in); err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, domain.ErrInvalidPayload.Message, err)
	}
	return nil
}
