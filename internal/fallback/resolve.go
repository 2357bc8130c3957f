package fallback

import (
	"encoding/json"
	"strings"

	"github.com/fastygo/ecowork/domain"
)

// AuthResult is the body served for login and registration paths.
type AuthResult struct {
	User    domain.Identity `json:"user"`
	Company *domain.Company `json:"company,omitempty"`
	Token   string          `json:"token"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type companyBody struct {
	Name     string `json:"companyName"`
	TaxID    string `json:"cnpj"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Plan     string `json:"plan"`
}

type employeeBody struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	InviteCode string `json:"inviteCode"`
}

type recordBody struct {
	UserID     string  `json:"userId"`
	CompanyID  string  `json:"companyId"`
	Date       string  `json:"recordDate"`
	Mode       string  `json:"transportation"`
	DistanceKm float64 `json:"distance"`
}

type redeemBody struct {
	UserID    string `json:"userId"`
	BenefitID string `json:"benefitId"`
}

// Resolve answers a backend request from the dataset. ok is false when the
// path has no synthetic counterpart. Domain errors are returned as-is.
func (d *Dataset) Resolve(method, path string, body []byte) (value any, ok bool, err error) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	seg := strings.Split(strings.Trim(path, "/"), "/")
	method = strings.ToUpper(method)

	switch method {
	case "GET":
		return d.resolveGet(seg)
	case "POST":
		return d.resolvePost(seg, body)
	default:
		return nil, false, nil
	}
}

func (d *Dataset) resolveGet(seg []string) (any, bool, error) {
	switch {
	case match(seg, "usuarios"):
		return d.Users(), true, nil
	case match(seg, "usuarios", "*"):
		if u, found := d.User(seg[1]); found {
			return u, true, nil
		}
		return nil, true, domain.ErrNotFound
	case match(seg, "empresas"):
		return d.Companies(), true, nil
	case match(seg, "empresas", "*"):
		if c, found := d.Company(seg[1]); found {
			return c, true, nil
		}
		return nil, true, domain.ErrNotFound
	case match(seg, "api", "employee", "*", "history"):
		return d.Records(seg[2]), true, nil
	case match(seg, "api", "employee", "*", "redemptions"):
		return d.Redemptions(seg[2]), true, nil
	case match(seg, "api", "benefits"):
		return d.Benefits(), true, nil
	case match(seg, "api", "company", "*", "employees"):
		return d.EmployeeSummaries(seg[2]), true, nil
	case match(seg, "api", "company", "*", "dashboard"):
		return domain.BuildDashboard(seg[2], d.EmployeeSummaries(seg[2])), true, nil
	}
	return nil, false, nil
}

func (d *Dataset) resolvePost(seg []string, body []byte) (any, bool, error) {
	switch {
	case match(seg, "api", "auth", "login"):
		var in loginBody
		if err := decode(body, &in); err != nil {
			return nil, true, err
		}
		identity, err := d.Authenticate(in.Email, in.Password)
		if err != nil {
			return nil, true, err
		}
		return AuthResult{User: identity}, true, nil

	case match(seg, "api", "auth", "register", "company"):
		var in companyBody
		if err := decode(body, &in); err != nil {
			return nil, true, err
		}
		plan, _ := domain.ParsePlan(in.Plan)
		if plan == "" {
			plan = domain.PlanBasic
		}
		company, identity, err := d.RegisterCompany(CompanyRegistration{
			Name:     in.Name,
			TaxID:    in.TaxID,
			Email:    in.Email,
			Password: in.Password,
			Phone:    in.Phone,
			Address:  in.Address,
			Plan:     plan,
		})
		if err != nil {
			return nil, true, err
		}
		return AuthResult{User: identity, Company: &company}, true, nil

	case match(seg, "api", "auth", "register", "employee"):
		var in employeeBody
		if err := decode(body, &in); err != nil {
			return nil, true, err
		}
		identity, err := d.RegisterEmployee(EmployeeRegistration(in))
		if err != nil {
			return nil, true, err
		}
		return AuthResult{User: identity}, true, nil

	case match(seg, "api", "employee", "home-office"):
		var in recordBody
		if err := decode(body, &in); err != nil {
			return nil, true, err
		}
		mode, _ := domain.ParseTransportMode(in.Mode)
		rec, err := d.AddRecord(RecordInput{
			UserID:     in.UserID,
			CompanyID:  in.CompanyID,
			Date:       in.Date,
			Mode:       mode,
			DistanceKm: in.DistanceKm,
		})
		if err != nil {
			return nil, true, err
		}
		return rec, true, nil

	case match(seg, "api", "benefits", "redeem"):
		var in redeemBody
		if err := decode(body, &in); err != nil {
			return nil, true, err
		}
		r, err := d.Redeem(in.UserID, in.BenefitID)
		if err != nil {
			return nil, true, err
		}
		return r, true, nil
	}
	return nil, false, nil
}

// match compares path segments against a pattern where "*" matches any single segment.
func match(seg []string, pattern ...string) bool {
	if len(seg) != len(pattern) {
		return false
	}
	for i, p := range pattern {
		if p != "*" && p != seg[i] {
			return false
		}
	}
	return true
}

func decode(body []byte, v any) error {
	if len(body) == 0 {
		return domain.ErrInvalidPayload
	}
	if err := json.Unmarshal(body, v); err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, "invalid payload", err)
	}
	return nil
}
