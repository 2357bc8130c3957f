package domain

import "strings"

// Plan is the subscription tier of a company.
type Plan string

const (
	PlanBasic      Plan = "BASIC"
	PlanPremium    Plan = "PREMIUM"
	PlanEnterprise Plan = "ENTERPRISE"
)

// ParsePlan normalizes a plan name; the zero value is returned for unknown plans.
func ParsePlan(raw string) (Plan, bool) {
	switch Plan(strings.ToUpper(strings.TrimSpace(raw))) {
	case PlanBasic:
		return PlanBasic, true
	case PlanPremium:
		return PlanPremium, true
	case PlanEnterprise:
		return PlanEnterprise, true
	default:
		return "", false
	}
}

// Company is an employer enrolled in the program.
type Company struct {
	ID         string `json:"id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	TaxID      string `json:"cnpj"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	Plan       Plan   `json:"plan"`
	InviteCode string `json:"inviteCode"`
}

// MatchesInvite compares invite codes case-insensitively.
func (c *Company) MatchesInvite(code string) bool {
	if c == nil || c.InviteCode == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(code), c.InviteCode)
}
