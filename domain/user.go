package domain

import (
	"encoding/json"
	"strings"
)

// IdentityKind distinguishes company accounts from employee accounts.
type IdentityKind string

const (
	KindCompany  IdentityKind = "company"
	KindEmployee IdentityKind = "employee"
)

// ParseIdentityKind accepts both the English and the legacy Portuguese
// spellings the backend has used.
func ParseIdentityKind(raw string) (IdentityKind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "company", "empresa":
		return KindCompany, true
	case "employee", "colaborador":
		return KindEmployee, true
	default:
		return "", false
	}
}

// UnmarshalJSON normalizes legacy spellings; unknown kinds are kept verbatim.
func (k *IdentityKind) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if kind, ok := ParseIdentityKind(raw); ok {
		*k = kind
		return nil
	}
	*k = IdentityKind(raw)
	return nil
}

// Identity represents the authenticated user of the client.
type Identity struct {
	ID          string       `json:"id" validate:"required"`
	Email       string       `json:"email"`
	DisplayName string       `json:"name"`
	Kind        IdentityKind `json:"type" validate:"oneof=company employee"`
	CompanyID   string       `json:"companyId,omitempty"`
}

func (i *Identity) IsCompany() bool {
	return i != nil && i.Kind == KindCompany
}

func (i *Identity) IsEmployee() bool {
	return i != nil && i.Kind == KindEmployee
}

// Clone returns a copy safe to hand out of a locked section.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}
