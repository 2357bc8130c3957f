package domain

import (
	"strings"
	"time"
)

// BenefitCategory groups catalog entries. Values are the ids the backend uses.
type BenefitCategory string

const (
	CategoryVouchers      BenefitCategory = "vouchers"
	CategoryDonations     BenefitCategory = "doacoes"
	CategoryProducts      BenefitCategory = "produtos"
	CategoryEducation     BenefitCategory = "educacao"
	CategoryExperiences   BenefitCategory = "experiencias"
	CategorySubscriptions BenefitCategory = "assinaturas"
)

var categoryAliases = map[string]BenefitCategory{
	"donations":     CategoryDonations,
	"products":      CategoryProducts,
	"education":     CategoryEducation,
	"experiences":   CategoryExperiences,
	"subscriptions": CategorySubscriptions,
}

// ParseBenefitCategory accepts backend ids and their English names.
func ParseBenefitCategory(raw string) (BenefitCategory, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	switch c := BenefitCategory(key); c {
	case CategoryVouchers, CategoryDonations, CategoryProducts,
		CategoryEducation, CategoryExperiences, CategorySubscriptions:
		return c, true
	}
	alias, ok := categoryAliases[key]
	return alias, ok
}

// Benefit is a perk employees can redeem with credits.
type Benefit struct {
	ID          string          `json:"id" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	CostCredits int             `json:"cost" validate:"gte=0"`
	Category    BenefitCategory `json:"category"`
	Image       string          `json:"image,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Featured    bool            `json:"featured,omitempty"`
}

// Redemption records credits spent on a benefit.
type Redemption struct {
	ID          string    `json:"id" validate:"required"`
	UserID      string    `json:"userId"`
	BenefitID   string    `json:"benefitId" validate:"required"`
	CostCredits int       `json:"cost"`
	CreatedAt   time.Time `json:"createdAt"`
}
