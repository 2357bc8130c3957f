package fallback

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/fastygo/ecowork/domain"
)

const (
	SeedCompanyID  = "comp-1"
	SeedEmployeeID = "emp-1"
	// SeedInviteCode lets employees join the seeded company while offline.
	SeedInviteCode = "ECOWORK2025"

	seedCompanyName  = "Tech Solutions Ltda"
	seedEmployeeName = "João Silva"
)

// DefaultCompanyMarkers are the email substrings that select the company mock identity.
var DefaultCompanyMarkers = []string{"empresa"}

var seedRecordDay = time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)

func (d *Dataset) seed() {
	company := domain.Company{
		ID:         SeedCompanyID,
		Name:       seedCompanyName,
		TaxID:      "12.345.678/0001-90",
		Email:      "contato@techsolutions.com.br",
		Phone:      "(11) 3000-0000",
		Address:    "Av. Paulista, 1000 - São Paulo, SP",
		Plan:       domain.PlanPremium,
		InviteCode: SeedInviteCode,
	}
	d.companies[company.ID] = &company

	d.addAccount(domain.Identity{
		ID:          SeedCompanyID,
		Email:       "empresa@techsolutions.com.br",
		DisplayName: seedCompanyName,
		Kind:        domain.KindCompany,
		CompanyID:   SeedCompanyID,
	}, nil)
	d.addAccount(domain.Identity{
		ID:          SeedEmployeeID,
		Email:       "joao.silva@techsolutions.com.br",
		DisplayName: seedEmployeeName,
		Kind:        domain.KindEmployee,
		CompanyID:   SeedCompanyID,
	}, nil)

	id := ulid.MustNew(ulid.Timestamp(seedRecordDay), nil).String()
	rec := domain.NewHomeOfficeRecord(id, SeedEmployeeID, SeedCompanyID, seedRecordDay, domain.TransportCar, 8)
	rec.CreatedAt = seedRecordDay
	d.records = append(d.records, rec)

	d.benefits = []domain.Benefit{
		{ID: "ben-1", Name: "Vale Presente Sustentável", Description: "R$ 50 em vale-presente para lojas ecológicas e sustentáveis", CostCredits: 100, Category: domain.CategoryVouchers, Image: "🎁", Tags: []string{"popular", "sustentável"}, Featured: true},
		{ID: "ben-2", Name: "Doação para ONG Ambiental", Description: "Doação em seu nome para uma organização de proteção ambiental", CostCredits: 50, Category: domain.CategoryDonations, Image: "🌳", Tags: []string{"impacto", "social"}},
		{ID: "ben-3", Name: "Kit Produtos Ecológicos", Description: "Kit com produtos sustentáveis para o dia a dia", CostCredits: 120, Category: domain.CategoryProducts, Image: "🛍️", Tags: []string{"produto", "ecológico"}},
		{ID: "ben-4", Name: "Curso de Sustentabilidade", Description: "Acesso a curso online sobre práticas sustentáveis", CostCredits: 80, Category: domain.CategoryEducation, Image: "📚", Tags: []string{"aprendizado", "digital"}},
		{ID: "ben-5", Name: "Experiência na Natureza", Description: "Passeio em parque nacional ou reserva ambiental", CostCredits: 200, Category: domain.CategoryExperiences, Image: "🏞️", Tags: []string{"experiência", "natureza"}, Featured: true},
		{ID: "ben-6", Name: "Assinatura Revista Verde", Description: "Assinatura digital de revista sobre sustentabilidade", CostCredits: 60, Category: domain.CategorySubscriptions, Image: "📰", Tags: []string{"conhecimento", "digital"}},
		{ID: "ben-7", Name: "Plantio de Árvores", Description: "Plantio de 5 árvores em seu nome em área de reflorestamento", CostCredits: 75, Category: domain.CategoryDonations, Image: "🌱", Tags: []string{"reflorestamento", "impacto"}},
		{ID: "ben-8", Name: "Eco Kit Office", Description: "Kit com itens sustentáveis para home office", CostCredits: 150, Category: domain.CategoryProducts, Image: "💻", Tags: []string{"home office", "produto"}},
	}
}
