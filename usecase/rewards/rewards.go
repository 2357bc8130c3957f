package rewards

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/ecowork/domain"
	"github.com/fastygo/ecowork/internal/apiclient"
)

// Backend is the part of the API client used for rewards.
type Backend interface {
	RegisterHomeOffice(ctx context.Context, in apiclient.HomeOfficeEntry) (domain.HomeOfficeRecord, apiclient.Source, error)
	History(ctx context.Context, userID string) ([]domain.HomeOfficeRecord, apiclient.Source, error)
	Redemptions(ctx context.Context, userID string) ([]domain.Redemption, apiclient.Source, error)
	Benefits(ctx context.Context) ([]domain.Benefit, apiclient.Source, error)
	RedeemBenefit(ctx context.Context, in apiclient.RedeemRequest) (domain.Redemption, apiclient.Source, error)
}

type UseCase struct {
	backend Backend
	logger  *zap.Logger
	now     func() time.Time
}

func New(backend Backend, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{backend: backend, logger: logger, now: time.Now}
}

// WithClock overrides the time source; used for week boundaries and default dates.
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	c := *uc
	c.now = now
	return &c
}

// DayEntry describes one remote-work day to register.
type DayEntry struct {
	Mode       string
	DistanceKm float64
	// Date defaults to today (UTC) when zero.
	Date time.Time
}

// LogHomeOffice registers a remote-work day for an employee.
func (uc *UseCase) LogHomeOffice(ctx context.Context, identity *domain.Identity, entry DayEntry) (domain.HomeOfficeRecord, apiclient.Source, error) {
	if err := requireEmployee(identity); err != nil {
		return domain.HomeOfficeRecord{}, apiclient.SourceEmpty, err
	}
	mode, ok := domain.ParseTransportMode(entry.Mode)
	if !ok {
		return domain.HomeOfficeRecord{}, apiclient.SourceEmpty,
			domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("unknown transportation %q", entry.Mode))
	}
	if entry.DistanceKm < 0 || entry.DistanceKm > domain.MaxCommuteKm {
		return domain.HomeOfficeRecord{}, apiclient.SourceEmpty,
			domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("distance must be between 0 and %.0f km", domain.MaxCommuteKm))
	}
	day := entry.Date
	if day.IsZero() {
		day = uc.now()
	}

	savings := domain.ComputeSavings(mode, entry.DistanceKm)
	rec, source, err := uc.backend.RegisterHomeOffice(ctx, apiclient.HomeOfficeEntry{
		UserID:        identity.ID,
		CompanyID:     identity.CompanyID,
		Date:          day.UTC().Format(domain.DateLayout),
		Mode:          mode,
		DistanceKm:    entry.DistanceKm,
		CO2SavedKg:    savings.CO2SavedKg,
		CreditsEarned: savings.CreditsEarned,
	})
	if err != nil {
		return domain.HomeOfficeRecord{}, source, err
	}
	if rec.CreditsEarned == 0 {
		rec.CO2SavedKg = savings.CO2SavedKg
		rec.CreditsEarned = savings.CreditsEarned
	}

	uc.logger.Info("home office day registered",
		zap.String("user_id", identity.ID),
		zap.String("date", rec.Date),
		zap.Int("credits", rec.CreditsEarned),
		zap.String("source", string(source)),
	)
	return rec, source, nil
}

func (uc *UseCase) History(ctx context.Context, identity *domain.Identity) ([]domain.HomeOfficeRecord, apiclient.Source, error) {
	if err := requireEmployee(identity); err != nil {
		return nil, apiclient.SourceEmpty, err
	}
	return uc.backend.History(ctx, identity.ID)
}

// Stats recomputes the employee's totals from history and redemptions.
func (uc *UseCase) Stats(ctx context.Context, identity *domain.Identity) (domain.EmployeeStats, apiclient.Source, error) {
	if err := requireEmployee(identity); err != nil {
		return domain.EmployeeStats{}, apiclient.SourceEmpty, err
	}
	records, recSource, err := uc.backend.History(ctx, identity.ID)
	if err != nil {
		return domain.EmployeeStats{}, recSource, err
	}
	redemptions, redSource, err := uc.backend.Redemptions(ctx, identity.ID)
	if err != nil {
		return domain.EmployeeStats{}, redSource, err
	}
	return domain.SummarizeRecords(records, redemptions, uc.now()), apiclient.Combine(recSource, redSource), nil
}

// Benefits lists the catalog, optionally restricted to one category.
func (uc *UseCase) Benefits(ctx context.Context, category string) ([]domain.Benefit, apiclient.Source, error) {
	all, source, err := uc.backend.Benefits(ctx)
	if err != nil {
		return nil, source, err
	}
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" || category == "all" {
		return all, source, nil
	}
	want := domain.BenefitCategory(category)
	if parsed, ok := domain.ParseBenefitCategory(category); ok {
		want = parsed
	}
	out := make([]domain.Benefit, 0, len(all))
	for _, b := range all {
		if b.Category == want {
			out = append(out, b)
		}
	}
	return out, source, nil
}

// Redeem spends credits on a benefit. It fails with InsufficientCredits when
// the available balance does not cover the cost.
func (uc *UseCase) Redeem(ctx context.Context, identity *domain.Identity, benefitID string) (domain.Redemption, apiclient.Source, error) {
	if err := requireEmployee(identity); err != nil {
		return domain.Redemption{}, apiclient.SourceEmpty, err
	}

	catalog, _, err := uc.backend.Benefits(ctx)
	if err != nil {
		return domain.Redemption{}, apiclient.SourceEmpty, err
	}
	var benefit *domain.Benefit
	for i := range catalog {
		if catalog[i].ID == benefitID {
			benefit = &catalog[i]
			break
		}
	}
	if benefit == nil {
		return domain.Redemption{}, apiclient.SourceEmpty, domain.ErrBenefitNotFound
	}

	stats, _, err := uc.Stats(ctx, identity)
	if err != nil {
		return domain.Redemption{}, apiclient.SourceEmpty, err
	}
	if stats.AvailableCredits < benefit.CostCredits {
		return domain.Redemption{}, apiclient.SourceEmpty, domain.ErrInsufficientCredits
	}

	redemption, source, err := uc.backend.RedeemBenefit(ctx, apiclient.RedeemRequest{UserID: identity.ID, BenefitID: benefit.ID})
	if err != nil {
		return domain.Redemption{}, source, err
	}
	uc.logger.Info("benefit redeemed",
		zap.String("user_id", identity.ID),
		zap.String("benefit_id", benefit.ID),
		zap.Int("cost", benefit.CostCredits),
		zap.String("source", string(source)),
	)
	return redemption, source, nil
}

func requireEmployee(identity *domain.Identity) error {
	if identity == nil {
		return domain.ErrNotAuthenticated
	}
	if !identity.IsEmployee() {
		return domain.ErrEmployeeOnly
	}
	return nil
}
