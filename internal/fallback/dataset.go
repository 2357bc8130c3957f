// Package fallback holds the synthetic records served while the backend is
// unreachable or missing an endpoint. Writes live only in process memory.
package fallback

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/ecowork/domain"
)

type account struct {
	identity     domain.Identity
	passwordHash []byte
}

// Dataset is the in-memory demo dataset. It is safe for concurrent use.
type Dataset struct {
	mu          sync.RWMutex
	accounts    map[string]*account // by identity id
	emails      map[string]string   // lower-cased email -> identity id
	companies   map[string]*domain.Company
	records     []domain.HomeOfficeRecord
	redemptions []domain.Redemption
	benefits    []domain.Benefit

	markers []string
	now     func() time.Time
}

// Option customises a Dataset.
type Option func(*Dataset)

// WithClock overrides the time source used for new records.
func WithClock(now func() time.Time) Option {
	return func(d *Dataset) {
		if now != nil {
			d.now = now
		}
	}
}

// WithCompanyMarkers sets the email substrings that select a company identity.
func WithCompanyMarkers(markers []string) Option {
	return func(d *Dataset) {
		if len(markers) > 0 {
			d.markers = normalizeMarkers(markers)
		}
	}
}

// New builds a dataset populated with the demo seed.
func New(opts ...Option) *Dataset {
	d := &Dataset{
		accounts:  make(map[string]*account),
		emails:    make(map[string]string),
		companies: make(map[string]*domain.Company),
		markers:   normalizeMarkers(DefaultCompanyMarkers),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seed()
	return d
}

func normalizeMarkers(markers []string) []string {
	out := make([]string, 0, len(markers))
	for _, m := range markers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			out = append(out, m)
		}
	}
	return out
}

// IsCompanyEmail reports whether email carries one of the company markers.
func (d *Dataset) IsCompanyEmail(email string) bool {
	lower := strings.ToLower(email)
	for _, m := range d.markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// MockIdentity derives the demo identity for an email that has no account.
func (d *Dataset) MockIdentity(email string) domain.Identity {
	email = strings.TrimSpace(email)
	if d.IsCompanyEmail(email) {
		return domain.Identity{
			ID:          SeedCompanyID,
			Email:       email,
			DisplayName: seedCompanyName,
			Kind:        domain.KindCompany,
			CompanyID:   SeedCompanyID,
		}
	}
	return domain.Identity{
		ID:          SeedEmployeeID,
		Email:       email,
		DisplayName: seedEmployeeName,
		Kind:        domain.KindEmployee,
		CompanyID:   SeedCompanyID,
	}
}

// Authenticate checks accounts registered during this process and otherwise
// falls back to the mock identity for the email. The kind of a stored
// account follows the company markers of the login email.
func (d *Dataset) Authenticate(email, password string) (domain.Identity, error) {
	d.mu.RLock()
	acc := d.accountByEmail(email)
	d.mu.RUnlock()

	if acc == nil || len(acc.passwordHash) == 0 {
		return d.MockIdentity(email), nil
	}
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}
	return d.Classify(email, acc.identity), nil
}

// Classify sets the kind of identity from the company markers in email.
// A company identity without a company id owns itself.
func (d *Dataset) Classify(email string, identity domain.Identity) domain.Identity {
	if d.IsCompanyEmail(email) {
		identity.Kind = domain.KindCompany
		if identity.CompanyID == "" {
			identity.CompanyID = identity.ID
		}
		return identity
	}
	identity.Kind = domain.KindEmployee
	return identity
}

func (d *Dataset) accountByEmail(email string) *account {
	id, ok := d.emails[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil
	}
	return d.accounts[id]
}

// CompanyRegistration is the input of RegisterCompany.
type CompanyRegistration struct {
	Name     string
	TaxID    string
	Email    string
	Password string
	Phone    string
	Address  string
	Plan     domain.Plan
}

// RegisterCompany appends a company and its login identity.
func (d *Dataset) RegisterCompany(in CompanyRegistration) (domain.Company, domain.Identity, error) {
	hash, err := hashPassword(in.Password)
	if err != nil {
		return domain.Company{}, domain.Identity{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.accountByEmail(in.Email) != nil {
		return domain.Company{}, domain.Identity{}, domain.NewError(domain.ErrCodeInvalid, "email already registered")
	}

	id := "comp-" + uuid.NewString()
	company := domain.Company{
		ID:         id,
		Name:       in.Name,
		TaxID:      in.TaxID,
		Email:      in.Email,
		Phone:      in.Phone,
		Address:    in.Address,
		Plan:       in.Plan,
		InviteCode: newInviteCode(),
	}
	identity := domain.Identity{
		ID:          id,
		Email:       in.Email,
		DisplayName: in.Name,
		Kind:        domain.KindCompany,
		CompanyID:   id,
	}
	d.companies[id] = &company
	d.addAccount(identity, hash)
	return company, identity, nil
}

// EmployeeRegistration is the input of RegisterEmployee.
type EmployeeRegistration struct {
	Name       string
	Email      string
	Password   string
	InviteCode string
}

// RegisterEmployee appends an employee bound to the company owning the invite code.
func (d *Dataset) RegisterEmployee(in EmployeeRegistration) (domain.Identity, error) {
	company, ok := d.CompanyByInvite(in.InviteCode)
	if !ok {
		return domain.Identity{}, domain.ErrInvalidInviteCode
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return domain.Identity{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.accountByEmail(in.Email) != nil {
		return domain.Identity{}, domain.NewError(domain.ErrCodeInvalid, "email already registered")
	}

	identity := domain.Identity{
		ID:          "emp-" + uuid.NewString(),
		Email:       in.Email,
		DisplayName: in.Name,
		Kind:        domain.KindEmployee,
		CompanyID:   company.ID,
	}
	d.addAccount(identity, hash)
	return identity, nil
}

func (d *Dataset) addAccount(identity domain.Identity, hash []byte) {
	d.accounts[identity.ID] = &account{identity: identity, passwordHash: hash}
	if identity.Email != "" {
		d.emails[strings.ToLower(identity.Email)] = identity.ID
	}
}

func hashPassword(password string) ([]byte, error) {
	if password == "" {
		return nil, nil
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

func newInviteCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "ECO" + raw[:8]
}

// CompanyByInvite finds the company owning an invite code.
func (d *Dataset) CompanyByInvite(code string) (domain.Company, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, c := range d.companies {
		if c.MatchesInvite(code) {
			return *c, true
		}
	}
	return domain.Company{}, false
}

// Company returns a company by id.
func (d *Dataset) Company(id string) (domain.Company, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.companies[id]
	if !ok {
		return domain.Company{}, false
	}
	return *c, true
}

// Companies lists every company ordered by id.
func (d *Dataset) Companies() []domain.Company {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.Company, 0, len(d.companies))
	for _, c := range d.companies {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// User returns an identity by id.
func (d *Dataset) User(id string) (domain.Identity, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	acc, ok := d.accounts[id]
	if !ok {
		return domain.Identity{}, false
	}
	return acc.identity, true
}

// Users lists every identity ordered by id.
func (d *Dataset) Users() []domain.Identity {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.Identity, 0, len(d.accounts))
	for _, acc := range d.accounts {
		out = append(out, acc.identity)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RecordInput is the input of AddRecord.
type RecordInput struct {
	UserID     string
	CompanyID  string
	Date       string
	Mode       domain.TransportMode
	DistanceKm float64
}

// AddRecord appends a home-office record with savings derived now.
func (d *Dataset) AddRecord(in RecordInput) (domain.HomeOfficeRecord, error) {
	if in.UserID == "" {
		return domain.HomeOfficeRecord{}, domain.NewError(domain.ErrCodeInvalid, "userId is required")
	}
	if _, ok := domain.ParseTransportMode(string(in.Mode)); !ok {
		return domain.HomeOfficeRecord{}, domain.NewError(domain.ErrCodeInvalid, "unknown transportation")
	}

	now := d.now().UTC()
	day := now
	if in.Date != "" {
		parsed, err := time.Parse(domain.DateLayout, in.Date)
		if err != nil {
			return domain.HomeOfficeRecord{}, domain.WrapError(domain.ErrCodeInvalid, "invalid recordDate", err)
		}
		day = parsed
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	companyID := in.CompanyID
	if companyID == "" {
		if acc, ok := d.accounts[in.UserID]; ok {
			companyID = acc.identity.CompanyID
		}
	}
	rec := domain.NewHomeOfficeRecord(ulid.Make().String(), in.UserID, companyID, day, in.Mode, in.DistanceKm)
	rec.CreatedAt = now
	d.records = append(d.records, rec)
	return rec, nil
}

// Records returns a user's records, newest day first.
func (d *Dataset) Records(userID string) []domain.HomeOfficeRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.recordsLocked(userID)
}

func (d *Dataset) recordsLocked(userID string) []domain.HomeOfficeRecord {
	out := make([]domain.HomeOfficeRecord, 0)
	for _, r := range d.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date == out[j].Date {
			return out[i].ID > out[j].ID
		}
		return out[i].Date > out[j].Date
	})
	return out
}

// Benefits returns the catalog.
func (d *Dataset) Benefits() []domain.Benefit {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.Benefit, len(d.benefits))
	copy(out, d.benefits)
	return out
}

// Redeem spends credits on a benefit when the user's available balance covers it.
func (d *Dataset) Redeem(userID, benefitID string) (domain.Redemption, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var benefit *domain.Benefit
	for i := range d.benefits {
		if d.benefits[i].ID == benefitID {
			benefit = &d.benefits[i]
			break
		}
	}
	if benefit == nil {
		return domain.Redemption{}, domain.ErrBenefitNotFound
	}

	stats := domain.SummarizeRecords(d.recordsLocked(userID), d.redemptionsLocked(userID), d.now())
	if stats.AvailableCredits < benefit.CostCredits {
		return domain.Redemption{}, domain.ErrInsufficientCredits
	}

	r := domain.Redemption{
		ID:          uuid.NewString(),
		UserID:      userID,
		BenefitID:   benefit.ID,
		CostCredits: benefit.CostCredits,
		CreatedAt:   d.now().UTC(),
	}
	d.redemptions = append(d.redemptions, r)
	return r, nil
}

// Redemptions returns a user's redemptions in creation order.
func (d *Dataset) Redemptions(userID string) []domain.Redemption {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.redemptionsLocked(userID)
}

func (d *Dataset) redemptionsLocked(userID string) []domain.Redemption {
	out := make([]domain.Redemption, 0)
	for _, r := range d.redemptions {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

// EmployeeSummaries aggregates the records of every employee of a company.
func (d *Dataset) EmployeeSummaries(companyID string) []domain.EmployeeSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]domain.EmployeeSummary, 0)
	for _, acc := range d.accounts {
		id := acc.identity
		if id.Kind != domain.KindEmployee || id.CompanyID != companyID {
			continue
		}
		stats := domain.SummarizeRecords(d.recordsLocked(id.ID), nil, d.now())
		out = append(out, domain.EmployeeSummary{
			ID:           id.ID,
			Name:         id.DisplayName,
			Email:        id.Email,
			Days:         stats.TotalHomeOfficeDays,
			CO2Saved:     stats.TotalCO2Saved,
			TotalCredits: stats.TotalCredits,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalCredits > out[j].TotalCredits })
	return out
}
