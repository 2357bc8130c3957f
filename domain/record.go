package domain

import (
	"math"
	"strings"
	"time"
)

// TransportMode is the commute a remote-work day replaced.
type TransportMode string

const (
	TransportCar        TransportMode = "CAR"
	TransportMotorcycle TransportMode = "MOTORCYCLE"
	TransportBus        TransportMode = "BUS"
	TransportSubway     TransportMode = "SUBWAY"
	TransportBicycle    TransportMode = "BICYCLE"
	TransportWalking    TransportMode = "WALKING"
)

const (
	// BaseDailyCredits is granted for every registered remote-work day.
	BaseDailyCredits = 5
	// CreditsPerKgCO2 converts avoided emissions into bonus credits.
	CreditsPerKgCO2 = 1.5
	// MaxCommuteKm bounds the one-way distance accepted for a record.
	MaxCommuteKm = 500.0
)

// emissionFactors holds kg of CO2 emitted per km travelled.
var emissionFactors = map[TransportMode]float64{
	TransportCar:        0.21,
	TransportMotorcycle: 0.11,
	TransportBus:        0.08,
	TransportSubway:     0.05,
	TransportBicycle:    0,
	TransportWalking:    0,
}

var transportAliases = map[string]TransportMode{
	"CARRO":     TransportCar,
	"MOTO":      TransportMotorcycle,
	"ONIBUS":    TransportBus,
	"METRO":     TransportSubway,
	"BICICLETA": TransportBicycle,
	"A_PE":      TransportWalking,
	"PE":        TransportWalking,
}

// ParseTransportMode accepts canonical names and the legacy aliases.
func ParseTransportMode(raw string) (TransportMode, bool) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	mode := TransportMode(key)
	if _, ok := emissionFactors[mode]; ok {
		return mode, true
	}
	if alias, ok := transportAliases[key]; ok {
		return alias, true
	}
	return "", false
}

// EmissionFactor returns kg CO2 per km for the mode; unknown modes emit nothing.
func (m TransportMode) EmissionFactor() float64 {
	return emissionFactors[m]
}

// Savings is the derived outcome of one remote-work day.
type Savings struct {
	CO2SavedKg    float64
	CreditsEarned int
}

// ComputeSavings derives avoided emissions (round trip) and earned credits.
// The result depends only on its inputs.
func ComputeSavings(mode TransportMode, distanceKm float64) Savings {
	if distanceKm < 0 || math.IsNaN(distanceKm) {
		distanceKm = 0
	}
	co2 := round2(2 * distanceKm * mode.EmissionFactor())
	return Savings{
		CO2SavedKg:    co2,
		CreditsEarned: BaseDailyCredits + int(math.Round(co2*CreditsPerKgCO2)),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// HomeOfficeRecord is an append-only entry for one remote-work day.
type HomeOfficeRecord struct {
	ID            string        `json:"id" validate:"required"`
	UserID        string        `json:"userId" validate:"required"`
	CompanyID     string        `json:"companyId"`
	Date          string        `json:"recordDate" validate:"required"`
	TransportMode TransportMode `json:"transportation" validate:"required"`
	DistanceKm    float64       `json:"distance" validate:"gte=0"`
	CO2SavedKg    float64       `json:"co2Saved" validate:"gte=0"`
	CreditsEarned int           `json:"creditsEarned" validate:"gte=0"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// DateLayout is the calendar format of HomeOfficeRecord.Date.
const DateLayout = "2006-01-02"

// NewHomeOfficeRecord builds a record with its savings derived at creation time.
func NewHomeOfficeRecord(id, userID, companyID string, day time.Time, mode TransportMode, distanceKm float64) HomeOfficeRecord {
	savings := ComputeSavings(mode, distanceKm)
	return HomeOfficeRecord{
		ID:            id,
		UserID:        userID,
		CompanyID:     companyID,
		Date:          day.Format(DateLayout),
		TransportMode: mode,
		DistanceKm:    distanceKm,
		CO2SavedKg:    savings.CO2SavedKg,
		CreditsEarned: savings.CreditsEarned,
		CreatedAt:     time.Now().UTC(),
	}
}
