package domain

import "time"

// EmployeeStats summarises an employee's records.
type EmployeeStats struct {
	TotalHomeOfficeDays int     `json:"totalHomeOfficeDays"`
	TotalCO2Saved       float64 `json:"totalCO2Saved"`
	// TotalCredits is always the sum of CreditsEarned over the records.
	TotalCredits     int `json:"totalCredits"`
	AvailableCredits int `json:"availableCredits"`
	CurrentWeekDays  int `json:"currentWeekDays"`
}

// SummarizeRecords recomputes stats from history. Redemptions only reduce
// AvailableCredits.
func SummarizeRecords(records []HomeOfficeRecord, redemptions []Redemption, now time.Time) EmployeeStats {
	var stats EmployeeStats
	weekStart := startOfWeek(now)
	for _, r := range records {
		stats.TotalHomeOfficeDays++
		stats.TotalCO2Saved += r.CO2SavedKg
		stats.TotalCredits += r.CreditsEarned
		if day, err := time.Parse(DateLayout, r.Date); err == nil && !day.Before(weekStart) {
			stats.CurrentWeekDays++
		}
	}
	stats.TotalCO2Saved = round2(stats.TotalCO2Saved)

	spent := 0
	for _, r := range redemptions {
		spent += r.CostCredits
	}
	stats.AvailableCredits = stats.TotalCredits - spent
	return stats
}

// startOfWeek returns Monday 00:00 UTC of the week containing t.
func startOfWeek(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

// EmployeeSummary is one row of a company dashboard.
type EmployeeSummary struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Days         int     `json:"homeOfficeDays"`
	CO2Saved     float64 `json:"co2Saved"`
	TotalCredits int     `json:"totalCredits"`
}

// CompanyDashboard aggregates the employees of a company.
type CompanyDashboard struct {
	CompanyID       string            `json:"companyId"`
	TotalEmployees  int               `json:"totalEmployees"`
	ActiveEmployees int               `json:"activeEmployees"`
	TotalCO2Saved   float64           `json:"totalCO2Saved"`
	TotalCredits    int               `json:"totalCredits"`
	Employees       []EmployeeSummary `json:"employees"`
}

// BuildDashboard totals the employee rows; an employee with at least one day is active.
func BuildDashboard(companyID string, employees []EmployeeSummary) CompanyDashboard {
	d := CompanyDashboard{CompanyID: companyID, Employees: employees}
	for _, e := range employees {
		d.TotalEmployees++
		if e.Days > 0 {
			d.ActiveEmployees++
		}
		d.TotalCO2Saved += e.CO2Saved
		d.TotalCredits += e.TotalCredits
	}
	d.TotalCO2Saved = round2(d.TotalCO2Saved)
	if d.Employees == nil {
		d.Employees = []EmployeeSummary{}
	}
	return d
}
