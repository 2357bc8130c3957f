package transport

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CompanyRegistrationRequest struct {
	Name     string `json:"companyName"`
	TaxID    string `json:"cnpj"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Plan     string `json:"plan"`
}

type EmployeeRegistrationRequest struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	InviteCode     string  `json:"inviteCode"`
	Transportation string  `json:"transportation"`
	Distance       float64 `json:"distance"`
}

type HomeOfficeRequest struct {
	Transportation string  `json:"transportation"`
	Distance       float64 `json:"distance"`
	// Date is YYYY-MM-DD; empty means today.
	Date string `json:"recordDate"`
}

type RedeemRequest struct {
	BenefitID string `json:"benefitId"`
}
