package model

import "time"

// Agency is a staffing agency listed in the directory.
type Agency struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Description   string           `json:"description"`
	LogoURL       *string          `json:"logo_url"`
	Website       *string          `json:"website"`
	Phone         *string          `json:"phone"`
	Email         *string          `json:"email"`
	Headquarters  *string          `json:"headquarters"`
	FoundedYear   *int             `json:"founded_year"`
	EmployeeCount *string          `json:"employee_count"`
	IsClaimed     bool             `json:"is_claimed"`
	ClaimedBy     *string          `json:"-"`
	IsActive      bool             `json:"is_active"`
	Verified      bool             `json:"verified"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Trades        []Trade          `json:"trades"`
	Regions       []Region         `json:"regions"`
	Compliance    []ComplianceItem `json:"compliance,omitempty"`
}

// Trade is a construction trade (e.g. electrician, welder).
type Trade struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Region is a service area an agency covers.
type Region struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	StateCode string `json:"state_code"`
}
