package model

import "time"

// Compliance types tracked per agency.
const (
	ComplianceOSHA             = "osha_certified"
	ComplianceDrugTesting      = "drug_testing"
	ComplianceBackgroundChecks = "background_checks"
	ComplianceWorkersComp      = "workers_comp"
	ComplianceGeneralLiability = "general_liability"
	ComplianceBonding          = "bonding"
)

// Compliance statuses derived from the expiration date.
const (
	ComplianceValid        = "valid"
	ComplianceExpiringSoon = "expiring_soon"
	ComplianceExpired      = "expired"
	ComplianceNoExpiration = "no_expiration"
)

// ComplianceStatus classifies an expiration date by calendar day in UTC:
// past days are expired, days up to windowDays from today are expiring soon.
func ComplianceStatus(exp *time.Time, now time.Time, windowDays int) string {
	if exp == nil {
		return ComplianceNoExpiration
	}
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	ey, em, ed := exp.UTC().Date()
	day := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)

	switch {
	case day.Before(today):
		return ComplianceExpired
	case !day.After(today.AddDate(0, 0, windowDays)):
		return ComplianceExpiringSoon
	default:
		return ComplianceValid
	}
}

var complianceLabels = map[string]string{
	ComplianceOSHA:             "OSHA Certified",
	ComplianceDrugTesting:      "Drug Testing",
	ComplianceBackgroundChecks: "Background Checks",
	ComplianceWorkersComp:      "Workers' Compensation",
	ComplianceGeneralLiability: "General Liability Insurance",
	ComplianceBonding:          "Bonding",
}

// ComplianceTypes returns every known compliance type in display order.
func ComplianceTypes() []string {
	return []string{
		ComplianceOSHA,
		ComplianceDrugTesting,
		ComplianceBackgroundChecks,
		ComplianceWorkersComp,
		ComplianceGeneralLiability,
		ComplianceBonding,
	}
}

// ComplianceLabel returns the human readable name of a compliance type.
func ComplianceLabel(t string) string {
	if l, ok := complianceLabels[t]; ok {
		return l
	}
	return t
}

// IsComplianceType reports whether t is a known compliance type.
func IsComplianceType(t string) bool {
	_, ok := complianceLabels[t]
	return ok
}

// ComplianceItem is one compliance record of an agency.
// DocumentKey is the object storage key; DocumentURL is a short-lived download link.
type ComplianceItem struct {
	ID             string     `json:"id"`
	AgencyID       string     `json:"agency_id"`
	Type           string     `json:"compliance_type"`
	IsActive       bool       `json:"is_active"`
	DocumentKey    *string    `json:"-"`
	DocumentURL    string     `json:"document_url,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date"`
	Verified       bool       `json:"verified"`
	Notes          *string    `json:"notes"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Status         string     `json:"status,omitempty"`
}

// ComplianceReminder is an expiring item joined with its agency and owner.
type ComplianceReminder struct {
	AgencyID   string
	AgencyName string
	OwnerEmail string
	OwnerName  string
	Item       ComplianceItem
}
