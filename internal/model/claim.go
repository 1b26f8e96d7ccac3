package model

import "time"

// Claim statuses.
const (
	ClaimPending     = "pending"
	ClaimUnderReview = "under_review"
	ClaimApproved    = "approved"
	ClaimRejected    = "rejected"
)

// Claim verification methods.
const (
	VerifyByEmail  = "email"
	VerifyByPhone  = "phone"
	VerifyManually = "manual"
)

// ClaimRequest is a user's request to take ownership of an agency profile.
type ClaimRequest struct {
	ID                  string     `json:"id"`
	AgencyID            string     `json:"agency_id"`
	UserID              string     `json:"user_id"`
	Status              string     `json:"status"`
	BusinessEmail       string     `json:"business_email"`
	PhoneNumber         string     `json:"phone_number"`
	PositionTitle       string     `json:"position_title"`
	VerificationMethod  string     `json:"verification_method"`
	AdditionalNotes     *string    `json:"additional_notes"`
	EmailDomainVerified bool       `json:"email_domain_verified"`
	RejectionReason     *string    `json:"rejection_reason"`
	ReviewedBy          *string    `json:"reviewed_by"`
	ReviewedAt          *time.Time `json:"reviewed_at"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	AgencyName          string     `json:"agency_name,omitempty"`
	AgencySlug          string     `json:"agency_slug,omitempty"`
}

// IsOpen reports whether the claim still awaits a decision.
func (c ClaimRequest) IsOpen() bool {
	return c.Status == ClaimPending || c.Status == ClaimUnderReview
}
