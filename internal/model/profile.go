package model

import "time"

// Profile roles.
const (
	RoleJobSeeker   = "job_seeker"
	RoleContractor  = "contractor"
	RoleAgencyOwner = "agency_owner"
	RoleAdmin       = "admin"
)

// Profile is the application-side record of a Supabase auth user.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName falls back to the email address when no name is set.
func (p Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}
