package service

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strings"
	"time"

	"staffingapi/internal/model"
	"staffingapi/internal/notify"
	"staffingapi/internal/repository"
)

// SubmitClaimInput is a request to take ownership of an agency profile.
type SubmitClaimInput struct {
	UserID             string
	AgencySlug         string
	BusinessEmail      string
	PhoneNumber        string
	PositionTitle      string
	VerificationMethod string
	AdditionalNotes    *string
}

// ClaimPage is a page of claims for the admin queue.
type ClaimPage struct {
	Items []model.ClaimRequest
	Total int
}

// ClaimService defines the agency claim workflow.
type ClaimService interface {
	Submit(ctx context.Context, in SubmitClaimInput) (*model.ClaimRequest, error)

	// Status returns the caller's latest claim for the agency, or nil when there is none.
	Status(ctx context.Context, userID, agencySlug string) (*model.ClaimRequest, error)

	// List, Approve and Reject require an admin caller.
	List(ctx context.Context, adminID, status string, limit, offset int) (*ClaimPage, error)
	Approve(ctx context.Context, adminID, claimID string) (*model.ClaimRequest, error)
	Reject(ctx context.Context, adminID, claimID, reason string) (*model.ClaimRequest, error)
}

type claimService struct {
	claims   repository.ClaimRepository
	agencies repository.AgencyRepository
	profiles repository.ProfileRepository
	mailer   *Mailer
	now      func() time.Time
}

// NewClaimService constructs a ClaimService.
func NewClaimService(
	claims repository.ClaimRepository,
	agencies repository.AgencyRepository,
	profiles repository.ProfileRepository,
	mailer *Mailer,
) ClaimService {
	return &claimService{
		claims:   claims,
		agencies: agencies,
		profiles: profiles,
		mailer:   mailer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *claimService) Submit(ctx context.Context, in SubmitClaimInput) (*model.ClaimRequest, error) {
	agency, err := findAgency(ctx, s.agencies, in.AgencySlug)
	if err != nil {
		return nil, err
	}
	if agency.IsClaimed {
		return nil, &ConflictError{Message: "Agency has already been claimed"}
	}

	latest, err := s.claims.LatestForUser(ctx, agency.ID, in.UserID)
	switch {
	case err == nil && latest.IsOpen():
		return nil, openClaimConflict(latest.ID)
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return nil, dbError("find latest claim", err)
	}

	created, err := s.claims.Create(ctx, &model.ClaimRequest{
		AgencyID:            agency.ID,
		UserID:              in.UserID,
		Status:              model.ClaimPending,
		BusinessEmail:       strings.TrimSpace(in.BusinessEmail),
		PhoneNumber:         strings.TrimSpace(in.PhoneNumber),
		PositionTitle:       strings.TrimSpace(in.PositionTitle),
		VerificationMethod:  in.VerificationMethod,
		AdditionalNotes:     in.AdditionalNotes,
		EmailDomainVerified: EmailDomainMatches(in.BusinessEmail, agency.Website),
		CreatedAt:           s.now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, openClaimConflict("")
		}
		return nil, dbError("create claim", err)
	}
	created.AgencyName = agency.Name
	created.AgencySlug = agency.Slug

	notice := notify.ClaimNotice{AgencyName: agency.Name, AgencySlug: agency.Slug, Status: created.Status}
	s.mailer.Go(ctx, notify.TemplateClaimSubmitted, func(ctx context.Context, n notify.Notifier) error {
		if err := s.fillClaimant(ctx, &notice, created); err != nil {
			return err
		}
		return n.ClaimSubmitted(ctx, notice)
	})

	return created, nil
}

func (s *claimService) Status(ctx context.Context, userID, agencySlug string) (*model.ClaimRequest, error) {
	agency, err := findAgency(ctx, s.agencies, agencySlug)
	if err != nil {
		return nil, err
	}
	claim, err := s.claims.LatestForUser(ctx, agency.ID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, dbError("find latest claim", err)
	}
	claim.AgencyName = agency.Name
	claim.AgencySlug = agency.Slug
	return claim, nil
}

func (s *claimService) List(ctx context.Context, adminID, status string, limit, offset int) (*ClaimPage, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	page, err := s.claims.List(ctx, status, normalizePage(limit, offset, DefaultConversationLimit))
	if err != nil {
		return nil, dbError("list claims", err)
	}
	return &ClaimPage{Items: page.Items, Total: page.Total}, nil
}

func (s *claimService) Approve(ctx context.Context, adminID, claimID string) (*model.ClaimRequest, error) {
	return s.decide(ctx, adminID, claimID, model.ClaimApproved, "", func(at time.Time) error {
		return s.claims.Approve(ctx, claimID, adminID, at)
	})
}

func (s *claimService) Reject(ctx context.Context, adminID, claimID, reason string) (*model.ClaimRequest, error) {
	reason = strings.TrimSpace(reason)
	return s.decide(ctx, adminID, claimID, model.ClaimRejected, reason, func(at time.Time) error {
		return s.claims.Reject(ctx, claimID, adminID, reason, at)
	})
}

func (s *claimService) decide(ctx context.Context, adminID, claimID, status, reason string, apply func(time.Time) error) (*model.ClaimRequest, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	claim, err := s.findClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !claim.IsOpen() {
		return nil, decidedConflict(claim.Status)
	}

	if err := apply(s.now()); err != nil {
		if errors.Is(err, repository.ErrNotUpdated) {
			return nil, decidedConflict("")
		}
		return nil, dbError("decide claim", err)
	}

	decided, err := s.findClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}

	notice := notify.ClaimNotice{
		AgencyName: decided.AgencyName,
		AgencySlug: decided.AgencySlug,
		Status:     status,
		Reason:     reason,
	}
	s.mailer.Go(ctx, "claim_"+status, func(ctx context.Context, n notify.Notifier) error {
		if err := s.fillClaimant(ctx, &notice, decided); err != nil {
			return err
		}
		return n.ClaimDecided(ctx, notice)
	})

	return decided, nil
}

func (s *claimService) findClaim(ctx context.Context, id string) (*model.ClaimRequest, error) {
	claim, err := s.claims.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "claim"}
		}
		return nil, dbError("find claim", err)
	}
	return claim, nil
}

func (s *claimService) requireAdmin(ctx context.Context, userID string) error {
	return requireRole(ctx, s.profiles, userID, model.RoleAdmin)
}

// fillClaimant addresses the notice to the claimant's account email,
// falling back to the business email from the claim.
func (s *claimService) fillClaimant(ctx context.Context, notice *notify.ClaimNotice, c *model.ClaimRequest) error {
	notice.ClaimantEmail = c.BusinessEmail
	p, err := s.profiles.FindByID(ctx, c.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	notice.ClaimantName = p.FullName
	if p.Email != "" {
		notice.ClaimantEmail = p.Email
	}
	return nil
}

func requireRole(ctx context.Context, profiles repository.ProfileRepository, userID, role string) error {
	p, err := profiles.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrForbidden
		}
		return dbError("find profile", err)
	}
	if p.Role != role {
		return ErrForbidden
	}
	return nil
}

func openClaimConflict(claimID string) error {
	e := &ConflictError{Message: "You already have a pending claim for this agency"}
	if claimID != "" {
		e.Details = map[string]any{"claim_id": claimID}
	}
	return e
}

func decidedConflict(status string) error {
	e := &ConflictError{Message: "Claim has already been decided"}
	if status != "" {
		e.Details = map[string]any{"status": status}
	}
	return e
}

// EmailDomainMatches reports whether the email's domain is the host of the
// agency website, ignoring a leading "www.".
func EmailDomainMatches(email string, website *string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || website == nil || strings.TrimSpace(*website) == "" {
		return false
	}
	domain := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(email[at+1:])), "www.")

	raw := strings.TrimSpace(*website)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	return host != "" && domain == host
}
