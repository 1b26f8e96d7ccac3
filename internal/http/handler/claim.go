package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"staffingapi/internal/http/middleware"
	"staffingapi/internal/model"
	"staffingapi/internal/service"
)

type submitClaimRequest struct {
	BusinessEmail      string  `json:"business_email" validate:"required,email,max=254"`
	PhoneNumber        string  `json:"phone_number" validate:"required,min=7,max=30"`
	PositionTitle      string  `json:"position_title" validate:"required,min=2,max=100"`
	VerificationMethod string  `json:"verification_method" validate:"required,oneof=email phone manual"`
	AdditionalNotes    *string `json:"additional_notes" validate:"omitempty,max=1000"`
}

func (r *submitClaimRequest) normalize() {
	r.BusinessEmail = strings.TrimSpace(r.BusinessEmail)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.PositionTitle = strings.TrimSpace(r.PositionTitle)
	if r.AdditionalNotes != nil {
		notes := strings.TrimSpace(*r.AdditionalNotes)
		r.AdditionalNotes = &notes
		if notes == "" {
			r.AdditionalNotes = nil
		}
	}
}

type rejectClaimRequest struct {
	Reason string `json:"reason" validate:"required,min=10,max=500"`
}

func (r *rejectClaimRequest) normalize() {
	r.Reason = strings.TrimSpace(r.Reason)
}

type listClaimsQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=pending under_review approved rejected"`
}

// SubmitClaim godoc
// @Summary Claim ownership of an agency profile
// @Tags claims
// @Accept json
// @Produce json
// @Param slug path string true "agency slug"
// @Param body body submitClaimRequest true "claimant details"
// @Success 201 {object} dataResponse
// @Failure 404 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Security BearerAuth
// @Router /api/agencies/{slug}/claim [post]
func SubmitClaim(svc service.ClaimService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req submitClaimRequest
		if ok, err := parseBody(c, &req); !ok {
			return err
		}

		claim, err := svc.Submit(c.UserContext(), service.SubmitClaimInput{
			UserID:             middleware.UserID(c),
			AgencySlug:         c.Params("slug"),
			BusinessEmail:      req.BusinessEmail,
			PhoneNumber:        req.PhoneNumber,
			PositionTitle:      req.PositionTitle,
			VerificationMethod: req.VerificationMethod,
			AdditionalNotes:    req.AdditionalNotes,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeData(c, fiber.StatusCreated, claim)
	}
}

// ClaimStatus godoc
// @Summary Get the caller's latest claim for an agency
// @Tags claims
// @Produce json
// @Param slug path string true "agency slug"
// @Success 200 {object} dataResponse "data is null when the caller never claimed the agency"
// @Failure 404 {object} errorPayload
// @Security BearerAuth
// @Router /api/agencies/{slug}/claim-status [get]
func ClaimStatus(svc service.ClaimService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claim, err := svc.Status(c.UserContext(), middleware.UserID(c), c.Params("slug"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeData(c, fiber.StatusOK, claim)
	}
}

// ListClaims godoc
// @Summary List claims for review
// @Tags admin
// @Produce json
// @Param status query string false "pending, under_review, approved or rejected" default(pending)
// @Param limit query int false "page size (1-100)" default(20)
// @Param offset query int false "page offset" default(0)
// @Success 200 {object} listResponse
// @Failure 403 {object} errorPayload
// @Security BearerAuth
// @Router /api/admin/claims [get]
func ListClaims(svc service.ClaimService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		errs := fieldErrors{}
		page := parsePage(c, defaultPageLimit, errs)
		q := listClaimsQuery{Status: c.Query("status", model.ClaimPending)}
		for k, v := range validateStruct(q) {
			errs[k] = v
		}
		if len(errs) > 0 {
			return writeValidation(c, errs)
		}

		res, err := svc.List(c.UserContext(), middleware.UserID(c), q.Status, page.Limit, page.Offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeList(c, res.Items, newPagination(res.Total, page.Limit, page.Offset))
	}
}

// ApproveClaim godoc
// @Summary Approve a claim and hand the agency to the claimant
// @Tags admin
// @Produce json
// @Param id path string true "claim id"
// @Success 200 {object} dataResponse
// @Failure 403 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Security BearerAuth
// @Router /api/admin/claims/{id}/approve [post]
func ApproveClaim(svc service.ClaimService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathUUID(c)
		if !ok {
			return invalidID(c)
		}
		claim, err := svc.Approve(c.UserContext(), middleware.UserID(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeData(c, fiber.StatusOK, claim)
	}
}

// RejectClaim godoc
// @Summary Reject a claim
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "claim id"
// @Param body body rejectClaimRequest true "reason shown to the claimant"
// @Success 200 {object} dataResponse
// @Failure 403 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Security BearerAuth
// @Router /api/admin/claims/{id}/reject [post]
func RejectClaim(svc service.ClaimService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathUUID(c)
		if !ok {
			return invalidID(c)
		}
		var req rejectClaimRequest
		if ok, err := parseBody(c, &req); !ok {
			return err
		}
		claim, err := svc.Reject(c.UserContext(), middleware.UserID(c), id, req.Reason)
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeData(c, fiber.StatusOK, claim)
	}
}
