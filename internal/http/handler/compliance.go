package handler

import (
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"

	"staffingapi/internal/http/middleware"
	"staffingapi/internal/service"
)

const dateLayout = "2006-01-02"

type complianceItemRequest struct {
	ComplianceType string  `json:"compliance_type" validate:"required,oneof=osha_certified drug_testing background_checks workers_comp general_liability bonding"`
	IsActive       bool    `json:"is_active"`
	ExpirationDate *string `json:"expiration_date" validate:"omitempty,datetime=2006-01-02"`
	Notes          *string `json:"notes" validate:"omitempty,max=1000"`
}

type updateComplianceRequest struct {
	Items []complianceItemRequest `json:"items" validate:"required,min=1,max=6,dive"`
}

func (r *updateComplianceRequest) normalize() {
	for i := range r.Items {
		if d := r.Items[i].ExpirationDate; d != nil && strings.TrimSpace(*d) == "" {
			r.Items[i].ExpirationDate = nil
		}
	}
}

func (r *updateComplianceRequest) updates() []service.ComplianceUpdate {
	out := make([]service.ComplianceUpdate, len(r.Items))
	for i, it := range r.Items {
		out[i] = service.ComplianceUpdate{
			Type:     it.ComplianceType,
			IsActive: it.IsActive,
			Notes:    it.Notes,
		}
		if it.ExpirationDate != nil {
			// Format checked by validation.
			d, _ := time.Parse(dateLayout, strings.TrimSpace(*it.ExpirationDate))
			out[i].ExpirationDate = &d
		}
	}
	return out
}

// PublicCompliance godoc
// @Summary List an agency's active compliance items
// @Tags compliance
// @Produce json
// @Param slug path string true "agency slug"
// @Success 200 {object} dataResponse
// @Failure 404 {object} errorPayload
// @Router /api/agencies/{slug}/compliance [get]
func PublicCompliance(svc service.ComplianceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListPublic(c.UserContext(), c.Params("slug"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeData(c, fiber.StatusOK, items)
	}
}

// OwnerCompliance godoc
// @Summary List every compliance type for the caller's agency
// @Tags compliance
// @Produce json
// @Success 200 {object} dataResponse
// @Failure 403 {object} errorPayload
// @Security BearerAuth
// @Router /api/dashboard/compliance [get]
func OwnerCompliance(svc service.ComplianceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListForOwner(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeData(c, fiber.StatusOK, items)
	}
}

// UpdateCompliance godoc
// @Summary Create or update compliance items of the caller's agency
// @Tags compliance
// @Accept json
// @Produce json
// @Param body body updateComplianceRequest true "items keyed by compliance_type"
// @Success 200 {object} dataResponse
// @Failure 400 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Security BearerAuth
// @Router /api/dashboard/compliance [put]
func UpdateCompliance(svc service.ComplianceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req updateComplianceRequest
		if ok, err := parseBody(c, &req); !ok {
			return err
		}
		items, err := svc.Update(c.UserContext(), middleware.UserID(c), req.updates())
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeData(c, fiber.StatusOK, items)
	}
}

// UploadComplianceDocument godoc
// @Summary Upload the document backing a compliance item
// @Tags compliance
// @Accept multipart/form-data
// @Produce json
// @Param type path string true "compliance type"
// @Param file formData file true "PDF, PNG or JPEG, at most 10 MiB"
// @Success 201 {object} dataResponse
// @Failure 400 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Security BearerAuth
// @Router /api/dashboard/compliance/{type}/document [post]
func UploadComplianceDocument(svc service.ComplianceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeValidation(c, fieldErrors{"file": "file is required"})
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, CodeBadRequest, "cannot open uploaded file", nil)
		}
		defer f.Close()

		// Trust the bytes, not the client's Content-Type.
		mt, err := mimetype.DetectReader(f)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, CodeBadRequest, "cannot read uploaded file", nil)
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return writeServiceError(c, err)
		}

		item, err := svc.UploadDocument(c.UserContext(), middleware.UserID(c), c.Params("type"), service.DocumentUpload{
			Reader:      f,
			Size:        fh.Size,
			ContentType: baseMIME(mt.String()),
			Filename:    fh.Filename,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeData(c, fiber.StatusCreated, item)
	}
}

// baseMIME drops parameters such as "; charset=utf-8".
func baseMIME(s string) string {
	base, _, _ := strings.Cut(s, ";")
	return strings.TrimSpace(base)
}
