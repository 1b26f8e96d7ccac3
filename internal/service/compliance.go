package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"staffingapi/internal/model"
	"staffingapi/internal/notify"
	"staffingapi/internal/repository"
	"staffingapi/internal/storage"
)

// ErrStorageUnavailable is returned for document uploads when no object store is configured.
var ErrStorageUnavailable = errors.New("document storage is not configured")

// ComplianceUpdate is one item of a dashboard compliance update.
type ComplianceUpdate struct {
	Type           string
	IsActive       bool
	ExpirationDate *time.Time
	Notes          *string
}

// DocumentUpload is a compliance document streamed from the client.
type DocumentUpload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Filename    string
}

// ReminderResult summarizes one reminder pass.
type ReminderResult struct {
	Agencies int
	Items    int
	Failed   int
}

// ComplianceService defines compliance tracking for agencies.
type ComplianceService interface {
	// ListPublic returns the active items of an agency for its public profile.
	ListPublic(ctx context.Context, agencySlug string) ([]model.ComplianceItem, error)

	// ListForOwner returns one item per compliance type for the caller's agency.
	ListForOwner(ctx context.Context, userID string) ([]model.ComplianceItem, error)

	Update(ctx context.Context, userID string, items []ComplianceUpdate) ([]model.ComplianceItem, error)

	// UploadDocument stores the document and records its key. The object is
	// removed again when the database update fails.
	UploadDocument(ctx context.Context, userID, complianceType string, up DocumentUpload) (*model.ComplianceItem, error)

	// SendReminders emails each owner one digest of expiring and expired items.
	SendReminders(ctx context.Context) (*ReminderResult, error)
}

type complianceService struct {
	compliance repository.ComplianceRepository
	agencies   repository.AgencyRepository
	store      storage.Storage
	mailer     *Mailer
	log        logrus.FieldLogger
	windowDays int
	now        func() time.Time
}

// NewComplianceService constructs a ComplianceService. store may be nil, in
// which case uploads fail with ErrStorageUnavailable and no download links are issued.
func NewComplianceService(
	compliance repository.ComplianceRepository,
	agencies repository.AgencyRepository,
	store storage.Storage,
	mailer *Mailer,
	log logrus.FieldLogger,
	windowDays int,
) ComplianceService {
	return &complianceService{
		compliance: compliance,
		agencies:   agencies,
		store:      store,
		mailer:     mailer,
		log:        log,
		windowDays: windowDays,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *complianceService) ListPublic(ctx context.Context, agencySlug string) ([]model.ComplianceItem, error) {
	agency, err := findAgency(ctx, s.agencies, agencySlug)
	if err != nil {
		return nil, err
	}
	items, err := s.compliance.ListByAgency(ctx, agency.ID, true)
	if err != nil {
		return nil, dbError("list compliance", err)
	}
	s.annotate(items)
	return items, nil
}

func (s *complianceService) ListForOwner(ctx context.Context, userID string) ([]model.ComplianceItem, error) {
	agency, err := s.ownedAgency(ctx, userID)
	if err != nil {
		return nil, err
	}
	stored, err := s.compliance.ListByAgency(ctx, agency.ID, false)
	if err != nil {
		return nil, dbError("list compliance", err)
	}

	byType := make(map[string]model.ComplianceItem, len(stored))
	for _, it := range stored {
		byType[it.Type] = it
	}
	out := make([]model.ComplianceItem, 0, len(model.ComplianceTypes()))
	for _, t := range model.ComplianceTypes() {
		it, ok := byType[t]
		if !ok {
			it = model.ComplianceItem{AgencyID: agency.ID, Type: t}
		}
		out = append(out, it)
	}

	s.annotate(out)
	s.presign(ctx, out)
	return out, nil
}

func (s *complianceService) Update(ctx context.Context, userID string, updates []ComplianceUpdate) ([]model.ComplianceItem, error) {
	if len(updates) == 0 {
		return nil, &ValidationError{Field: "items", Message: "items must contain at least 1 item"}
	}
	seen := make(map[string]bool, len(updates))
	items := make([]model.ComplianceItem, 0, len(updates))
	for _, u := range updates {
		if !model.IsComplianceType(u.Type) {
			return nil, &ValidationError{Field: "compliance_type", Message: fmt.Sprintf("unknown compliance type %q", u.Type)}
		}
		if seen[u.Type] {
			return nil, &ValidationError{Field: "compliance_type", Message: fmt.Sprintf("duplicate compliance type %q", u.Type)}
		}
		seen[u.Type] = true
		items = append(items, model.ComplianceItem{
			Type:           u.Type,
			IsActive:       u.IsActive,
			ExpirationDate: u.ExpirationDate,
			Notes:          u.Notes,
		})
	}

	agency, err := s.ownedAgency(ctx, userID)
	if err != nil {
		return nil, err
	}
	stored, err := s.compliance.Upsert(ctx, agency.ID, items)
	if err != nil {
		return nil, dbError("update compliance", err)
	}
	s.annotate(stored)
	s.presign(ctx, stored)
	return stored, nil
}

func (s *complianceService) UploadDocument(ctx context.Context, userID, complianceType string, up DocumentUpload) (*model.ComplianceItem, error) {
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}
	if up.Reader == nil {
		return nil, &ValidationError{Field: "file", Message: "file is required"}
	}
	if !model.IsComplianceType(complianceType) {
		return nil, &ValidationError{Field: "type", Message: fmt.Sprintf("unknown compliance type %q", complianceType)}
	}
	ext, ok := storage.DocumentExtension(up.ContentType)
	if !ok {
		return nil, &ValidationError{Field: "file", Message: "file must be a PDF, PNG or JPEG document"}
	}
	if up.Size > storage.MaxDocumentSize {
		return nil, &ValidationError{Field: "file", Message: "file must be at most 10 MiB"}
	}

	agency, err := s.ownedAgency(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := storage.ComplianceKey(agency.ID, complianceType, uuid.NewString(), ext)
	if _, err := s.store.Put(ctx, key, up.Reader, storage.PutObjectOptions{
		Size:        up.Size,
		ContentType: up.ContentType,
		Metadata:    map[string]string{"original-filename": up.Filename},
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	item, err := s.compliance.SetDocument(ctx, agency.ID, complianceType, key)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, dbError("record document", fmt.Errorf("%v; rollback delete failed: %v", err, delErr))
		}
		return nil, dbError("record document", err)
	}

	item.Status = complianceStatus(item.ExpirationDate, s.now(), s.windowDays)
	item.DocumentKey = &key
	// The document is stored and recorded; a missing link is not a failure.
	items := []model.ComplianceItem{*item}
	s.presign(ctx, items)
	return &items[0], nil
}

func (s *complianceService) SendReminders(ctx context.Context) (*ReminderResult, error) {
	now := s.now()
	cutoff := now.AddDate(0, 0, s.windowDays)
	rows, err := s.compliance.ListExpiring(ctx, cutoff)
	if err != nil {
		return nil, dbError("list expiring compliance", err)
	}

	res := &ReminderResult{Items: len(rows)}
	for _, group := range groupReminders(rows) {
		res.Agencies++
		items := make([]model.ComplianceItem, len(group))
		for i, r := range group {
			items[i] = r.Item
		}
		s.annotate(items)
		first := group[0]
		err := s.mailer.Send(ctx, func(ctx context.Context, n notify.Notifier) error {
			return n.ComplianceDigest(ctx, notify.ComplianceDigest{
				OwnerEmail: first.OwnerEmail,
				OwnerName:  first.OwnerName,
				AgencyName: first.AgencyName,
				Items:      items,
				Now:        now,
			})
		})
		if err != nil {
			res.Failed++
			s.log.WithFields(logrus.Fields{
				"event":     "compliance_reminder_failed",
				"agency_id": first.AgencyID,
				"error":     err.Error(),
			}).Warn("compliance reminder not delivered")
		}
	}

	s.log.WithFields(logrus.Fields{
		"event":    "compliance_reminders_sent",
		"agencies": res.Agencies,
		"items":    res.Items,
		"failed":   res.Failed,
	}).Info("compliance reminder pass finished")
	return res, nil
}

// ownedAgency resolves the agency claimed by the user; callers without one are forbidden.
func (s *complianceService) ownedAgency(ctx context.Context, userID string) (*model.Agency, error) {
	agency, err := s.agencies.FindByOwner(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrForbidden
		}
		return nil, dbError("find owned agency", err)
	}
	return agency, nil
}

func (s *complianceService) annotate(items []model.ComplianceItem) {
	now := s.now()
	for i := range items {
		items[i].Status = complianceStatus(items[i].ExpirationDate, now, s.windowDays)
	}
}

// presign attaches download links; a failed link is logged and left empty.
func (s *complianceService) presign(ctx context.Context, items []model.ComplianceItem) {
	if s.store == nil {
		return
	}
	for i := range items {
		if items[i].DocumentKey == nil {
			continue
		}
		url, err := s.store.PresignGet(ctx, *items[i].DocumentKey, storage.PresignExpiry)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"event": "presign_failed",
				"key":   *items[i].DocumentKey,
				"error": err.Error(),
			}).Warn("document link unavailable")
			continue
		}
		items[i].DocumentURL = url
	}
}

// groupReminders splits rows into consecutive runs of the same agency.
// ListExpiring orders rows by agency.
func groupReminders(rows []model.ComplianceReminder) [][]model.ComplianceReminder {
	var out [][]model.ComplianceReminder
	for i, r := range rows {
		if i == 0 || rows[i-1].AgencyID != r.AgencyID {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], r)
	}
	return out
}

func complianceStatus(exp *time.Time, now time.Time, windowDays int) string {
	return model.ComplianceStatus(exp, now, windowDays)
}
