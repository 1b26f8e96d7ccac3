package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"staffingapi/internal/model"
)

// Notifier sends the marketplace's transactional emails.
type Notifier interface {
	NewMessage(ctx context.Context, n NewMessage) error
	ClaimSubmitted(ctx context.Context, n ClaimNotice) error
	ClaimDecided(ctx context.Context, n ClaimNotice) error
	ComplianceDigest(ctx context.Context, n ComplianceDigest) error
}

// NewMessage tells a participant about a message they have not read yet.
type NewMessage struct {
	RecipientEmail string
	RecipientName  string
	SenderName     string
	Content        string
	ConversationID string
}

// ClaimNotice describes a claim event for the claimant.
type ClaimNotice struct {
	ClaimantEmail string
	ClaimantName  string
	AgencyName    string
	AgencySlug    string
	Status        string
	Reason        string
}

// ComplianceDigest lists an agency's expiring and expired items for its owner.
type ComplianceDigest struct {
	OwnerEmail string
	OwnerName  string
	AgencyName string
	Items      []model.ComplianceItem
	Now        time.Time
}

type digestLine struct {
	Label          string
	ExpirationDate string
	Expired        bool
}

// EmailNotifier renders templates and hands them to a Sender.
type EmailNotifier struct {
	sender    Sender
	appURL    string
	log       logrus.FieldLogger
	templates templateSet
	sent      *prometheus.CounterVec
}

// NewEmailNotifier creates a notifier. The emails_sent_total counter is
// registered on reg when reg is not nil.
func NewEmailNotifier(sender Sender, appURL string, log logrus.FieldLogger, reg prometheus.Registerer) *EmailNotifier {
	sent := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Transactional emails by template and delivery status.",
		},
		[]string{"template", "status"},
	)
	if reg != nil {
		reg.MustRegister(sent)
	}
	return &EmailNotifier{
		sender:    sender,
		appURL:    appURL,
		log:       log,
		templates: parseTemplates(),
		sent:      sent,
	}
}

var _ Notifier = (*EmailNotifier)(nil)

func (n *EmailNotifier) NewMessage(ctx context.Context, m NewMessage) error {
	data := map[string]any{
		"RecipientName": greetingName(m.RecipientName),
		"SenderName":    nameOr(m.SenderName, "A marketplace member"),
		"Preview":       model.TruncatePreview(m.Content),
		"Link":          n.link("/messages/" + url.PathEscape(m.ConversationID)),
	}
	subject := fmt.Sprintf("New message from %s", nameOr(m.SenderName, "a marketplace member"))
	return n.deliver(ctx, TemplateNewMessage, m.RecipientEmail, subject, data)
}

func (n *EmailNotifier) ClaimSubmitted(ctx context.Context, c ClaimNotice) error {
	data := map[string]any{
		"ClaimantName": greetingName(c.ClaimantName),
		"AgencyName":   c.AgencyName,
		"Link":         n.link("/agencies/" + url.PathEscape(c.AgencySlug) + "/claim"),
	}
	subject := fmt.Sprintf("We received your claim for %s", c.AgencyName)
	return n.deliver(ctx, TemplateClaimSubmitted, c.ClaimantEmail, subject, data)
}

// ClaimDecided sends the approval or rejection email depending on c.Status.
func (n *EmailNotifier) ClaimDecided(ctx context.Context, c ClaimNotice) error {
	data := map[string]any{
		"ClaimantName": greetingName(c.ClaimantName),
		"AgencyName":   c.AgencyName,
		"Reason":       c.Reason,
	}
	switch c.Status {
	case model.ClaimApproved:
		data["Link"] = n.link("/dashboard")
		return n.deliver(ctx, TemplateClaimApproved, c.ClaimantEmail,
			fmt.Sprintf("Your claim for %s was approved", c.AgencyName), data)
	case model.ClaimRejected:
		data["Link"] = n.link("/agencies/" + url.PathEscape(c.AgencySlug))
		return n.deliver(ctx, TemplateClaimRejected, c.ClaimantEmail,
			fmt.Sprintf("Update on your claim for %s", c.AgencyName), data)
	default:
		return fmt.Errorf("claim status %q has no decision email", c.Status)
	}
}

func (n *EmailNotifier) ComplianceDigest(ctx context.Context, d ComplianceDigest) error {
	lines := make([]digestLine, 0, len(d.Items))
	for _, it := range d.Items {
		if it.ExpirationDate == nil {
			continue
		}
		lines = append(lines, digestLine{
			Label:          model.ComplianceLabel(it.Type),
			ExpirationDate: it.ExpirationDate.Format("January 2, 2006"),
			Expired:        model.ComplianceStatus(it.ExpirationDate, d.Now, 0) == model.ComplianceExpired,
		})
	}
	if len(lines) == 0 {
		return nil
	}
	data := map[string]any{
		"OwnerName":  greetingName(d.OwnerName),
		"AgencyName": d.AgencyName,
		"Items":      lines,
		"Link":       n.link("/dashboard/compliance"),
	}
	subject := fmt.Sprintf("Compliance records for %s need attention", d.AgencyName)
	return n.deliver(ctx, TemplateComplianceDigest, d.OwnerEmail, subject, data)
}

func (n *EmailNotifier) deliver(ctx context.Context, name, to, subject string, data any) error {
	if to == "" {
		n.sent.WithLabelValues(name, "skipped").Inc()
		return fmt.Errorf("%s: recipient has no email address", name)
	}

	var html, text bytes.Buffer
	if err := n.templates.html[name].ExecuteTemplate(&html, "layout", data); err != nil {
		n.sent.WithLabelValues(name, "error").Inc()
		return fmt.Errorf("render %s html: %w", name, err)
	}
	if err := n.templates.text[name].Execute(&text, data); err != nil {
		n.sent.WithLabelValues(name, "error").Inc()
		return fmt.Errorf("render %s text: %w", name, err)
	}

	id, err := n.sender.Send(ctx, Email{
		To:      []string{to},
		Subject: subject,
		HTML:    html.String(),
		Text:    text.String(),
	})
	if err != nil {
		n.sent.WithLabelValues(name, "error").Inc()
		return err
	}

	n.sent.WithLabelValues(name, "sent").Inc()
	n.log.WithFields(logrus.Fields{
		"event":       "email_sent",
		"template":    name,
		"provider_id": id,
	}).Debug("email sent")
	return nil
}

func (n *EmailNotifier) link(path string) string {
	return n.appURL + path
}

func greetingName(name string) string {
	return nameOr(name, "there")
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
