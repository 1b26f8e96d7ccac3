// Package app assembles repositories, services and their collaborators
// from configuration. Both the API server and the ops CLI build on it.
package app

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"staffingapi/internal/config"
	"staffingapi/internal/notify"
	"staffingapi/internal/repository/postgres"
	"staffingapi/internal/service"
	"staffingapi/internal/storage"
)

// Container holds the wired services and the resources behind them.
type Container struct {
	DB       *sql.DB
	Storage  storage.Storage
	Mailer   *service.Mailer
	Services service.Services
}

// OpenStorage connects to MinIO when an endpoint is configured. Without one,
// or when the connection fails, document uploads are disabled and nil is returned.
func OpenStorage(cfg config.MinIOConfig, log logrus.FieldLogger) storage.Storage {
	if cfg.Endpoint == "" {
		log.WithField("event", "storage_disabled").Warn("MINIO_ENDPOINT not set, compliance uploads disabled")
		return nil
	}
	store, err := storage.NewMinIO(cfg)
	if err != nil {
		log.WithFields(logrus.Fields{"event": "storage_init_failed", "error": err.Error()}).Error("object storage unavailable, compliance uploads disabled")
		return nil
	}
	log.WithFields(logrus.Fields{"event": "storage_ready", "bucket": cfg.Bucket}).Info("object storage ready")
	return store
}

// NewNotifier sends through Resend when an API key is configured and only logs otherwise.
func NewNotifier(cfg config.EmailConfig, log logrus.FieldLogger, reg prometheus.Registerer) *notify.EmailNotifier {
	var sender notify.Sender
	if cfg.ResendAPIKey != "" {
		sender = notify.NewResendSender(cfg.ResendAPIKey, cfg.From)
	} else {
		log.WithField("event", "email_disabled").Warn("RESEND_API_KEY not set, emails are logged only")
		sender = notify.NewLogSender(log)
	}
	return notify.NewEmailNotifier(sender, cfg.AppURL, log, reg)
}

// New wires repositories and services on top of db and store. store may be nil.
func New(cfg *config.AppConfig, db *sql.DB, store storage.Storage, log logrus.FieldLogger, reg prometheus.Registerer) *Container {
	mailer := service.NewMailer(NewNotifier(cfg.Email, log, reg), log)

	agencies := postgres.NewAgencyPostgres(db)
	compliance := postgres.NewCompliancePostgres(db)
	profiles := postgres.NewProfilePostgres(db)

	return &Container{
		DB:      db,
		Storage: store,
		Mailer:  mailer,
		Services: service.Services{
			Conversations: service.NewConversationService(
				postgres.NewConversationPostgres(db),
				postgres.NewMessagePostgres(db),
				profiles,
				mailer,
			),
			Agencies: service.NewAgencyService(agencies, compliance, cfg.Compliance.ReminderDays),
			Claims:   service.NewClaimService(postgres.NewClaimPostgres(db), agencies, profiles, mailer),
			Compliance: service.NewComplianceService(
				compliance, agencies, store, mailer, log, cfg.Compliance.ReminderDays,
			),
		},
	}
}
