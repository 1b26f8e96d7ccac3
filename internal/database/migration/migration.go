package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Step is a single idempotent DDL statement.
type Step struct {
	Name string
	SQL  string
}

// RLSTables lists the tables that must have row-level security enabled.
// Policies for them are managed in the Supabase project.
var RLSTables = []string{
	"profiles",
	"agencies",
	"agency_compliance",
	"agency_claim_requests",
	"conversations",
	"conversation_participants",
	"messages",
}

// ExpectedIndexes lists indexes the query paths rely on.
var ExpectedIndexes = []string{
	"idx_agencies_slug",
	"idx_agencies_name_trgm",
	"idx_agency_trades_trade_id",
	"idx_agency_regions_region_id",
	"idx_conversation_participants_user_id",
	"idx_conversations_last_message_at",
	"idx_messages_conversation_created_at",
	"idx_agency_compliance_expiration_date",
	"idx_claim_requests_open_unique",
	"idx_claim_requests_status_created_at",
}

var steps = []Step{
	{
		Name: "create_extension_pgcrypto",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	},
	{
		Name: "create_extension_pg_trgm",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "pg_trgm";`,
	},
	{
		Name: "create_table_profiles",
		SQL: `CREATE TABLE IF NOT EXISTS profiles (
  id         UUID        PRIMARY KEY,
  email      TEXT        NOT NULL,
  full_name  TEXT        NOT NULL DEFAULT '',
  role       TEXT        NOT NULL DEFAULT 'job_seeker'
             CHECK (role IN ('job_seeker', 'contractor', 'agency_owner', 'admin')),
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_agencies",
		SQL: `CREATE TABLE IF NOT EXISTS agencies (
  id             UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  name           TEXT        NOT NULL,
  slug           TEXT        NOT NULL UNIQUE,
  description    TEXT        NOT NULL DEFAULT '',
  logo_url       TEXT,
  website        TEXT,
  phone          TEXT,
  email          TEXT,
  headquarters   TEXT,
  founded_year   INT,
  employee_count TEXT,
  is_claimed     BOOLEAN     NOT NULL DEFAULT false,
  claimed_by     UUID        REFERENCES profiles (id) ON DELETE SET NULL,
  claimed_at     TIMESTAMPTZ,
  is_active      BOOLEAN     NOT NULL DEFAULT true,
  verified       BOOLEAN     NOT NULL DEFAULT false,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_trades",
		SQL: `CREATE TABLE IF NOT EXISTS trades (
  id   UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE
);`,
	},
	{
		Name: "create_table_regions",
		SQL: `CREATE TABLE IF NOT EXISTS regions (
  id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  name       TEXT NOT NULL,
  slug       TEXT NOT NULL UNIQUE,
  state_code CHAR(2) NOT NULL
);`,
	},
	{
		Name: "create_table_agency_trades",
		SQL: `CREATE TABLE IF NOT EXISTS agency_trades (
  agency_id UUID NOT NULL REFERENCES agencies (id) ON DELETE CASCADE,
  trade_id  UUID NOT NULL REFERENCES trades (id) ON DELETE CASCADE,
  PRIMARY KEY (agency_id, trade_id)
);`,
	},
	{
		Name: "create_table_agency_regions",
		SQL: `CREATE TABLE IF NOT EXISTS agency_regions (
  agency_id UUID NOT NULL REFERENCES agencies (id) ON DELETE CASCADE,
  region_id UUID NOT NULL REFERENCES regions (id) ON DELETE CASCADE,
  PRIMARY KEY (agency_id, region_id)
);`,
	},
	{
		Name: "create_table_conversations",
		SQL: `CREATE TABLE IF NOT EXISTS conversations (
  id              UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  context_type    TEXT        NOT NULL CHECK (context_type IN ('agency_inquiry', 'job_inquiry', 'general')),
  context_id      UUID,
  created_by      UUID        NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  last_message_at TIMESTAMPTZ
);`,
	},
	{
		Name: "create_table_conversation_participants",
		SQL: `CREATE TABLE IF NOT EXISTS conversation_participants (
  conversation_id UUID        NOT NULL REFERENCES conversations (id) ON DELETE CASCADE,
  user_id         UUID        NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
  joined_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
  last_read_at    TIMESTAMPTZ,
  PRIMARY KEY (conversation_id, user_id)
);`,
	},
	{
		Name: "create_table_messages",
		SQL: `CREATE TABLE IF NOT EXISTS messages (
  id              UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  conversation_id UUID        NOT NULL REFERENCES conversations (id) ON DELETE CASCADE,
  sender_id       UUID        NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
  content         TEXT        NOT NULL CHECK (char_length(content) BETWEEN 1 AND 5000),
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  edited_at       TIMESTAMPTZ,
  deleted_at      TIMESTAMPTZ
);`,
	},
	{
		Name: "create_table_agency_compliance",
		SQL: `CREATE TABLE IF NOT EXISTS agency_compliance (
  id              UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  agency_id       UUID        NOT NULL REFERENCES agencies (id) ON DELETE CASCADE,
  compliance_type TEXT        NOT NULL CHECK (compliance_type IN ('osha_certified', 'drug_testing', 'background_checks', 'workers_comp', 'general_liability', 'bonding')),
  is_active       BOOLEAN     NOT NULL DEFAULT false,
  document_url    TEXT,
  expiration_date DATE,
  verified        BOOLEAN     NOT NULL DEFAULT false,
  notes           TEXT,
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (agency_id, compliance_type)
);`,
	},
	{
		Name: "create_table_agency_claim_requests",
		SQL: `CREATE TABLE IF NOT EXISTS agency_claim_requests (
  id                    UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  agency_id             UUID        NOT NULL REFERENCES agencies (id) ON DELETE CASCADE,
  user_id               UUID        NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
  status                TEXT        NOT NULL DEFAULT 'pending'
                        CHECK (status IN ('pending', 'under_review', 'approved', 'rejected')),
  business_email        TEXT        NOT NULL,
  phone_number          TEXT        NOT NULL,
  position_title        TEXT        NOT NULL,
  verification_method   TEXT        NOT NULL CHECK (verification_method IN ('email', 'phone', 'manual')),
  additional_notes      TEXT,
  email_domain_verified BOOLEAN     NOT NULL DEFAULT false,
  rejection_reason      TEXT,
  reviewed_by           UUID        REFERENCES profiles (id) ON DELETE SET NULL,
  reviewed_at           TIMESTAMPTZ,
  created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_agencies_slug",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_agencies_slug ON agencies (slug) WHERE is_active;`,
	},
	{
		Name: "create_index_agencies_name_trgm",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_agencies_name_trgm ON agencies USING gin (name gin_trgm_ops);`,
	},
	{
		Name: "create_index_agency_trades_trade_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_agency_trades_trade_id ON agency_trades (trade_id);`,
	},
	{
		Name: "create_index_agency_regions_region_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_agency_regions_region_id ON agency_regions (region_id);`,
	},
	{
		Name: "create_index_conversation_participants_user_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_conversation_participants_user_id ON conversation_participants (user_id);`,
	},
	{
		Name: "create_index_conversations_last_message_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_conversations_last_message_at ON conversations (last_message_at DESC NULLS LAST, updated_at DESC);`,
	},
	{
		Name: "create_index_messages_conversation_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_messages_conversation_created_at ON messages (conversation_id, created_at DESC);`,
	},
	{
		Name: "create_index_agency_compliance_expiration_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_agency_compliance_expiration_date ON agency_compliance (expiration_date) WHERE is_active;`,
	},
	{
		Name: "create_index_claim_requests_open_unique",
		SQL: `CREATE UNIQUE INDEX IF NOT EXISTS idx_claim_requests_open_unique
  ON agency_claim_requests (agency_id, user_id) WHERE status IN ('pending', 'under_review');`,
	},
	{
		Name: "create_index_claim_requests_status_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_claim_requests_status_created_at ON agency_claim_requests (status, created_at DESC);`,
	},
	{
		Name: "create_function_create_conversation_with_participants",
		SQL: `CREATE OR REPLACE FUNCTION create_conversation_with_participants(
  p_created_by      UUID,
  p_participant_ids UUID[],
  p_context_type    TEXT,
  p_context_id      UUID
) RETURNS UUID
LANGUAGE plpgsql
AS $$
DECLARE
  v_conversation_id UUID;
BEGIN
  INSERT INTO conversations (context_type, context_id, created_by)
  VALUES (p_context_type, p_context_id, p_created_by)
  RETURNING id INTO v_conversation_id;

  INSERT INTO conversation_participants (conversation_id, user_id)
  SELECT v_conversation_id, participant
  FROM unnest(p_participant_ids) AS participant
  ON CONFLICT DO NOTHING;

  RETURN v_conversation_id;
END;
$$;`,
	},
}

func init() {
	for _, table := range RLSTables {
		steps = append(steps, Step{
			Name: "enable_rls_" + table,
			SQL:  fmt.Sprintf("ALTER TABLE %s ENABLE ROW LEVEL SECURITY;", table),
		})
	}
}

// Steps returns the ordered migration steps.
func Steps() []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

// EnsureMigrated checks if the 'conversations' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log logrus.FieldLogger, dbHost string) error {
	start := time.Now()
	l := log.WithFields(logrus.Fields{"component": "database", "db_host": dbHost})

	l.WithFields(logrus.Fields{"event": "db_migration_check", "status": "starting"}).Info("checking schema")

	var exists bool
	query := "SELECT to_regclass('public.conversations') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		l.WithFields(logrus.Fields{
			"event":       "db_migration_failed",
			"status":      "error",
			"duration_ms": time.Since(start).Milliseconds(),
		}).WithError(err).Error("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		l.WithFields(logrus.Fields{
			"event":       "db_migration_skip",
			"status":      "success",
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("schema already exists, skipping migration")
		return nil
	}

	return Run(ctx, db, l)
}

// Run applies every step unconditionally. Steps are idempotent.
func Run(ctx context.Context, db *sql.DB, log logrus.FieldLogger) error {
	start := time.Now()
	log.WithFields(logrus.Fields{"event": "db_migration_start", "status": "in_progress"}).Info("applying schema")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.WithFields(logrus.Fields{
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			}).WithError(err).Error("migration step failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.WithFields(logrus.Fields{
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		}).Debug("migration step applied")
	}

	log.WithFields(logrus.Fields{
		"event":       "db_migration_success",
		"status":      "success",
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("schema applied")
	return nil
}
