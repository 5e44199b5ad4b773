package db

import (
	"fmt"

	"gorm.io/gorm"
)

// contracts, customers and payments belong to the dashboard; only the
// termination tables are created here.
var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'termination_case_status') THEN
			CREATE TYPE termination_case_status AS ENUM (
				'notice_received',
				'moving_out',
				'pending_doc',
				'pending_settlement',
				'pending_authority',
				'completed',
				'cancelled'
			);
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'termination_type') THEN
			CREATE TYPE termination_type AS ENUM ('early', 'not_renewing', 'breach');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS termination_cases (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		termination_type termination_type NOT NULL,
		status termination_case_status NOT NULL DEFAULT 'notice_received',
		notice_date DATE NOT NULL,
		is_physical_office BOOLEAN NOT NULL DEFAULT FALSE,
		checklist JSONB NOT NULL DEFAULT '{}'::jsonb,
		monthly_rent NUMERIC(18,2) NOT NULL,
		deposit_amount NUMERIC(18,2) NOT NULL,
		contract_end_date DATE NOT NULL,
		doc_approved_date DATE,
		daily_rate NUMERIC(18,4),
		deduction_days INTEGER,
		deduction_amount NUMERIC(18,2),
		other_deductions NUMERIC(18,2) NOT NULL DEFAULT 0,
		other_deduction_notes TEXT,
		arrears_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
		refund_amount NUMERIC(18,2),
		is_bad_debt BOOLEAN NOT NULL DEFAULT FALSE,
		bad_debt_amount NUMERIC(18,2),
		authority_reported_date DATE,
		authority_response_date DATE,
		refund_method VARCHAR(32),
		refund_account VARCHAR(128),
		refund_receipt VARCHAR(256),
		pending_payment_count INTEGER NOT NULL DEFAULT 0,
		pending_payment_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		version INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		cancelled_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		CONSTRAINT chk_termination_refund_non_negative CHECK (refund_amount IS NULL OR refund_amount >= 0),
		CONSTRAINT chk_termination_bad_debt_refund CHECK (NOT is_bad_debt OR refund_amount IS NULL)
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_termination_cases_open_contract
		ON termination_cases (contract_id)
		WHERE status NOT IN ('completed', 'cancelled');`,
	`CREATE INDEX IF NOT EXISTS idx_termination_cases_status ON termination_cases (status);`,
	`CREATE INDEX IF NOT EXISTS idx_termination_cases_created_at ON termination_cases (created_at DESC);`,
	`CREATE TABLE IF NOT EXISTS termination_case_receivables (
		case_id UUID NOT NULL REFERENCES termination_cases(id),
		payment_id UUID NOT NULL REFERENCES payments(id),
		amount NUMERIC(18,2) NOT NULL,
		original_status VARCHAR(32) NOT NULL,
		held_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		restored_at TIMESTAMPTZ,
		PRIMARY KEY (case_id, payment_id)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_termination_case_receivables_payment
		ON termination_case_receivables (payment_id) WHERE restored_at IS NULL;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
