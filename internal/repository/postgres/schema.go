package postgres

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS organizations (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'payment_type') THEN
			CREATE TYPE payment_type AS ENUM ('cash', 'cashless');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS shifts (
		id BIGSERIAL PRIMARY KEY,
		date DATE NOT NULL,
		start_time TIME,
		end_time TIME,
		organization_id BIGINT NOT NULL REFERENCES organizations(id),
		user_id BIGINT NOT NULL REFERENCES users(id),
		contacts_count INTEGER NOT NULL DEFAULT 0,
		contact_rate NUMERIC(12,2) NOT NULL DEFAULT 0,
		payment_type payment_type NOT NULL DEFAULT 'cash',
		expense_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		expense_comment TEXT,
		paid_by_organization BOOLEAN NOT NULL DEFAULT FALSE,
		paid_to_worker BOOLEAN NOT NULL DEFAULT FALSE,
		paid_kvv BOOLEAN NOT NULL DEFAULT FALSE,
		paid_kms BOOLEAN NOT NULL DEFAULT FALSE,
		invoice_issued BOOLEAN NOT NULL DEFAULT FALSE,
		paid_by_organization_at TIMESTAMPTZ,
		paid_to_worker_at TIMESTAMPTZ,
		paid_kvv_at TIMESTAMPTZ,
		paid_kms_at TIMESTAMPTZ,
		invoice_issued_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'shifts' AND column_name = 'invoice_issued') THEN
			ALTER TABLE shifts ADD COLUMN invoice_issued BOOLEAN NOT NULL DEFAULT FALSE;
		END IF;
		IF NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'shifts' AND column_name = 'invoice_issued_at') THEN
			ALTER TABLE shifts ADD COLUMN invoice_issued_at TIMESTAMPTZ;
		END IF;
		IF NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'shifts' AND column_name = 'updated_at') THEN
			ALTER TABLE shifts ADD COLUMN updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW();
		END IF;
	END
	$$;`,
	// updated_at feeds the snapshot version that keys the statistics cache.
	`CREATE OR REPLACE FUNCTION shifts_touch_updated_at() RETURNS trigger AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END
	$$ LANGUAGE plpgsql;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_shifts_updated_at') THEN
			CREATE TRIGGER trg_shifts_updated_at
				BEFORE UPDATE ON shifts
				FOR EACH ROW EXECUTE FUNCTION shifts_touch_updated_at();
		END IF;
	END
	$$;`,
	`CREATE INDEX IF NOT EXISTS idx_shifts_date ON shifts (date);`,
	`CREATE INDEX IF NOT EXISTS idx_shifts_organization_id ON shifts (organization_id);`,
	`CREATE INDEX IF NOT EXISTS idx_shifts_user_id ON shifts (user_id);`,
}
