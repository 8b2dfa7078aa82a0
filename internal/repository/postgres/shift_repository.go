package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/shiftops/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const listShiftsQuery = `
	SELECT
		s.id,
		s.date,
		COALESCE(to_char(s.start_time, 'HH24:MI'), '') AS start_time,
		COALESCE(to_char(s.end_time, 'HH24:MI'), '') AS end_time,
		s.organization_id,
		COALESCE(o.name, '') AS organization_name,
		s.user_id,
		COALESCE(u.name, '') AS user_name,
		s.contacts_count,
		s.contact_rate::float8 AS contact_rate,
		s.payment_type::text AS payment_type,
		s.expense_amount::float8 AS expense_amount,
		COALESCE(s.expense_comment, '') AS expense_comment,
		s.paid_by_organization,
		s.paid_to_worker,
		s.paid_kvv,
		s.paid_kms,
		s.invoice_issued,
		s.paid_by_organization_at,
		s.paid_to_worker_at,
		s.paid_kvv_at,
		s.paid_kms_at,
		s.invoice_issued_at
	FROM shifts s
	LEFT JOIN organizations o ON o.id = s.organization_id
	LEFT JOIN users u ON u.id = s.user_id
	WHERE ($1::date IS NULL OR s.date >= $1::date)
	  AND ($2::date IS NULL OR s.date <= $2::date)
	ORDER BY s.date, s.start_time NULLS LAST, s.id
`

// snapshotVersionQuery changes whenever a shift is inserted, updated or
// deleted.
const snapshotVersionQuery = `
	SELECT COUNT(*) || ':' || COALESCE(to_char(MAX(updated_at) AT TIME ZONE 'UTC', 'YYYYMMDDHH24MISSUS'), '0')
	FROM shifts
`

type shiftRepository struct {
	db *DB
}

func NewShiftRepository(db *DB) *shiftRepository {
	return &shiftRepository{db: db}
}

func (r *shiftRepository) ListShifts(ctx context.Context, dr domain.DateRange) ([]domain.Shift, error) {
	start := time.Now()
	var shifts []domain.Shift

	err := r.db.WithReadTx(ctx, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &shifts, listShiftsQuery, dateArg(dr.From), dateArg(dr.To))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}

	for i := range shifts {
		shifts[i].Date = domain.DateOf(shifts[i].Date)
	}

	log.Debug().
		Int("count", len(shifts)).
		Dur("duration", time.Since(start)).
		Msg("Loaded shift snapshot")

	return shifts, nil
}

func (r *shiftRepository) SnapshotVersion(ctx context.Context) (string, error) {
	var version string
	if err := r.db.GetContext(ctx, &version, snapshotVersionQuery); err != nil {
		return "", fmt.Errorf("failed to read snapshot version: %w", err)
	}
	return version, nil
}

func (r *shiftRepository) EnsureSchema(ctx context.Context) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for i, stmt := range schemaStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("schema statement %d failed: %w", i+1, err)
			}
		}
		return nil
	})
}

// dateArg maps an open bound to NULL.
func dateArg(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.Format(domain.DateLayout)
}
