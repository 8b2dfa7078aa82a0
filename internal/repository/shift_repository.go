package repository

import (
	"context"

	"github.com/andresuchdata/shiftops/internal/domain"
)

// ShiftRepository is the data-fetch boundary for shift snapshots.
type ShiftRepository interface {
	// ListShifts returns every shift dated inside r, joined with its
	// organization and promoter names, ordered by date, start time and id.
	ListShifts(ctx context.Context, r domain.DateRange) ([]domain.Shift, error)
	// SnapshotVersion identifies the current state of the shifts table; it
	// differs after any write.
	SnapshotVersion(ctx context.Context) (string, error)
	EnsureSchema(ctx context.Context) error
}
