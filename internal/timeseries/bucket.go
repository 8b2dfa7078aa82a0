// Package timeseries groups shifts into calendar buckets.
package timeseries

import (
	"sort"
	"time"

	"github.com/andresuchdata/shiftops/internal/domain"
)

// MetricFunc extracts the value a shift contributes to its bucket.
type MetricFunc func(domain.Shift) float64

// Bucketizer groups shifts by calendar period. Shifts dated before liveSince
// predate the system and are ignored.
type Bucketizer struct {
	liveSince time.Time
}

// NewBucketizer creates a bucketizer with the given lower cutoff.
func NewBucketizer(liveSince time.Time) *Bucketizer {
	return &Bucketizer{liveSince: domain.DateOf(liveSince)}
}

// Bucketize sums metric per period. Only periods with at least one shift are
// returned, sorted by key.
func (b *Bucketizer) Bucketize(shifts []domain.Shift, g domain.Granularity, metric MetricFunc) []domain.TimeBucket {
	byKey := make(map[string]*domain.TimeBucket)

	for _, s := range shifts {
		if domain.DateOf(s.Date).Before(b.liveSince) {
			continue
		}

		key, start, end := Period(s.Date, g)
		bucket, ok := byKey[key]
		if !ok {
			bucket = &domain.TimeBucket{
				Key:       key,
				Label:     Label(g, start, end),
				StartDate: start,
				EndDate:   end,
			}
			byKey[key] = bucket
		}
		bucket.Value += metric(s)
		bucket.Count++
	}

	buckets := make([]domain.TimeBucket, 0, len(byKey))
	for _, bucket := range byKey {
		buckets = append(buckets, *bucket)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })

	return buckets
}

// Sum adds metric over the shifts dated within [start, end] and not before
// the cutoff.
func (b *Bucketizer) Sum(shifts []domain.Shift, start, end time.Time, metric MetricFunc) float64 {
	r := domain.DateRange{From: start, To: end}
	var total float64
	for _, s := range shifts {
		if domain.DateOf(s.Date).Before(b.liveSince) || !r.Contains(s.Date) {
			continue
		}
		total += metric(s)
	}
	return total
}
