package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FilterState is the table filter chosen in the UI.
//
// A nil tri-state means "no constraint". An empty multi-select means "all
// selected", never "nothing selected".
type FilterState struct {
	PaidByOrganization *bool `json:"paid_by_organization"`
	PaidToWorker       *bool `json:"paid_to_worker"`
	PaidKVV            *bool `json:"paid_kvv"`
	PaidKMS            *bool `json:"paid_kms"`

	Organizations []string      `json:"organizations"`
	Promoters     []string      `json:"promoters"`
	PaymentTypes  []PaymentType `json:"payment_types"`

	DateRange DateRange `json:"date_range"`
}

// DateRange is an inclusive calendar range; a zero end is open.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether date falls inside the range.
func (r DateRange) Contains(date time.Time) bool {
	d := DateOf(date)
	if !r.From.IsZero() && d.Before(DateOf(r.From)) {
		return false
	}
	if !r.To.IsZero() && d.After(DateOf(r.To)) {
		return false
	}
	return true
}

// IsOpen reports whether neither end is set.
func (r DateRange) IsOpen() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// IsEmpty reports whether every dimension is at its "no constraint" value.
func (f FilterState) IsEmpty() bool {
	return f.PaidByOrganization == nil &&
		f.PaidToWorker == nil &&
		f.PaidKVV == nil &&
		f.PaidKMS == nil &&
		len(f.Organizations) == 0 &&
		len(f.Promoters) == 0 &&
		len(f.PaymentTypes) == 0 &&
		f.DateRange.IsOpen()
}

// FilterOptions lists the values available to the multi-select filters.
type FilterOptions struct {
	Organizations []string      `json:"organizations"`
	Promoters     []string      `json:"promoters"`
	PaymentTypes  []PaymentType `json:"payment_types"`
}

// ParseTriState reads a paid-status filter value. "" and "all" mean no
// constraint.
func ParseTriState(raw string) (*bool, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == "all" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("expected true, false or all, got %q", raw)
	}
	return &v, nil
}
