// Package filter narrows a shift snapshot down to what the table shows.
package filter

import (
	"sort"
	"strings"

	"github.com/andresuchdata/shiftops/internal/domain"
)

// Predicate reports whether a shift passes a filter.
type Predicate func(domain.Shift) bool

// Build turns a filter state into a single conjunctive predicate. Dimensions
// left at their "no constraint" value are skipped entirely.
func Build(f domain.FilterState) Predicate {
	var preds []Predicate

	preds = appendTriState(preds, f.PaidByOrganization, func(s domain.Shift) bool { return s.PaidByOrganization })
	preds = appendTriState(preds, f.PaidToWorker, func(s domain.Shift) bool { return s.PaidToWorker })
	preds = appendTriState(preds, f.PaidKVV, func(s domain.Shift) bool { return s.PaidKVV })
	preds = appendTriState(preds, f.PaidKMS, func(s domain.Shift) bool { return s.PaidKMS })

	if orgs := stringSet(f.Organizations); orgs != nil {
		preds = append(preds, func(s domain.Shift) bool {
			_, ok := orgs[strings.TrimSpace(s.OrganizationName)]
			return ok
		})
	}

	if promoters := stringSet(f.Promoters); promoters != nil {
		preds = append(preds, func(s domain.Shift) bool {
			_, ok := promoters[strings.TrimSpace(s.PromoterName)]
			return ok
		})
	}

	if len(f.PaymentTypes) > 0 {
		types := make(map[domain.PaymentType]struct{}, len(f.PaymentTypes))
		for _, pt := range f.PaymentTypes {
			types[pt] = struct{}{}
		}
		preds = append(preds, func(s domain.Shift) bool {
			_, ok := types[s.PaymentType]
			return ok
		})
	}

	if !f.DateRange.IsOpen() {
		r := f.DateRange
		preds = append(preds, func(s domain.Shift) bool { return r.Contains(s.Date) })
	}

	return func(s domain.Shift) bool {
		for _, p := range preds {
			if !p(s) {
				return false
			}
		}
		return true
	}
}

// Apply returns the shifts passing f, in their original order. The input
// slice is never modified.
func Apply(shifts []domain.Shift, f domain.FilterState) []domain.Shift {
	out := make([]domain.Shift, 0, len(shifts))
	if f.IsEmpty() {
		return append(out, shifts...)
	}

	keep := Build(f)
	for _, s := range shifts {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// Options lists the distinct organization and promoter names in shifts,
// sorted, together with both payment types.
func Options(shifts []domain.Shift) domain.FilterOptions {
	orgs := make(map[string]struct{})
	promoters := make(map[string]struct{})
	for _, s := range shifts {
		if name := strings.TrimSpace(s.OrganizationName); name != "" {
			orgs[name] = struct{}{}
		}
		if name := strings.TrimSpace(s.PromoterName); name != "" {
			promoters[name] = struct{}{}
		}
	}

	return domain.FilterOptions{
		Organizations: sortedKeys(orgs),
		Promoters:     sortedKeys(promoters),
		PaymentTypes:  []domain.PaymentType{domain.PaymentCash, domain.PaymentCashless},
	}
}

func appendTriState(preds []Predicate, want *bool, field func(domain.Shift) bool) []Predicate {
	if want == nil {
		return preds
	}
	expected := *want
	return append(preds, func(s domain.Shift) bool { return field(s) == expected })
}

// stringSet returns nil for an empty selection, which means "all selected".
// Names are compared with surrounding whitespace removed on both sides, the
// same way Options lists them.
func stringSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.TrimSpace(v)] = struct{}{}
	}
	return set
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
