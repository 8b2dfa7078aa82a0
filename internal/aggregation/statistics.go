// Package aggregation rolls shifts up into the totals shown under the table.
package aggregation

import (
	"sort"

	"github.com/andresuchdata/shiftops/internal/domain"
	"github.com/andresuchdata/shiftops/internal/economics"
)

// Engine computes table statistics with a shift calculator.
type Engine struct {
	calc *economics.Calculator
}

// NewEngine creates an aggregation engine.
func NewEngine(calc *economics.Calculator) *Engine {
	return &Engine{calc: calc}
}

// ComputeStatistics sums every figure over shifts. Nothing is cached; the
// result depends only on the slice passed in.
func (e *Engine) ComputeStatistics(shifts []domain.Shift) domain.TableStatistics {
	policy := e.calc.Policy()
	var stats domain.TableStatistics

	for _, s := range shifts {
		econ := e.calc.Derive(s)

		stats.ShiftCount++
		stats.TotalContacts += s.ContactsCount
		stats.TotalRevenue += econ.Revenue
		stats.TotalTax += econ.Tax
		stats.TotalAfterTax += econ.AfterTax
		stats.TotalSalary += econ.Salary
		stats.TotalExpenses += s.ExpenseAmount
		stats.TotalNetProfit += econ.NetProfit

		if !s.PaidToWorker && !policy.IsAdjustment(s.PromoterName) {
			stats.SalaryDebt.Add(s.PaymentType, econ.Salary)
		}
		if !s.PaidKVV {
			stats.KVVDebt.Add(s.PaymentType, econ.KVVShare)
		}
		if !s.PaidKMS {
			stats.KMSDebt.Add(s.PaymentType, econ.KMSShare)
		}
		if !s.PaidByOrganization {
			stats.ExpectedRevenue.Add(s.PaymentType, econ.Revenue)
		}
		if s.PaymentType == domain.PaymentCashless && !s.InvoiceIssued {
			stats.UninvoicedRevenue += econ.Revenue
		}
	}

	// Rounded once on the aggregate, unlike the per-shift debt shares above.
	stats.TotalKVV = economics.HalfShare(stats.TotalNetProfit)
	stats.TotalKMS = economics.HalfShare(stats.TotalNetProfit)

	return stats
}

// Breakdown computes statistics per organization or per promoter, sorted by
// group name. An unknown dimension groups by organization.
func (e *Engine) Breakdown(shifts []domain.Shift, by domain.BreakdownDimension) []domain.GroupStatistics {
	key := func(s domain.Shift) string { return s.OrganizationName }
	if by == domain.BreakdownByPromoter {
		key = func(s domain.Shift) string { return s.PromoterName }
	}

	groups := make(map[string][]domain.Shift)
	for _, s := range shifts {
		k := key(s)
		groups[k] = append(groups[k], s)
	}

	result := make([]domain.GroupStatistics, 0, len(groups))
	for name, members := range groups {
		result = append(result, domain.GroupStatistics{
			Name:       name,
			Statistics: e.ComputeStatistics(members),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result
}
