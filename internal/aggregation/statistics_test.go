package aggregation

import (
	"testing"
	"time"

	"github.com/andresuchdata/shiftops/internal/domain"
	"github.com/andresuchdata/shiftops/internal/economics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var june = time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)

func newEngine() *Engine {
	return NewEngine(economics.NewCalculator(economics.DefaultPolicy()))
}

func TestComputeStatistics_LossScenario(t *testing.T) {
	shifts := []domain.Shift{
		{ID: 1, Date: june, OrganizationName: "Альфа", PromoterName: "Иванов", ContactsCount: 12, ContactRate: 200, PaymentType: domain.PaymentCashless},
		{ID: 2, Date: june, OrganizationName: "Альфа", PromoterName: "Петров", ContactsCount: 12, ContactRate: 200, PaymentType: domain.PaymentCashless},
	}

	stats := newEngine().ComputeStatistics(shifts)

	assert.Equal(t, 2, stats.ShiftCount)
	assert.Equal(t, 24, stats.TotalContacts)
	assert.Equal(t, 4800.0, stats.TotalRevenue)
	assert.Equal(t, 336.0, stats.TotalTax)
	assert.Equal(t, 4464.0, stats.TotalAfterTax)
	assert.Equal(t, 7200.0, stats.TotalSalary)
	assert.Equal(t, -2736.0, stats.TotalNetProfit)
	assert.Equal(t, -1368.0, stats.TotalKVV)
	assert.Equal(t, -1368.0, stats.TotalKMS)

	assert.Equal(t, domain.UnpaidBalance{Total: 7200, Cashless: 7200}, stats.SalaryDebt)
	assert.Equal(t, domain.UnpaidBalance{Total: -1368, Cashless: -1368}, stats.KVVDebt)
	assert.Equal(t, domain.UnpaidBalance{Total: -1368, Cashless: -1368}, stats.KMSDebt)
	assert.Equal(t, domain.UnpaidBalance{Total: 4800, Cashless: 4800}, stats.ExpectedRevenue)
	assert.Equal(t, 4800.0, stats.UninvoicedRevenue)
}

func TestComputeStatistics_AggregateRoundingDiffersFromPerShift(t *testing.T) {
	// Each shift nets 1 (revenue 201, salary 200, cash): per-shift share rounds
	// 0.5 up to 1, while the aggregate 3/2 = 1.5 rounds to 2.
	mk := func(id int64) domain.Shift {
		return domain.Shift{
			ID: id, Date: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
			OrganizationName: "Альфа", PromoterName: "Иванов",
			ContactsCount: 1, ContactRate: 201, PaymentType: domain.PaymentCash,
		}
	}
	stats := newEngine().ComputeStatistics([]domain.Shift{mk(1), mk(2), mk(3)})

	assert.Equal(t, 3.0, stats.TotalNetProfit)
	assert.Equal(t, 2.0, stats.TotalKMS)
	assert.Equal(t, 3.0, stats.KMSDebt.Total)
	assert.Equal(t, 3.0, stats.KVVDebt.Total)
}

func TestComputeStatistics_DebtsRespectFlagsAndPaymentType(t *testing.T) {
	shifts := []domain.Shift{
		{ID: 1, Date: june, OrganizationName: "Альфа", PromoterName: "Иванов", ContactsCount: 5, ContactRate: 500, PaymentType: domain.PaymentCash},
		{ID: 2, Date: june, OrganizationName: "Альфа", PromoterName: "Иванов", ContactsCount: 5, ContactRate: 500, PaymentType: domain.PaymentCashless, PaidToWorker: true, PaidKVV: true},
		{ID: 3, Date: june, OrganizationName: "Бета", PromoterName: "Петров", ContactsCount: 4, ContactRate: 400, PaymentType: domain.PaymentCashless, PaidKMS: true, PaidByOrganization: true, InvoiceIssued: true},
	}

	stats := newEngine().ComputeStatistics(shifts)

	// salaries: 1000, 1000 (paid), 800
	assert.Equal(t, domain.UnpaidBalance{Total: 1800, Cash: 1000, Cashless: 800}, stats.SalaryDebt)

	// shift 1: 2500 - 0 - 1000 = 1500 -> 750
	// shift 2: 2500 - 175 - 1000 = 1325 -> 663 (paid KVV)
	// shift 3: 1600 - 112 - 800 = 688 -> 344 (paid KMS)
	assert.Equal(t, domain.UnpaidBalance{Total: 1094, Cash: 750, Cashless: 344}, stats.KVVDebt)
	assert.Equal(t, domain.UnpaidBalance{Total: 1413, Cash: 750, Cashless: 663}, stats.KMSDebt)
	assert.Equal(t, domain.UnpaidBalance{Total: 5000, Cash: 2500, Cashless: 2500}, stats.ExpectedRevenue)
	assert.Equal(t, 2500.0, stats.UninvoicedRevenue)
}

func TestComputeStatistics_AdjustmentExcludedFromSalaryDebtOnly(t *testing.T) {
	shifts := []domain.Shift{
		{ID: 1, Date: june, OrganizationName: "Альфа", PromoterName: economics.DefaultAdjustmentPromoter, ContactsCount: 3, ContactRate: 100, PaymentType: domain.PaymentCash},
		{ID: 2, Date: june, OrganizationName: "Альфа", PromoterName: "Иванов", ContactsCount: 3, ContactRate: 100, PaymentType: domain.PaymentCash},
	}

	stats := newEngine().ComputeStatistics(shifts)

	assert.Equal(t, 1200.0, stats.TotalSalary)
	assert.Equal(t, 600.0, stats.SalaryDebt.Total)
	assert.Equal(t, stats.KMSDebt.Total, stats.KVVDebt.Total)
	assert.Equal(t, -300.0, stats.KMSDebt.Total)
}

func TestComputeStatistics_Additive(t *testing.T) {
	a := []domain.Shift{
		{ID: 1, Date: june, OrganizationName: "Альфа", PromoterName: "Иванов", ContactsCount: 11, ContactRate: 350, PaymentType: domain.PaymentCashless, ExpenseAmount: 150},
		{ID: 2, Date: june, OrganizationName: "Бета", PromoterName: "Петров", ContactsCount: 3, ContactRate: 420, PaymentType: domain.PaymentCash, PaidKMS: true},
	}
	b := []domain.Shift{
		{ID: 3, Date: june, OrganizationName: "Гамма", PromoterName: "Сидоров", ContactsCount: 20, ContactRate: 310, PaymentType: domain.PaymentCashless, PaidToWorker: true},
	}

	e := newEngine()
	sa, sb := e.ComputeStatistics(a), e.ComputeStatistics(b)
	all := e.ComputeStatistics(append(append([]domain.Shift{}, a...), b...))

	assert.Equal(t, sa.ShiftCount+sb.ShiftCount, all.ShiftCount)
	assert.Equal(t, sa.TotalContacts+sb.TotalContacts, all.TotalContacts)
	assert.InDelta(t, sa.TotalRevenue+sb.TotalRevenue, all.TotalRevenue, 1e-9)
	assert.InDelta(t, sa.TotalTax+sb.TotalTax, all.TotalTax, 1e-9)
	assert.InDelta(t, sa.TotalAfterTax+sb.TotalAfterTax, all.TotalAfterTax, 1e-9)
	assert.InDelta(t, sa.TotalSalary+sb.TotalSalary, all.TotalSalary, 1e-9)
	assert.InDelta(t, sa.TotalNetProfit+sb.TotalNetProfit, all.TotalNetProfit, 1e-9)
	assert.InDelta(t, sa.SalaryDebt.Total+sb.SalaryDebt.Total, all.SalaryDebt.Total, 1e-9)
	assert.InDelta(t, sa.KMSDebt.Total+sb.KMSDebt.Total, all.KMSDebt.Total, 1e-9)
	assert.InDelta(t, sa.ExpectedRevenue.Total+sb.ExpectedRevenue.Total, all.ExpectedRevenue.Total, 1e-9)
}

func TestComputeStatistics_Empty(t *testing.T) {
	assert.Equal(t, domain.TableStatistics{}, newEngine().ComputeStatistics(nil))
}

func TestBreakdown(t *testing.T) {
	shifts := []domain.Shift{
		{ID: 1, Date: june, OrganizationName: "Бета", PromoterName: "Иванов", ContactsCount: 2, ContactRate: 300, PaymentType: domain.PaymentCash},
		{ID: 2, Date: june, OrganizationName: "Альфа", PromoterName: "Иванов", ContactsCount: 4, ContactRate: 300, PaymentType: domain.PaymentCash},
		{ID: 3, Date: june, OrganizationName: "Бета", PromoterName: "Петров", ContactsCount: 1, ContactRate: 300, PaymentType: domain.PaymentCash},
	}
	e := newEngine()

	byOrg := e.Breakdown(shifts, domain.BreakdownByOrganization)
	require.Len(t, byOrg, 2)
	assert.Equal(t, "Альфа", byOrg[0].Name)
	assert.Equal(t, 4, byOrg[0].Statistics.TotalContacts)
	assert.Equal(t, "Бета", byOrg[1].Name)
	assert.Equal(t, 3, byOrg[1].Statistics.TotalContacts)

	byPromoter := e.Breakdown(shifts, domain.BreakdownByPromoter)
	require.Len(t, byPromoter, 2)
	assert.Equal(t, "Иванов", byPromoter[0].Name)
	assert.Equal(t, 2, byPromoter[0].Statistics.ShiftCount)
	assert.Equal(t, "Петров", byPromoter[1].Name)
}
