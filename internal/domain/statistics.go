package domain

// UnpaidBalance is an owed amount split by how the shifts were settled.
type UnpaidBalance struct {
	Total    float64 `json:"total"`
	Cash     float64 `json:"cash"`
	Cashless float64 `json:"cashless"`
}

// Add books amount under the given payment type.
func (b *UnpaidBalance) Add(paymentType PaymentType, amount float64) {
	b.Total += amount
	if paymentType == PaymentCashless {
		b.Cashless += amount
		return
	}
	b.Cash += amount
}

// TableStatistics are the running totals shown under the shifts table.
//
// TotalKVV and TotalKMS are rounded once from TotalNetProfit. The debt
// balances sum the per-shift rounded shares instead, so the two may differ
// by rounding noise.
type TableStatistics struct {
	ShiftCount     int     `json:"shift_count"`
	TotalContacts  int     `json:"total_contacts"`
	TotalRevenue   float64 `json:"total_revenue"`
	TotalTax       float64 `json:"total_tax"`
	TotalAfterTax  float64 `json:"total_after_tax"`
	TotalSalary    float64 `json:"total_salary"`
	TotalExpenses  float64 `json:"total_expenses"`
	TotalNetProfit float64 `json:"total_net_profit"`
	TotalKVV       float64 `json:"total_kvv"`
	TotalKMS       float64 `json:"total_kms"`

	SalaryDebt UnpaidBalance `json:"salary_debt"`
	KVVDebt    UnpaidBalance `json:"kvv_debt"`
	KMSDebt    UnpaidBalance `json:"kms_debt"`

	ExpectedRevenue   UnpaidBalance `json:"expected_revenue"`
	UninvoicedRevenue float64       `json:"uninvoiced_revenue"`
}

// BreakdownDimension selects how Breakdown groups shifts.
type BreakdownDimension string

const (
	BreakdownByOrganization BreakdownDimension = "organization"
	BreakdownByPromoter     BreakdownDimension = "promoter"
)

// GroupStatistics are the statistics of one organization or promoter.
type GroupStatistics struct {
	Name       string          `json:"name"`
	Statistics TableStatistics `json:"statistics"`
}
