package economics

import (
	"time"

	"github.com/andresuchdata/shiftops/internal/domain"
	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// Calculator derives the money figures of a single shift. It holds no state
// besides the policy and is safe for concurrent use.
type Calculator struct {
	policy Policy
}

// NewCalculator creates a calculator for the given policy.
func NewCalculator(policy Policy) *Calculator {
	return &Calculator{policy: NewPolicy(policy)}
}

// Policy returns the rules the calculator applies.
func (c *Calculator) Policy() Policy {
	return c.policy
}

// Revenue = contacts × rate.
func (c *Calculator) Revenue(s domain.Shift) float64 {
	return revenue(s).InexactFloat64()
}

// Tax is charged on cashless shifts only, rounded to whole currency units.
func (c *Calculator) Tax(s domain.Shift) float64 {
	return c.tax(s).InexactFloat64()
}

// AfterTax = revenue − tax.
func (c *Calculator) AfterTax(s domain.Shift) float64 {
	return revenue(s).Sub(c.tax(s)).InexactFloat64()
}

// WorkerSalary is what the promoter earns for a shift.
func (c *Calculator) WorkerSalary(contacts int, date time.Time, organization string) float64 {
	return c.salary(contacts, date, organization).InexactFloat64()
}

// ShiftSalary is WorkerSalary for the shift's own fields.
func (c *Calculator) ShiftSalary(s domain.Shift) float64 {
	return c.WorkerSalary(s.ContactsCount, s.Date, s.OrganizationName)
}

// NetProfit = after tax − salary − expenses. It may be negative.
func (c *Calculator) NetProfit(s domain.Shift) float64 {
	return c.netProfit(s).InexactFloat64()
}

// ProfitShare is one stakeholder's half of the net profit, rounded on its own.
// KVV and KMS always receive the same amount.
func (c *Calculator) ProfitShare(s domain.Shift) float64 {
	return c.netProfit(s).Div(two).Round(0).InexactFloat64()
}

// Derive computes every figure of s at once.
func (c *Calculator) Derive(s domain.Shift) domain.ShiftEconomics {
	rev := revenue(s)
	tax := c.tax(s)
	salary := c.salary(s.ContactsCount, s.Date, s.OrganizationName)
	net := rev.Sub(tax).Sub(salary).Sub(decimal.NewFromFloat(s.ExpenseAmount))
	share := net.Div(two).Round(0).InexactFloat64()

	return domain.ShiftEconomics{
		Revenue:   rev.InexactFloat64(),
		Tax:       tax.InexactFloat64(),
		AfterTax:  rev.Sub(tax).InexactFloat64(),
		Salary:    salary.InexactFloat64(),
		NetProfit: net.InexactFloat64(),
		KVVShare:  share,
		KMSShare:  share,
	}
}

// Rows pairs each shift with its derived figures, keeping order.
func (c *Calculator) Rows(shifts []domain.Shift) []domain.ShiftRow {
	rows := make([]domain.ShiftRow, len(shifts))
	for i, s := range shifts {
		rows[i] = domain.ShiftRow{Shift: s, Economics: c.Derive(s)}
	}
	return rows
}

// Round rounds v to a whole currency unit, halves away from zero.
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(0).InexactFloat64()
}

// HalfShare splits an aggregate amount in two and rounds the half.
func HalfShare(total float64) float64 {
	return decimal.NewFromFloat(total).Div(two).Round(0).InexactFloat64()
}

func revenue(s domain.Shift) decimal.Decimal {
	return decimal.NewFromInt(int64(s.ContactsCount)).Mul(decimal.NewFromFloat(s.ContactRate))
}

func (c *Calculator) tax(s domain.Shift) decimal.Decimal {
	if s.PaymentType != domain.PaymentCashless {
		return decimal.Zero
	}
	rate := decimal.NewFromFloat(c.policy.TaxRateOn(s.Date))
	return revenue(s).Mul(rate).Round(0)
}

func (c *Calculator) salary(contacts int, date time.Time, organization string) decimal.Decimal {
	if c.policy.IsExempt(organization) {
		return decimal.Zero
	}
	rule := c.policy.SalaryRuleOn(date)
	return decimal.NewFromInt(int64(contacts)).Mul(decimal.NewFromFloat(rule.PerContact(contacts)))
}

func (c *Calculator) netProfit(s domain.Shift) decimal.Decimal {
	return revenue(s).
		Sub(c.tax(s)).
		Sub(c.salary(s.ContactsCount, s.Date, s.OrganizationName)).
		Sub(decimal.NewFromFloat(s.ExpenseAmount))
}
