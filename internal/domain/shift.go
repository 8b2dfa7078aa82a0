package domain

import (
	"strings"
	"time"
)

// PaymentType is how an organization settles a shift.
type PaymentType string

const (
	PaymentCash     PaymentType = "cash"
	PaymentCashless PaymentType = "cashless"
)

// ParsePaymentType returns the payment type for a label (case-insensitive).
func ParsePaymentType(label string) (PaymentType, bool) {
	switch PaymentType(strings.ToLower(strings.TrimSpace(label))) {
	case PaymentCash:
		return PaymentCash, true
	case PaymentCashless:
		return PaymentCashless, true
	}
	return "", false
}

// Shift is one promoter's work session for one organization on one date.
// The four paid flags and InvoiceIssued are independent of each other.
type Shift struct {
	ID               int64       `json:"id" db:"id"`
	Date             time.Time   `json:"date" db:"date"`
	StartTime        string      `json:"start_time" db:"start_time"`
	EndTime          string      `json:"end_time" db:"end_time"`
	OrganizationID   int64       `json:"organization_id" db:"organization_id"`
	OrganizationName string      `json:"organization_name" db:"organization_name"`
	UserID           int64       `json:"user_id" db:"user_id"`
	PromoterName     string      `json:"user_name" db:"user_name"`
	ContactsCount    int         `json:"contacts_count" db:"contacts_count"`
	ContactRate      float64     `json:"contact_rate" db:"contact_rate"`
	PaymentType      PaymentType `json:"payment_type" db:"payment_type"`
	ExpenseAmount    float64     `json:"expense_amount" db:"expense_amount"`
	ExpenseComment   string      `json:"expense_comment" db:"expense_comment"`

	PaidByOrganization bool `json:"paid_by_organization" db:"paid_by_organization"`
	PaidToWorker       bool `json:"paid_to_worker" db:"paid_to_worker"`
	PaidKVV            bool `json:"paid_kvv" db:"paid_kvv"`
	PaidKMS            bool `json:"paid_kms" db:"paid_kms"`
	InvoiceIssued      bool `json:"invoice_issued" db:"invoice_issued"`

	PaidByOrganizationAt *time.Time `json:"paid_by_organization_at,omitempty" db:"paid_by_organization_at"`
	PaidToWorkerAt       *time.Time `json:"paid_to_worker_at,omitempty" db:"paid_to_worker_at"`
	PaidKVVAt            *time.Time `json:"paid_kvv_at,omitempty" db:"paid_kvv_at"`
	PaidKMSAt            *time.Time `json:"paid_kms_at,omitempty" db:"paid_kms_at"`
	InvoiceIssuedAt      *time.Time `json:"invoice_issued_at,omitempty" db:"invoice_issued_at"`
}

// ShiftEconomics holds every amount derived from a single shift.
type ShiftEconomics struct {
	Revenue   float64 `json:"revenue"`
	Tax       float64 `json:"tax"`
	AfterTax  float64 `json:"after_tax"`
	Salary    float64 `json:"salary"`
	NetProfit float64 `json:"net_profit"`
	KVVShare  float64 `json:"kvv_share"`
	KMSShare  float64 `json:"kms_share"`
}

// ShiftRow is a shift together with its derived amounts, as shown in the table.
type ShiftRow struct {
	Shift
	Economics ShiftEconomics `json:"economics"`
}

// DateOf strips the clock and location from t, keeping its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(value))
}

// DateLayout is the ISO calendar date layout used for keys and query params.
const DateLayout = "2006-01-02"
