// Package export renders shift reports as xlsx workbooks.
package export

import (
	"fmt"
	"time"

	"github.com/andresuchdata/shiftops/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	ShiftsSheet    = "Смены"
	TotalsSheet    = "Итоги"
	BreakdownSheet = "По организациям"
)

// Report is everything one workbook shows.
type Report struct {
	GeneratedAt time.Time
	Filter      domain.FilterState
	Rows        []domain.ShiftRow
	Statistics  domain.TableStatistics
	Groups      []domain.GroupStatistics
}

var shiftHeaders = []string{
	"Дата",
	"Начало",
	"Конец",
	"Организация",
	"Промоутер",
	"Контакты",
	"Ставка",
	"Тип оплаты",
	"Выручка",
	"Налог",
	"После налога",
	"Зарплата",
	"Расходы",
	"Чистая прибыль",
	"КВВ",
	"КМС",
	"Оплачено организацией",
	"Выплачено промоутеру",
	"Оплачено КВВ",
	"Оплачено КМС",
	"Счёт выставлен",
}

// File is a rendered workbook together with the name it is served and
// stored under.
type File struct {
	Name        string
	GeneratedAt time.Time
	Data        []byte
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(report Report) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", ShiftsSheet); err != nil {
		return nil, fmt.Errorf("rename shifts sheet: %w", err)
	}
	if err := g.writeShifts(file, ShiftsSheet, report.Rows); err != nil {
		return nil, err
	}

	if _, err := file.NewSheet(TotalsSheet); err != nil {
		return nil, fmt.Errorf("create totals sheet: %w", err)
	}
	g.writeTotals(file, TotalsSheet, report)

	if len(report.Groups) > 0 {
		if _, err := file.NewSheet(BreakdownSheet); err != nil {
			return nil, fmt.Errorf("create breakdown sheet: %w", err)
		}
		g.writeBreakdown(file, BreakdownSheet, report.Groups)
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeShifts(file *excelize.File, sheet string, rows []domain.ShiftRow) error {
	set := func(col, row int, value interface{}) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = file.SetCellValue(sheet, cell, value)
	}

	for i, header := range shiftHeaders {
		set(i+1, 1, header)
	}

	for i, r := range rows {
		row := i + 2
		values := []interface{}{
			formatDate(r.Date),
			r.StartTime,
			r.EndTime,
			r.OrganizationName,
			r.PromoterName,
			r.ContactsCount,
			r.ContactRate,
			paymentLabel(r.PaymentType),
			r.Economics.Revenue,
			r.Economics.Tax,
			r.Economics.AfterTax,
			r.Economics.Salary,
			r.ExpenseAmount,
			r.Economics.NetProfit,
			r.Economics.KVVShare,
			r.Economics.KMSShare,
			yesNo(r.PaidByOrganization),
			yesNo(r.PaidToWorker),
			yesNo(r.PaidKVV),
			yesNo(r.PaidKMS),
			yesNo(r.InvoiceIssued),
		}
		for col, v := range values {
			set(col+1, row, v)
		}
	}

	if err := file.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	_ = file.SetColWidth(sheet, "A", "C", 12)
	_ = file.SetColWidth(sheet, "D", "E", 32)
	_ = file.SetColWidth(sheet, "F", "P", 14)
	_ = file.SetColWidth(sheet, "Q", "U", 22)
	return nil
}

func (g *Generator) writeTotals(file *excelize.File, sheet string, report Report) {
	stats := report.Statistics
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	lines := []struct {
		label string
		value interface{}
	}{
		{"Сформирован", report.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Начало периода", formatDate(report.Filter.DateRange.From)},
		{"Конец периода", formatDate(report.Filter.DateRange.To)},
		{"Смен", stats.ShiftCount},
		{"Контактов", stats.TotalContacts},
		{"Выручка", stats.TotalRevenue},
		{"Налог", stats.TotalTax},
		{"После налога", stats.TotalAfterTax},
		{"Зарплата", stats.TotalSalary},
		{"Расходы", stats.TotalExpenses},
		{"Чистая прибыль", stats.TotalNetProfit},
		{"КВВ", stats.TotalKVV},
		{"КМС", stats.TotalKMS},
		{"Долг по зарплате", stats.SalaryDebt.Total},
		{"Долг КВВ", stats.KVVDebt.Total},
		{"Долг КМС", stats.KMSDebt.Total},
		{"Ожидается от организаций", stats.ExpectedRevenue.Total},
		{"Ожидается наличными", stats.ExpectedRevenue.Cash},
		{"Ожидается безналом", stats.ExpectedRevenue.Cashless},
		{"Без счёта", stats.UninvoicedRevenue},
	}

	for i, line := range lines {
		row := i + 1
		set(fmt.Sprintf("A%d", row), line.label)
		set(fmt.Sprintf("B%d", row), line.value)
	}

	_ = file.SetColWidth(sheet, "A", "A", 32)
	_ = file.SetColWidth(sheet, "B", "B", 20)
}

func (g *Generator) writeBreakdown(file *excelize.File, sheet string, groups []domain.GroupStatistics) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Организация")
	set("B1", "Смен")
	set("C1", "Выручка")
	set("D1", "Чистая прибыль")
	set("E1", "КВВ")
	set("F1", "КМС")

	for i, group := range groups {
		row := i + 2
		set(fmt.Sprintf("A%d", row), group.Name)
		set(fmt.Sprintf("B%d", row), group.Statistics.ShiftCount)
		set(fmt.Sprintf("C%d", row), group.Statistics.TotalRevenue)
		set(fmt.Sprintf("D%d", row), group.Statistics.TotalNetProfit)
		set(fmt.Sprintf("E%d", row), group.Statistics.TotalKVV)
		set(fmt.Sprintf("F%d", row), group.Statistics.TotalKMS)
	}

	_ = file.SetColWidth(sheet, "A", "A", 40)
	_ = file.SetColWidth(sheet, "B", "F", 16)
}

// ObjectKey is where a report generated at t is stored.
func ObjectKey(prefix string, t time.Time) string {
	name := fmt.Sprintf("shifts-%s.xlsx", t.UTC().Format("20060102-150405"))
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func paymentLabel(pt domain.PaymentType) string {
	switch pt {
	case domain.PaymentCashless:
		return "Безнал"
	case domain.PaymentCash:
		return "Наличные"
	default:
		return string(pt)
	}
}

func yesNo(v bool) string {
	if v {
		return "да"
	}
	return "нет"
}
