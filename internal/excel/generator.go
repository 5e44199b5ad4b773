package excel

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/termination-service/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate writes a summary sheet with totals per status and a detail sheet
// with one row per case.
func (g *Generator) Generate(cases []model.CaseView) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	summarySheet := "Summary"
	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	g.writeSummary(file, summarySheet, cases)

	detailSheet := "Cases"
	if _, err := file.NewSheet(detailSheet); err != nil {
		return nil, err
	}
	g.writeDetail(file, detailSheet, cases)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type statusTotals struct {
	count   int
	refund  decimal.Decimal
	badDebt decimal.Decimal
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, cases []model.CaseView) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	order := []model.CaseStatus{
		model.CaseStatusNoticeReceived,
		model.CaseStatusMovingOut,
		model.CaseStatusPendingDoc,
		model.CaseStatusPendingSettlement,
		model.CaseStatusPendingAuthority,
		model.CaseStatusCompleted,
		model.CaseStatusCancelled,
	}
	totals := make(map[model.CaseStatus]*statusTotals, len(order))
	for _, status := range order {
		totals[status] = &statusTotals{}
	}
	for _, c := range cases {
		t, ok := totals[c.Status]
		if !ok {
			continue
		}
		t.count++
		if c.RefundAmount != nil {
			t.refund = t.refund.Add(*c.RefundAmount)
		}
		if c.BadDebtAmount != nil {
			t.badDebt = t.badDebt.Add(*c.BadDebtAmount)
		}
	}

	set("A1", "Generated at")
	set("B1", time.Now().UTC().Format("2006-01-02 15:04"))
	set("A2", "Cases")
	set("B2", len(cases))

	tableRow := 4
	set(fmt.Sprintf("A%d", tableRow), "Status")
	set(fmt.Sprintf("B%d", tableRow), "Cases")
	set(fmt.Sprintf("C%d", tableRow), "Refunds")
	set(fmt.Sprintf("D%d", tableRow), "Bad debt")
	for i, status := range order {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), string(status))
		set(fmt.Sprintf("B%d", row), totals[status].count)
		set(fmt.Sprintf("C%d", row), formatMoney(totals[status].refund))
		set(fmt.Sprintf("D%d", row), formatMoney(totals[status].badDebt))
	}

	_ = file.SetColWidth(sheet, "A", "A", 24)
	_ = file.SetColWidth(sheet, "B", "D", 16)
}

func (g *Generator) writeDetail(file *excelize.File, sheet string, cases []model.CaseView) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{
		"Contract",
		"Customer",
		"Company",
		"Type",
		"Status",
		"Notice date",
		"Contract end",
		"Progress",
		"Deposit",
		"Deduction",
		"Other deductions",
		"Arrears",
		"Refund",
		"Bad debt",
		"Created",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, c := range cases {
		row := i + 2
		values := []interface{}{
			c.ContractNumber,
			c.CustomerName,
			c.CustomerCompany,
			string(c.TerminationType),
			string(c.Status),
			formatDate(c.NoticeDate),
			formatDate(c.ContractEndDate),
			fmt.Sprintf("%d/%d", c.Progress, c.TotalSteps),
			formatMoney(c.DepositAmount),
			formatOptionalMoney(c.DeductionAmount),
			formatMoney(c.OtherDeductions),
			formatMoney(c.ArrearsAmount),
			formatOptionalMoney(c.RefundAmount),
			formatOptionalMoney(c.BadDebtAmount),
			c.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			set(cell, value)
		}
	}

	_ = file.SetColWidth(sheet, "A", "A", 16)
	_ = file.SetColWidth(sheet, "B", "C", 28)
	_ = file.SetColWidth(sheet, "D", "H", 16)
	_ = file.SetColWidth(sheet, "I", "N", 14)
	_ = file.SetColWidth(sheet, "O", "O", 18)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatMoney(value decimal.Decimal) string {
	return value.StringFixed(2)
}

func formatOptionalMoney(value *decimal.Decimal) string {
	if value == nil {
		return ""
	}
	return value.StringFixed(2)
}
