package pdf

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/nurpe/termination-service/internal/model"
)

//go:embed fonts/DejaVuSansCondensed.ttf
var defaultRegularFont []byte

//go:embed fonts/DejaVuSansCondensed-Bold.ttf
var defaultBoldFont []byte

type Generator struct {
	fontName    string
	regularFont []byte
	boldFont    []byte
	compress    bool
}

// NewGenerator loads the TrueType fonts used for statements. Empty paths fall
// back to the embedded DejaVu faces, which cover Latin, Greek and Cyrillic;
// deployments serving CJK customers point regularPath at a CJK TrueType font.
func NewGenerator(regularPath, boldPath string) (*Generator, error) {
	regular, err := loadFont(regularPath, defaultRegularFont)
	if err != nil {
		return nil, err
	}
	bold := regular
	switch {
	case boldPath != "":
		if bold, err = loadFont(boldPath, nil); err != nil {
			return nil, err
		}
	case regularPath == "":
		bold = defaultBoldFont
	}
	return &Generator{
		fontName:    "StatementSans",
		regularFont: regular,
		boldFont:    bold,
		compress:    true,
	}, nil
}

func loadFont(path string, fallback []byte) ([]byte, error) {
	data := fallback
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", path, err)
		}
		data = raw
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("font data is empty")
	}
	// gofpdf embeds glyf-based TrueType only; CFF flavoured OpenType starts with OTTO.
	if len(data) < 4 || !(bytes.Equal(data[:4], []byte{0, 1, 0, 0}) || bytes.Equal(data[:4], []byte("true"))) {
		return nil, fmt.Errorf("font %q is not a TrueType font", path)
	}
	return data, nil
}

// Generate renders the settlement statement of a case.
func (g *Generator) Generate(view model.CaseView) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(g.compress)
	pdf.SetMargins(15, 15, 15)
	pdf.AddUTF8FontFromBytes(g.fontName, "", g.regularFont)
	pdf.AddUTF8FontFromBytes(g.fontName, "B", g.boldFont)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Deposit Settlement Statement", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Contract %s", safeValue(view.ContractNumber)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Case %s", view.ID), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(0, 6, "Customer", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	for _, line := range []string{
		safeValue(view.CustomerName),
		fmt.Sprintf("Company: %s", safeValue(view.CustomerCompany)),
		fmt.Sprintf("Termination type: %s", view.TerminationType),
		fmt.Sprintf("Notice date: %s", formatDate(view.NoticeDate)),
		fmt.Sprintf("Contract end date: %s", formatDate(view.ContractEndDate)),
		fmt.Sprintf("Documents approved: %s", formatDatePtr(view.DocApprovedDate)),
	} {
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Settlement", "", 1, "L", false, 0, "")

	colWidths := []float64{120, 60}
	drawTableRow(pdf, g.fontName, []string{"Item", "Amount"}, colWidths, true)

	days := 0
	if view.DeductionDays != nil {
		days = *view.DeductionDays
	}
	rows := [][]string{
		{"Deposit held", formatAmount(view.DepositAmount)},
		{fmt.Sprintf("Overrun deduction (%d days at %s)", days, formatOptionalRate(view.DailyRate)), "-" + formatOptionalAmount(view.DeductionAmount)},
		{"Other deductions", "-" + formatAmount(view.OtherDeductions)},
		{fmt.Sprintf("Unpaid receivables (%d)", view.PendingPaymentCount), "-" + formatAmount(view.ArrearsAmount)},
	}
	for _, row := range rows {
		drawTableRow(pdf, g.fontName, row, colWidths, false)
	}
	if view.OtherDeductionNotes != nil {
		pdf.SetFont(g.fontName, "", 9)
		pdf.MultiCell(0, 5, "Other deductions: "+safePtr(view.OtherDeductionNotes), "", "L", false)
	}

	pdf.Ln(2)
	pdf.SetFont(g.fontName, "B", 12)
	if view.IsBadDebt {
		pdf.SetTextColor(200, 0, 0)
		pdf.CellFormat(0, 8, fmt.Sprintf("Outstanding balance (bad debt): %s", formatOptionalAmount(view.BadDebtAmount)), "", 1, "R", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 6, fmt.Sprintf("Reported to authority: %s", formatDatePtr(view.AuthorityReportedDate)), "", 1, "R", false, 0, "")
		pdf.CellFormat(0, 6, fmt.Sprintf("Authority response: %s", formatDatePtr(view.AuthorityResponseDate)), "", 1, "R", false, 0, "")
	} else {
		pdf.CellFormat(0, 8, fmt.Sprintf("Refund due: %s", formatOptionalAmount(view.RefundAmount)), "", 1, "R", false, 0, "")
		if view.RefundMethod != nil {
			pdf.SetFont(g.fontName, "", 10)
			pdf.CellFormat(0, 6, fmt.Sprintf("Refunded by %s %s", *view.RefundMethod, safePtr(view.RefundAccount)), "", 1, "R", false, 0, "")
		}
	}

	pdf.Ln(8)
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, "Operator: ______________________", "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Customer: ______________________", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return basicPlane(value)
}

func safePtr(value *string) string {
	if value == nil {
		return ""
	}
	return basicPlane(*value)
}

// basicPlane replaces runes the UTF-8 font tables cannot index, such as emoji.
func basicPlane(value string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xFFFF {
			return unicode.ReplacementChar
		}
		return r
	}, value)
}

func formatAmount(value decimal.Decimal) string {
	return value.StringFixed(2)
}

func formatOptionalAmount(value *decimal.Decimal) string {
	if value == nil {
		return "-"
	}
	return value.StringFixed(2)
}

func formatOptionalRate(value *decimal.Decimal) string {
	if value == nil {
		return "-"
	}
	return value.StringFixed(4)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDate(*t)
}
