// Package report renders one projection run as a spreadsheet or a PDF.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/SscSPs/majik_runway/internal/core/domain"
)

const (
	summarySheet  = "summary"
	cashflowSheet = "cashflow"
)

var cashflowHeader = []string{
	"Month", "Revenue", "Funding In", "Cash In", "Expenses", "Depreciation",
	"Debt Principal", "Debt Interest", "Cash Out", "Taxes", "Ending Cash",
}

func cashflowRow(cf domain.Cashflow) []any {
	return []any{
		cf.Month.String(),
		cf.Revenue.ToMajor(),
		cf.FundingIn.ToMajor(),
		cf.CashIn.ToMajor(),
		cf.Expenses.ToMajor(),
		cf.Depreciation.ToMajor(),
		cf.DebtPrincipal.ToMajor(),
		cf.DebtInterest.ToMajor(),
		cf.CashOut.ToMajor(),
		cf.TotalTaxes().ToMajor(),
		cf.EndingCash.ToMajor(),
	}
}

func optionalPercent(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *v*100)
}

func optionalRatio(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func orNA(m domain.YYYYMM) string {
	if m == "" {
		return "n/a"
	}
	return m.String()
}

// summaryLines are the headline figures shared by both formats.
func summaryLines(title string, s domain.DashboardSnapshot) [][2]string {
	return [][2]string{
		{"Model", title},
		{"Currency", s.Currency},
		{"Start", s.StartMonth.String()},
		{"Horizon (months)", fmt.Sprint(s.HorizonMonths)},
		{"Opening Cash", s.OpeningCash.Format()},
		{"Ending Cash", s.EndingCash.Format()},
		{"Runway (months)", fmt.Sprint(s.RunwayMonths)},
		{"Cash Zero Month", orNA(s.CashZeroMonth)},
		{"Average Monthly Burn", s.AverageMonthlyBurn.Format()},
		{"Average Net Burn", s.AverageNetBurn.Format()},
		{"Average Monthly Revenue", s.AverageMonthlyRevenue.Format()},
		{"Revenue Growth (MoM)", optionalPercent(s.RevenueGrowthMoM)},
		{"Revenue CMGR", optionalPercent(s.RevenueCMGR)},
		{"Burn Multiple", optionalRatio(s.BurnMultiple)},
		{"Break-even Month", orNA(s.BreakEvenMonth)},
		{"EBITDA", s.EBITDA.Format()},
		{"Net Income", s.NetIncome.Format()},
		{"Total Funding", s.TotalFunding.Format()},
		{"Non-repayable Funding", s.TotalNonRepayable.Format()},
		{"Health", strings.ToUpper(string(s.Health.Status))},
	}
}

// BuildCashflowXLSX renders a summary sheet and one row per projected month.
func BuildCashflowXLSX(title string, s domain.DashboardSnapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(cashflowSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Runway Dashboard")
	row := 3
	for _, line := range summaryLines(title, s) {
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), line[0])
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), line[1])
		row++
	}
	for _, reason := range s.Health.Reasons {
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Reason")
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), reason)
		row++
	}

	if err := f.SetSheetRow(cashflowSheet, "A1", &cashflowHeader); err != nil {
		return nil, err
	}
	for i, cf := range s.Cashflows {
		values := cashflowRow(cf)
		if err := f.SetSheetRow(cashflowSheet, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildDashboardPDF renders the headline figures and the monthly ledger.
func BuildDashboardPDF(title string, s domain.DashboardSnapshot) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Runway Dashboard")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	for _, line := range summaryLines(title, s) {
		pdf.Cell(0, 6, fmt.Sprintf("%s: %s", line[0], line[1]))
		pdf.Ln(5)
	}
	for _, reason := range s.Health.Reasons {
		pdf.Cell(0, 6, "- "+reason)
		pdf.Ln(5)
	}
	pdf.Ln(4)

	widths := []float64{20, 24, 24, 24, 24, 24, 26, 24, 24, 22, 26}
	pdf.SetFont("Arial", "B", 8)
	for i, h := range cashflowHeader {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 8)
	for _, cf := range s.Cashflows {
		for i, v := range cashflowRow(cf) {
			text, align := fmt.Sprint(v), "C"
			if amount, ok := v.(float64); ok {
				text, align = fmt.Sprintf("%.2f", amount), "R"
			}
			pdf.CellFormat(widths[i], 6, text, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
