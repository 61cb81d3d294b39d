// Package export renders payroll registers as spreadsheets.
package export

import (
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/xuri/excelize/v2"
)

const registerSheet = "Register"

var fixedColumns = []string{
	"Employee Code",
	"Employee Name",
	"State",
	"Working Days",
	"Payable Days",
	"LOP Days",
	"Gross Earnings",
	"Total Deductions",
	"Net Pay",
	"Employer Cost",
}

// Register writes one row per run, followed by one column per line item code
// seen in any run, and returns the XLSX bytes.
func Register(period payroll.Period, runs []payroll.Run) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(registerSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	title := fmt.Sprintf("Payroll Register %s %d (%s)", time.Month(period.Month), period.Year, period.Status)
	f.SetCellValue(registerSheet, "A1", title)
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("failed to create title style: %w", err)
	}
	f.SetCellStyle(registerSheet, "A1", "A1", titleStyle)
	f.SetCellValue(registerSheet, "A2", Summarize(runs).String())

	codes := lineItemCodes(runs)
	headers := append(append([]string{}, fixedColumns...), codes...)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		f.SetCellValue(registerSheet, cell, h)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 3)
	f.SetCellStyle(registerSheet, "A3", lastHeader, headerStyle)

	for r, run := range runs {
		row := r + 4
		values := []any{
			deref(run.EmployeeCode),
			deref(run.EmployeeName),
			run.WorkState,
			run.Basis.WorkingDays.InexactFloat64(),
			run.Basis.PayableDays.InexactFloat64(),
			run.Basis.LOPDays.InexactFloat64(),
			run.GrossEarnings.InexactFloat64(),
			run.TotalDeductions.InexactFloat64(),
			run.NetPay.InexactFloat64(),
			run.EmployerCost.InexactFloat64(),
		}
		for _, code := range codes {
			if li, ok := run.LineItem(code); ok {
				values = append(values, li.Amount.InexactFloat64())
			} else {
				values = append(values, nil)
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(registerSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func lineItemCodes(runs []payroll.Run) []string {
	seen := make(map[string]bool)
	var codes []string
	for _, run := range runs {
		for _, li := range run.LineItems {
			if !seen[li.Code] {
				seen[li.Code] = true
				codes = append(codes, li.Code)
			}
		}
	}
	sort.Strings(codes)
	return codes
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
