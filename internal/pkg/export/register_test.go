package export

import (
	"bytes"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRegister(t *testing.T) {
	code, name := "EMP-001", "Asha Patel"
	runs := []payroll.Run{
		{
			EmployeeCode:    &code,
			EmployeeName:    &name,
			WorkState:       "GJ",
			GrossEarnings:   decimal.NewFromInt(45000),
			TotalDeductions: decimal.NewFromInt(2000),
			NetPay:          decimal.NewFromInt(43000),
			EmployerCost:    decimal.NewFromInt(46800),
			Basis: attendance.Basis{
				WorkingDays: decimal.NewFromInt(22),
				PayableDays: decimal.NewFromInt(21),
				LOPDays:     decimal.NewFromInt(1),
			},
			LineItems: []payroll.LineItem{
				{Code: "BASIC", Amount: decimal.NewFromInt(30000)},
				{Code: payroll.CodePT, Amount: decimal.NewFromInt(200)},
			},
		},
	}

	data, err := Register(payroll.Period{Month: 6, Year: 2026, Status: payroll.PeriodStatusLocked}, runs)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{registerSheet}, f.GetSheetList())

	title, err := f.GetCellValue(registerSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Payroll Register June 2026 (locked)", title)

	summary, err := f.GetCellValue(registerSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "1 employees, gross 45,000.00, net 43,000.00, employer cost 46,800.00", summary)

	rows, err := f.GetRows(registerSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, append(append([]string{}, fixedColumns...), "BASIC", "PT"), rows[2])
	assert.Equal(t, "EMP-001", rows[3][0])
	assert.Equal(t, "43000", rows[3][8])
	assert.Equal(t, "30000", rows[3][10])
	assert.Equal(t, "200", rows[3][11])
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1,234,567.50", FormatAmount(decimal.RequireFromString("1234567.5")))
	assert.Equal(t, "0.00", FormatAmount(decimal.Zero))
	assert.Equal(t, "17,850.00", FormatAmount(decimal.NewFromInt(17850)))
	assert.Equal(t, "12,345,678,901,234.57", FormatAmount(decimal.RequireFromString("12345678901234.567")))
	assert.Equal(t, "-1,500.25", FormatAmount(decimal.RequireFromString("-1500.25")))
	assert.Equal(t, "999.99", FormatAmount(decimal.RequireFromString("999.99")))
}
