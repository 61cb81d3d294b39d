package export

import (
	"strings"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatAmount renders a rupee amount with grouped thousands and two decimals.
// Digits come from the decimal itself, so large amounts stay exact.
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// Totals sums the money columns of runs.
type Totals struct {
	Employees       int
	GrossEarnings   decimal.Decimal
	TotalDeductions decimal.Decimal
	NetPay          decimal.Decimal
	EmployerCost    decimal.Decimal
}

func Summarize(runs []payroll.Run) Totals {
	t := Totals{Employees: len(runs)}
	for _, run := range runs {
		t.GrossEarnings = t.GrossEarnings.Add(run.GrossEarnings)
		t.TotalDeductions = t.TotalDeductions.Add(run.TotalDeductions)
		t.NetPay = t.NetPay.Add(run.NetPay)
		t.EmployerCost = t.EmployerCost.Add(run.EmployerCost)
	}
	return t
}

func (t Totals) String() string {
	return printer.Sprintf("%d employees, gross %s, net %s, employer cost %s",
		t.Employees,
		FormatAmount(t.GrossEarnings),
		FormatAmount(t.NetPay),
		FormatAmount(t.EmployerCost),
	)
}
