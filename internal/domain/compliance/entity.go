package compliance

import "github.com/shopspring/decimal"

// Result holds the statutory amounts computed for one employee-month.
type Result struct {
	GrossEarnings decimal.Decimal `json:"gross_earnings"`
	PFWageBase    decimal.Decimal `json:"pf_wage_base"`
	PFEmployee    decimal.Decimal `json:"pf_employee"`
	PFEmployer    decimal.Decimal `json:"pf_employer"`
	ESICEmployee  decimal.Decimal `json:"esic_employee"`
	ESICEmployer  decimal.Decimal `json:"esic_employer"`
	PTAmount      decimal.Decimal `json:"pt_amount"`
	TDSAmount     decimal.Decimal `json:"tds_amount"`
	State         string          `json:"state"`
}

// EmployeeDeductions sums the amounts withheld from the employee.
func (r Result) EmployeeDeductions() decimal.Decimal {
	return r.PFEmployee.Add(r.ESICEmployee).Add(r.PTAmount).Add(r.TDSAmount)
}

// EmployerContributions sums the amounts paid on top of gross by the employer.
func (r Result) EmployerContributions() decimal.Decimal {
	return r.PFEmployer.Add(r.ESICEmployer)
}

// Slab is one professional tax tier: gross at or above From owes Amount.
type Slab struct {
	From   decimal.Decimal
	Amount decimal.Decimal
}

// SlabTable is a state's ascending list of slabs.
type SlabTable []Slab

// Lookup returns the amount of the highest slab reached by gross.
func (t SlabTable) Lookup(gross decimal.Decimal) decimal.Decimal {
	amount := decimal.Zero
	for _, s := range t {
		if gross.LessThan(s.From) {
			break
		}
		amount = s.Amount
	}
	return amount
}
