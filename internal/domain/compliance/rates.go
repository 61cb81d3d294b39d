package compliance

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	PFWageCeiling    = decimal.NewFromInt(15000)
	PFEmployeeRate   = decimal.RequireFromString("0.12")
	PFEmployerRate   = decimal.RequireFromString("0.12")
	ESICGrossLimit   = decimal.NewFromInt(21000)
	ESICEmployeeRate = decimal.RequireFromString("0.0075")
	ESICEmployerRate = decimal.RequireFromString("0.0325")
)

func slabs(pairs ...int64) SlabTable {
	t := make(SlabTable, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		t = append(t, Slab{From: decimal.NewFromInt(pairs[i]), Amount: decimal.NewFromInt(pairs[i+1])})
	}
	return t
}

// ProfessionalTaxSlabs maps a state code to its monthly slab table. States
// without an entry owe no professional tax.
var ProfessionalTaxSlabs = map[string]SlabTable{
	"GJ": slabs(0, 0, 6000, 80, 9000, 150, 12000, 200),
	"MH": slabs(0, 0, 7501, 175, 10001, 200),
	"KA": slabs(0, 0, 25000, 200),
	"WB": slabs(0, 0, 10001, 110, 15001, 130, 25001, 150, 40001, 200),
	"AP": slabs(0, 0, 15001, 150, 20001, 200),
	"TS": slabs(0, 0, 15001, 150, 20001, 200),
	"AS": slabs(0, 0, 10001, 150, 15000, 180, 25000, 208),
}

// CalculatePT looks up the professional tax owed on a monthly gross.
func CalculatePT(gross decimal.Decimal, state string) decimal.Decimal {
	table, ok := ProfessionalTaxSlabs[strings.ToUpper(strings.TrimSpace(state))]
	if !ok {
		return decimal.Zero
	}
	return table.Lookup(gross)
}
