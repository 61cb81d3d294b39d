package compensation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsStatutoryCode(t *testing.T) {
	statutory := []string{
		"PF", "pf", "PF_EE", "PF_ER", "EPF", "ESI", "ESIC", "ESIC_EE", "ESIC_ER",
		"PT", "PROF_TAX", "PROFESSIONAL_TAX", "TDS", "PF_EMPLOYEE", "ESIC_EMPLOYER", " tds ",
	}
	for _, code := range statutory {
		assert.True(t, IsStatutoryCode(code), code)
	}

	regular := []string{"BASIC", "DA", "HRA", "SPECIAL", "PF_BONUS", "PTA", "EE", "_EE", ""}
	for _, code := range regular {
		assert.False(t, IsStatutoryCode(code), code)
	}
}

func TestClassify(t *testing.T) {
	defs := map[string]ComponentDefinition{
		"GRATUITY": {Code: "GRATUITY", Name: "Gratuity", Type: ComponentTypeEmployerCost},
		"LOAN":     {Code: "LOAN", Name: "Loan Recovery", Type: ComponentTypeDeduction},
	}
	deduction := ComponentTypeDeduction
	bogus := ComponentType("bonus")

	t.Run("explicit type wins", func(t *testing.T) {
		pc := PayComponent{Code: "GRATUITY", AnnualAmount: decimal.NewFromInt(1200), Type: &deduction}
		assert.Equal(t, ComponentTypeDeduction, Classify(pc, defs))
	})

	t.Run("definition lookup", func(t *testing.T) {
		pc := PayComponent{Code: "gratuity", AnnualAmount: decimal.NewFromInt(1200)}
		assert.Equal(t, ComponentTypeEmployerCost, Classify(pc, defs))
	})

	t.Run("invalid explicit type falls through", func(t *testing.T) {
		pc := PayComponent{Code: "LOAN", AnnualAmount: decimal.NewFromInt(1200), Type: &bogus}
		assert.Equal(t, ComponentTypeDeduction, Classify(pc, defs))
	})

	t.Run("sign fallback", func(t *testing.T) {
		assert.Equal(t, ComponentTypeEarning, Classify(PayComponent{Code: "HRA", AnnualAmount: decimal.NewFromInt(100)}, defs))
		assert.Equal(t, ComponentTypeDeduction, Classify(PayComponent{Code: "CANTEEN", AnnualAmount: decimal.NewFromInt(-100)}, defs))
	})
}

func TestDisplayName(t *testing.T) {
	defs := map[string]ComponentDefinition{"HRA": {Code: "HRA", Name: "House Rent Allowance", Type: ComponentTypeEarning}}
	name := "Rent"

	assert.Equal(t, "Rent", DisplayName(PayComponent{Code: "HRA", Name: &name}, defs))
	assert.Equal(t, "House Rent Allowance", DisplayName(PayComponent{Code: "HRA"}, defs))
	assert.Equal(t, "SPECIAL", DisplayName(PayComponent{Code: "SPECIAL"}, defs))
}

func TestProrate(t *testing.T) {
	monthly := MonthlyAmount(decimal.NewFromInt(360000))
	assert.True(t, decimal.NewFromInt(30000).Equal(monthly))

	t.Run("full month equals monthly", func(t *testing.T) {
		w := decimal.NewFromInt(22)
		assert.True(t, monthly.Equal(Prorate(monthly, w, w)))
	})

	t.Run("partial month rounds to two places", func(t *testing.T) {
		got := Prorate(monthly, decimal.NewFromInt(21), decimal.NewFromInt(22))
		assert.Equal(t, "28636.36", got.StringFixed(2))
	})

	t.Run("zero working days", func(t *testing.T) {
		assert.True(t, Prorate(monthly, decimal.Zero, decimal.Zero).IsZero())
	})

	t.Run("uneven annual amount", func(t *testing.T) {
		m := MonthlyAmount(decimal.NewFromInt(-100001))
		assert.Equal(t, "8333.42", m.StringFixed(2))
	})
}
