package compensation

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	CodeBasic = "BASIC"
	CodeDA    = "DA"
)

// Reserved statutory codes are computed by the compliance calculator and never
// taken from the declared amount.
var statutoryBaseCodes = map[string]struct{}{
	"PF":               {},
	"EPF":              {},
	"ESI":              {},
	"ESIC":             {},
	"PT":               {},
	"PROF_TAX":         {},
	"PROFESSIONAL_TAX": {},
	"TDS":              {},
}

// longest first so _EMPLOYEE is not mistaken for _EE
var statutorySuffixes = []string{"_EMPLOYEE", "_EMPLOYER", "_EE", "_ER"}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsStatutoryCode reports whether code is a reserved statutory code or one of
// its employee/employer variants.
func IsStatutoryCode(code string) bool {
	c := NormalizeCode(code)
	if _, ok := statutoryBaseCodes[c]; ok {
		return true
	}
	for _, suffix := range statutorySuffixes {
		if base, found := strings.CutSuffix(c, suffix); found {
			_, ok := statutoryBaseCodes[base]
			return ok
		}
	}
	return false
}

// DeclaresStatutory reports whether any declared component is statutory.
func DeclaresStatutory(components []PayComponent) bool {
	for _, c := range components {
		if IsStatutoryCode(c.Code) {
			return true
		}
	}
	return false
}

// Classify resolves a component type from its explicit type, then the
// definition lookup, then the sign of the annual amount.
func Classify(pc PayComponent, definitions map[string]ComponentDefinition) ComponentType {
	if pc.Type != nil && pc.Type.IsValid() {
		return *pc.Type
	}
	if def, ok := definitions[NormalizeCode(pc.Code)]; ok && def.Type.IsValid() {
		return def.Type
	}
	if pc.AnnualAmount.IsNegative() {
		return ComponentTypeDeduction
	}
	return ComponentTypeEarning
}

// DisplayName picks the declared name, then the definition name, then the code.
func DisplayName(pc PayComponent, definitions map[string]ComponentDefinition) string {
	if pc.Name != nil && strings.TrimSpace(*pc.Name) != "" {
		return *pc.Name
	}
	if def, ok := definitions[NormalizeCode(pc.Code)]; ok && def.Name != "" {
		return def.Name
	}
	return pc.Code
}

var twelve = decimal.NewFromInt(12)

// MonthlyAmount converts a signed annual amount to a monthly magnitude.
func MonthlyAmount(annual decimal.Decimal) decimal.Decimal {
	return annual.Abs().Div(twelve).Round(2)
}

// Prorate scales a monthly amount by payable/working days. A month without
// working days prorates to zero.
func Prorate(monthly, payableDays, workingDays decimal.Decimal) decimal.Decimal {
	if !workingDays.IsPositive() {
		return decimal.Zero
	}
	return monthly.Mul(payableDays).Div(workingDays).Round(2)
}
