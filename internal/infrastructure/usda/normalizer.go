package usda

import (
	"fmt"
	"strings"

	"github.com/kmfahey/nutritracker/internal/domain"
)

// unitAliases folds the spellings the FDC uses onto the catalog's unit names
var unitAliases = map[string]string{
	"ug": "mcg",
	"µg": "mcg",
	"μg": "mcg",
}

type conversionRule struct {
	from    string
	divisor float64
}

// conversions is keyed by field symbol. A rule only fires when the raw unit
// matches its from unit.
var conversions = map[string]conversionRule{
	domain.SymbolVitaminD: {from: "iu", divisor: 40},
}

// Normalized is a nutrient amount expressed in the catalog's unit when the
// FDC unit could be reconciled. Mismatch is set when it could not be, in which
// case Value carries the raw amount and unit.
type Normalized struct {
	Value    domain.NutrientValue
	Mismatch bool
	RawUnit  string
}

func canonicalUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if alias, ok := unitAliases[u]; ok {
		return alias
	}
	return u
}

// NormalizeNutrient maps one FDC nutrient entry onto the catalog. The bool is
// false when the entry is skipped: its code is not in the catalog, or its
// amount is absent or zero.
func NormalizeNutrient(entry domain.FDCNutrientEntry) (Normalized, bool, error) {
	code, ok := entry.Nutrient.Code()
	if !ok {
		return Normalized{}, false, nil
	}
	kind, ok := domain.KindByCode(code)
	if !ok || entry.Amount == nil {
		return Normalized{}, false, nil
	}

	amount, err := entry.Amount.Float()
	if err != nil {
		return Normalized{}, false, fmt.Errorf("nutrient %s: %w", kind.Symbol, err)
	}
	if amount == 0 {
		return Normalized{}, false, nil
	}
	value, err := domain.NewNutrientValue(kind, amount)
	if err != nil {
		return Normalized{}, false, err
	}

	unit := canonicalUnit(entry.Nutrient.UnitName)
	out := Normalized{Value: value, RawUnit: entry.Nutrient.UnitName}
	rule, hasRule := conversions[kind.Symbol]
	switch {
	case unit == "" || unit == kind.Unit:
	case hasRule && rule.from == unit:
		out.Value.Amount = value.Amount / rule.divisor
	default:
		out.Value.Unit = unit
		out.Mismatch = true
	}
	return out, true, nil
}
