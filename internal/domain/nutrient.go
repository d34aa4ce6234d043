package domain

import (
	"fmt"
	"math"
)

// NutrientKind describes one tracked nutrient. Code is the FDC nutrient number
// and Symbol is the field name used in stored records.
type NutrientKind struct {
	Code   int    `json:"fdc_code"`
	Name   string `json:"name"`
	Unit   string `json:"units"`
	Symbol string `json:"symbol"`
}

// Field symbols for the nutrients that other packages refer to by name
const (
	SymbolProtein       = "protein_g"
	SymbolTotalFat      = "total_fat_g"
	SymbolCarbohydrates = "total_carbohydrates_g"
	SymbolEnergy        = "energy_kcal"
	SymbolVitaminD      = "vitamin_D_mcg"
)

// CodeEnergy is the FDC nutrient number for energy in kcal
const CodeEnergy = 208

var catalog = []NutrientKind{
	{Code: 203, Name: "protein (g)", Unit: "g", Symbol: SymbolProtein},
	{Code: 204, Name: "total fat (g)", Unit: "g", Symbol: SymbolTotalFat},
	{Code: 205, Name: "total carbohydrates (g)", Unit: "g", Symbol: SymbolCarbohydrates},
	{Code: CodeEnergy, Name: "energy (kcal)", Unit: "kcal", Symbol: SymbolEnergy},
	{Code: 269, Name: "sugars (g)", Unit: "g", Symbol: "sugars_g"},
	{Code: 291, Name: "dietary fiber (g)", Unit: "g", Symbol: "dietary_fiber_g"},
	{Code: 301, Name: "calcium (mg)", Unit: "mg", Symbol: "calcium_mg"},
	{Code: 303, Name: "iron (mg)", Unit: "mg", Symbol: "iron_mg"},
	{Code: 304, Name: "magnesium (mg)", Unit: "mg", Symbol: "magnesium_mg"},
	{Code: 305, Name: "phosphorus (mg)", Unit: "mg", Symbol: "phosphorous_mg"},
	{Code: 306, Name: "potassium (mg)", Unit: "mg", Symbol: "potassium_mg"},
	{Code: 307, Name: "sodium (mg)", Unit: "mg", Symbol: "sodium_mg"},
	{Code: 309, Name: "zinc (mg)", Unit: "mg", Symbol: "zinc_mg"},
	{Code: 312, Name: "copper (mg)", Unit: "mg", Symbol: "copper_mg"},
	{Code: 314, Name: "iodine (mcg)", Unit: "mcg", Symbol: "iodine_mcg"},
	{Code: 323, Name: "vitamin E (mg)", Unit: "mg", Symbol: "vitamin_E_mg"},
	{Code: 324, Name: "vitamin D (mcg)", Unit: "mcg", Symbol: SymbolVitaminD},
	{Code: 404, Name: "thiamin (vitamin B1) (mg)", Unit: "mg", Symbol: "thiamin_B1_mg"},
	{Code: 405, Name: "riboflavin (vitamin B2) (mg)", Unit: "mg", Symbol: "riboflavin_B2_mg"},
	{Code: 406, Name: "niacin (vitamin B3) (mg)", Unit: "mg", Symbol: "niacin_B3_mg"},
	{Code: 410, Name: "pantothenic acid (mg)", Unit: "mg", Symbol: "pantothenic_acid_B5_mg"},
	{Code: 416, Name: "biotin (mcg)", Unit: "mcg", Symbol: "biotin_mcg"},
	{Code: 417, Name: "folate (mcg)", Unit: "mcg", Symbol: "folate_mcg"},
	{Code: 601, Name: "cholesterol (mg)", Unit: "mg", Symbol: "cholesterol_mg"},
	{Code: 605, Name: "trans fat (g)", Unit: "g", Symbol: "trans_fat_g"},
	{Code: 606, Name: "saturated fat (g)", Unit: "g", Symbol: "saturated_fat_g"},
}

// dailyValues holds the reference daily intake per field symbol.
// Energy and trans fat have no reference value.
var dailyValues = map[string]float64{
	"biotin_mcg":             30,
	"calcium_mg":             1300,
	"cholesterol_mg":         300,
	"copper_mg":              0.9,
	"dietary_fiber_g":        28,
	"folate_mcg":             400,
	"iodine_mcg":             150,
	"iron_mg":                18,
	"magnesium_mg":           420,
	"niacin_B3_mg":           16,
	"pantothenic_acid_B5_mg": 5,
	"phosphorous_mg":         1250,
	"potassium_mg":           4700,
	SymbolProtein:            50,
	"riboflavin_B2_mg":       1.3,
	"saturated_fat_g":        20,
	"sodium_mg":              2300,
	"sugars_g":               50,
	"thiamin_B1_mg":          1.2,
	SymbolCarbohydrates:      275,
	SymbolTotalFat:           78,
	SymbolVitaminD:           20,
	"vitamin_E_mg":           15,
	"zinc_mg":                11,
}

var (
	kindsByCode   map[int]NutrientKind
	kindsBySymbol map[string]NutrientKind
)

func init() {
	kindsByCode = make(map[int]NutrientKind, len(catalog))
	kindsBySymbol = make(map[string]NutrientKind, len(catalog))
	for _, kind := range catalog {
		if _, dup := kindsByCode[kind.Code]; dup {
			panic(fmt.Sprintf("nutrient catalog: duplicate code %d", kind.Code))
		}
		if _, dup := kindsBySymbol[kind.Symbol]; dup {
			panic(fmt.Sprintf("nutrient catalog: duplicate symbol %q", kind.Symbol))
		}
		kindsByCode[kind.Code] = kind
		kindsBySymbol[kind.Symbol] = kind
	}
}

// Catalog returns every tracked nutrient kind in catalog order
func Catalog() []NutrientKind {
	out := make([]NutrientKind, len(catalog))
	copy(out, catalog)
	return out
}

// KindByCode looks up a nutrient kind by its FDC nutrient number
func KindByCode(code int) (NutrientKind, bool) {
	kind, ok := kindsByCode[code]
	return kind, ok
}

// KindBySymbol looks up a nutrient kind by its field symbol
func KindBySymbol(symbol string) (NutrientKind, bool) {
	kind, ok := kindsBySymbol[symbol]
	return kind, ok
}

// DailyValue returns the reference daily intake for a field symbol
func DailyValue(symbol string) (float64, bool) {
	v, ok := dailyValues[symbol]
	return v, ok
}

// NutrientValue is a single measured amount of one nutrient
type NutrientValue struct {
	Kind   NutrientKind
	Amount float64
	Unit   string
}

// NewNutrientValue builds a value in the kind's canonical unit
func NewNutrientValue(kind NutrientKind, amount float64) (NutrientValue, error) {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return NutrientValue{}, fmt.Errorf("%w: %s = %v", ErrInvalidAmount, kind.Symbol, amount)
	}
	return NutrientValue{Kind: kind, Amount: amount, Unit: kind.Unit}, nil
}

// PercentDailyValue returns the amount as a whole-number percentage of the
// daily reference value, rounding half to even.
func (v NutrientValue) PercentDailyValue() (float64, error) {
	reference, ok := dailyValues[v.Kind.Symbol]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoReferenceValue, v.Kind.Symbol)
	}
	if v.Amount == 0 {
		return 0, nil
	}
	return math.RoundToEven(100 * v.Amount / reference), nil
}

// Scaled returns a copy of the value with its amount multiplied by factor
func (v NutrientValue) Scaled(factor float64) NutrientValue {
	v.Amount *= factor
	return v
}

// Serialize flattens the value into the map shape used by API responses.
// dv_perc is only present for nutrients with a reference value.
func (v NutrientValue) Serialize() map[string]interface{} {
	out := map[string]interface{}{
		"name":     v.Kind.Name,
		"units":    v.Unit,
		"fdc_code": v.Kind.Code,
		"amount":   v.Amount,
		"symbol":   v.Kind.Symbol,
	}
	if dv, err := v.PercentDailyValue(); err == nil {
		out["dv_perc"] = dv
	}
	return out
}
