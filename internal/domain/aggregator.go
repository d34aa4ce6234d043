package domain

import (
	"fmt"
	"math"
)

// RecipeAggregator sums scaled ingredient nutrients into recipe totals. It
// works on a snapshot of the ingredient list taken at construction and
// memoizes each total on first request. It is not safe for concurrent use;
// build one per render.
type RecipeAggregator struct {
	ingredients []Ingredient
	totals      map[string]NutrientValue
}

// NewRecipeAggregator snapshots ingredients
func NewRecipeAggregator(ingredients []Ingredient) *RecipeAggregator {
	snapshot := make([]Ingredient, len(ingredients))
	copy(snapshot, ingredients)
	return &RecipeAggregator{
		ingredients: snapshot,
		totals:      make(map[string]NutrientValue),
	}
}

// Total returns the recipe-level value for symbol: the sum over ingredients of
// servings times the food's amount, with missing nutrients counting as zero.
func (a *RecipeAggregator) Total(symbol string) (NutrientValue, error) {
	if v, ok := a.totals[symbol]; ok {
		return v, nil
	}
	kind, ok := KindBySymbol(symbol)
	if !ok {
		return NutrientValue{}, fmt.Errorf("%w: %q", ErrUnknownNutrient, symbol)
	}

	var sum float64
	for _, ing := range a.ingredients {
		if ing.Food == nil {
			continue
		}
		sum += ing.ServingsNumber * ing.Food.Amount(symbol)
	}

	total := NutrientValue{Kind: kind, Amount: sum, Unit: kind.Unit}
	a.totals[symbol] = total
	return total, nil
}

// Totals returns the total for every catalog nutrient, in catalog order
func (a *RecipeAggregator) Totals() []NutrientValue {
	out := make([]NutrientValue, 0, len(catalog))
	for _, kind := range catalog {
		v, _ := a.Total(kind.Symbol)
		out = append(out, v)
	}
	return out
}

// CheckFinite reports ErrInvalidServings when any total has overflowed
func (a *RecipeAggregator) CheckFinite() error {
	for _, total := range a.Totals() {
		if math.IsInf(total.Amount, 0) {
			return fmt.Errorf("%w: %s total overflows", ErrInvalidServings, total.Kind.Symbol)
		}
	}
	return nil
}

// Cached reports how many totals have been computed so far
func (a *RecipeAggregator) Cached() int {
	return len(a.totals)
}
