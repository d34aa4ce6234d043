package domain

import (
	"errors"
	"fmt"
)

// Ingredient is a food together with the number of servings a recipe uses
type Ingredient struct {
	ServingsNumber float64
	Food           *FoodRecord
}

// NewIngredient rejects missing foods and servings that are not positive or
// that overflow the food's scaled amounts.
func NewIngredient(servings float64, food *FoodRecord) (Ingredient, error) {
	if food == nil {
		return Ingredient{}, errors.New("ingredient requires a food")
	}
	if err := food.checkServings(servings); err != nil {
		return Ingredient{}, err
	}
	return Ingredient{ServingsNumber: servings, Food: food}, nil
}

// Recipe is a named, ordered list of ingredients. Nutrient totals are derived
// through an Aggregator, never stored.
type Recipe struct {
	ID          string
	Name        string
	Owner       string
	Complete    bool
	Ingredients []Ingredient
}

// WithIngredient returns a copy of the recipe with ing appended
func (r Recipe) WithIngredient(ing Ingredient) Recipe {
	ingredients := make([]Ingredient, 0, len(r.Ingredients)+1)
	ingredients = append(ingredients, r.Ingredients...)
	r.Ingredients = append(ingredients, ing)
	return r
}

// WithoutIngredient returns a copy of the recipe with the ingredient at index removed
func (r Recipe) WithoutIngredient(index int) (Recipe, error) {
	if index < 0 || index >= len(r.Ingredients) {
		return r, fmt.Errorf("%w: %d of %d", ErrIngredientIndex, index, len(r.Ingredients))
	}
	ingredients := make([]Ingredient, 0, len(r.Ingredients)-1)
	ingredients = append(ingredients, r.Ingredients[:index]...)
	r.Ingredients = append(ingredients, r.Ingredients[index+1:]...)
	return r, nil
}

// Aggregator returns a new aggregator over the recipe's current ingredients.
// Call it again after changing the ingredients; earlier aggregators keep
// their own snapshot.
func (r Recipe) Aggregator() *RecipeAggregator {
	return NewRecipeAggregator(r.Ingredients)
}
