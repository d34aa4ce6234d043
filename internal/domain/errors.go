package domain

import "errors"

var (
	// ErrUnsupportedDataType is returned when an FDC payload's dataType is neither "SR Legacy" nor "Branded"
	ErrUnsupportedDataType = errors.New("unsupported FDC data type")

	// ErrNoReferenceValue is returned when a percent daily value is requested for a nutrient with no reference intake
	ErrNoReferenceValue = errors.New("nutrient has no daily reference value")

	// ErrUnusableRecord is returned when an FDC payload was retrieved but lacks the fields needed to build a food
	ErrUnusableRecord = errors.New("FDC record is missing required fields")

	// ErrInvalidAmount is returned for nutrient amounts that are negative or not numeric
	ErrInvalidAmount = errors.New("invalid nutrient amount")

	// ErrInvalidServings is returned when a servings multiplier is not strictly positive
	ErrInvalidServings = errors.New("servings number must be greater than zero")

	// ErrInvalidServingSize is returned when a food's serving size is not strictly positive
	ErrInvalidServingSize = errors.New("serving size must be greater than zero")

	// ErrUnknownNutrient is returned when a field symbol is not in the nutrient catalog
	ErrUnknownNutrient = errors.New("unknown nutrient symbol")

	// ErrFoodNotFound is returned when a food cannot be found locally or in FDC
	ErrFoodNotFound = errors.New("food not found")

	// ErrRecipeNotFound is returned when a recipe id does not match a stored recipe
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrRecipeComplete is returned when an ingredient change is attempted on a finished recipe
	ErrRecipeComplete = errors.New("recipe is already complete")

	// ErrIngredientIndex is returned when an ingredient index is out of range
	ErrIngredientIndex = errors.New("ingredient index out of range")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrFDCAPIFailure is returned when an FDC API request fails
	ErrFDCAPIFailure = errors.New("FDC API request failed")
)
