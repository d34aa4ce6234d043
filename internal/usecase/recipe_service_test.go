package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kmfahey/nutritracker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recipeFixture struct {
	recipes *MockRecipeRepository
	foods   *MockFoodRepository
	svc     *RecipeService
}

func newRecipeFixture(t *testing.T) *recipeFixture {
	f := &recipeFixture{
		recipes: NewMockRecipeRepository(),
		foods: NewMockFoodRepository(
			storedFood(t, 1, "White Bread", 10),
			storedFood(t, 2, "Peanut Butter", 4),
		),
	}
	f.svc = NewRecipeService(f.recipes, f.foods, nil, PageLimits{DefaultSize: 10, MaxSize: 50})
	return f
}

func totalOf(t *testing.T, v *RecipeView, symbol string) float64 {
	t.Helper()
	for _, total := range v.Totals {
		if total.Kind.Symbol == symbol {
			return total.Amount
		}
	}
	t.Fatalf("no total for %s", symbol)
	return 0
}

func TestRecipeService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	f := newRecipeFixture(t)

	created, err := f.svc.CreateRecipe(ctx, "  Sandwich ", "kim")
	require.NoError(t, err)
	assert.NotEmpty(t, created.Recipe.ID)
	assert.Equal(t, "Sandwich", created.Recipe.Name)
	assert.False(t, created.Recipe.Complete)
	assert.Len(t, created.Totals, len(domain.Catalog()))
	assert.Equal(t, 0.0, totalOf(t, created, domain.SymbolProtein))

	got, err := f.svc.GetRecipe(ctx, created.Recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "kim", got.Recipe.Owner)

	_, err = f.svc.CreateRecipe(ctx, "   ", "kim")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = f.svc.GetRecipe(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestRecipeService_AddIngredientAggregates(t *testing.T) {
	ctx := context.Background()
	f := newRecipeFixture(t)
	created, err := f.svc.CreateRecipe(ctx, "Sandwich", "")
	require.NoError(t, err)
	id := created.Recipe.ID

	_, err = f.svc.AddIngredient(ctx, id, 1, 2)
	require.NoError(t, err)
	v, err := f.svc.AddIngredient(ctx, id, 2, 0.5)
	require.NoError(t, err)

	require.Len(t, v.Recipe.Ingredients, 2)
	assert.Equal(t, 22.0, totalOf(t, v, domain.SymbolProtein))

	reloaded, err := f.svc.GetRecipe(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 22.0, totalOf(t, reloaded, domain.SymbolProtein))

	stored, err := f.foods.GetByFdcID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10.0, stored.Amount(domain.SymbolProtein), "stored food untouched")
}

func TestRecipeService_AddIngredientErrors(t *testing.T) {
	ctx := context.Background()
	f := newRecipeFixture(t)
	created, err := f.svc.CreateRecipe(ctx, "Sandwich", "")
	require.NoError(t, err)
	id := created.Recipe.ID

	_, err = f.svc.AddIngredient(ctx, id, 1, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidServings)

	_, err = f.svc.AddIngredient(ctx, id, 404, 1)
	assert.ErrorIs(t, err, domain.ErrFoodNotFound)

	_, err = f.svc.AddIngredient(ctx, "nope", 1, 1)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)

	_, err = f.svc.AddIngredient(ctx, id, 1, 1e308)
	assert.ErrorIs(t, err, domain.ErrInvalidServings)
	reloaded, err := f.svc.GetRecipe(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Recipe.Ingredients, "overflowing servings are not persisted")

	f.recipes.updateError = errors.New("write conflict")
	_, err = f.svc.AddIngredient(ctx, id, 1, 1)
	assert.Error(t, err)
}

func TestRecipeService_PreviewIngredient(t *testing.T) {
	ctx := context.Background()
	f := newRecipeFixture(t)
	created, err := f.svc.CreateRecipe(ctx, "Sandwich", "")
	require.NoError(t, err)
	id := created.Recipe.ID

	preview, err := f.svc.PreviewIngredient(ctx, id, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 30.0, preview.Food.Amount(domain.SymbolProtein))
	assert.Equal(t, 300.0, preview.Food.ServingSize)
	assert.Equal(t, 0, f.recipes.updates, "preview does not persist")

	got, err := f.svc.GetRecipe(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got.Recipe.Ingredients)

	_, err = f.svc.PreviewIngredient(ctx, id, 1, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidServings)
}

func TestRecipeService_RemoveIngredient(t *testing.T) {
	ctx := context.Background()
	f := newRecipeFixture(t)
	created, err := f.svc.CreateRecipe(ctx, "Sandwich", "")
	require.NoError(t, err)
	id := created.Recipe.ID
	_, err = f.svc.AddIngredient(ctx, id, 1, 2)
	require.NoError(t, err)
	_, err = f.svc.AddIngredient(ctx, id, 2, 1)
	require.NoError(t, err)

	v, err := f.svc.RemoveIngredient(ctx, id, 0)
	require.NoError(t, err)
	require.Len(t, v.Recipe.Ingredients, 1)
	assert.Equal(t, 2, v.Recipe.Ingredients[0].Food.FdcID)
	assert.Equal(t, 4.0, totalOf(t, v, domain.SymbolProtein))

	_, err = f.svc.RemoveIngredient(ctx, id, 5)
	assert.ErrorIs(t, err, domain.ErrIngredientIndex)
}

func TestRecipeService_Finish(t *testing.T) {
	ctx := context.Background()
	f := newRecipeFixture(t)
	created, err := f.svc.CreateRecipe(ctx, "Sandwich", "")
	require.NoError(t, err)
	id := created.Recipe.ID

	_, err = f.svc.FinishRecipe(ctx, id)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest, "empty recipes cannot be finished")

	_, err = f.svc.AddIngredient(ctx, id, 1, 1)
	require.NoError(t, err)

	v, err := f.svc.FinishRecipe(ctx, id)
	require.NoError(t, err)
	assert.True(t, v.Recipe.Complete)

	again, err := f.svc.FinishRecipe(ctx, id)
	require.NoError(t, err)
	assert.True(t, again.Recipe.Complete)

	_, err = f.svc.AddIngredient(ctx, id, 2, 1)
	assert.ErrorIs(t, err, domain.ErrRecipeComplete)
	_, err = f.svc.PreviewIngredient(ctx, id, 2, 1)
	assert.ErrorIs(t, err, domain.ErrRecipeComplete)
	_, err = f.svc.RemoveIngredient(ctx, id, 0)
	assert.ErrorIs(t, err, domain.ErrRecipeComplete)
}

func TestRecipeService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newRecipeFixture(t)
	for _, name := range []string{"Toast", "Apple Pie", "Soup"} {
		_, err := f.svc.CreateRecipe(ctx, name, "")
		require.NoError(t, err)
	}

	page, err := f.svc.ListRecipes(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Apple Pie", page.Items[0].Name)
	assert.Equal(t, 2, page.TotalPages)

	require.NoError(t, f.svc.DeleteRecipe(ctx, page.Items[0].ID))
	assert.ErrorIs(t, f.svc.DeleteRecipe(ctx, page.Items[0].ID), domain.ErrRecipeNotFound)

	page, err = f.svc.ListRecipes(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}
