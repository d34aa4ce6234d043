package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kmfahey/nutritracker/internal/domain"
	"go.uber.org/zap"
)

// RecipeView is a recipe together with its aggregated nutrient totals
type RecipeView struct {
	Recipe *domain.Recipe
	Totals []domain.NutrientValue
}

// IngredientPreview shows what an ingredient would contribute before it is
// added: the food scaled by the requested servings.
type IngredientPreview struct {
	RecipeID string
	Servings float64
	Food     *domain.FoodRecord
}

// RecipeService builds recipes out of stored foods
type RecipeService struct {
	recipes domain.RecipeRepository
	foods   domain.FoodRepository
	log     *zap.Logger
	pages   PageLimits
}

// NewRecipeService creates a new recipe service with dependencies
func NewRecipeService(recipes domain.RecipeRepository, foods domain.FoodRepository, log *zap.Logger, pages PageLimits) *RecipeService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecipeService{
		recipes: recipes,
		foods:   foods,
		log:     log.Named("recipe-service"),
		pages:   pages.withDefaults(),
	}
}

func view(recipe *domain.Recipe) *RecipeView {
	return &RecipeView{Recipe: recipe, Totals: recipe.Aggregator().Totals()}
}

// ListRecipes pages through recipes in name order
func (s *RecipeService) ListRecipes(ctx context.Context, page, size int) (Page[*domain.Recipe], error) {
	recipes, err := s.recipes.List(ctx)
	if err != nil {
		return Page[*domain.Recipe]{}, err
	}
	return Paginate(recipes, page, size, s.pages)
}

// CreateRecipe starts an empty, incomplete recipe
func (s *RecipeService) CreateRecipe(ctx context.Context, name, owner string) (*RecipeView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: recipe name is required", domain.ErrInvalidRequest)
	}

	recipe := &domain.Recipe{Name: name, Owner: strings.TrimSpace(owner)}
	id, err := s.recipes.Create(ctx, recipe)
	if err != nil {
		return nil, err
	}
	recipe.ID = id
	return view(recipe), nil
}

// GetRecipe returns the recipe with freshly aggregated totals
func (s *RecipeService) GetRecipe(ctx context.Context, id string) (*RecipeView, error) {
	recipe, err := s.recipes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return view(recipe), nil
}

// PreviewIngredient scales a stored food by servings without touching the
// recipe or the stored food.
func (s *RecipeService) PreviewIngredient(ctx context.Context, id string, fdcID int, servings float64) (*IngredientPreview, error) {
	recipe, food, err := s.loadEditable(ctx, id, fdcID)
	if err != nil {
		return nil, err
	}
	scaled, err := food.ScaledBy(servings)
	if err != nil {
		return nil, err
	}
	return &IngredientPreview{RecipeID: recipe.ID, Servings: servings, Food: scaled}, nil
}

// AddIngredient appends servings of a stored food to the recipe
func (s *RecipeService) AddIngredient(ctx context.Context, id string, fdcID int, servings float64) (*RecipeView, error) {
	recipe, food, err := s.loadEditable(ctx, id, fdcID)
	if err != nil {
		return nil, err
	}
	ing, err := domain.NewIngredient(servings, food)
	if err != nil {
		return nil, err
	}

	updated := recipe.WithIngredient(ing)
	if err := updated.Aggregator().CheckFinite(); err != nil {
		return nil, err
	}
	if err := s.recipes.Update(ctx, &updated); err != nil {
		return nil, err
	}
	s.log.Info("added ingredient", zap.String("recipe_id", id), zap.Int("fdc_id", fdcID), zap.Float64("servings", servings))
	return view(&updated), nil
}

// RemoveIngredient drops the ingredient at index
func (s *RecipeService) RemoveIngredient(ctx context.Context, id string, index int) (*RecipeView, error) {
	recipe, err := s.recipes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.Complete {
		return nil, fmt.Errorf("%w: %s", domain.ErrRecipeComplete, id)
	}

	updated, err := recipe.WithoutIngredient(index)
	if err != nil {
		return nil, err
	}
	if err := s.recipes.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return view(&updated), nil
}

// FinishRecipe marks the recipe complete, after which its ingredients can no
// longer change. Finishing a complete recipe is a no-op.
func (s *RecipeService) FinishRecipe(ctx context.Context, id string) (*RecipeView, error) {
	recipe, err := s.recipes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.Complete {
		return view(recipe), nil
	}
	if len(recipe.Ingredients) == 0 {
		return nil, fmt.Errorf("%w: recipe has no ingredients", domain.ErrInvalidRequest)
	}

	recipe.Complete = true
	if err := s.recipes.Update(ctx, recipe); err != nil {
		return nil, err
	}
	s.log.Info("finished recipe", zap.String("recipe_id", id), zap.Int("ingredients", len(recipe.Ingredients)))
	return view(recipe), nil
}

// DeleteRecipe removes the recipe
func (s *RecipeService) DeleteRecipe(ctx context.Context, id string) error {
	return s.recipes.Delete(ctx, id)
}

func (s *RecipeService) loadEditable(ctx context.Context, id string, fdcID int) (*domain.Recipe, *domain.FoodRecord, error) {
	recipe, err := s.recipes.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if recipe.Complete {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrRecipeComplete, id)
	}
	food, err := s.foods.GetByFdcID(ctx, fdcID)
	if err != nil {
		return nil, nil, err
	}
	return recipe, food, nil
}
