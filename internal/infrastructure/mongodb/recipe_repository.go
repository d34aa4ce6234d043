package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kmfahey/nutritracker/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type ingredientDocument struct {
	ServingsNumber float64 `bson:"servings_number"`
	Food           bson.M  `bson:"food"`
}

type recipeDocument struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Name        string               `bson:"name"`
	Owner       string               `bson:"owner,omitempty"`
	Complete    bool                 `bson:"complete"`
	Ingredients []ingredientDocument `bson:"ingredients"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

// RecipeRepository stores recipes with their ingredient foods embedded, so a
// recipe keeps the nutrient profile it was built with.
type RecipeRepository struct {
	coll *mongo.Collection
	log  *zap.Logger
	now  func() time.Time
}

var _ domain.RecipeRepository = (*RecipeRepository)(nil)

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(coll *mongo.Collection, log *zap.Logger) *RecipeRepository {
	return &RecipeRepository{
		coll: coll,
		log:  log.Named("recipe-repository"),
		now:  time.Now,
	}
}

func parseRecipeID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", domain.ErrRecipeNotFound, id)
	}
	return oid, nil
}

func toRecipeDocument(recipe *domain.Recipe) (recipeDocument, error) {
	doc := recipeDocument{
		Name:        recipe.Name,
		Owner:       recipe.Owner,
		Complete:    recipe.Complete,
		Ingredients: make([]ingredientDocument, 0, len(recipe.Ingredients)),
	}
	if recipe.ID != "" {
		oid, err := parseRecipeID(recipe.ID)
		if err != nil {
			return recipeDocument{}, err
		}
		doc.ID = oid
	}
	for _, ing := range recipe.Ingredients {
		if ing.Food == nil {
			return recipeDocument{}, fmt.Errorf("%w: ingredient without food", domain.ErrInvalidRequest)
		}
		doc.Ingredients = append(doc.Ingredients, ingredientDocument{
			ServingsNumber: ing.ServingsNumber,
			Food:           foodToDocument(ing.Food),
		})
	}
	return doc, nil
}

func fromRecipeDocument(doc recipeDocument) (*domain.Recipe, error) {
	recipe := &domain.Recipe{
		ID:          doc.ID.Hex(),
		Name:        doc.Name,
		Owner:       doc.Owner,
		Complete:    doc.Complete,
		Ingredients: make([]domain.Ingredient, 0, len(doc.Ingredients)),
	}
	for i, ingDoc := range doc.Ingredients {
		food, err := foodFromDocument(ingDoc.Food)
		if err != nil {
			return nil, fmt.Errorf("recipe %s ingredient %d: %w", recipe.ID, i, err)
		}
		ing, err := domain.NewIngredient(ingDoc.ServingsNumber, food)
		if err != nil {
			return nil, fmt.Errorf("recipe %s ingredient %d: %w", recipe.ID, i, err)
		}
		recipe.Ingredients = append(recipe.Ingredients, ing)
	}
	return recipe, nil
}

// Get returns the recipe with id, or domain.ErrRecipeNotFound
func (r *RecipeRepository) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	oid, err := parseRecipeID(id)
	if err != nil {
		return nil, err
	}

	var doc recipeDocument
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", domain.ErrRecipeNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find recipe: %w", err)
	}
	return fromRecipeDocument(doc)
}

// List returns every recipe sorted by name
func (r *RecipeRepository) List(ctx context.Context) ([]*domain.Recipe, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find recipes: %w", err)
	}
	defer cursor.Close(ctx)

	var recipes []*domain.Recipe
	for cursor.Next(ctx) {
		var doc recipeDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode recipe: %w", err)
		}
		recipe, err := fromRecipeDocument(doc)
		if err != nil {
			r.log.Warn("skipping unreadable recipe document", zap.String("id", doc.ID.Hex()), zap.Error(err))
			continue
		}
		recipes = append(recipes, recipe)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipes: %w", err)
	}
	return recipes, nil
}

// Create inserts a new recipe and returns its id
func (r *RecipeRepository) Create(ctx context.Context, recipe *domain.Recipe) (string, error) {
	doc, err := toRecipeDocument(recipe)
	if err != nil {
		return "", err
	}
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = r.now().UTC()
	doc.UpdatedAt = doc.CreatedAt

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to insert recipe: %w", err)
	}
	r.log.Info("created recipe", zap.String("id", doc.ID.Hex()), zap.String("name", doc.Name))
	return doc.ID.Hex(), nil
}

// Update overwrites the recipe's name, owner, completion flag and ingredients
func (r *RecipeRepository) Update(ctx context.Context, recipe *domain.Recipe) error {
	doc, err := toRecipeDocument(recipe)
	if err != nil {
		return err
	}
	if doc.ID.IsZero() {
		return fmt.Errorf("%w: recipe has no id", domain.ErrRecipeNotFound)
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": bson.M{
		"name":        doc.Name,
		"owner":       doc.Owner,
		"complete":    doc.Complete,
		"ingredients": doc.Ingredients,
		"updated_at":  r.now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", domain.ErrRecipeNotFound, recipe.ID)
	}
	return nil
}

// Delete removes the recipe with id
func (r *RecipeRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseRecipeID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", domain.ErrRecipeNotFound, id)
	}
	r.log.Info("deleted recipe", zap.String("id", id))
	return nil
}
