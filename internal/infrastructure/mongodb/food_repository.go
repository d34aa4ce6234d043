package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/kmfahey/nutritracker/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// FoodRepository stores imported foods as flat documents keyed by fdc_id
type FoodRepository struct {
	coll *mongo.Collection
	log  *zap.Logger
}

var _ domain.FoodRepository = (*FoodRepository)(nil)

// NewFoodRepository creates a new food repository
func NewFoodRepository(coll *mongo.Collection, log *zap.Logger) *FoodRepository {
	return &FoodRepository{
		coll: coll,
		log:  log.Named("food-repository"),
	}
}

func byName() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: domain.FieldFoodName, Value: 1}})
}

// keywordFilter matches documents whose name contains every keyword,
// ignoring case.
func keywordFilter(keywords []string) bson.M {
	clauses := make(bson.A, 0, len(keywords))
	for _, kw := range keywords {
		clauses = append(clauses, bson.M{
			domain.FieldFoodName: bson.M{"$regex": regexp.QuoteMeta(kw), "$options": "i"},
		})
	}
	if len(clauses) == 0 {
		return bson.M{}
	}
	return bson.M{"$and": clauses}
}

func foodFromDocument(doc bson.M) (*domain.FoodRecord, error) {
	delete(doc, "_id")
	food, err := domain.FoodFromStorage(domain.StorageRecord(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored food: %w", err)
	}
	return food, nil
}

func foodToDocument(food *domain.FoodRecord) bson.M {
	return bson.M(food.ToStorageFields())
}

// GetByFdcID returns the stored food, or domain.ErrFoodNotFound
func (r *FoodRepository) GetByFdcID(ctx context.Context, fdcID int) (*domain.FoodRecord, error) {
	var doc bson.M
	err := r.coll.FindOne(ctx, bson.M{domain.FieldFdcID: fdcID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: fdc id %d", domain.ErrFoodNotFound, fdcID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find food: %w", err)
	}
	return foodFromDocument(doc)
}

// ExistsByFdcID reports whether a food with fdcID has been imported
func (r *FoodRepository) ExistsByFdcID(ctx context.Context, fdcID int) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{domain.FieldFdcID: fdcID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count foods: %w", err)
	}
	return count > 0, nil
}

// List returns every stored food sorted by name
func (r *FoodRepository) List(ctx context.Context) ([]*domain.FoodRecord, error) {
	return r.find(ctx, bson.M{})
}

// SearchByName returns foods whose name contains all keywords
func (r *FoodRepository) SearchByName(ctx context.Context, keywords []string) ([]*domain.FoodRecord, error) {
	return r.find(ctx, keywordFilter(keywords))
}

func (r *FoodRepository) find(ctx context.Context, filter bson.M) ([]*domain.FoodRecord, error) {
	cursor, err := r.coll.Find(ctx, filter, byName())
	if err != nil {
		return nil, fmt.Errorf("failed to find foods: %w", err)
	}
	defer cursor.Close(ctx)

	var foods []*domain.FoodRecord
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode food: %w", err)
		}
		food, err := foodFromDocument(doc)
		if err != nil {
			r.log.Warn("skipping unreadable food document", zap.Any("fdc_id", doc[domain.FieldFdcID]), zap.Error(err))
			continue
		}
		foods = append(foods, food)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate foods: %w", err)
	}
	return foods, nil
}

// Save inserts the food or replaces the stored copy with the same fdc_id
func (r *FoodRepository) Save(ctx context.Context, food *domain.FoodRecord) error {
	_, err := r.coll.ReplaceOne(ctx,
		bson.M{domain.FieldFdcID: food.FdcID},
		foodToDocument(food),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save food: %w", err)
	}
	r.log.Info("saved food", zap.Int("fdc_id", food.FdcID), zap.String("name", food.Name))
	return nil
}
