package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching encoded payloads
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// FDCClient defines the interface for interacting with the FoodData Central API
type FDCClient interface {
	SearchFoods(ctx context.Context, query string) (*FDCSearchResponse, error)
	GetFoodDetails(ctx context.Context, fdcID int) (*FDCFood, error)
}

// FoodRepository persists imported foods, keyed by FDC id
type FoodRepository interface {
	GetByFdcID(ctx context.Context, fdcID int) (*FoodRecord, error)
	ExistsByFdcID(ctx context.Context, fdcID int) (bool, error)
	List(ctx context.Context) ([]*FoodRecord, error)
	SearchByName(ctx context.Context, keywords []string) ([]*FoodRecord, error)
	Save(ctx context.Context, food *FoodRecord) error
}

// RecipeRepository persists recipes with their embedded ingredient foods
type RecipeRepository interface {
	Get(ctx context.Context, id string) (*Recipe, error)
	List(ctx context.Context) ([]*Recipe, error)
	Create(ctx context.Context, recipe *Recipe) (string, error)
	Update(ctx context.Context, recipe *Recipe) error
	Delete(ctx context.Context, id string) error
}
