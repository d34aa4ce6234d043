package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kmfahey/nutritracker/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	data     map[string][]byte
	getError error
	setError error
	sets     int
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string][]byte)}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.sets++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// MockFDCClient is a mock implementation of domain.FDCClient
type MockFDCClient struct {
	searchResult *domain.FDCSearchResponse
	searchError  error
	lastQuery    string
	foods        map[int]*domain.FDCFood
	foodError    error
	detailCalls  int
}

func NewMockFDCClient() *MockFDCClient {
	return &MockFDCClient{foods: make(map[int]*domain.FDCFood)}
}

func (m *MockFDCClient) SearchFoods(ctx context.Context, query string) (*domain.FDCSearchResponse, error) {
	m.lastQuery = query
	if m.searchError != nil {
		return nil, m.searchError
	}
	return m.searchResult, nil
}

func (m *MockFDCClient) GetFoodDetails(ctx context.Context, fdcID int) (*domain.FDCFood, error) {
	m.detailCalls++
	if m.foodError != nil {
		return nil, m.foodError
	}
	food, ok := m.foods[fdcID]
	if !ok {
		return nil, fmt.Errorf("%w: fdc id %d", domain.ErrFoodNotFound, fdcID)
	}
	return food, nil
}

// MockFoodRepository keeps foods in memory, stored in their flat document
// shape so reads rebuild fresh records the way the real store does.
type MockFoodRepository struct {
	docs      map[int]domain.StorageRecord
	listError error
	saveError error
	saves     int
}

func NewMockFoodRepository(foods ...*domain.FoodRecord) *MockFoodRepository {
	m := &MockFoodRepository{docs: make(map[int]domain.StorageRecord)}
	for _, f := range foods {
		m.docs[f.FdcID] = f.ToStorageFields()
	}
	return m
}

func (m *MockFoodRepository) GetByFdcID(ctx context.Context, fdcID int) (*domain.FoodRecord, error) {
	doc, ok := m.docs[fdcID]
	if !ok {
		return nil, fmt.Errorf("%w: fdc id %d", domain.ErrFoodNotFound, fdcID)
	}
	return domain.FoodFromStorage(doc)
}

func (m *MockFoodRepository) ExistsByFdcID(ctx context.Context, fdcID int) (bool, error) {
	_, ok := m.docs[fdcID]
	return ok, nil
}

func (m *MockFoodRepository) List(ctx context.Context) ([]*domain.FoodRecord, error) {
	return m.SearchByName(ctx, nil)
}

func (m *MockFoodRepository) SearchByName(ctx context.Context, keywords []string) ([]*domain.FoodRecord, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	var out []*domain.FoodRecord
	for _, doc := range m.docs {
		food, err := domain.FoodFromStorage(doc)
		if err != nil {
			return nil, err
		}
		if containsAll(food.Name, keywords) {
			out = append(out, food)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockFoodRepository) Save(ctx context.Context, food *domain.FoodRecord) error {
	m.saves++
	if m.saveError != nil {
		return m.saveError
	}
	m.docs[food.FdcID] = food.ToStorageFields()
	return nil
}

func containsAll(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if !strings.Contains(lower, strings.ToLower(kw)) {
			return false
		}
	}
	return true
}

// MockRecipeRepository keeps recipes in memory
type MockRecipeRepository struct {
	recipes     map[string]domain.Recipe
	nextID      int
	updateError error
	updates     int
}

func NewMockRecipeRepository() *MockRecipeRepository {
	return &MockRecipeRepository{recipes: make(map[string]domain.Recipe)}
}

func (m *MockRecipeRepository) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	r, ok := m.recipes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRecipeNotFound, id)
	}
	r.Ingredients = append([]domain.Ingredient(nil), r.Ingredients...)
	return &r, nil
}

func (m *MockRecipeRepository) List(ctx context.Context) ([]*domain.Recipe, error) {
	var out []*domain.Recipe
	for id := range m.recipes {
		r, _ := m.Get(ctx, id)
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockRecipeRepository) Create(ctx context.Context, recipe *domain.Recipe) (string, error) {
	m.nextID++
	id := fmt.Sprintf("recipe-%d", m.nextID)
	stored := *recipe
	stored.ID = id
	m.recipes[id] = stored
	return id, nil
}

func (m *MockRecipeRepository) Update(ctx context.Context, recipe *domain.Recipe) error {
	m.updates++
	if m.updateError != nil {
		return m.updateError
	}
	if _, ok := m.recipes[recipe.ID]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrRecipeNotFound, recipe.ID)
	}
	m.recipes[recipe.ID] = *recipe
	return nil
}

func (m *MockRecipeRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.recipes[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrRecipeNotFound, id)
	}
	delete(m.recipes, id)
	return nil
}
