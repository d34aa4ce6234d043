package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kmfahey/nutritracker/internal/domain"
	"github.com/kmfahey/nutritracker/internal/infrastructure/usda"
	"go.uber.org/zap"
)

// FoodServiceConfig holds configuration for the food service
type FoodServiceConfig struct {
	CacheTTL time.Duration
	Pages    PageLimits
	Debug    bool
}

// FoodService covers the locally stored food catalog and lookups against the
// FDC that feed it.
type FoodService struct {
	foods    domain.FoodRepository
	fdc      domain.FDCClient
	cache    domain.CacheRepository
	mapper   *usda.Mapper
	query    *QueryPreprocessor
	log      *zap.Logger
	cacheTTL time.Duration
	pages    PageLimits
}

// NewFoodService creates a new food service with dependencies
func NewFoodService(
	foods domain.FoodRepository,
	fdc domain.FDCClient,
	cache domain.CacheRepository,
	log *zap.Logger,
	config FoodServiceConfig,
) *FoodService {
	if log == nil {
		log = zap.NewNop()
	}
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	named := log.Named("food-service")
	return &FoodService{
		foods:    foods,
		fdc:      fdc,
		cache:    cache,
		mapper:   usda.NewMapper(named),
		query:    NewQueryPreprocessor(log, config.Debug),
		log:      named,
		cacheTTL: cacheTTL,
		pages:    config.Pages.withDefaults(),
	}
}

// ListFoods pages through the stored foods in name order
func (s *FoodService) ListFoods(ctx context.Context, page, size int) (Page[*domain.FoodRecord], error) {
	foods, err := s.foods.List(ctx)
	if err != nil {
		return Page[*domain.FoodRecord]{}, err
	}
	markStored(foods)
	return Paginate(foods, page, size, s.pages)
}

// SearchLocal pages through stored foods whose name contains every keyword
// of query, ignoring case.
func (s *FoodService) SearchLocal(ctx context.Context, query string, page, size int) (Page[*domain.FoodRecord], error) {
	keywords := s.query.Keywords(query)
	if len(keywords) == 0 {
		return Page[*domain.FoodRecord]{}, fmt.Errorf("%w: empty search query", domain.ErrInvalidRequest)
	}
	foods, err := s.foods.SearchByName(ctx, keywords)
	if err != nil {
		return Page[*domain.FoodRecord]{}, err
	}
	markStored(foods)
	return Paginate(foods, page, size, s.pages)
}

// GetLocal returns a stored food
func (s *FoodService) GetLocal(ctx context.Context, fdcID int) (*domain.FoodRecord, error) {
	food, err := s.foods.GetByFdcID(ctx, fdcID)
	if err != nil {
		return nil, err
	}
	food.InDBAlready = true
	return food, nil
}

// SearchFDC runs a text search against the FDC and pages through the
// resulting stubs.
func (s *FoodService) SearchFDC(ctx context.Context, query string, page, size int) (Page[*domain.FoodStub], error) {
	cleaned := s.query.PrepareFDCQuery(query)
	if cleaned == "" {
		return Page[*domain.FoodStub]{}, fmt.Errorf("%w: empty search query", domain.ErrInvalidRequest)
	}

	resp, err := s.fdc.SearchFoods(ctx, cleaned)
	if err != nil {
		return Page[*domain.FoodStub]{}, err
	}

	stubs := make([]*domain.FoodStub, 0, len(resp.Foods))
	for _, hit := range resp.Foods {
		stubs = append(stubs, usda.MapToFoodStub(hit))
	}
	return Paginate(stubs, page, size, s.pages)
}

// LookupFDC fetches and maps one FDC food. The error distinguishes an id the
// FDC does not know (domain.ErrFoodNotFound), a payload that cannot become a
// food (domain.ErrUnusableRecord) and transport failures. InDBAlready reports
// whether the food has been imported.
func (s *FoodService) LookupFDC(ctx context.Context, fdcID int) (*domain.FoodRecord, error) {
	if fdcID <= 0 {
		return nil, fmt.Errorf("%w: fdc id must be positive", domain.ErrInvalidRequest)
	}

	payload, err := s.fetchDetails(ctx, fdcID)
	if err != nil {
		return nil, err
	}
	if !usda.IsUsable(payload) {
		s.log.Info("fdc payload unusable", zap.Int("fdc_id", fdcID), zap.String("data_type", payload.DataType))
		return nil, fmt.Errorf("%w: fdc id %d (%s)", domain.ErrUnusableRecord, fdcID, payload.DataType)
	}

	food, err := s.mapper.MapToFood(payload)
	if err != nil {
		if errors.Is(err, domain.ErrUnusableRecord) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrUnusableRecord, err)
	}

	exists, err := s.foods.ExistsByFdcID(ctx, fdcID)
	if err != nil {
		return nil, err
	}
	food.InDBAlready = exists
	return food, nil
}

// ImportFDC stores the FDC food locally and reports whether it was newly
// created. Importing a food that is already stored returns the stored copy
// unchanged with created false.
func (s *FoodService) ImportFDC(ctx context.Context, fdcID int) (*domain.FoodRecord, bool, error) {
	stored, err := s.foods.GetByFdcID(ctx, fdcID)
	if err == nil {
		stored.InDBAlready = true
		return stored, false, nil
	}
	if !errors.Is(err, domain.ErrFoodNotFound) {
		return nil, false, err
	}

	food, err := s.LookupFDC(ctx, fdcID)
	if err != nil {
		return nil, false, err
	}
	if err := s.foods.Save(ctx, food); err != nil {
		return nil, false, err
	}
	food.InDBAlready = true
	s.log.Info("imported food", zap.Int("fdc_id", fdcID), zap.String("name", food.Name))
	return food, true, nil
}

func detailsCacheKey(fdcID int) string {
	return fmt.Sprintf("fdc:food:%d", fdcID)
}

// fetchDetails returns the FDC payload, preferring a cached copy
func (s *FoodService) fetchDetails(ctx context.Context, fdcID int) (*domain.FDCFood, error) {
	key := detailsCacheKey(fdcID)

	if data, err := s.cache.Get(ctx, key); err == nil {
		var cached domain.FDCFood
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
		s.log.Warn("dropping undecodable cache entry", zap.String("key", key))
		_ = s.cache.Delete(ctx, key)
	}

	payload, err := s.fdc.GetFoodDetails(ctx, fdcID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(payload); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
			s.log.Warn("failed to cache fdc payload", zap.String("key", key), zap.Error(err))
		}
	}
	return payload, nil
}

func markStored(foods []*domain.FoodRecord) {
	for _, f := range foods {
		f.InDBAlready = true
	}
}
