package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kmfahey/nutritracker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func rawAmount(s string) *domain.RawAmount {
	a := domain.RawAmount(s)
	return &a
}

func brandedBread() *domain.FDCFood {
	return &domain.FDCFood{
		FdcID:           2131541,
		Description:     "WHITE BREAD",
		DataType:        domain.DataTypeBranded,
		ServingSize:     floatPtr(25),
		ServingSizeUnit: "g",
		FoodNutrients: []domain.FDCNutrientEntry{
			{Nutrient: domain.FDCNutrient{Number: "203", UnitName: "G"}, Amount: rawAmount("8")},
			{Nutrient: domain.FDCNutrient{Number: "208", UnitName: "KCAL"}, Amount: rawAmount("280")},
		},
	}
}

func storedFood(t *testing.T, fdcID int, name string, protein float64) *domain.FoodRecord {
	t.Helper()
	food, err := domain.FoodFromStorage(domain.StorageRecord{
		domain.FieldFdcID:        fdcID,
		domain.FieldFoodName:     name,
		domain.FieldServingSize:  100.0,
		domain.FieldServingUnits: "g",
		domain.SymbolProtein:     protein,
	})
	require.NoError(t, err)
	return food
}

type foodFixture struct {
	foods *MockFoodRepository
	fdc   *MockFDCClient
	cache *MockCacheRepository
	svc   *FoodService
}

func newFoodFixture(t *testing.T, stored ...*domain.FoodRecord) *foodFixture {
	f := &foodFixture{
		foods: NewMockFoodRepository(stored...),
		fdc:   NewMockFDCClient(),
		cache: NewMockCacheRepository(),
	}
	f.svc = NewFoodService(f.foods, f.fdc, f.cache, nil, FoodServiceConfig{Pages: PageLimits{DefaultSize: 2, MaxSize: 10}})
	return f
}

func TestNewFoodService_Defaults(t *testing.T) {
	svc := NewFoodService(nil, nil, nil, nil, FoodServiceConfig{})
	assert.Equal(t, 24*time.Hour, svc.cacheTTL)
	assert.Equal(t, 25, svc.pages.DefaultSize)

	svc = NewFoodService(nil, nil, nil, nil, FoodServiceConfig{CacheTTL: time.Hour})
	assert.Equal(t, time.Hour, svc.cacheTTL)
}

func TestFoodService_ListFoods(t *testing.T) {
	ctx := context.Background()
	f := newFoodFixture(t,
		storedFood(t, 1, "Oats", 13),
		storedFood(t, 2, "Honey", 0.3),
		storedFood(t, 3, "White Bread", 8),
	)

	page, err := f.svc.ListFoods(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Honey", page.Items[0].Name)
	assert.Equal(t, "Oats", page.Items[1].Name)
	assert.True(t, page.Items[0].InDBAlready)
	assert.Equal(t, 2, page.TotalPages)

	page, err = f.svc.ListFoods(ctx, 3, 2)
	require.NoError(t, err)
	assert.True(t, page.NoMoreResults)

	f.foods.listError = errors.New("connection reset")
	_, err = f.svc.ListFoods(ctx, 1, 2)
	assert.Error(t, err)
}

func TestFoodService_SearchLocal(t *testing.T) {
	ctx := context.Background()
	f := newFoodFixture(t,
		storedFood(t, 1, "Bread, Whole Wheat", 13),
		storedFood(t, 2, "White Bread", 8),
		storedFood(t, 3, "Wheat Flour, White", 10),
	)

	page, err := f.svc.SearchLocal(ctx, "WHITE bread", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "White Bread", page.Items[0].Name)

	page, err = f.svc.SearchLocal(ctx, "wheat", 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = f.svc.SearchLocal(ctx, "quinoa", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.NoMoreResults)

	_, err = f.svc.SearchLocal(ctx, "  ", 1, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestFoodService_GetLocal(t *testing.T) {
	ctx := context.Background()
	f := newFoodFixture(t, storedFood(t, 7, "Oats", 13))

	food, err := f.svc.GetLocal(ctx, 7)
	require.NoError(t, err)
	assert.True(t, food.InDBAlready)

	_, err = f.svc.GetLocal(ctx, 8)
	assert.ErrorIs(t, err, domain.ErrFoodNotFound)
}

func TestFoodService_SearchFDC(t *testing.T) {
	ctx := context.Background()
	f := newFoodFixture(t)
	f.fdc.searchResult = &domain.FDCSearchResponse{Foods: []domain.FDCSearchFood{
		{FdcID: 1, Description: "WHITE BREAD", FoodNutrients: []domain.FDCSearchNutrient{{NutrientNumber: "208", Value: 266}}},
		{FdcID: 2, Description: "BREAD, WHITE, COMMERCIALLY PREPARED"},
		{FdcID: 3, Description: "BREAD & BUTTER PICKLES"},
	}}

	page, err := f.svc.SearchFDC(ctx, "white bread!", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "white bread", f.fdc.lastQuery)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "White Bread", page.Items[0].Name)
	require.NotNil(t, page.Items[0].Calories)
	assert.Equal(t, 266.0, *page.Items[0].Calories)
	assert.Nil(t, page.Items[1].Calories)
	assert.Equal(t, 3, page.TotalItems)

	_, err = f.svc.SearchFDC(ctx, "!!", 1, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	f.fdc.searchError = domain.ErrFDCAPIFailure
	_, err = f.svc.SearchFDC(ctx, "bread", 1, 2)
	assert.ErrorIs(t, err, domain.ErrFDCAPIFailure)
}

func TestFoodService_LookupFDC(t *testing.T) {
	ctx := context.Background()

	t.Run("maps a usable payload", func(t *testing.T) {
		f := newFoodFixture(t)
		f.fdc.foods[2131541] = brandedBread()

		food, err := f.svc.LookupFDC(ctx, 2131541)
		require.NoError(t, err)
		assert.Equal(t, "White Bread", food.Name)
		assert.Equal(t, 8.0, food.Amount(domain.SymbolProtein))
		assert.False(t, food.InDBAlready)
	})

	t.Run("flags foods already stored", func(t *testing.T) {
		f := newFoodFixture(t, storedFood(t, 2131541, "White Bread", 8))
		f.fdc.foods[2131541] = brandedBread()

		food, err := f.svc.LookupFDC(ctx, 2131541)
		require.NoError(t, err)
		assert.True(t, food.InDBAlready)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFoodFixture(t)
		_, err := f.svc.LookupFDC(ctx, 42)
		assert.ErrorIs(t, err, domain.ErrFoodNotFound)
	})

	t.Run("unusable data type", func(t *testing.T) {
		f := newFoodFixture(t)
		f.fdc.foods[5] = &domain.FDCFood{FdcID: 5, Description: "Apple", DataType: "Foundation"}

		_, err := f.svc.LookupFDC(ctx, 5)
		assert.ErrorIs(t, err, domain.ErrUnusableRecord)
	})

	t.Run("malformed nutrient amounts are unusable", func(t *testing.T) {
		f := newFoodFixture(t)
		bad := brandedBread()
		bad.FoodNutrients[0].Amount = rawAmount("-8")
		f.fdc.foods[bad.FdcID] = bad

		_, err := f.svc.LookupFDC(ctx, bad.FdcID)
		assert.ErrorIs(t, err, domain.ErrUnusableRecord)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("transport failure", func(t *testing.T) {
		f := newFoodFixture(t)
		f.fdc.foodError = domain.ErrFDCAPIFailure

		_, err := f.svc.LookupFDC(ctx, 1)
		assert.ErrorIs(t, err, domain.ErrFDCAPIFailure)
		assert.NotErrorIs(t, err, domain.ErrUnusableRecord)
	})

	t.Run("invalid id", func(t *testing.T) {
		f := newFoodFixture(t)
		_, err := f.svc.LookupFDC(ctx, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}

func TestFoodService_LookupFDC_UsesCache(t *testing.T) {
	ctx := context.Background()
	f := newFoodFixture(t)
	f.fdc.foods[2131541] = brandedBread()

	first, err := f.svc.LookupFDC(ctx, 2131541)
	require.NoError(t, err)
	assert.Equal(t, 1, f.fdc.detailCalls)
	assert.Equal(t, 1, f.cache.sets)

	second, err := f.svc.LookupFDC(ctx, 2131541)
	require.NoError(t, err)
	assert.Equal(t, 1, f.fdc.detailCalls, "second lookup served from cache")
	assert.Equal(t, first.Nutrients(), second.Nutrients())

	f.cache.data[detailsCacheKey(2131541)] = []byte("{broken")
	_, err = f.svc.LookupFDC(ctx, 2131541)
	require.NoError(t, err)
	assert.Equal(t, 2, f.fdc.detailCalls, "undecodable entry refetched")
}

func TestFoodService_LookupFDC_CacheFailuresAreNotFatal(t *testing.T) {
	ctx := context.Background()
	f := newFoodFixture(t)
	f.fdc.foods[2131541] = brandedBread()
	f.cache.getError = errors.New("cache down")
	f.cache.setError = errors.New("cache down")

	food, err := f.svc.LookupFDC(ctx, 2131541)
	require.NoError(t, err)
	assert.Equal(t, "White Bread", food.Name)
}

func TestFoodService_ImportFDC(t *testing.T) {
	ctx := context.Background()
	f := newFoodFixture(t)
	f.fdc.foods[2131541] = brandedBread()

	food, created, err := f.svc.ImportFDC(ctx, 2131541)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, food.InDBAlready)
	assert.Equal(t, 1, f.foods.saves)

	stored, err := f.svc.GetLocal(ctx, 2131541)
	require.NoError(t, err)
	assert.Equal(t, "White Bread", stored.Name)

	again, created, err := f.svc.ImportFDC(ctx, 2131541)
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, again.InDBAlready)
	assert.Equal(t, 1, f.foods.saves, "second import does not rewrite")

	_, _, err = f.svc.ImportFDC(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrFoodNotFound)

	f.foods.saveError = errors.New("write conflict")
	f.fdc.foods[3] = brandedBread()
	f.fdc.foods[3].FdcID = 3
	_, _, err = f.svc.ImportFDC(ctx, 3)
	assert.Error(t, err)
}
