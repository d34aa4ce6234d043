package usda

import (
	"fmt"
	"strings"

	"github.com/kmfahey/nutritracker/internal/domain"
	"go.uber.org/zap"
)

// Mapper converts FDC detail payloads into food records
type Mapper struct {
	logger *zap.Logger
}

// NewMapper creates a mapper that reports unit mismatches to logger
func NewMapper(logger *zap.Logger) *Mapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mapper{logger: logger}
}

// IsUsable reports whether the payload carries everything MapToFood needs.
// SR Legacy foods take their serving from the first food portion; Branded
// foods carry it directly.
func IsUsable(food *domain.FDCFood) bool {
	if food == nil || food.FdcID == 0 || food.Description == "" {
		return false
	}
	switch food.DataType {
	case domain.DataTypeSRLegacy:
		if len(food.FoodPortions) == 0 {
			return false
		}
		portion := food.FoodPortions[0]
		return portion.Amount != nil && portion.Modifier != ""
	case domain.DataTypeBranded:
		return food.ServingSize != nil && food.ServingSizeUnit != ""
	default:
		return false
	}
}

func serving(food *domain.FDCFood) (float64, string, error) {
	switch food.DataType {
	case domain.DataTypeSRLegacy:
		if len(food.FoodPortions) == 0 || food.FoodPortions[0].Amount == nil {
			return 0, "", fmt.Errorf("%w: fdc %d has no food portion", domain.ErrUnusableRecord, food.FdcID)
		}
		return *food.FoodPortions[0].Amount, food.FoodPortions[0].Modifier, nil
	case domain.DataTypeBranded:
		if food.ServingSize == nil {
			return 0, "", fmt.Errorf("%w: fdc %d has no serving size", domain.ErrUnusableRecord, food.FdcID)
		}
		return *food.ServingSize, food.ServingSizeUnit, nil
	default:
		return 0, "", fmt.Errorf("%w: %q", domain.ErrUnsupportedDataType, food.DataType)
	}
}

// MapToFood converts a detail payload into a food record with a title-cased
// name and catalog-normalized nutrients.
func (m *Mapper) MapToFood(food *domain.FDCFood) (*domain.FoodRecord, error) {
	if food == nil {
		return nil, fmt.Errorf("%w: empty payload", domain.ErrUnusableRecord)
	}
	size, unit, err := serving(food)
	if err != nil {
		return nil, err
	}

	values := make([]domain.NutrientValue, 0, len(food.FoodNutrients))
	for _, entry := range food.FoodNutrients {
		n, ok, err := NormalizeNutrient(entry)
		if err != nil {
			return nil, fmt.Errorf("fdc %d: %w", food.FdcID, err)
		}
		if !ok {
			continue
		}
		if n.Mismatch {
			m.logger.Warn("unit mismatch kept as reported",
				zap.Int("fdc_id", food.FdcID),
				zap.String("symbol", n.Value.Kind.Symbol),
				zap.String("expected", n.Value.Kind.Unit),
				zap.String("got", n.RawUnit),
			)
		}
		values = append(values, n.Value)
	}

	name := domain.TitleCase(strings.ToLower(food.Description))
	record, err := domain.NewFoodRecord(food.FdcID, name, size, unit, values)
	if err != nil {
		return nil, fmt.Errorf("fdc %d: %w", food.FdcID, err)
	}
	return record, nil
}

// MapToFoodStub summarizes a search hit. Calories come from the energy
// nutrient when the hit reports one.
func MapToFoodStub(hit domain.FDCSearchFood) *domain.FoodStub {
	var calories *float64
	for _, n := range hit.FoodNutrients {
		if n.NutrientNumber == fmt.Sprint(domain.CodeEnergy) {
			v := n.Value
			calories = &v
			break
		}
	}
	return domain.NewFoodStub(hit.FdcID, strings.ToLower(hit.Description), calories)
}
