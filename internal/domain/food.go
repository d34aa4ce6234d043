package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Storage field names shared by stored food documents and API payloads
const (
	FieldFdcID        = "fdc_id"
	FieldFoodName     = "food_name"
	FieldServingSize  = "serving_size"
	FieldServingUnits = "serving_units"
	FieldCalories     = "calories"
	FieldInDBAlready  = "in_db_already"
)

// StorageRecord is the flat document shape a food is persisted as: identity
// and serving fields plus one bare amount per present nutrient symbol.
type StorageRecord map[string]interface{}

// Food is the capability shared by every food representation handed to the
// persistence and delivery layers.
type Food interface {
	Serialize() map[string]interface{}
	ToStorageFields() StorageRecord
}

var (
	_ Food = (*FoodRecord)(nil)
	_ Food = (*FoodStub)(nil)
)

// FoodRecord is the complete nutrient profile of one food. Absent nutrients
// are treated as zero. Only InDBAlready may change after construction.
type FoodRecord struct {
	FdcID       int
	Name        string
	ServingSize float64
	ServingUnit string
	InDBAlready bool

	nutrients map[string]NutrientValue
}

// NewFoodRecord validates the identity and serving fields and stores the
// non-zero nutrient values.
func NewFoodRecord(fdcID int, name string, servingSize float64, servingUnit string, values []NutrientValue) (*FoodRecord, error) {
	if fdcID < 0 {
		return nil, fmt.Errorf("%w: fdc_id %d", ErrInvalidRequest, fdcID)
	}
	if !(servingSize > 0) || math.IsInf(servingSize, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidServingSize, servingSize)
	}

	food := &FoodRecord{
		FdcID:       fdcID,
		Name:        name,
		ServingSize: servingSize,
		ServingUnit: servingUnit,
		nutrients:   make(map[string]NutrientValue, len(values)),
	}
	for _, v := range values {
		if _, ok := KindBySymbol(v.Kind.Symbol); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownNutrient, v.Kind.Symbol)
		}
		if v.Amount < 0 || math.IsNaN(v.Amount) || math.IsInf(v.Amount, 0) {
			return nil, fmt.Errorf("%w: %s = %v", ErrInvalidAmount, v.Kind.Symbol, v.Amount)
		}
		if v.Amount == 0 {
			continue
		}
		food.nutrients[v.Kind.Symbol] = v
	}
	return food, nil
}

// FoodFromStorage rebuilds a food from its stored document. The stored name is
// used verbatim; it was title-cased when the food was first imported.
func FoodFromStorage(rec StorageRecord) (*FoodRecord, error) {
	fdcID, err := storageInt(rec, FieldFdcID)
	if err != nil {
		return nil, err
	}
	servingSize, _, err := storageFloat(rec, FieldServingSize)
	if err != nil {
		return nil, err
	}
	name, _ := rec[FieldFoodName].(string)
	unit, _ := rec[FieldServingUnits].(string)

	var values []NutrientValue
	for _, kind := range catalog {
		amount, present, err := storageFloat(rec, kind.Symbol)
		if err != nil {
			return nil, err
		}
		if !present || amount == 0 {
			continue
		}
		v, err := NewNutrientValue(kind, amount)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	food, err := NewFoodRecord(fdcID, name, servingSize, unit, values)
	if err != nil {
		return nil, err
	}
	if inDB, ok := rec[FieldInDBAlready].(bool); ok {
		food.InDBAlready = inDB
	}
	return food, nil
}

// Nutrient returns the value for a field symbol, if the food has it
func (f *FoodRecord) Nutrient(symbol string) (NutrientValue, bool) {
	v, ok := f.nutrients[symbol]
	return v, ok
}

// Amount returns the amount for a field symbol, or 0 when absent
func (f *FoodRecord) Amount(symbol string) float64 {
	return f.nutrients[symbol].Amount
}

// Nutrients returns copies of the present values in catalog order
func (f *FoodRecord) Nutrients() []NutrientValue {
	out := make([]NutrientValue, 0, len(f.nutrients))
	for _, kind := range catalog {
		if v, ok := f.nutrients[kind.Symbol]; ok {
			out = append(out, v)
		}
	}
	return out
}

// ScaledBy returns a new food with the serving size and every nutrient amount
// multiplied by servings. The receiver is not modified.
func (f *FoodRecord) ScaledBy(servings float64) (*FoodRecord, error) {
	if err := f.checkServings(servings); err != nil {
		return nil, err
	}
	scaled := &FoodRecord{
		FdcID:       f.FdcID,
		Name:        f.Name,
		ServingSize: f.ServingSize * servings,
		ServingUnit: f.ServingUnit,
		InDBAlready: f.InDBAlready,
		nutrients:   make(map[string]NutrientValue, len(f.nutrients)),
	}
	for symbol, v := range f.nutrients {
		scaled.nutrients[symbol] = v.Scaled(servings)
	}
	return scaled, nil
}

// checkServings rejects servings that are not positive and finite, or that
// push the serving size or any nutrient amount out of float range.
func (f *FoodRecord) checkServings(servings float64) error {
	if !(servings > 0) || math.IsInf(servings, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidServings, servings)
	}
	if math.IsInf(f.ServingSize*servings, 0) {
		return fmt.Errorf("%w: %v servings overflows the serving size", ErrInvalidServings, servings)
	}
	for symbol, v := range f.nutrients {
		if math.IsInf(v.Amount*servings, 0) {
			return fmt.Errorf("%w: %v servings overflows %s", ErrInvalidServings, servings, symbol)
		}
	}
	return nil
}

// ToStorageFields flattens the food to bare amounts for persistence
func (f *FoodRecord) ToStorageFields() StorageRecord {
	rec := StorageRecord{
		FieldFdcID:        f.FdcID,
		FieldFoodName:     f.Name,
		FieldServingSize:  f.ServingSize,
		FieldServingUnits: f.ServingUnit,
	}
	for symbol, v := range f.nutrients {
		rec[symbol] = v.Amount
	}
	return rec
}

// Serialize renders the food with each nutrient expanded to its full value
func (f *FoodRecord) Serialize() map[string]interface{} {
	out := map[string]interface{}{
		FieldFdcID:        f.FdcID,
		FieldFoodName:     f.Name,
		FieldServingSize:  f.ServingSize,
		FieldServingUnits: f.ServingUnit,
		FieldInDBAlready:  f.InDBAlready,
	}
	for symbol, v := range f.nutrients {
		out[symbol] = v.Serialize()
	}
	return out
}

// FoodStub is the summary of a food shown in search results
type FoodStub struct {
	FdcID    int
	Name     string
	Calories *float64
}

// NewFoodStub title-cases the description into the stub's display name
func NewFoodStub(fdcID int, description string, calories *float64) *FoodStub {
	return &FoodStub{FdcID: fdcID, Name: TitleCase(description), Calories: calories}
}

// Serialize renders the stub; calories is null when FDC did not report energy
func (s *FoodStub) Serialize() map[string]interface{} {
	out := map[string]interface{}{
		FieldFdcID:    s.FdcID,
		FieldFoodName: s.Name,
		FieldCalories: nil,
	}
	if s.Calories != nil {
		out[FieldCalories] = *s.Calories
	}
	return out
}

// ToStorageFields flattens the stub; calories is omitted when unknown
func (s *FoodStub) ToStorageFields() StorageRecord {
	rec := StorageRecord{FieldFdcID: s.FdcID, FieldFoodName: s.Name}
	if s.Calories != nil {
		rec[FieldCalories] = *s.Calories
	}
	return rec
}

// storageFloat reads a numeric field. A nil or missing field is reported as
// not present; a negative or non-numeric one is an error.
func storageFloat(rec StorageRecord, key string) (float64, bool, error) {
	raw, ok := rec[key]
	if !ok || raw == nil {
		return 0, false, nil
	}
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false, fmt.Errorf("%w: %s = %q", ErrInvalidAmount, key, v.String())
		}
		f = parsed
	default:
		return 0, false, fmt.Errorf("%w: %s has type %T", ErrInvalidAmount, key, raw)
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, fmt.Errorf("%w: %s = %v", ErrInvalidAmount, key, f)
	}
	return f, true, nil
}

func storageInt(rec StorageRecord, key string) (int, error) {
	f, present, err := storageFloat(rec, key)
	if err != nil {
		return 0, err
	}
	if !present {
		return 0, fmt.Errorf("%w: %s is missing", ErrInvalidAmount, key)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %s = %v is not an integer", ErrInvalidAmount, key, f)
	}
	return int(f), nil
}
