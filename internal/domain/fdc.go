package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FDC data types the food mapper understands
const (
	DataTypeSRLegacy = "SR Legacy"
	DataTypeBranded  = "Branded"
)

// FDCFood represents a food detail record from the FDC /v1/food/{fdcId} endpoint
type FDCFood struct {
	FdcID           int                `json:"fdcId"`
	Description     string             `json:"description"`
	DataType        string             `json:"dataType"`
	ServingSize     *float64           `json:"servingSize,omitempty"`
	ServingSizeUnit string             `json:"servingSizeUnit,omitempty"`
	FoodPortions    []FDCFoodPortion   `json:"foodPortions,omitempty"`
	FoodNutrients   []FDCNutrientEntry `json:"foodNutrients"`
}

// FDCFoodPortion is one household portion of an SR Legacy food
type FDCFoodPortion struct {
	Amount     *float64 `json:"amount,omitempty"`
	Modifier   string   `json:"modifier,omitempty"`
	GramWeight float64  `json:"gramWeight,omitempty"`
}

// FDCNutrientEntry is one measured nutrient inside a food detail record
type FDCNutrientEntry struct {
	Nutrient FDCNutrient `json:"nutrient"`
	Amount   *RawAmount  `json:"amount,omitempty"`
}

// FDCNutrient identifies the nutrient an entry measures
type FDCNutrient struct {
	ID       int    `json:"id"`
	Number   string `json:"number"`
	Name     string `json:"name"`
	UnitName string `json:"unitName"`
}

// Code parses the nutrient number ("203") into an int
func (n FDCNutrient) Code() (int, bool) {
	code, err := strconv.Atoi(strings.TrimSpace(n.Number))
	if err != nil {
		return 0, false
	}
	return code, true
}

// RawAmount keeps an amount exactly as the FDC sent it so that a malformed
// value fails at normalization instead of failing the whole payload decode.
type RawAmount string

// UnmarshalJSON accepts both JSON numbers and quoted strings
func (a *RawAmount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = RawAmount(s)
		return nil
	}
	*a = RawAmount(data)
	return nil
}

// MarshalJSON writes finite amounts as canonical JSON numbers and anything
// else, NaN and infinities included, as a string
func (a RawAmount) MarshalJSON() ([]byte, error) {
	f, err := a.Float()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return json.Marshal(string(a))
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

// Float parses the amount
func (a RawAmount) Float() (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(a)), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, string(a))
	}
	return f, nil
}

// FDCSearchResponse represents the response from the FDC /v1/foods/search endpoint
type FDCSearchResponse struct {
	Foods       []FDCSearchFood `json:"foods"`
	TotalHits   int             `json:"totalHits"`
	CurrentPage int             `json:"currentPage"`
	TotalPages  int             `json:"totalPages"`
}

// FDCSearchFood is an abridged food returned by search
type FDCSearchFood struct {
	FdcID         int                 `json:"fdcId"`
	Description   string              `json:"description"`
	DataType      string              `json:"dataType"`
	BrandOwner    string              `json:"brandOwner,omitempty"`
	FoodNutrients []FDCSearchNutrient `json:"foodNutrients"`
}

// FDCSearchNutrient is the flattened nutrient shape used by search results
type FDCSearchNutrient struct {
	NutrientID     int     `json:"nutrientId"`
	NutrientName   string  `json:"nutrientName"`
	NutrientNumber string  `json:"nutrientNumber,omitempty"`
	UnitName       string  `json:"unitName"`
	Value          float64 `json:"value"`
}
