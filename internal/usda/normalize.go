package usda

import (
	"math"
	"strings"
)

// searchResponse mirrors the subset of the FoodData Central search payload
// this client reads.
type searchResponse struct {
	Foods []rawFood `json:"foods"`
}

type rawFood struct {
	FdcID         int64         `json:"fdcId"`
	Description   string        `json:"description"`
	DataType      string        `json:"dataType"`
	FoodNutrients []rawNutrient `json:"foodNutrients"`
}

type rawNutrient struct {
	NutrientID   int64    `json:"nutrientId"`
	NutrientName string   `json:"nutrientName"`
	Value        *float64 `json:"value"`
}

// USDA nutrient IDs for the four tracked macros. ID matching is preferred;
// name matching is the fallback for records that omit IDs.
const (
	nutrientIDProtein  = 1003
	nutrientIDFat      = 1004
	nutrientIDCarbs    = 1005
	nutrientIDCalories = 1008
)

// normalizeFoods converts raw API records into Foods, dropping duplicates and
// records with no meaningful nutrient data.
func normalizeFoods(raw []rawFood, maxResults int) []Food {
	foods := make([]Food, 0, maxResults)
	seen := make(map[string]bool)

	for _, rf := range raw {
		name := strings.TrimSpace(rf.Description)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}

		nutrients := extractNutrients(rf.FoodNutrients)
		// A record reporting neither calories nor protein is unusable.
		if nutrients.Calories == nil && nutrients.Protein == nil {
			continue
		}

		foods = append(foods, Food{
			Name:      name,
			FdcID:     rf.FdcID,
			DataType:  rf.DataType,
			Nutrients: nutrients,
		})
		seen[key] = true

		if len(foods) >= maxResults {
			break
		}
	}
	return foods
}

// extractNutrients pulls the four tracked macros out of a record's nutrient
// list. Nutrients the record does not report stay nil so "no data" is never
// conflated with "zero grams".
func extractNutrients(list []rawNutrient) Nutrients {
	var n Nutrients
	for _, item := range list {
		if item.Value == nil {
			continue
		}
		switch item.NutrientID {
		case nutrientIDProtein:
			n.Protein = roundTo(*item.Value, 1)
		case nutrientIDFat:
			n.Fat = roundTo(*item.Value, 1)
		case nutrientIDCarbs:
			n.Carbs = roundTo(*item.Value, 1)
		case nutrientIDCalories:
			n.Calories = roundTo(*item.Value, 0)
		default:
			nameMatch(&n, item)
		}
	}
	return n
}

// nameMatch fills in nutrients by name for records whose IDs did not match.
func nameMatch(n *Nutrients, item rawNutrient) {
	name := strings.ToLower(item.NutrientName)
	switch {
	case n.Protein == nil && strings.Contains(name, "protein"):
		n.Protein = roundTo(*item.Value, 1)
	case n.Carbs == nil && strings.Contains(name, "carbohydrate"):
		n.Carbs = roundTo(*item.Value, 1)
	case n.Fat == nil && (strings.Contains(name, "total lipid") || strings.Contains(name, "fat, total")):
		n.Fat = roundTo(*item.Value, 1)
	case n.Calories == nil && strings.Contains(name, "energy"):
		n.Calories = roundTo(*item.Value, 0)
	}
}

func roundTo(v float64, places int) *float64 {
	scale := math.Pow(10, float64(places))
	r := math.Round(v*scale) / scale
	return &r
}
