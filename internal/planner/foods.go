package planner

import (
	"context"
	"log"
	"strings"

	"diet-plan-assistant/internal/usda"
)

// FoodSearcher is the slice of the USDA client the planner needs.
type FoodSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]usda.Food, error)
}

// cuisineFoods maps each supported cuisine to the search terms used to stock
// the plan with authentic ingredients. The key set doubles as the cuisine
// enum for validation.
var cuisineFoods = map[string][]string{
	"american":      {"chicken breast", "beef steak", "potato", "broccoli", "cheese", "eggs"},
	"italian":       {"pasta", "tomato", "olive oil", "basil", "mozzarella", "bread"},
	"mexican":       {"beans", "corn", "avocado", "tomato", "pepper", "rice"},
	"asian":         {"rice", "tofu", "soy sauce", "ginger", "noodles", "bok choy"},
	"chinese":       {"rice", "tofu", "soy sauce", "ginger", "noodles", "bok choy", "chicken"},
	"indian":        {"rice", "lentils", "chicken", "yogurt", "spinach", "potato"},
	"mediterranean": {"olive oil", "fish", "tomato", "cucumber", "yogurt", "chickpeas"},
	"vegetarian":    {"tofu", "lentils", "beans", "spinach", "broccoli", "nuts"},
}

// universalFoods top up categories the cuisine search left thin.
var universalFoods = map[string][]string{
	"proteins":   {"chicken breast", "eggs", "salmon", "tofu", "greek yogurt"},
	"carbs":      {"brown rice", "oats", "quinoa", "sweet potato", "whole wheat bread"},
	"vegetables": {"spinach", "broccoli", "tomatoes", "bell peppers", "carrots"},
	"fats":       {"olive oil", "almonds", "avocado", "walnuts", "peanut butter"},
}

// categoryOrder keeps prompt output deterministic.
var categoryOrder = []string{"proteins", "carbs", "vegetables", "fats"}

// ValidCuisine reports whether the cuisine is one of the supported options.
func ValidCuisine(cuisine string) bool {
	_, ok := cuisineFoods[strings.ToLower(cuisine)]
	return ok
}

// Cuisines lists the supported cuisine options in a fixed order.
func Cuisines() []string {
	return []string{"american", "italian", "mexican", "asian", "chinese", "indian", "mediterranean", "vegetarian"}
}

// AvailableFoods groups searched foods by macro category.
type AvailableFoods map[string][]usda.Food

// GatherFoods searches the nutrition database for the cuisine's preferred
// ingredients and buckets results by category, topping up thin categories
// with universal staples. Search failures on individual terms are logged and
// skipped; the plan degrades to fewer ingredients rather than failing.
func GatherFoods(ctx context.Context, searcher FoodSearcher, cuisine string) AvailableFoods {
	available := AvailableFoods{}
	terms := cuisineFoods[strings.ToLower(cuisine)]

	for _, term := range terms {
		foods, err := searcher.Search(ctx, term, 3)
		if err != nil {
			log.Printf("planner: search for %q failed: %v", term, err)
			continue
		}
		for _, food := range foods {
			category := categorize(food)
			if len(available[category]) < 6 {
				available[category] = append(available[category], food)
			}
		}
	}

	// Fill thin categories with universal staples so the prompt always has
	// something to cook with.
	for _, category := range categoryOrder {
		if len(available[category]) >= 3 {
			continue
		}
		for _, term := range universalFoods[category] {
			if len(available[category]) >= 5 {
				break
			}
			if hasSimilar(available[category], term) {
				continue
			}
			foods, err := searcher.Search(ctx, term, 1)
			if err != nil {
				log.Printf("planner: fallback search for %q failed: %v", term, err)
				continue
			}
			if len(foods) > 0 {
				available[category] = append(available[category], foods[0])
			}
		}
	}

	return available
}

func hasSimilar(foods []usda.Food, term string) bool {
	for _, f := range foods {
		if strings.Contains(strings.ToLower(f.Name), term) {
			return true
		}
	}
	return false
}

var (
	proteinKeywords = []string{
		"chicken", "beef", "pork", "fish", "salmon", "tuna", "turkey", "duck",
		"egg", "tofu", "tempeh", "seitan", "lentil", "bean", "chickpea",
		"yogurt", "cottage cheese", "protein", "meat", "shrimp", "crab",
		"lobster", "lamb", "veal", "venison", "bison", "sardine", "mackerel",
	}
	carbKeywords = []string{
		"rice", "pasta", "bread", "potato", "sweet potato", "yam", "oat",
		"quinoa", "barley", "wheat", "corn", "cereal", "noodle", "spaghetti",
		"tortilla", "bagel", "muffin", "cracker", "couscous", "bulgur", "farro",
	}
	vegetableKeywords = []string{
		"broccoli", "spinach", "kale", "lettuce", "tomato", "cucumber",
		"pepper", "carrot", "celery", "onion", "garlic", "mushroom",
		"zucchini", "squash", "cauliflower", "cabbage", "bok choy",
		"asparagus", "green bean", "brussels", "eggplant", "radish", "beet",
		"turnip", "arugula", "chard", "collard",
	}
	fatKeywords = []string{
		"oil", "butter", "avocado", "nut", "almond", "walnut", "cashew",
		"pecan", "peanut", "seed", "olive", "coconut", "cheese", "cream",
		"mayo", "ghee",
	}
)

// categorize buckets a food by name keywords first, falling back to the
// dominant macronutrient share when no keyword matches.
func categorize(food usda.Food) string {
	name := strings.ToLower(food.Name)
	switch {
	case containsAny(name, proteinKeywords):
		return "proteins"
	case containsAny(name, carbKeywords):
		return "carbs"
	case containsAny(name, vegetableKeywords):
		return "vegetables"
	case containsAny(name, fatKeywords):
		return "fats"
	}

	n := food.Nutrients
	if n.Calories != nil && *n.Calories > 0 {
		calories := *n.Calories
		proteinPct := nutrientShare(n.Protein, 4, calories)
		carbsPct := nutrientShare(n.Carbs, 4, calories)
		fatPct := nutrientShare(n.Fat, 9, calories)

		switch {
		case proteinPct > 0.3:
			return "proteins"
		case fatPct > 0.5:
			return "fats"
		case carbsPct > 0.4:
			return "carbs"
		case calories < 50 && (n.Carbs == nil || *n.Carbs < 10):
			return "vegetables"
		}
	}

	return "proteins"
}

func nutrientShare(grams *float64, kcalPerGram, calories float64) float64 {
	if grams == nil {
		return 0
	}
	return *grams * kcalPerGram / calories
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
