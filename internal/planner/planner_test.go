package planner

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"diet-plan-assistant/internal/llm"
	"diet-plan-assistant/internal/nutrition"
	"diet-plan-assistant/internal/usda"
)

func ptr(v float64) *float64 { return &v }

// mockSearcher answers each query with a single food named after the query.
type mockSearcher struct {
	calls []string
	empty map[string]bool
}

func (m *mockSearcher) Search(_ context.Context, query string, maxResults int) ([]usda.Food, error) {
	m.calls = append(m.calls, query)
	if m.empty[query] {
		return []usda.Food{}, nil
	}
	return []usda.Food{{
		Name:      query,
		FdcID:     1,
		DataType:  "SR Legacy",
		Nutrients: usda.Nutrients{Calories: ptr(100), Protein: ptr(10), Carbs: ptr(5), Fat: ptr(3)},
	}}, nil
}

type mockTextGenerator struct {
	failures int
	calls    int
	prompt   string
}

func (m *mockTextGenerator) GenerateContent(_ context.Context, prompt string) (llm.ContentResponse, error) {
	m.calls++
	m.prompt = prompt
	if m.calls <= m.failures {
		return llm.ContentResponse{}, fmt.Errorf("transient upstream error")
	}
	return llm.ContentResponse{Content: "Breakfast: eggs and toast"}, nil
}

func testProfile() nutrition.Profile {
	return nutrition.Profile{
		Age: 30, Sex: nutrition.SexMale, WeightKg: 80, HeightCm: 180,
		Activity: nutrition.ActivityModerate, Goal: nutrition.GoalMaintain,
	}
}

func testMacros() nutrition.Macros {
	return nutrition.Macros{Calories: 2817, ProteinG: 211, CarbsG: 282, FatsG: 94}
}

func TestCategorize(t *testing.T) {
	cases := []struct {
		name     string
		food     usda.Food
		expected string
	}{
		{"ChickenByKeyword", usda.Food{Name: "Chicken, breast, roasted"}, "proteins"},
		{"RiceByKeyword", usda.Food{Name: "Rice, white, long-grain"}, "carbs"},
		{"SpinachByKeyword", usda.Food{Name: "Spinach, raw"}, "vegetables"},
		{"OilByKeyword", usda.Food{Name: "Oil, olive, extra virgin"}, "fats"},
		{
			"HighProteinByNutrients",
			usda.Food{Name: "Mystery bar", Nutrients: usda.Nutrients{Calories: ptr(100), Protein: ptr(20)}},
			"proteins",
		},
		{
			"HighFatByNutrients",
			usda.Food{Name: "Mystery spread", Nutrients: usda.Nutrients{Calories: ptr(100), Fat: ptr(9)}},
			"fats",
		},
		{
			"LowCalLowCarbIsVegetable",
			usda.Food{Name: "Mystery greens", Nutrients: usda.Nutrients{Calories: ptr(20), Carbs: ptr(3)}},
			"vegetables",
		},
		{"NoDataDefaultsToProteins", usda.Food{Name: "Mystery"}, "proteins"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := categorize(tc.food); got != tc.expected {
				t.Errorf("categorize(%q) = %q, want %q", tc.food.Name, got, tc.expected)
			}
		})
	}
}

func TestGatherFoodsTopsUpThinCategories(t *testing.T) {
	// Italian search terms mostly produce carbs/fats; proteins must be
	// topped up from the universal staples.
	searcher := &mockSearcher{empty: map[string]bool{"basil": true}}
	foods := GatherFoods(context.Background(), searcher, "italian")

	if len(foods["proteins"]) < 3 {
		t.Errorf("Expected proteins topped up to at least 3, got %d", len(foods["proteins"]))
	}
	sawUniversal := false
	for _, call := range searcher.calls {
		if call == "chicken breast" {
			sawUniversal = true
		}
	}
	if !sawUniversal {
		t.Error("Expected universal staple searches for thin categories")
	}
}

func TestValidCuisine(t *testing.T) {
	for _, cuisine := range Cuisines() {
		if !ValidCuisine(cuisine) {
			t.Errorf("Expected %q to be valid", cuisine)
		}
	}
	if ValidCuisine("klingon") {
		t.Error("Expected unknown cuisine to be invalid")
	}
	if !ValidCuisine("Italian") {
		t.Error("Cuisine check should be case-insensitive")
	}
}

func TestBuildPrompt(t *testing.T) {
	foods := AvailableFoods{
		"proteins": {{Name: "Chicken breast", Nutrients: usda.Nutrients{Calories: ptr(165), Protein: ptr(31), Carbs: ptr(0), Fat: ptr(3.6)}}},
		"carbs":    {{Name: "Rice, white", Nutrients: usda.Nutrients{Calories: ptr(130)}}},
	}

	prompt, err := BuildPrompt(testProfile(), testMacros(), "italian", foods)
	if err != nil {
		t.Fatalf("BuildPrompt failed: %v", err)
	}

	for _, want := range []string{
		"Italian",
		"Calories: 2817 kcal",
		"Protein: 211g",
		"Carbohydrates: 282g",
		"Fats: 94g",
		"Chicken breast: 165 kcal, 31.0g protein",
		"PROTEINS",
		"CARBS",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q", want)
		}
	}

	// Unreported nutrients render as n/a, never as zero.
	if !strings.Contains(prompt, "Rice, white: 130 kcal, n/ag protein") {
		t.Errorf("Expected unavailable nutrients rendered as n/a, prompt:\n%s", prompt)
	}
}

func TestGeneratePlan(t *testing.T) {
	searcher := &mockSearcher{}
	textGen := &mockTextGenerator{}
	p := NewPlanner(searcher, textGen)

	plan, err := p.GeneratePlan(context.Background(), testProfile(), testMacros(), "american")
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	if plan.Text != "Breakfast: eggs and toast" {
		t.Errorf("Unexpected plan text: %q", plan.Text)
	}
	if plan.Meta.AgentName != "DietPlanner" {
		t.Errorf("Expected agent meta, got %+v", plan.Meta)
	}
	if !strings.Contains(textGen.prompt, "2817") {
		t.Error("Prompt should carry the calorie target")
	}
}

func TestGeneratePlanRetriesOnce(t *testing.T) {
	searcher := &mockSearcher{}
	textGen := &mockTextGenerator{failures: 1}
	p := NewPlanner(searcher, textGen)

	plan, err := p.GeneratePlan(context.Background(), testProfile(), testMacros(), "american")
	if err != nil {
		t.Fatalf("Expected retry to recover, got %v", err)
	}
	if textGen.calls != 2 {
		t.Errorf("Expected exactly 2 generation attempts, got %d", textGen.calls)
	}
	if plan.Text == "" {
		t.Error("Expected plan text after retry")
	}
}

func TestGeneratePlanFailsAfterRetry(t *testing.T) {
	searcher := &mockSearcher{}
	textGen := &mockTextGenerator{failures: 2}
	p := NewPlanner(searcher, textGen)

	if _, err := p.GeneratePlan(context.Background(), testProfile(), testMacros(), "american"); err == nil {
		t.Fatal("Expected error after retry exhausted")
	}
	if textGen.calls != 2 {
		t.Errorf("Expected exactly 2 attempts, got %d", textGen.calls)
	}
}
