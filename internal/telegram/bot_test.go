package telegram

import (
	"strings"
	"testing"

	"diet-plan-assistant/internal/nutrition"
	"diet-plan-assistant/internal/usda"
)

func TestFormatMacros(t *testing.T) {
	out := formatMacros(nutrition.Macros{Calories: 2817, ProteinG: 211, CarbsG: 282, FatsG: 94})

	if !strings.Contains(out, "🎯 *Daily Targets*") {
		t.Error("Missing targets header")
	}
	if !strings.Contains(out, "• Calories: 2817 kcal") {
		t.Error("Missing calories line")
	}
	if !strings.Contains(out, "• Protein: 211g") {
		t.Error("Missing protein line")
	}
}

func TestFormatFoods(t *testing.T) {
	cal := 165.0
	protein := 31.0
	foods := []usda.Food{
		{Name: "Chicken breast", Nutrients: usda.Nutrients{Calories: &cal, Protein: &protein}},
	}

	out := formatFoods(foods)

	if !strings.Contains(out, "*Chicken breast*") {
		t.Error("Missing food name")
	}
	if !strings.Contains(out, "165.0 kcal") {
		t.Error("Missing calories")
	}
	// Carbs and fat were not reported upstream and must render as n/a.
	if !strings.Contains(out, "n/ag carbs") {
		t.Error("Missing n/a for unreported carbs")
	}
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		text string
		cmd  string
		args int
	}{
		{"/profile 30 80 180 male moderate lose", "/profile", 6},
		{"/plan", "/plan", 0},
		{"/food@dietbot chicken breast", "/food", 2},
		{"  /Macros  ", "/macros", 0},
		{"", "", 0},
	}
	for _, tt := range tests {
		cmd, args := splitCommand(tt.text)
		if cmd != tt.cmd || len(args) != tt.args {
			t.Errorf("splitCommand(%q) = %q, %d args; want %q, %d", tt.text, cmd, len(args), tt.cmd, tt.args)
		}
	}
}
