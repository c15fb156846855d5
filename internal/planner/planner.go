// Package planner assembles prompts from the user's profile and macro
// targets and requests plan text from an opaque generation service.
package planner

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"diet-plan-assistant/internal/llm"
	"diet-plan-assistant/internal/nutrition"
	"diet-plan-assistant/internal/shared"
)

//go:embed plan_prompt.md
var planPrompt string

var planTmpl = template.Must(template.New("plan").Parse(planPrompt))

// promptData is the template input for a plan request.
type promptData struct {
	Profile    nutrition.Profile
	Macros     nutrition.Macros
	Cuisine    string
	Categories []promptCategory
}

type promptCategory struct {
	Name  string
	Foods []promptFood
}

// promptFood renders one food line; unavailable nutrients display as "n/a"
// so the model never treats missing data as zero grams.
type promptFood struct {
	Name     string
	Calories string
	Protein  string
	Carbs    string
	Fat      string
}

// BuildPrompt composes the plan-request prompt. Pure string composition, no
// network calls.
func BuildPrompt(profile nutrition.Profile, macros nutrition.Macros, cuisine string, foods AvailableFoods) (string, error) {
	data := promptData{
		Profile: profile,
		Macros:  macros,
		Cuisine: titleCase(cuisine),
	}

	for _, category := range categoryOrder {
		list := foods[category]
		if len(list) == 0 {
			continue
		}
		pc := promptCategory{Name: strings.ToUpper(category)}
		// Cap foods per category to keep the prompt bounded.
		for _, f := range list[:min(len(list), 8)] {
			pc.Foods = append(pc.Foods, promptFood{
				Name:     f.Name,
				Calories: formatNutrient(f.Nutrients.Calories, 0),
				Protein:  formatNutrient(f.Nutrients.Protein, 1),
				Carbs:    formatNutrient(f.Nutrients.Carbs, 1),
				Fat:      formatNutrient(f.Nutrients.Fat, 1),
			})
		}
		data.Categories = append(data.Categories, pc)
	}

	var buf bytes.Buffer
	if err := planTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render plan prompt: %w", err)
	}
	return buf.String(), nil
}

func formatNutrient(v *float64, places int) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', places, 64)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Plan is the result of a generation request: opaque plan text plus
// operational metadata for the metrics store.
type Plan struct {
	Text string
	Meta shared.AgentMeta
}

// Planner generates diet plans from session data.
type Planner struct {
	searcher FoodSearcher
	textGen  llm.TextGenerator
}

// NewPlanner creates a new Planner instance.
func NewPlanner(searcher FoodSearcher, textGen llm.TextGenerator) *Planner {
	return &Planner{searcher: searcher, textGen: textGen}
}

// GeneratePlan gathers cuisine foods, builds the prompt, and asks the text
// service for a plan. One retry is attempted on a transient generation
// failure before giving up.
func (p *Planner) GeneratePlan(ctx context.Context, profile nutrition.Profile, macros nutrition.Macros, cuisine string) (Plan, error) {
	foods := GatherFoods(ctx, p.searcher, cuisine)

	prompt, err := BuildPrompt(profile, macros, cuisine, foods)
	if err != nil {
		return Plan{}, err
	}

	start := time.Now()
	resp, err := p.textGen.GenerateContent(ctx, prompt)
	if err != nil && ctx.Err() == nil {
		resp, err = p.textGen.GenerateContent(ctx, prompt)
	}
	if err != nil {
		return Plan{}, fmt.Errorf("failed to generate diet plan: %w", err)
	}

	return Plan{
		Text: resp.Content,
		Meta: shared.AgentMeta{
			AgentName: "DietPlanner",
			Usage:     resp.Usage,
			Latency:   time.Since(start),
		},
	}, nil
}
