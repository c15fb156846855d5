package nutrition

import (
	"fmt"
	"math"
)

// Sex is the biological sex used by the Mifflin-St Jeor equation.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// ActivityLevel describes how active the user is day to day.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// Goal is the user's body-composition goal.
type Goal string

const (
	GoalLose     Goal = "lose"
	GoalMaintain Goal = "maintain"
	GoalGain     Goal = "gain"
)

// activityMultipliers maps activity levels to their TDEE multiplier.
// This is the single source of truth for valid activity levels; it is also
// used for input validation.
var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

// macroSplit is a protein/carb/fat percentage split for a goal.
type macroSplit struct {
	protein float64
	carbs   float64
	fats    float64
}

var goalSplits = map[Goal]macroSplit{
	GoalLose:     {protein: 0.40, carbs: 0.30, fats: 0.30},
	GoalMaintain: {protein: 0.30, carbs: 0.40, fats: 0.30},
	GoalGain:     {protein: 0.30, carbs: 0.45, fats: 0.25},
}

// Profile holds the validated user attributes the calculations run on.
type Profile struct {
	Age      int
	Sex      Sex
	WeightKg float64
	HeightCm float64
	Activity ActivityLevel
	Goal     Goal
}

// Macros holds the daily calorie and macronutrient gram targets.
type Macros struct {
	Calories int `json:"calories"`
	ProteinG int `json:"protein_g"`
	CarbsG   int `json:"carbs_g"`
	FatsG    int `json:"fats_g"`
}

// ValidationError reports a user-correctable input problem.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Validate checks the profile for implausible values and unknown enum
// members. Extreme but physically possible combinations (e.g. extreme BMI)
// are accepted.
func (p Profile) Validate() error {
	if p.Age < 1 || p.Age > 120 {
		return &ValidationError{Field: "age", Message: "must be between 1 and 120"}
	}
	if p.WeightKg < 20 || p.WeightKg > 300 {
		return &ValidationError{Field: "weight", Message: "must be between 20 and 300 kg"}
	}
	if p.HeightCm < 80 || p.HeightCm > 250 {
		return &ValidationError{Field: "height", Message: "must be between 80 and 250 cm"}
	}
	if p.Sex != SexMale && p.Sex != SexFemale {
		return &ValidationError{Field: "sex", Message: "must be 'male' or 'female'"}
	}
	if _, ok := activityMultipliers[p.Activity]; !ok {
		return &ValidationError{Field: "activity_level", Message: "must be one of sedentary, light, moderate, active, very_active"}
	}
	if _, ok := goalSplits[p.Goal]; !ok {
		return &ValidationError{Field: "goal", Message: "must be one of lose, maintain, gain"}
	}
	return nil
}

// BMR computes the Basal Metabolic Rate via Mifflin-St Jeor.
func BMR(p Profile) float64 {
	base := 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age)
	if p.Sex == SexMale {
		return base + 5
	}
	return base - 161
}

// TDEE scales a BMR by the profile's activity multiplier.
func TDEE(bmr float64, activity ActivityLevel) float64 {
	return bmr * activityMultipliers[activity]
}

// TargetCalories adjusts TDEE for the goal. A weight-loss deficit is floored
// at BMR so the target never drops below resting expenditure.
func TargetCalories(tdee, bmr float64, goal Goal) float64 {
	switch goal {
	case GoalLose:
		target := tdee - 500
		if target < bmr {
			target = bmr
		}
		return target
	case GoalGain:
		return tdee + 300
	default:
		return tdee
	}
}

// ComputeMacros runs the full pipeline: BMR, TDEE, goal-adjusted calories,
// and the macro gram split. Protein and fat grams are rounded from their
// percentage shares; carbohydrate grams are derived from the remaining
// calories so the 4/4/9 total reconciles with the calorie target.
func ComputeMacros(p Profile) (Macros, error) {
	if err := p.Validate(); err != nil {
		return Macros{}, err
	}

	bmr := BMR(p)
	tdee := TDEE(bmr, p.Activity)
	calories := TargetCalories(tdee, bmr, p.Goal)

	split := goalSplits[p.Goal]
	proteinG := int(math.Round(calories * split.protein / 4))
	fatsG := int(math.Round(calories * split.fats / 9))
	carbsG := int(math.Round((calories - float64(proteinG)*4 - float64(fatsG)*9) / 4))

	return Macros{
		Calories: int(math.Round(calories)),
		ProteinG: proteinG,
		CarbsG:   carbsG,
		FatsG:    fatsG,
	}, nil
}
