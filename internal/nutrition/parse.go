package nutrition

import (
	"strconv"
	"strings"
)

// ProfileInput carries the raw string fields submitted by the client before
// any validation has happened.
type ProfileInput struct {
	Age      string `json:"age"`
	Sex      string `json:"sex"`
	Weight   string `json:"weight"`
	Height   string `json:"height"`
	Activity string `json:"activity_level"`
	Goal     string `json:"goal"`
}

// ParseProfile turns raw form fields into a validated Profile. All failures
// are ValidationErrors naming the offending field, so nothing downstream ever
// sees an unvalidated value.
func ParseProfile(in ProfileInput) (Profile, error) {
	age, err := strconv.Atoi(strings.TrimSpace(in.Age))
	if err != nil {
		return Profile{}, &ValidationError{Field: "age", Message: "must be a whole number"}
	}

	weight, err := strconv.ParseFloat(strings.TrimSpace(in.Weight), 64)
	if err != nil {
		return Profile{}, &ValidationError{Field: "weight", Message: "must be a number"}
	}

	height, err := strconv.ParseFloat(strings.TrimSpace(in.Height), 64)
	if err != nil {
		return Profile{}, &ValidationError{Field: "height", Message: "must be a number"}
	}

	p := Profile{
		Age:      age,
		Sex:      Sex(strings.ToLower(strings.TrimSpace(in.Sex))),
		WeightKg: weight,
		HeightCm: height,
		Activity: ActivityLevel(strings.ToLower(strings.TrimSpace(in.Activity))),
		Goal:     Goal(strings.ToLower(strings.TrimSpace(in.Goal))),
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}
