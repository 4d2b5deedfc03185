package ranking

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Condition is a declarative predicate over one form field. String
// fields use Equals/OneOf, numeric fields use Min/Max (inclusive). A
// condition over an unanswered field never matches.
type Condition struct {
	Field  string   `yaml:"field"`
	Equals string   `yaml:"equals,omitempty"`
	OneOf  []string `yaml:"one_of,omitempty"`
	Min    *float64 `yaml:"min,omitempty"`
	Max    *float64 `yaml:"max,omitempty"`
}

// Rule contributes Weight to a protocol's score, and Reason to its
// justification list, when its condition matches the form.
type Rule struct {
	When   Condition `yaml:"when"`
	Weight int       `yaml:"weight"`
	Reason string    `yaml:"reason"`
}

// Protocol is one known training protocol with its scoring rules.
// Declaration order is the tie-break order for equal scores.
type Protocol struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Rules []Rule `yaml:"rules"`
}

func (c Condition) matches(form FormData) bool {
	stringValue, numValue, populated, numeric := form.fieldValue(c.Field)
	if !populated {
		return false
	}

	if numeric {
		if c.Min != nil && numValue < *c.Min {
			return false
		}
		if c.Max != nil && numValue > *c.Max {
			return false
		}
		return c.Min != nil || c.Max != nil
	}

	if c.Equals != "" {
		return stringValue == c.Equals
	}
	for _, v := range c.OneOf {
		if stringValue == v {
			return true
		}
	}
	return false
}

func floatPtr(v float64) *float64 { return &v }

// DefaultProtocols is the built-in protocol table. The rule weights
// encode which answers make a protocol a better fit; the reasons are
// shown to the user verbatim.
func DefaultProtocols() []Protocol {
	return []Protocol{
		{
			ID:   "norwegian_4x4",
			Name: "Norwegian 4x4 Intervals",
			Rules: []Rule{
				{When: Condition{Field: "activityLevel", OneOf: []string{"active", "athlete"}}, Weight: 3,
					Reason: "An established aerobic base supports four-minute near-maximal intervals"},
				{When: Condition{Field: "ageGroup", OneOf: []string{"30-39", "40-49"}}, Weight: 2,
					Reason: "The 4x4 format is well studied in your age range"},
				{When: Condition{Field: "currentVO2Max", Min: floatPtr(35)}, Weight: 2,
					Reason: "Your current VO2Max leaves headroom for structured high-intensity work"},
				{When: Condition{Field: "restingHeartRate", Max: floatPtr(60)}, Weight: 1,
					Reason: "A low resting heart rate suggests good recovery between intervals"},
			},
		},
		{
			ID:   "billat_30_30",
			Name: "Billat 30/30 Intervals",
			Rules: []Rule{
				{When: Condition{Field: "activityLevel", OneOf: []string{"moderate", "active"}}, Weight: 2,
					Reason: "Short alternating efforts suit a moderate training history"},
				{When: Condition{Field: "currentVO2Max", Min: floatPtr(30), Max: floatPtr(50)}, Weight: 2,
					Reason: "30/30s are most effective in your measured VO2Max band"},
				{When: Condition{Field: "ageGroup", OneOf: []string{"Under 30", "30-39"}}, Weight: 1,
					Reason: "Fast turnover work is easiest to absorb at younger ages"},
			},
		},
		{
			ID:   "tabata",
			Name: "Tabata Sprints",
			Rules: []Rule{
				{When: Condition{Field: "ageGroup", Equals: "Under 30"}, Weight: 3,
					Reason: "Supramaximal sprint efforts recover best at younger ages"},
				{When: Condition{Field: "activityLevel", Equals: "athlete"}, Weight: 3,
					Reason: "Tabata's all-out efforts require an athletic training background"},
				{When: Condition{Field: "restingHeartRate", Max: floatPtr(55)}, Weight: 1,
					Reason: "A very low resting heart rate indicates the recovery capacity Tabata demands"},
			},
		},
		{
			ID:   "ten_twenty_thirty",
			Name: "10-20-30 Running",
			Rules: []Rule{
				{When: Condition{Field: "activityLevel", OneOf: []string{"light", "moderate"}}, Weight: 2,
					Reason: "10-20-30 builds intensity gradually from an easy running habit"},
				{When: Condition{Field: "ageGroup", OneOf: []string{"30-39", "40-49", "50-59"}}, Weight: 1,
					Reason: "The format has shown improvements across middle age groups"},
				{When: Condition{Field: "vo2maxKnown", Equals: "false"}, Weight: 1,
					Reason: "Works well without lab testing, pacing is by feel"},
			},
		},
		{
			ID:   "zone2_base",
			Name: "Zone 2 Base Building",
			Rules: []Rule{
				{When: Condition{Field: "activityLevel", OneOf: []string{"sedentary", "light"}}, Weight: 3,
					Reason: "Low-intensity volume is the safest entry point from limited activity"},
				{When: Condition{Field: "ageGroup", OneOf: []string{"50-59", "60+"}}, Weight: 2,
					Reason: "Base building carries the lowest injury risk in older age groups"},
				{When: Condition{Field: "restingHeartRate", Min: floatPtr(70)}, Weight: 2,
					Reason: "An elevated resting heart rate favors aerobic base work first"},
				{When: Condition{Field: "weight", Min: floatPtr(90)}, Weight: 1,
					Reason: "Lower-impact steady work reduces load while fitness develops"},
			},
		},
	}
}

// LoadProtocols reads a protocol table from a YAML file, for deployments
// that tune weights without rebuilding. Shape mirrors DefaultProtocols.
func LoadProtocols(path string) ([]Protocol, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read protocol rules file: %w", err)
	}

	var protocols []Protocol
	if err := yaml.Unmarshal(data, &protocols); err != nil {
		return nil, fmt.Errorf("failed to parse protocol rules file: %w", err)
	}
	if len(protocols) == 0 {
		return nil, fmt.Errorf("protocol rules file %s defines no protocols", path)
	}

	return protocols, nil
}
