package ranking

// FormData is the sparse questionnaire state. Every field is optional;
// zero values mean "not answered". Numeric answers use pointers so an
// explicit zero can be told apart from an absent answer.
type FormData struct {
	AgeGroup         string   `json:"ageGroup,omitempty"`
	Sex              string   `json:"sex,omitempty"`
	Height           *float64 `json:"height,omitempty"`
	Weight           *float64 `json:"weight,omitempty"`
	VO2MaxKnown      *bool    `json:"vo2maxKnown,omitempty"`
	CurrentVO2Max    *float64 `json:"currentVO2Max,omitempty"`
	ActivityLevel    string   `json:"activityLevel,omitempty"`
	RestingHeartRate *int     `json:"restingHeartRate,omitempty"`
}

// fieldValue resolves a rule field name against the form. The second
// return reports whether the user answered that field at all.
func (f FormData) fieldValue(name string) (stringValue string, numValue float64, populated bool, numeric bool) {
	switch name {
	case "ageGroup":
		return f.AgeGroup, 0, f.AgeGroup != "", false
	case "sex":
		return f.Sex, 0, f.Sex != "", false
	case "activityLevel":
		return f.ActivityLevel, 0, f.ActivityLevel != "", false
	case "vo2maxKnown":
		if f.VO2MaxKnown == nil {
			return "", 0, false, false
		}
		if *f.VO2MaxKnown {
			return "true", 0, true, false
		}
		return "false", 0, true, false
	case "height":
		if f.Height == nil {
			return "", 0, false, true
		}
		return "", *f.Height, true, true
	case "weight":
		if f.Weight == nil {
			return "", 0, false, true
		}
		return "", *f.Weight, true, true
	case "currentVO2Max":
		if f.CurrentVO2Max == nil {
			return "", 0, false, true
		}
		return "", *f.CurrentVO2Max, true, true
	case "restingHeartRate":
		if f.RestingHeartRate == nil {
			return "", 0, false, true
		}
		return "", float64(*f.RestingHeartRate), true, true
	}
	return "", 0, false, false
}

// HasAnyAnswers reports whether at least one field is populated. An
// empty form produces no recommendation, which is different from all
// protocols tying at zero.
func (f FormData) HasAnyAnswers() bool {
	fields := []string{
		"ageGroup", "sex", "height", "weight",
		"vo2maxKnown", "currentVO2Max", "activityLevel", "restingHeartRate",
	}
	for _, name := range fields {
		if _, _, populated, _ := f.fieldValue(name); populated {
			return true
		}
	}
	return false
}
