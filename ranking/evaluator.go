package ranking

import "sort"

// ProtocolRanking is one scored protocol with the reasons that matched.
type ProtocolRanking struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// Confidence reflects how much signal the form carries, not how high
// the scores are.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// highSignalFields are the answers that move recommendations the most.
var highSignalFields = []string{"ageGroup", "activityLevel", "currentVO2Max", "restingHeartRate"}

// Evaluator ranks the protocol table against questionnaire state. It is
// pure: identical input yields identical output, including reason order.
type Evaluator struct {
	protocols []Protocol
}

func NewEvaluator(protocols []Protocol) *Evaluator {
	if len(protocols) == 0 {
		protocols = DefaultProtocols()
	}
	return &Evaluator{protocols: protocols}
}

// Rank scores every protocol against the populated subset of form and
// returns them ordered by descending score. Ties keep declaration
// order (stable sort, first-declared wins).
func (e *Evaluator) Rank(form FormData) []ProtocolRanking {
	rankings := make([]ProtocolRanking, 0, len(e.protocols))
	for _, protocol := range e.protocols {
		r := ProtocolRanking{
			ID:      protocol.ID,
			Name:    protocol.Name,
			Reasons: []string{},
		}
		for _, rule := range protocol.Rules {
			if rule.When.matches(form) {
				r.Score += rule.Weight
				r.Reasons = append(r.Reasons, rule.Reason)
			}
		}
		rankings = append(rankings, r)
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].Score > rankings[j].Score
	})

	return rankings
}

// ConfidenceFor derives High/Medium/Low from how many high-signal
// fields the user has answered.
func (e *Evaluator) ConfidenceFor(form FormData) Confidence {
	populated := 0
	for _, name := range highSignalFields {
		if _, _, ok, _ := form.fieldValue(name); ok {
			populated++
		}
	}

	switch {
	case populated >= 3:
		return ConfidenceHigh
	case populated == 2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
