package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aeropulse/aeropulse-go/ranking"
)

// RecommendationsHandler ranks training protocols against whatever
// subset of the questionnaire has been answered. A fully empty form
// yields no recommendations rather than an all-zero ranking.
type RecommendationsHandler struct {
	evaluator *ranking.Evaluator
}

func NewRecommendationsHandler(evaluator *ranking.Evaluator) *RecommendationsHandler {
	return &RecommendationsHandler{
		evaluator: evaluator,
	}
}

func (h *RecommendationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var form ranking.FormData
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !form.HasAnyAnswers() {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"hasAnswers":      false,
			"recommendations": []ranking.ProtocolRanking{},
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"hasAnswers":      true,
		"recommendations": h.evaluator.Rank(form),
		"confidence":      h.evaluator.ConfidenceFor(form),
	})
}
