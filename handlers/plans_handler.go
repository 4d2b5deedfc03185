package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aeropulse/aeropulse-go/services/plan_service"
)

type PlanGenerator interface {
	GeneratePlans(ctx context.Context, data plan_service.VO2MaxData) ([]plan_service.ImprovementPlan, error)
}

// PlansHandler answers POST /api/generate-plans.
type PlansHandler struct {
	generator PlanGenerator
	logger    *slog.Logger
}

func NewPlansHandler(generator PlanGenerator, logger *slog.Logger) *PlansHandler {
	return &PlansHandler{
		generator: generator,
		logger:    logger,
	}
}

func (h *PlansHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var data plan_service.VO2MaxData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if data.CurrentVO2Max <= 0 {
		writeJSONError(w, http.StatusBadRequest, "currentVO2Max is required")
		return
	}

	plans, err := h.generator.GeneratePlans(r.Context(), data)
	if err != nil {
		h.logger.Error("Plan generation failed",
			slog.String("error", err.Error()))
		writeJSONError(w, http.StatusInternalServerError, upstreamErrorMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"plans": plans,
	})
}
