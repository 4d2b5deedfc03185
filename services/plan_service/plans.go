package plan_service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aeropulse/aeropulse-go/ranking"
)

// VO2MaxData is the biometric snapshot a plan is generated from.
type VO2MaxData struct {
	CurrentVO2Max float64 `json:"currentVO2Max"`
	Age           int     `json:"age"`
	Sex           string  `json:"sex,omitempty"`
	Weight        float64 `json:"weight,omitempty"`
	ActivityLevel string  `json:"activityLevel,omitempty"`
}

// ImprovementPlan is one multi-week training block.
type ImprovementPlan struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Weeks      int      `json:"weeks"`
	TargetGain float64  `json:"targetGain"`
	Summary    string   `json:"summary"`
	Sessions   []string `json:"sessions"`
}

// LLMService is the blocking completion client the generator calls.
type LLMService interface {
	CallLLM(ctx context.Context, systemPrompt, prompt string) (string, error)
}

const planSystemPrompt = "You are an exercise physiologist. Respond with a JSON array of training plans " +
	"and nothing else. Each plan has the fields id, title, weeks, targetGain, summary and sessions " +
	"(a list of session descriptions)."

// Generator produces improvement plans from biometrics. The LLM path is
// preferred; when the call or the JSON parse fails the generator falls
// back to deterministic plans built from the protocol table, mirroring
// how prompt templates degrade to defaults.
type Generator struct {
	llm       LLMService
	evaluator *ranking.Evaluator
	logger    *slog.Logger
}

func NewGenerator(llm LLMService, evaluator *ranking.Evaluator, logger *slog.Logger) *Generator {
	return &Generator{
		llm:       llm,
		evaluator: evaluator,
		logger:    logger,
	}
}

func (g *Generator) GeneratePlans(ctx context.Context, data VO2MaxData) ([]ImprovementPlan, error) {
	if data.CurrentVO2Max <= 0 {
		return nil, fmt.Errorf("currentVO2Max must be positive")
	}

	prompt := g.buildPrompt(data)
	response, err := g.llm.CallLLM(ctx, planSystemPrompt, prompt)
	if err != nil {
		g.logger.Warn("Plan generation LLM call failed, using fallback plans",
			slog.String("error", err.Error()))
		return g.fallbackPlans(data), nil
	}

	plans, err := parsePlans(response)
	if err != nil {
		g.logger.Warn("Plan generation response was not parseable, using fallback plans",
			slog.String("error", err.Error()))
		return g.fallbackPlans(data), nil
	}

	return plans, nil
}

func (g *Generator) buildPrompt(data VO2MaxData) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate three VO2Max improvement plans for this person:\n")
	fmt.Fprintf(&sb, "- current VO2Max: %.1f ml/kg/min\n", data.CurrentVO2Max)
	fmt.Fprintf(&sb, "- age: %d\n", data.Age)
	if data.Sex != "" {
		fmt.Fprintf(&sb, "- sex: %s\n", data.Sex)
	}
	if data.Weight > 0 {
		fmt.Fprintf(&sb, "- weight: %.1f kg\n", data.Weight)
	}
	if data.ActivityLevel != "" {
		fmt.Fprintf(&sb, "- activity level: %s\n", data.ActivityLevel)
	}
	return sb.String()
}

// parsePlans tolerates a response wrapped in markdown fences.
func parsePlans(response string) ([]ImprovementPlan, error) {
	trimmed := strings.TrimSpace(response)
	if start := strings.Index(trimmed, "["); start >= 0 {
		if end := strings.LastIndex(trimmed, "]"); end > start {
			trimmed = trimmed[start : end+1]
		}
	}

	var plans []ImprovementPlan
	if err := json.Unmarshal([]byte(trimmed), &plans); err != nil {
		return nil, fmt.Errorf("plan response is not a JSON plan array: %w", err)
	}
	if len(plans) == 0 {
		return nil, fmt.Errorf("plan response contained no plans")
	}
	return plans, nil
}

// fallbackPlans derives plans from the top-ranked protocols for the
// given biometrics.
func (g *Generator) fallbackPlans(data VO2MaxData) []ImprovementPlan {
	form := ranking.FormData{
		ActivityLevel: data.ActivityLevel,
		AgeGroup:      ageGroupFor(data.Age),
	}
	if data.CurrentVO2Max > 0 {
		v := data.CurrentVO2Max
		form.CurrentVO2Max = &v
	}
	if data.Weight > 0 {
		w := data.Weight
		form.Weight = &w
	}

	ranked := g.evaluator.Rank(form)
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}

	plans := make([]ImprovementPlan, 0, len(ranked))
	for _, r := range ranked {
		plans = append(plans, ImprovementPlan{
			ID:         r.ID,
			Title:      r.Name,
			Weeks:      8,
			TargetGain: 3.0,
			Summary:    fmt.Sprintf("An eight-week block built around %s.", r.Name),
			Sessions: []string{
				fmt.Sprintf("3x weekly: %s as the key session", r.Name),
				"2x weekly: easy aerobic maintenance",
			},
		})
	}
	return plans
}

func ageGroupFor(age int) string {
	switch {
	case age <= 0:
		return ""
	case age < 30:
		return "Under 30"
	case age < 40:
		return "30-39"
	case age < 50:
		return "40-49"
	case age < 60:
		return "50-59"
	default:
		return "60+"
	}
}
