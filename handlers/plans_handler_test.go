package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aeropulse/aeropulse-go/services/plan_service"
)

type fakePlanGenerator struct {
	plans []plan_service.ImprovementPlan
	err   error
	got   plan_service.VO2MaxData
}

func (f *fakePlanGenerator) GeneratePlans(ctx context.Context, data plan_service.VO2MaxData) ([]plan_service.ImprovementPlan, error) {
	f.got = data
	if f.err != nil {
		return nil, f.err
	}
	return f.plans, nil
}

func TestPlansHandler(t *testing.T) {
	gen := &fakePlanGenerator{
		plans: []plan_service.ImprovementPlan{
			{ID: "block-a", Title: "Threshold Block", Weeks: 6, TargetGain: 2.5, Summary: "s", Sessions: []string{"4x8min"}},
		},
	}
	h := NewPlansHandler(gen, testLogger())

	body := `{"currentVO2Max":42,"age":34,"activityLevel":"active"}`
	req := httptest.NewRequest(http.MethodPost, "/api/generate-plans", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Plans []plan_service.ImprovementPlan `json:"plans"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if len(resp.Plans) != 1 || resp.Plans[0].ID != "block-a" {
		t.Errorf("unexpected plans: %+v", resp.Plans)
	}
	if gen.got.CurrentVO2Max != 42 || gen.got.Age != 34 {
		t.Errorf("biometrics not forwarded: %+v", gen.got)
	}
}

func TestPlansHandlerErrors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		gen        *fakePlanGenerator
		wantStatus int
	}{
		{
			name:       "wrong method",
			method:     http.MethodGet,
			gen:        &fakePlanGenerator{},
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "invalid body",
			method:     http.MethodPost,
			body:       "{broken",
			gen:        &fakePlanGenerator{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing vo2max",
			method:     http.MethodPost,
			body:       `{"age":34}`,
			gen:        &fakePlanGenerator{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "generator failure",
			method:     http.MethodPost,
			body:       `{"currentVO2Max":42,"age":34}`,
			gen:        &fakePlanGenerator{err: errors.New("boom")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPlansHandler(tt.gen, testLogger())
			req := httptest.NewRequest(tt.method, "/api/generate-plans", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}
