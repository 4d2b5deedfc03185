package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// CodeStore is the verification-code backend for the email login flow.
type CodeStore interface {
	Issue(email string) (string, error)
	Verify(email, code string) bool
}

// AuthHandler implements the two-step email verification login.
// Delivery of the code is out of scope here; it is logged so a local
// deployment can complete the flow.
type AuthHandler struct {
	codes  CodeStore
	logger *slog.Logger
}

func NewAuthHandler(codes CodeStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		codes:  codes,
		logger: logger,
	}
}

type requestCodeBody struct {
	Email string `json:"email"`
}

type verifyCodeBody struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *AuthHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var body requestCodeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	email := strings.TrimSpace(strings.ToLower(body.Email))
	if email == "" || !strings.Contains(email, "@") {
		writeJSONError(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	code, err := h.codes.Issue(email)
	if err != nil {
		h.logger.Error("Failed to issue verification code",
			slog.String("error", err.Error()))
		writeJSONError(w, http.StatusInternalServerError, "failed to issue verification code")
		return
	}

	h.logger.Info("Issued verification code",
		slog.String("email", email),
		slog.String("code", code))

	writeJSON(w, http.StatusOK, map[string]bool{"sent": true})
}

func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var body verifyCodeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	email := strings.TrimSpace(strings.ToLower(body.Email))
	if email == "" || body.Code == "" {
		writeJSONError(w, http.StatusBadRequest, "email and code are required")
		return
	}

	if !h.codes.Verify(email, body.Code) {
		writeJSONError(w, http.StatusUnauthorized, "invalid or expired code")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"verified": true})
}
