package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/eduverify/internal/verification"
	"github.com/garnizeh/eduverify/pkg/models"
	"github.com/garnizeh/eduverify/pkg/repository"
)

type VerificationsHandler struct {
	users repository.UserRepo
	svc   *verification.Service
}

func NewVerificationsHandler(users repository.UserRepo, svc *verification.Service) *VerificationsHandler {
	return &VerificationsHandler{users: users, svc: svc}
}

type createVerificationRequest struct {
	// VerifierID is optional; when present it must name the caller.
	VerifierID string `json:"verifierId"`
	Comment    string `json:"comment"`
}

// Create serves POST /v1/projects/{id}/verifications on behalf of the
// authenticated caller.
func (h *VerificationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req createVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.VerifierID != "" && req.VerifierID != actor.ID {
		writeError(w, r, fmt.Errorf("caller %q cannot verify as %q: %w", actor.ID, req.VerifierID, verification.ErrForbidden))
		return
	}

	v, err := h.svc.Verify(r.Context(), *actor, mux.Vars(r)["id"], req.Comment)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, v, http.StatusCreated)
}

// Pending serves GET /v1/verifications/pending. Verifiers and admins only.
func (h *VerificationsHandler) Pending(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.caller(w, r)
	if !ok {
		return
	}
	if actor.Role != models.RoleVerifier && actor.Role != models.RoleAdmin {
		writeError(w, r, fmt.Errorf("role %q cannot list pending projects: %w", actor.Role, verification.ErrForbidden))
		return
	}

	projects, err := h.svc.Pending(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, projects, http.StatusOK)
}

// caller resolves the token subject against the store so the role and
// display name are current.
func (h *VerificationsHandler) caller(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	u, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Unknown user", http.StatusUnauthorized)
			return nil, false
		}
		writeError(w, r, err)
		return nil, false
	}
	return u, true
}
