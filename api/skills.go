package api

import (
	"encoding/json"
	"net/http"

	"github.com/garnizeh/eduverify/internal/skills"
)

type SkillsHandler struct {
	suggester *skills.Suggester
}

func NewSkillsHandler(s *skills.Suggester) *SkillsHandler {
	return &SkillsHandler{suggester: s}
}

type suggestRequest struct {
	Description string `json:"description"`
}

type suggestResponse struct {
	Skills []string `json:"skills"`
}

// Suggest never fails because of the provider; provider errors yield an
// empty list.
func (h *SkillsHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	writeJSON(w, suggestResponse{Skills: h.suggester.Suggest(r.Context(), req.Description)}, http.StatusOK)
}
