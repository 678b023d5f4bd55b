package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/garnizeh/eduverify/internal/search"
)

type CandidatesHandler struct {
	engine *search.Engine
}

func NewCandidatesHandler(engine *search.Engine) *CandidatesHandler {
	return &CandidatesHandler{engine: engine}
}

// Search serves GET /v1/candidates. Skills may be comma separated, repeated,
// or both.
func (h *CandidatesHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f, err := parseFilters(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var skills []string
	for _, raw := range q["skills"] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				skills = append(skills, s)
			}
		}
	}

	profiles, err := h.engine.Search(r.Context(), q.Get("query"), skills, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, profiles, http.StatusOK)
}

func parseFilters(q url.Values) (search.Filters, error) {
	var f search.Filters
	var err error

	if f.VerifiedOnly, err = parseBool(q, "verifiedOnly"); err != nil {
		return f, err
	}
	if f.HasVideo, err = parseBool(q, "hasVideo"); err != nil {
		return f, err
	}
	if f.HasDataset, err = parseBool(q, "hasDataset"); err != nil {
		return f, err
	}
	if v := q.Get("minCollaborators"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, fmt.Errorf("invalid minCollaborators %q", v)
		}
		f.MinCollaborators = n
	}
	return f, nil
}

func parseBool(q url.Values, key string) (bool, error) {
	v := q.Get(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, v)
	}
	return b, nil
}
