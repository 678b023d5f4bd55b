// Package search implements candidate search over a snapshot of the
// directory: free-text query, required skills and structured project
// filters, all AND-ed together.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"

	"github.com/garnizeh/eduverify/pkg/models"
	"github.com/garnizeh/eduverify/pkg/repository"
)

// ErrInvalidFilter reports malformed filter input.
var ErrInvalidFilter = errors.New("invalid filter")

// Filters are project-level predicates. A profile passes a predicate when at
// least one of its projects satisfies it. The zero value filters nothing.
type Filters struct {
	VerifiedOnly     bool `json:"verifiedOnly"`
	HasVideo         bool `json:"hasVideo"`
	HasDataset       bool `json:"hasDataset"`
	MinCollaborators int  `json:"minCollaborators"`
}

func (f Filters) Validate() error {
	if f.MinCollaborators < 0 {
		return fmt.Errorf("%w: minCollaborators must be >= 0, got %d", ErrInvalidFilter, f.MinCollaborators)
	}
	return nil
}

type Engine struct {
	profiles repository.ProfileRepo
	logger   *slog.Logger
}

func New(profiles repository.ProfileRepo, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{profiles: profiles, logger: logger}
}

// Search returns the profiles matching every predicate, in store order. An
// empty query or skill list applies no filter; no match yields an empty
// slice, never an error.
func (e *Engine) Search(ctx context.Context, query string, requiredSkills []string, f Filters) ([]models.StudentProfile, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	snapshot, err := e.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	m := newMatcher(query, requiredSkills, f)
	out := make([]models.StudentProfile, 0, len(snapshot))
	for i := range snapshot {
		if m.match(&snapshot[i]) {
			out = append(out, snapshot[i])
		}
	}

	e.logger.Debug("candidate search",
		slog.String("query", query),
		slog.Int("skills", len(m.skills)),
		slog.Int("scanned", len(snapshot)),
		slog.Int("matched", len(out)),
	)
	return out, nil
}

type matcher struct {
	fold    cases.Caser
	query   string
	skills  []string
	filters Filters
}

func newMatcher(query string, requiredSkills []string, f Filters) *matcher {
	m := &matcher{fold: cases.Fold(), filters: f}
	m.query = m.fold.String(strings.TrimSpace(query))
	for _, s := range requiredSkills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		m.skills = append(m.skills, m.fold.String(s))
	}
	return m
}

func (m *matcher) contains(haystack, folded string) bool {
	return strings.Contains(m.fold.String(haystack), folded)
}

func (m *matcher) match(p *models.StudentProfile) bool {
	return m.matchSkills(p) && m.matchQuery(p) && m.matchFilters(p)
}

func (m *matcher) matchSkills(p *models.StudentProfile) bool {
	for _, want := range m.skills {
		found := false
		for _, s := range p.Skills {
			if m.contains(s.Name, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (m *matcher) matchQuery(p *models.StudentProfile) bool {
	if m.query == "" {
		return true
	}
	if m.contains(p.User.Name, m.query) || m.contains(p.Headline, m.query) {
		return true
	}
	for i := range p.Projects {
		if m.contains(p.Projects[i].Title, m.query) {
			return true
		}
	}
	return false
}

func (m *matcher) matchFilters(p *models.StudentProfile) bool {
	f := m.filters
	if f.VerifiedOnly && !anyProject(p, (*models.Project).IsVerified) {
		return false
	}
	if f.HasVideo && !anyProject(p, (*models.Project).HasVideo) {
		return false
	}
	if f.HasDataset && !anyProject(p, (*models.Project).HasDataset) {
		return false
	}
	if f.MinCollaborators > 0 && !anyProject(p, func(pr *models.Project) bool {
		return pr.CollaboratorCount() >= f.MinCollaborators
	}) {
		return false
	}
	return true
}

func anyProject(p *models.StudentProfile, pred func(*models.Project) bool) bool {
	for i := range p.Projects {
		if pred(&p.Projects[i]) {
			return true
		}
	}
	return false
}
