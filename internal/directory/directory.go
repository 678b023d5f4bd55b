// Package directory holds the in-memory Directory Store: the authoritative
// users, student profiles and job posts of a running service, constructed
// once from a validated fixture.
package directory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/garnizeh/eduverify/pkg/models"
	"github.com/garnizeh/eduverify/pkg/repository"
	"github.com/garnizeh/eduverify/pkg/signature"
	"github.com/google/uuid"
)

type projectRef struct {
	profile int
	project int
}

// Store is safe for concurrent use. Reads return deep copies taken under a
// read lock; AppendVerification holds the write lock for the whole append so
// a reader never observes a partial verification.
type Store struct {
	mu sync.RWMutex

	users    []models.User
	byID     map[string]int
	byEmail  map[string]int
	profiles []models.StudentProfile
	byOwner  map[string]int
	projects map[string]projectRef
	jobs     []models.JobPost

	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

var _ repository.Directory = (*Store)(nil)

type Option func(*Store)

// WithClock overrides the verification timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the verification id source.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New builds a store from d. The directory is validated and deep-copied; the
// caller keeps ownership of d.
func New(d *models.Directory, opts ...Option) (*Store, error) {
	if d == nil {
		return nil, fmt.Errorf("directory is nil")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	s := &Store{
		byID:     make(map[string]int, len(d.Users)),
		byEmail:  make(map[string]int, len(d.Users)),
		byOwner:  make(map[string]int, len(d.Profiles)),
		projects: make(map[string]projectRef),
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}

	for i, u := range d.Users {
		s.users = append(s.users, u)
		s.byID[u.ID] = i
		s.byEmail[strings.ToLower(u.Email)] = i
	}
	for i, p := range d.Profiles {
		cp := p.Clone()
		cp.User = s.users[s.byID[p.UserID]]
		s.profiles = append(s.profiles, cp)
		s.byOwner[p.UserID] = i
		for j, pr := range p.Projects {
			s.projects[pr.ID] = projectRef{profile: i, project: j}
		}
	}
	for _, j := range d.Jobs {
		j.RequiredSkills = append([]string{}, j.RequiredSkills...)
		s.jobs = append(s.jobs, j)
	}

	s.logger.Info("directory loaded",
		slog.Int("users", len(s.users)),
		slog.Int("profiles", len(s.profiles)),
		slog.Int("projects", len(s.projects)),
		slog.Int("jobs", len(s.jobs)),
	)
	return s, nil
}

// Load decodes a JSON directory document and builds a store from it.
func Load(r io.Reader, opts ...Option) (*Store, error) {
	d, err := models.DecodeDirectory(r)
	if err != nil {
		return nil, err
	}
	return New(d, opts...)
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", id, repository.ErrNotFound)
	}
	u := s.users[i]
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, fmt.Errorf("user with email %q: %w", email, repository.ErrNotFound)
	}
	u := s.users[i]
	return &u, nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*models.StudentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byOwner[userID]
	if !ok {
		return nil, fmt.Errorf("profile %q: %w", userID, repository.ErrNotFound)
	}
	p := s.profiles[i].Clone()
	return &p, nil
}

func (s *Store) ListProfiles(ctx context.Context) ([]models.StudentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.StudentProfile, len(s.profiles))
	for i := range s.profiles {
		out[i] = s.profiles[i].Clone()
	}
	return out, nil
}

func (s *Store) ListJobs(ctx context.Context) ([]models.JobPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.JobPost, len(s.jobs))
	for i, j := range s.jobs {
		j.RequiredSkills = append([]string{}, j.RequiredSkills...)
		out[i] = j
	}
	return out, nil
}

func (s *Store) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ref, ok := s.projects[projectID]
	if !ok {
		return nil, fmt.Errorf("project %q: %w", projectID, repository.ErrNotFound)
	}
	p := s.profiles[ref.profile].Projects[ref.project].Clone()
	return &p, nil
}

func (s *Store) AppendVerification(ctx context.Context, projectID, verifierID, verifierName, comment string) (*models.Verification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ref, ok := s.projects[projectID]
	if !ok {
		return nil, fmt.Errorf("project %q: %w", projectID, repository.ErrNotFound)
	}
	if _, ok := s.byID[verifierID]; !ok {
		return nil, fmt.Errorf("verifier %q: %w", verifierID, repository.ErrNotFound)
	}

	at := s.now().UTC().Truncate(time.Millisecond)
	v := models.Verification{
		ID:            s.newID(),
		VerifierID:    verifierID,
		VerifierName:  verifierName,
		VerifiedAt:    at,
		Comment:       comment,
		SignatureHash: signature.Compute(projectID, verifierID, comment, at),
	}

	// copy-on-append: snapshots handed out earlier keep their own slice
	p := &s.profiles[ref.profile].Projects[ref.project]
	next := make([]models.Verification, len(p.Verifications), len(p.Verifications)+1)
	copy(next, p.Verifications)
	p.Verifications = append(next, v)

	s.logger.Info("verification appended",
		slog.String("project_id", projectID),
		slog.String("verifier_id", verifierID),
		slog.Int("verifications", len(p.Verifications)),
	)
	return &v, nil
}
