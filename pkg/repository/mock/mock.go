package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/garnizeh/eduverify/pkg/models"
	"github.com/garnizeh/eduverify/pkg/repository"
)

// Directory is a hand-rolled repository.Directory for tests. Err, when set,
// is returned by every method.
type Directory struct {
	mu sync.Mutex

	Users    []models.User
	Profiles []models.StudentProfile
	Jobs     []models.JobPost
	Err      error

	Appended []models.Verification
	Calls    int
}

var _ repository.Directory = (*Directory)(nil)

func (m *Directory) GetUser(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.Users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", id, repository.ErrNotFound)
}

func (m *Directory) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.Users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with email %q: %w", email, repository.ErrNotFound)
}

func (m *Directory) GetProfile(ctx context.Context, userID string) (*models.StudentProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.Profiles {
		if p.UserID == userID {
			cp := p.Clone()
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("profile %q: %w", userID, repository.ErrNotFound)
}

func (m *Directory) ListProfiles(ctx context.Context) ([]models.StudentProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]models.StudentProfile, len(m.Profiles))
	for i, p := range m.Profiles {
		out[i] = p.Clone()
	}
	return out, nil
}

func (m *Directory) ListJobs(ctx context.Context) ([]models.JobPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.JobPost{}, m.Jobs...), nil
}

func (m *Directory) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if p := m.findProject(projectID); p != nil {
		cp := p.Clone()
		return &cp, nil
	}
	return nil, fmt.Errorf("project %q: %w", projectID, repository.ErrNotFound)
}

func (m *Directory) AppendVerification(ctx context.Context, projectID, verifierID, verifierName, comment string) (*models.Verification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	p := m.findProject(projectID)
	if p == nil {
		return nil, fmt.Errorf("project %q: %w", projectID, repository.ErrNotFound)
	}
	v := models.Verification{
		ID:           fmt.Sprintf("mock-%d", len(m.Appended)+1),
		VerifierID:   verifierID,
		VerifierName: verifierName,
		VerifiedAt:   time.Unix(0, 0).UTC(),
		Comment:      comment,
	}
	p.Verifications = append(p.Verifications, v)
	m.Appended = append(m.Appended, v)
	return &v, nil
}

func (m *Directory) findProject(id string) *models.Project {
	for i := range m.Profiles {
		for j := range m.Profiles[i].Projects {
			if m.Profiles[i].Projects[j].ID == id {
				return &m.Profiles[i].Projects[j]
			}
		}
	}
	return nil
}

// Prompts is an in-memory SchemaRepo and TemplateRepo keyed by version and
// name/version. Missing entries return nil, nil like the sqlite store.
type Prompts struct {
	mu        sync.Mutex
	Schemas   map[string]models.Schema
	Templates map[string]models.Template
	Err       error
}

var (
	_ repository.SchemaRepo   = (*Prompts)(nil)
	_ repository.TemplateRepo = (*Prompts)(nil)
)

func NewPrompts() *Prompts {
	return &Prompts{Schemas: map[string]models.Schema{}, Templates: map[string]models.Template{}}
}

func (m *Prompts) CreateSchema(ctx context.Context, version, description, schemaJSON string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	id := int64(len(m.Schemas) + 1)
	m.Schemas[version] = models.Schema{ID: id, Version: version, Description: description, SchemaJSON: schemaJSON}
	return id, nil
}

func (m *Prompts) GetSchemaByVersion(ctx context.Context, version string) (*models.Schema, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	s, ok := m.Schemas[version]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *Prompts) ListSchemas(ctx context.Context) ([]models.Schema, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Schema{}
	for _, s := range m.Schemas {
		out = append(out, s)
	}
	return out, nil
}

func (m *Prompts) DeleteSchema(ctx context.Context, version string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Schemas, version)
	return m.Err
}

func templateKey(name, version string) string { return name + "@" + version }

func (m *Prompts) CreateTemplate(ctx context.Context, name, version, templateText string, schemaVersion, metadata *string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	id := int64(len(m.Templates) + 1)
	m.Templates[templateKey(name, version)] = models.Template{ID: id, Name: name, Version: version, TemplateTxt: templateText, SchemaVer: schemaVersion, Metadata: metadata}
	return id, nil
}

func (m *Prompts) GetTemplate(ctx context.Context, name, version string) (*models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	t, ok := m.Templates[templateKey(name, version)]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *Prompts) ListTemplates(ctx context.Context) ([]models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Template{}
	for _, t := range m.Templates {
		out = append(out, t)
	}
	return out, nil
}

func (m *Prompts) DeleteTemplate(ctx context.Context, name, version string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Templates, templateKey(name, version))
	return m.Err
}
