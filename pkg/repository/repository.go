package repository

import (
	"context"
	"errors"

	"github.com/garnizeh/eduverify/pkg/models"
)

// ErrNotFound is returned (wrapped) when an id does not resolve.
var ErrNotFound = errors.New("not found")

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

type UserRepo interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type ProfileRepo interface {
	GetProfile(ctx context.Context, userID string) (*models.StudentProfile, error)
	// ListProfiles returns a snapshot in store insertion order.
	ListProfiles(ctx context.Context) ([]models.StudentProfile, error)
}

type JobPostRepo interface {
	ListJobs(ctx context.Context) ([]models.JobPost, error)
}

type VerificationRepo interface {
	GetProject(ctx context.Context, projectID string) (*models.Project, error)
	// AppendVerification records an endorsement atomically. Unknown project or
	// verifier ids fail with ErrNotFound and leave the store unchanged.
	AppendVerification(ctx context.Context, projectID, verifierID, verifierName, comment string) (*models.Verification, error)
}

// Directory is the full store contract satisfied by every backend.
type Directory interface {
	UserRepo
	ProfileRepo
	JobPostRepo
	VerificationRepo
}

type SchemaRepo interface {
	CreateSchema(ctx context.Context, version, description, schemaJSON string) (int64, error)
	GetSchemaByVersion(ctx context.Context, version string) (*models.Schema, error)
	ListSchemas(ctx context.Context) ([]models.Schema, error)
	DeleteSchema(ctx context.Context, version string) error
}

type TemplateRepo interface {
	CreateTemplate(ctx context.Context, name, version, templateText string, schemaVersion, metadata *string) (int64, error)
	GetTemplate(ctx context.Context, name, version string) (*models.Template, error)
	ListTemplates(ctx context.Context) ([]models.Template, error)
	DeleteTemplate(ctx context.Context, name, version string) error
}
