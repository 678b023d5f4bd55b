// Package verification implements the endorsement workflow: a VERIFIER
// appends a signed verification to a student project, which makes the
// project verified for good.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/garnizeh/eduverify/pkg/models"
	"github.com/garnizeh/eduverify/pkg/repository"
)

// ErrForbidden is returned when the acting user may not verify projects.
var ErrForbidden = errors.New("forbidden")

// Store is the slice of the directory the workflow needs.
type Store interface {
	repository.ProfileRepo
	repository.VerificationRepo
}

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// Verify appends a verification on behalf of actor. Only verifiers are
// accepted; a rejected call never reaches the store.
func (s *Service) Verify(ctx context.Context, actor models.User, projectID, comment string) (*models.Verification, error) {
	if actor.Role != models.RoleVerifier {
		s.logger.Warn("verification rejected",
			slog.String("actor_id", actor.ID),
			slog.String("role", string(actor.Role)),
			slog.String("project_id", projectID),
		)
		return nil, fmt.Errorf("role %q cannot verify projects: %w", actor.Role, ErrForbidden)
	}

	v, err := s.store.AppendVerification(ctx, projectID, actor.ID, actor.Name, comment)
	if err != nil {
		return nil, fmt.Errorf("verify project %q: %w", projectID, err)
	}
	return v, nil
}

// Pending lists the projects still awaiting their first verification, in
// store order.
func (s *Service) Pending(ctx context.Context) ([]models.Project, error) {
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	out := []models.Project{}
	for i := range profiles {
		for j := range profiles[i].Projects {
			if !profiles[i].Projects[j].IsVerified() {
				out = append(out, profiles[i].Projects[j])
			}
		}
	}
	return out, nil
}
