package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/garnizeh/eduverify/pkg/models"
	"github.com/garnizeh/eduverify/pkg/repository"
	"github.com/garnizeh/eduverify/pkg/signature"
)

const projectColumns = `id, owner_id, title, description_short, description_long, skills_json, media_json, collaborators_json, tags_json, created_at`

const verificationColumns = `v.id, v.verifier_id, v.verifier_name, v.verified_at, v.comment, v.signature_hash`

func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	var p models.Project
	var skills, media, collabs, tags string
	var created int64
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.DescriptionShort, &p.DescriptionLong, &skills, &media, &collabs, &tags, &created); err != nil {
		return nil, err
	}
	var err error
	if p.Skills, err = decodeJSON[string](skills, "skills_json"); err != nil {
		return nil, err
	}
	if p.Media, err = decodeJSON[models.MediaArtifact](media, "media_json"); err != nil {
		return nil, err
	}
	if p.Collaborators, err = decodeJSON[models.Collaborator](collabs, "collaborators_json"); err != nil {
		return nil, err
	}
	if p.Tags, err = decodeJSON[string](tags, "tags_json"); err != nil {
		return nil, err
	}
	p.Verifications = []models.Verification{}
	p.CreatedAt = fromMillis(created)
	return &p, nil
}

func scanVerification(row interface{ Scan(...any) error }, projectID *string) (models.Verification, error) {
	var v models.Verification
	var at int64
	if err := row.Scan(projectID, &v.ID, &v.VerifierID, &v.VerifierName, &at, &v.Comment, &v.SignatureHash); err != nil {
		return v, fmt.Errorf("scan verification: %w", err)
	}
	v.VerifiedAt = fromMillis(at)
	return v, nil
}

func (r *SQLiteRepo) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	var p *models.Project
	err := r.conn.WithTx(ctx, nil, func(tx *sql.Tx) error {
		var err error
		p, err = scanProject(tx.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, projectID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("project %q: %w", projectID, repository.ErrNotFound)
			}
			return err
		}

		rows, err := tx.QueryContext(ctx, `SELECT v.project_id, `+verificationColumns+` FROM verifications v WHERE v.project_id = ? ORDER BY v.rowid`, projectID)
		if err != nil {
			return fmt.Errorf("query verifications: %w", err)
		}
		for rows.Next() {
			var pid string
			v, err := scanVerification(rows, &pid)
			if err != nil {
				rows.Close()
				return err
			}
			p.Verifications = append(p.Verifications, v)
		}
		return closeRows(rows)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// AppendVerification inserts the verification row inside a write
// transaction. Existence checks run in the same transaction so a missing
// project or verifier leaves nothing behind.
func (r *SQLiteRepo) AppendVerification(ctx context.Context, projectID, verifierID, verifierName, comment string) (*models.Verification, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	var v models.Verification
	err := r.conn.WithTx(ctx, nil, func(tx *sql.Tx) error {
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ?`, projectID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("project %q: %w", projectID, repository.ErrNotFound)
			}
			return err
		}
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, verifierID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("verifier %q: %w", verifierID, repository.ErrNotFound)
			}
			return err
		}

		at := r.now().UTC().Truncate(time.Millisecond)
		v = models.Verification{
			ID:            r.newID(),
			VerifierID:    verifierID,
			VerifierName:  verifierName,
			VerifiedAt:    at,
			Comment:       comment,
			SignatureHash: signature.Compute(projectID, verifierID, comment, at),
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO verifications (id, project_id, verifier_id, verifier_name, verified_at, comment, signature_hash) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			v.ID, projectID, v.VerifierID, v.VerifierName, toMillis(at), v.Comment, v.SignatureHash)
		if err != nil {
			return fmt.Errorf("insert verification: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("verification appended",
		slog.String("project_id", projectID),
		slog.String("verifier_id", verifierID),
		slog.String("verification_id", v.ID),
	)
	return &v, nil
}
