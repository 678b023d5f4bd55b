package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/garnizeh/eduverify/pkg/models"
)

// Seed loads a directory fixture. Rows that already exist are left alone, so
// seeding a populated database is a no-op and appended verifications survive
// restarts.
func (r *SQLiteRepo) Seed(ctx context.Context, d *models.Directory) error {
	if d == nil {
		return fmt.Errorf("directory is nil")
	}
	if err := d.Validate(); err != nil {
		return err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	var inserted int64
	err := r.conn.WithTx(ctx, nil, func(tx *sql.Tx) error {
		exec := func(query string, args ...any) error {
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return err
			}
			n, _ := res.RowsAffected()
			inserted += n
			return nil
		}

		for _, u := range d.Users {
			var avatar any
			if u.AvatarURL != "" {
				avatar = u.AvatarURL
			}
			if err := exec(`INSERT OR IGNORE INTO users (id, name, email, role, avatar_url) VALUES (?, ?, ?, ?, ?)`, u.ID, u.Name, u.Email, string(u.Role), avatar); err != nil {
				return fmt.Errorf("seed user %q: %w", u.ID, err)
			}
		}

		for _, p := range d.Profiles {
			if err := exec(`INSERT OR IGNORE INTO student_profiles (user_id, headline, about, location) VALUES (?, ?, ?, ?)`, p.UserID, p.Headline, p.About, p.Location); err != nil {
				return fmt.Errorf("seed profile %q: %w", p.UserID, err)
			}
			for _, e := range p.Education {
				if err := exec(`INSERT OR IGNORE INTO education_records (id, user_id, institution, degree, field, start_date, end_date, gpa, verified) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
					e.ID, p.UserID, e.Institution, e.Degree, e.Field, e.StartDate, e.EndDate, e.GPA, e.Verified); err != nil {
					return fmt.Errorf("seed education %q: %w", e.ID, err)
				}
			}
			for _, s := range p.Skills {
				if err := exec(`INSERT OR IGNORE INTO profile_skills (id, user_id, name, proficiency, verified) VALUES (?, ?, ?, ?, ?)`,
					s.ID, p.UserID, s.Name, s.Proficiency, s.Verified); err != nil {
					return fmt.Errorf("seed skill %q: %w", s.ID, err)
				}
			}
			for _, pr := range p.Projects {
				if err := seedProject(exec, pr); err != nil {
					return err
				}
			}
		}

		for _, j := range d.Jobs {
			skills, err := encodeJSON(nonNil(j.RequiredSkills))
			if err != nil {
				return err
			}
			if err := exec(`INSERT OR IGNORE INTO job_posts (id, employer_id, company_name, title, description, required_skills_json, posted_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				j.ID, j.EmployerID, j.CompanyName, j.Title, j.Description, skills, toMillis(j.PostedAt)); err != nil {
				return fmt.Errorf("seed job %q: %w", j.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("directory seeded", slog.Int64("rows_inserted", inserted))
	return nil
}

func seedProject(exec func(string, ...any) error, pr models.Project) error {
	skills, err := encodeJSON(nonNil(pr.Skills))
	if err != nil {
		return err
	}
	media, err := encodeJSON(nonNil(pr.Media))
	if err != nil {
		return err
	}
	collabs, err := encodeJSON(nonNil(pr.Collaborators))
	if err != nil {
		return err
	}
	tags, err := encodeJSON(nonNil(pr.Tags))
	if err != nil {
		return err
	}
	if err := exec(`INSERT OR IGNORE INTO projects (id, owner_id, title, description_short, description_long, skills_json, media_json, collaborators_json, tags_json, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pr.ID, pr.OwnerID, pr.Title, pr.DescriptionShort, pr.DescriptionLong, skills, media, collabs, tags, toMillis(pr.CreatedAt)); err != nil {
		return fmt.Errorf("seed project %q: %w", pr.ID, err)
	}
	for _, v := range pr.Verifications {
		if err := exec(`INSERT OR IGNORE INTO verifications (id, project_id, verifier_id, verifier_name, verified_at, comment, signature_hash) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			v.ID, pr.ID, v.VerifierID, v.VerifierName, toMillis(v.VerifiedAt), v.Comment, v.SignatureHash); err != nil {
			return fmt.Errorf("seed verification %q: %w", v.ID, err)
		}
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
