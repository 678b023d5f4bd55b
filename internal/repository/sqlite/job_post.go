package sqlite

import (
	"context"
	"fmt"

	"github.com/garnizeh/eduverify/pkg/models"
)

func (r *SQLiteRepo) ListJobs(ctx context.Context) ([]models.JobPost, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, employer_id, company_name, title, description, required_skills_json, posted_at FROM job_posts ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	out := []models.JobPost{}
	for rows.Next() {
		var j models.JobPost
		var skills string
		var posted int64
		if err := rows.Scan(&j.ID, &j.EmployerID, &j.CompanyName, &j.Title, &j.Description, &skills, &posted); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		if j.RequiredSkills, err = decodeJSON[string](skills, "required_skills_json"); err != nil {
			return nil, err
		}
		j.PostedAt = fromMillis(posted)
		out = append(out, j)
	}
	return out, rows.Err()
}
