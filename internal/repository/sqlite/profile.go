package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/eduverify/pkg/models"
	"github.com/garnizeh/eduverify/pkg/repository"
)

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *SQLiteRepo) GetProfile(ctx context.Context, userID string) (*models.StudentProfile, error) {
	var out []models.StudentProfile
	err := r.conn.WithTx(ctx, nil, func(tx *sql.Tx) error {
		var err error
		out, err = loadProfiles(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("profile %q: %w", userID, repository.ErrNotFound)
	}
	return &out[0], nil
}

// ListProfiles reads every table inside one transaction so a concurrent
// append is either fully visible or not at all.
func (r *SQLiteRepo) ListProfiles(ctx context.Context) ([]models.StudentProfile, error) {
	var out []models.StudentProfile
	err := r.conn.WithTx(ctx, nil, func(tx *sql.Tx) error {
		var err error
		out, err = loadProfiles(ctx, tx, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// loadProfiles assembles profiles in insertion order. An empty userID loads
// all of them.
func loadProfiles(ctx context.Context, q querier, userID string) ([]models.StudentProfile, error) {
	where, args := "", []any{}
	if userID != "" {
		where, args = " WHERE sp.user_id = ?", []any{userID}
	}

	rows, err := q.QueryContext(ctx, `SELECT sp.user_id, sp.headline, sp.about, sp.location, u.id, u.name, u.email, u.role, u.avatar_url
		FROM student_profiles sp JOIN users u ON u.id = sp.user_id`+where+` ORDER BY sp.rowid`, args...)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	profiles := []models.StudentProfile{}
	byOwner := map[string]int{}
	for rows.Next() {
		p := models.StudentProfile{
			Education: []models.EducationRecord{},
			Skills:    []models.Skill{},
			Projects:  []models.Project{},
		}
		var avatar sql.NullString
		if err := rows.Scan(&p.UserID, &p.Headline, &p.About, &p.Location, &p.User.ID, &p.User.Name, &p.User.Email, &p.User.Role, &avatar); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		p.User.AvatarURL = avatar.String
		byOwner[p.UserID] = len(profiles)
		profiles = append(profiles, p)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return profiles, nil
	}

	ownerWhere := ""
	if userID != "" {
		ownerWhere = " WHERE user_id = ?"
	}

	rows, err = q.QueryContext(ctx, `SELECT user_id, id, institution, degree, field, start_date, end_date, gpa, verified FROM education_records`+ownerWhere+` ORDER BY rowid`, args...)
	if err != nil {
		return nil, fmt.Errorf("query education: %w", err)
	}
	for rows.Next() {
		var owner string
		var e models.EducationRecord
		var gpa sql.NullFloat64
		if err := rows.Scan(&owner, &e.ID, &e.Institution, &e.Degree, &e.Field, &e.StartDate, &e.EndDate, &gpa, &e.Verified); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan education: %w", err)
		}
		if gpa.Valid {
			v := gpa.Float64
			e.GPA = &v
		}
		if i, ok := byOwner[owner]; ok {
			profiles[i].Education = append(profiles[i].Education, e)
		}
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = q.QueryContext(ctx, `SELECT user_id, id, name, proficiency, verified FROM profile_skills`+ownerWhere+` ORDER BY rowid`, args...)
	if err != nil {
		return nil, fmt.Errorf("query skills: %w", err)
	}
	for rows.Next() {
		var owner string
		var s models.Skill
		if err := rows.Scan(&owner, &s.ID, &s.Name, &s.Proficiency, &s.Verified); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		if i, ok := byOwner[owner]; ok {
			profiles[i].Skills = append(profiles[i].Skills, s)
		}
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	projectWhere := ""
	if userID != "" {
		projectWhere = " WHERE owner_id = ?"
	}
	rows, err = q.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects`+projectWhere+` ORDER BY rowid`, args...)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	type ref struct{ profile, project int }
	refs := map[string]ref{}
	for rows.Next() {
		pr, err := scanProject(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		i, ok := byOwner[pr.OwnerID]
		if !ok {
			continue
		}
		refs[pr.ID] = ref{profile: i, project: len(profiles[i].Projects)}
		profiles[i].Projects = append(profiles[i].Projects, *pr)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	verWhere := ""
	if userID != "" {
		verWhere = " WHERE p.owner_id = ?"
	}
	rows, err = q.QueryContext(ctx, `SELECT v.project_id, `+verificationColumns+` FROM verifications v JOIN projects p ON p.id = v.project_id`+verWhere+` ORDER BY v.rowid`, args...)
	if err != nil {
		return nil, fmt.Errorf("query verifications: %w", err)
	}
	for rows.Next() {
		var projectID string
		v, err := scanVerification(rows, &projectID)
		if err != nil {
			rows.Close()
			return nil, err
		}
		if rf, ok := refs[projectID]; ok {
			p := &profiles[rf.profile].Projects[rf.project]
			p.Verifications = append(p.Verifications, v)
		}
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	return profiles, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}
