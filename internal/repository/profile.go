// Package repository provides the Postgres row store for profiles,
// education and experience collections, and resumes.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Rustix69/QuantInsiderHirrd/internal/models"
)

// PostgresProfileRepository implements profile persistence against a
// PostgreSQL database.
type PostgresProfileRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresProfileRepository creates a repository over the given
// database connection.
func NewPostgresProfileRepository(db *sql.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{DB: db}
}

// GetProfile fetches the scalar profile row for the user. A missing row
// is valid empty state and returns (nil, nil).
func (r *PostgresProfileRepository) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	p := &models.Profile{UserID: userID}
	err := r.DB.QueryRowContext(ctx, `
		SELECT name, email, bio, phone, location, skills FROM profiles WHERE user_id = $1
	`, userID).Scan(&p.Name, &p.Email, &p.Bio, &p.Phone, &p.Location, pq.Array(&p.Skills))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetProfile: %w", err)
	}
	return p, nil
}

// UpsertProfile inserts the scalar profile row or updates it in place,
// keyed by the user id.
func (r *PostgresProfileRepository) UpsertProfile(ctx context.Context, p *models.Profile) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO profiles (user_id, name, email, bio, phone, location, skills)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			bio = EXCLUDED.bio,
			phone = EXCLUDED.phone,
			location = EXCLUDED.location,
			skills = EXCLUDED.skills
	`, p.UserID, p.Name, p.Email, p.Bio, p.Phone, p.Location, pq.Array(p.Skills))
	if err != nil {
		return fmt.Errorf("UpsertProfile: %w", err)
	}
	return nil
}

// ListEducation returns the user's education rows, most recent start
// period first.
func (r *PostgresProfileRepository) ListEducation(ctx context.Context, userID string) ([]models.EducationEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, institute, degree, start_period, end_period FROM education
		WHERE user_id = $1 ORDER BY start_period DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListEducation: %w", err)
	}
	defer rows.Close()

	var entries []models.EducationEntry
	for rows.Next() {
		e := models.EducationEntry{UserID: userID}
		if err := rows.Scan(&e.ID, &e.Institute, &e.Degree, &e.Start, &e.End); err != nil {
			return nil, fmt.Errorf("scan education: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListEducation rows: %w", err)
	}
	return entries, nil
}

// DeleteEducationByUser removes every education row owned by the user.
func (r *PostgresProfileRepository) DeleteEducationByUser(ctx context.Context, userID string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM education WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("DeleteEducationByUser: %w", err)
	}
	return nil
}

// InsertEducation bulk-inserts the entries for the user inside one
// transaction, so a collection is never half-written.
func (r *PostgresProfileRepository) InsertEducation(ctx context.Context, userID string, entries []models.EducationEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO education (id, user_id, institute, degree, start_period, end_period)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, e.ID, userID, e.Institute, e.Degree, e.Start, e.End)
		if err != nil {
			return fmt.Errorf("insert education: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListExperience returns the user's experience rows, most recent start
// period first.
func (r *PostgresProfileRepository) ListExperience(ctx context.Context, userID string) ([]models.ExperienceEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, company, role, start_period, end_period FROM experience
		WHERE user_id = $1 ORDER BY start_period DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListExperience: %w", err)
	}
	defer rows.Close()

	var entries []models.ExperienceEntry
	for rows.Next() {
		e := models.ExperienceEntry{UserID: userID}
		if err := rows.Scan(&e.ID, &e.Company, &e.Role, &e.Start, &e.End); err != nil {
			return nil, fmt.Errorf("scan experience: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListExperience rows: %w", err)
	}
	return entries, nil
}

// DeleteExperienceByUser removes every experience row owned by the user.
func (r *PostgresProfileRepository) DeleteExperienceByUser(ctx context.Context, userID string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM experience WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("DeleteExperienceByUser: %w", err)
	}
	return nil
}

// InsertExperience bulk-inserts the entries for the user inside one
// transaction.
func (r *PostgresProfileRepository) InsertExperience(ctx context.Context, userID string, entries []models.ExperienceEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO experience (id, user_id, company, role, start_period, end_period)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, e.ID, userID, e.Company, e.Role, e.Start, e.End)
		if err != nil {
			return fmt.Errorf("insert experience: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListCandidates returns every profile with its resume count, for the
// admin dashboard.
func (r *PostgresProfileRepository) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT p.user_id, p.name, p.email, p.location, COUNT(r.id)
		FROM profiles p
		LEFT JOIN resumes r ON r.user_id = p.user_id
		GROUP BY p.user_id, p.name, p.email, p.location
		ORDER BY p.name
	`)
	if err != nil {
		return nil, fmt.Errorf("ListCandidates: %w", err)
	}
	defer rows.Close()

	var candidates []models.Candidate
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.UserID, &c.Name, &c.Email, &c.Location, &c.Resumes); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListCandidates rows: %w", err)
	}
	return candidates, nil
}
