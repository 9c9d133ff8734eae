package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Rustix69/QuantInsiderHirrd/internal/models"
)

// PostgresResumeRepository implements resume metadata persistence
// against a PostgreSQL database.
type PostgresResumeRepository struct {
	DB *sql.DB
}

// NewPostgresResumeRepository creates a repository over the given
// database connection.
func NewPostgresResumeRepository(db *sql.DB) *PostgresResumeRepository {
	return &PostgresResumeRepository{DB: db}
}

// InsertResume stores one uploaded resume row.
func (r *PostgresResumeRepository) InsertResume(ctx context.Context, resume *models.Resume) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO resumes (id, user_id, filename, object_key, mime, size, text, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, resume.ID, resume.UserID, resume.Filename, resume.ObjectKey, resume.MIME,
		resume.Size, resume.Text, resume.UploadedAt)
	if err != nil {
		return fmt.Errorf("InsertResume: %w", err)
	}
	return nil
}

// ListResumesByUser returns the user's resumes, newest first. The
// extracted text is not loaded here.
func (r *PostgresResumeRepository) ListResumesByUser(ctx context.Context, userID string) ([]models.Resume, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, filename, object_key, mime, size, uploaded_at FROM resumes
		WHERE user_id = $1 ORDER BY uploaded_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListResumesByUser: %w", err)
	}
	defer rows.Close()

	var resumes []models.Resume
	for rows.Next() {
		res := models.Resume{UserID: userID}
		if err := rows.Scan(&res.ID, &res.Filename, &res.ObjectKey, &res.MIME, &res.Size, &res.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan resume: %w", err)
		}
		resumes = append(resumes, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListResumesByUser rows: %w", err)
	}
	return resumes, nil
}

// GetResumeByID fetches a single resume including the extracted text.
// Ownership checks are the caller's responsibility.
func (r *PostgresResumeRepository) GetResumeByID(ctx context.Context, id string) (*models.Resume, error) {
	res := &models.Resume{}
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, filename, object_key, mime, size, text, uploaded_at FROM resumes
		WHERE id = $1
	`, id).Scan(&res.ID, &res.UserID, &res.Filename, &res.ObjectKey, &res.MIME, &res.Size, &res.Text, &res.UploadedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetResumeByID: %w", err)
	}
	return res, nil
}
