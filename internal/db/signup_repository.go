package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayrahq/ayra/internal/models"
)

// Signup repository errors.
var (
	ErrSignupNotFound = errors.New("signup not found")
	ErrSignupExists   = errors.New("signup already exists")
)

// SignupRepository persists waitlist signups.
type SignupRepository struct {
	db *DB
}

// NewSignupRepository creates a new SignupRepository.
func NewSignupRepository(db *DB) *SignupRepository {
	return &SignupRepository{db: db}
}

// Create inserts a signup. It returns ErrSignupExists when the email is
// already on the list.
func (r *SignupRepository) Create(ctx context.Context, signup *models.Signup) error {
	if signup.Email == "" {
		return fmt.Errorf("signup email is required")
	}
	if signup.ID == "" {
		signup.ID = uuid.New().String()
	}
	if signup.CreatedAt.IsZero() {
		signup.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO signups (id, email, source, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(email) DO NOTHING
	`, signup.ID, signup.Email, nullString(signup.Source), formatTime(signup.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert signup: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrSignupExists
	}
	return nil
}

// GetByEmail looks a signup up by its exact email.
func (r *SignupRepository) GetByEmail(ctx context.Context, email string) (*models.Signup, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, source, created_at FROM signups WHERE email = ?
	`, email)

	var (
		signup    models.Signup
		source    sql.NullString
		createdAt string
	)
	if err := row.Scan(&signup.ID, &signup.Email, &source, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSignupNotFound
		}
		return nil, fmt.Errorf("failed to scan signup: %w", err)
	}
	signup.Source = source.String
	signup.CreatedAt = parseTime(createdAt)
	return &signup, nil
}

// List returns signups oldest first.
func (r *SignupRepository) List(ctx context.Context) ([]*models.Signup, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, source, created_at FROM signups ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list signups: %w", err)
	}
	defer rows.Close()

	var signups []*models.Signup
	for rows.Next() {
		var (
			signup    models.Signup
			source    sql.NullString
			createdAt string
		)
		if err := rows.Scan(&signup.ID, &signup.Email, &source, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan signup: %w", err)
		}
		signup.Source = source.String
		signup.CreatedAt = parseTime(createdAt)
		signups = append(signups, &signup)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signups: %w", err)
	}
	return signups, nil
}

// Count returns the number of signups.
func (r *SignupRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM signups`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count signups: %w", err)
	}
	return count, nil
}

func nullString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
