package postgres

import (
	"context"
	"database/sql"

	"staffingapi/internal/model"
	"staffingapi/internal/repository"
)

// ProfilePostgres is a PostgreSQL implementation of repository.ProfileRepository.
type ProfilePostgres struct {
	db *sql.DB
}

// NewProfilePostgres creates a new ProfilePostgres repository.
func NewProfilePostgres(db *sql.DB) *ProfilePostgres {
	return &ProfilePostgres{db: db}
}

var _ repository.ProfileRepository = (*ProfilePostgres)(nil)

// FindByID fetches a single profile by its ID.
func (r *ProfilePostgres) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	const q = `SELECT id, email, full_name, role, created_at FROM profiles WHERE id = $1`
	var p model.Profile
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
