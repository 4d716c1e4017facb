package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"devconnect/internal/domain"
)

// ProfileRepository define el contrato de persistencia para perfiles.
// Las listas de experience/education viajan dentro del documento: cada
// escritura reemplaza el perfil completo de forma atómica.
type ProfileRepository interface {
	Create(ctx context.Context, profile domain.Profile) error
	GetAll(ctx context.Context) ([]domain.Profile, error)
	GetByID(ctx context.Context, id string) (domain.Profile, error)
	GetByUserID(ctx context.Context, userID string) (domain.Profile, error)
	Update(ctx context.Context, profile domain.Profile) error
	DeleteByUserID(ctx context.Context, userID string) error
}

// PgProfileRepository implementa ProfileRepository usando pgxpool.
// experience, education y social se guardan como jsonb en la misma fila,
// así una actualización de perfil es una sola escritura.
type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

const profileColumns = `
	p.id, p.user_id, p.status, p.skills, p.company, p.website, p.location,
	p.bio, p.github_username, p.social, p.experience, p.education,
	p.created_at, p.updated_at,
	u.id, u.name, u.avatar
`

func (r *PgProfileRepository) Create(ctx context.Context, profile domain.Profile) error {
	const query = `
		INSERT INTO profiles (
			id, user_id, status, skills, company, website, location,
			bio, github_username, social, experience, education,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.pool.Exec(ctx, query,
		profile.ID,
		profile.UserID,
		profile.Status,
		profile.Skills,
		profile.Company,
		profile.Website,
		profile.Location,
		profile.Bio,
		profile.GithubUsername,
		profile.Social,
		profile.Experience,
		profile.Education,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PgProfileRepository) GetAll(ctx context.Context) ([]domain.Profile, error) {
	const query = `
		SELECT ` + profileColumns + `
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []domain.Profile{}
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

func (r *PgProfileRepository) GetByID(ctx context.Context, id string) (domain.Profile, error) {
	const query = `
		SELECT ` + profileColumns + `
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`
	return scanProfile(r.pool.QueryRow(ctx, query, id))
}

func (r *PgProfileRepository) GetByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	const query = `
		SELECT ` + profileColumns + `
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
	`
	return scanProfile(r.pool.QueryRow(ctx, query, userID))
}

func (r *PgProfileRepository) Update(ctx context.Context, profile domain.Profile) error {
	const query = `
		UPDATE profiles
		SET status = $2, skills = $3, company = $4, website = $5,
			location = $6, bio = $7, github_username = $8, social = $9,
			experience = $10, education = $11, updated_at = $12
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		profile.ID,
		profile.Status,
		profile.Skills,
		profile.Company,
		profile.Website,
		profile.Location,
		profile.Bio,
		profile.GithubUsername,
		profile.Social,
		profile.Experience,
		profile.Education,
		profile.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgProfileRepository) DeleteByUserID(ctx context.Context, userID string) error {
	const query = `DELETE FROM profiles WHERE user_id = $1`
	// Borrar un perfil inexistente no es un error.
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

func scanProfile(row pgx.Row) (domain.Profile, error) {
	var (
		p     domain.Profile
		owner domain.UserSummary
	)
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Status,
		&p.Skills,
		&p.Company,
		&p.Website,
		&p.Location,
		&p.Bio,
		&p.GithubUsername,
		&p.Social,
		&p.Experience,
		&p.Education,
		&p.CreatedAt,
		&p.UpdatedAt,
		&owner.ID,
		&owner.Name,
		&owner.Avatar,
	)
	if err != nil {
		return domain.Profile{}, err
	}
	p.User = &owner
	return p, nil
}
