package postgres

import (
	"context"
	"errors"

	"github.com/clasifica/clasifica-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OwnerRepository implements domain.OwnerRepository using PostgreSQL
type OwnerRepository struct {
	pool *pgxpool.Pool
}

var _ domain.OwnerRepository = (*OwnerRepository)(nil)

// NewOwnerRepository creates a new OwnerRepository
func NewOwnerRepository(pool *pgxpool.Pool) *OwnerRepository {
	return &OwnerRepository{pool: pool}
}

// upsertOwnerSQL keeps the stored email and name when the token omits them
const upsertOwnerSQL = `INSERT INTO owners (id, auth0_id, email, name) VALUES ($1, $2, $3, $4)
	ON CONFLICT (auth0_id) DO UPDATE SET
		email = COALESCE(NULLIF(EXCLUDED.email, ''), owners.email),
		name = COALESCE(NULLIF(EXCLUDED.name, ''), owners.name),
		updated_at = NOW()
	RETURNING id`

// ResolveOwner returns the owner id of an Auth0 subject, creating the owner on first use
func (r *OwnerRepository) ResolveOwner(identity domain.OwnerIdentity) (domain.OwnerID, error) {
	if identity.Auth0ID == "" {
		return domain.OwnerID(uuid.Nil), domain.ErrOwnerNotFound
	}

	var id uuid.UUID
	err := r.pool.QueryRow(context.Background(), upsertOwnerSQL,
		uuid.New(), identity.Auth0ID, identity.Email, identity.Name,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.OwnerID(uuid.Nil), domain.ErrOwnerNotFound
		}
		return domain.OwnerID(uuid.Nil), err
	}
	return domain.OwnerID(id), nil
}
