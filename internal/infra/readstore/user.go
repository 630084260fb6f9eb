package readstore

import (
	"context"

	"tickethub/internal/infra"
	"tickethub/internal/infra/db"
	"tickethub/internal/pkg/pgconv"
	"tickethub/internal/usecase/queries"

	"github.com/google/uuid"
)

type UserReadStore struct {
	db db.DBTX
}

func NewUserReadStore(dbtx db.DBTX) *UserReadStore {
	return &UserReadStore{db: dbtx}
}

const userByEmailSQL = `
SELECT id, email, name, role, is_active, created_at, password_hash
FROM users
WHERE email = $1`

func (r *UserReadStore) FindByEmail(ctx context.Context, email string) (*queries.UserView, string, error) {
	var (
		view queries.UserView
		hash string
	)
	err := r.db.QueryRow(ctx, userByEmailSQL, email).Scan(
		&view.ID, &view.Email, &view.Name, &view.Role, &view.IsActive, &view.CreatedAt, &hash,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, "", infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, "", infra.WrapRepoErr("failed to find user by email", err)
	}
	return &view, hash, nil
}

const userByIDSQL = `
SELECT id, email, name, role, is_active, created_at
FROM users
WHERE id = $1`

func (r *UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.UserView, error) {
	var view queries.UserView
	err := r.db.QueryRow(ctx, userByIDSQL, id).Scan(
		&view.ID, &view.Email, &view.Name, &view.Role, &view.IsActive, &view.CreatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by ID", err)
	}
	return &view, nil
}
