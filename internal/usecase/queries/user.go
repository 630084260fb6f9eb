package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type UserView struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserReadStore is the read side of user lookups. FindByEmail also returns
// the stored password hash so the login flow never needs a second query.
type UserReadStore interface {
	FindByEmail(ctx context.Context, email string) (*UserView, string, error)
	FindByID(ctx context.Context, id uuid.UUID) (*UserView, error)
}
