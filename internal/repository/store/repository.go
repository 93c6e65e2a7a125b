package store

import (
	"context"

	"nimbus-pos/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, s domain.Store) (*domain.Store, error)
	GetByID(ctx context.Context, id string) (*domain.Store, error)
	Update(ctx context.Context, s domain.Store) (*domain.Store, error)
	// ListForUser returns stores the user owns or belongs to, ordered by name.
	ListForUser(ctx context.Context, userID string) ([]domain.Store, error)
}
