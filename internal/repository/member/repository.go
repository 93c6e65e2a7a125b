package member

import (
	"context"

	"nimbus-pos/internal/domain"
)

type Repository interface {
	List(ctx context.Context, storeID string) ([]domain.Member, error)
	Get(ctx context.Context, storeID, userID string) (*domain.Member, error)
	Add(ctx context.Context, m domain.Member) (*domain.Member, error)
	Update(ctx context.Context, m domain.Member) (*domain.Member, error)
	Remove(ctx context.Context, storeID, userID string) error
}
