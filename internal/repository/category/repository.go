package category

import (
	"context"

	"nimbus-pos/internal/domain"
)

type Repository interface {
	// List returns the store's categories with the number of products in each.
	List(ctx context.Context, storeID string) ([]domain.Category, error)
	Get(ctx context.Context, storeID, id string) (*domain.Category, error)
	Create(ctx context.Context, c domain.Category) (*domain.Category, error)
	Rename(ctx context.Context, storeID, id, name string) (*domain.Category, error)
	// Delete fails with domain.ErrConflict while products reference the category.
	Delete(ctx context.Context, storeID, id string) error
	// Ensure returns the category named name, creating it when missing.
	Ensure(ctx context.Context, storeID, name string) (*domain.Category, error)
}
