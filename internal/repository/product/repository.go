package product

import (
	"context"

	"nimbus-pos/internal/domain"
)

// ListFilter narrows List. Search matches name, SKU or barcode case-insensitively.
type ListFilter struct {
	Search     string
	CategoryID string
	ActiveOnly bool
}

type Repository interface {
	List(ctx context.Context, storeID string, f ListFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, storeID, id string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, storeID, id string) error
	// CountLowStock counts active products with stock at or below threshold.
	CountLowStock(ctx context.Context, storeID string, threshold int) (int, error)
	// UpsertBySKU inserts p or updates the product sharing its SKU in the store.
	UpsertBySKU(ctx context.Context, p domain.Product) (*domain.Product, error)
}
