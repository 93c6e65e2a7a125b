package sale

import (
	"context"
	"time"

	"nimbus-pos/internal/domain"
)

type Repository interface {
	// Create records the sale and its items and takes the sold quantities out
	// of stock atomically. A product short on stock fails the whole sale with
	// domain.ErrInsufficientStock.
	Create(ctx context.Context, s domain.Sale) (*domain.Sale, error)
	GetByID(ctx context.Context, storeID, id string) (*domain.Sale, error)
	// ListByRange returns sales created in [from, to], newest first, with items.
	ListByRange(ctx context.Context, storeID string, from, to time.Time) ([]domain.Sale, error)
}
