package category

import (
	"context"
	"fmt"
	"strings"

	"nimbus-pos/internal/domain"
	"nimbus-pos/internal/repository/category"
)

type Service struct {
	repo category.Repository
}

func New(repo category.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, storeID string) ([]domain.Category, error) {
	return s.repo.List(ctx, storeID)
}

func (s *Service) Create(ctx context.Context, storeID, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", domain.ErrInvalidInput)
	}
	return s.repo.Create(ctx, domain.Category{StoreID: storeID, Name: name})
}

func (s *Service) Rename(ctx context.Context, storeID, id, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", domain.ErrInvalidInput)
	}
	return s.repo.Rename(ctx, storeID, id, name)
}

// Delete removes an empty category. Categories with products are kept.
func (s *Service) Delete(ctx context.Context, storeID, id string) error {
	c, err := s.repo.Get(ctx, storeID, id)
	if err != nil {
		return err
	}
	if c.ProductCount > 0 {
		return fmt.Errorf("%w: category %q has %d products assigned", domain.ErrConflict, c.Name, c.ProductCount)
	}
	return s.repo.Delete(ctx, storeID, id)
}
