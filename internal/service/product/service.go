package product

import (
	"context"
	"fmt"
	"strings"

	"nimbus-pos/internal/domain"
	"nimbus-pos/internal/format"
	productrepo "nimbus-pos/internal/repository/product"

	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold marks products at or below this stock level.
const DefaultLowStockThreshold = 5

type Service struct {
	repo              productrepo.Repository
	lowStockThreshold int
}

func New(repo productrepo.Repository, lowStockThreshold int) *Service {
	if lowStockThreshold < 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	return &Service{repo: repo, lowStockThreshold: lowStockThreshold}
}

// Input carries prices as decimal amounts in the store currency.
type Input struct {
	CategoryID   *string          `json:"categoryId"`
	Name         string           `json:"name"`
	SKU          string           `json:"sku"`
	Barcode      string           `json:"barcode"`
	Description  string           `json:"description"`
	Price        decimal.Decimal  `json:"price"`
	CostPrice    *decimal.Decimal `json:"costPrice"`
	CurrentStock int              `json:"currentStock"`
	ImageURL     string           `json:"imageUrl"`
	IsActive     *bool            `json:"isActive"`
}

// View is the API shape of a product with amounts converted back to decimals.
type View struct {
	domain.Product
	Price        decimal.Decimal  `json:"price"`
	CostPrice    *decimal.Decimal `json:"costPrice,omitempty"`
	PriceDisplay string           `json:"priceDisplay"`
	LowStock     bool             `json:"lowStock"`
}

func (s *Service) View(p domain.Product, currency string) View {
	v := View{
		Product:  p,
		Price:    format.FromMinor(p.PriceCents, currency),
		LowStock: p.CurrentStock <= s.lowStockThreshold,
	}
	v.PriceDisplay = format.FormatCurrency(v.Price, currency)
	if p.CostPriceCents != nil {
		cost := format.FromMinor(*p.CostPriceCents, currency)
		v.CostPrice = &cost
	}
	return v
}

func (s *Service) Views(products []domain.Product, currency string) []View {
	out := make([]View, 0, len(products))
	for _, p := range products {
		out = append(out, s.View(p, currency))
	}
	return out
}

func (s *Service) LowStockThreshold() int {
	return s.lowStockThreshold
}

func (s *Service) List(ctx context.Context, storeID string, f productrepo.ListFilter) ([]domain.Product, error) {
	return s.repo.List(ctx, storeID, f)
}

func (s *Service) Get(ctx context.Context, storeID, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, storeID, id)
}

func (s *Service) Create(ctx context.Context, st domain.Store, in Input) (*domain.Product, error) {
	p, err := build(st, in)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, st domain.Store, id string, in Input) (*domain.Product, error) {
	current, err := s.repo.GetByID(ctx, st.ID, id)
	if err != nil {
		return nil, err
	}
	if in.IsActive == nil {
		active := current.IsActive
		in.IsActive = &active
	}
	p, err := build(st, in)
	if err != nil {
		return nil, err
	}
	p.ID = current.ID
	return s.repo.Update(ctx, p)
}

// Import creates or refreshes a product keyed by SKU.
func (s *Service) Import(ctx context.Context, st domain.Store, in Input) (*domain.Product, error) {
	p, err := build(st, in)
	if err != nil {
		return nil, err
	}
	return s.repo.UpsertBySKU(ctx, p)
}

func (s *Service) Delete(ctx context.Context, storeID, id string) error {
	return s.repo.Delete(ctx, storeID, id)
}

func (s *Service) LowStockCount(ctx context.Context, storeID string) (int, error) {
	return s.repo.CountLowStock(ctx, storeID, s.lowStockThreshold)
}

func build(st domain.Store, in Input) (domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Product{}, fmt.Errorf("%w: name required", domain.ErrInvalidInput)
	}
	if in.Price.IsNegative() {
		return domain.Product{}, fmt.Errorf("%w: price must be non-negative", domain.ErrInvalidInput)
	}
	if in.CostPrice != nil && in.CostPrice.IsNegative() {
		return domain.Product{}, fmt.Errorf("%w: cost price must be non-negative", domain.ErrInvalidInput)
	}
	if in.CurrentStock < 0 {
		return domain.Product{}, fmt.Errorf("%w: stock must be non-negative", domain.ErrInvalidInput)
	}

	sku := strings.ToUpper(strings.TrimSpace(in.SKU))
	if sku == "" {
		sku = format.GenerateSKU(name)
	}

	p := domain.Product{
		StoreID:      st.ID,
		Name:         name,
		SKU:          sku,
		Barcode:      strings.TrimSpace(in.Barcode),
		Description:  strings.TrimSpace(in.Description),
		PriceCents:   format.ToMinor(in.Price, st.Currency),
		CurrentStock: in.CurrentStock,
		ImageURL:     strings.TrimSpace(in.ImageURL),
		IsActive:     true,
	}
	if in.CategoryID != nil && strings.TrimSpace(*in.CategoryID) != "" {
		id := strings.TrimSpace(*in.CategoryID)
		p.CategoryID = &id
	}
	if in.CostPrice != nil {
		cost := format.ToMinor(*in.CostPrice, st.Currency)
		p.CostPriceCents = &cost
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	return p, nil
}
