package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nimbus-pos/internal/domain"
	"nimbus-pos/internal/format"

	"github.com/shopspring/decimal"
)

var maxTaxRate = decimal.NewFromInt(100)

type storeRepo interface {
	Create(ctx context.Context, s domain.Store) (*domain.Store, error)
	GetByID(ctx context.Context, id string) (*domain.Store, error)
	Update(ctx context.Context, s domain.Store) (*domain.Store, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Store, error)
}

type memberRepo interface {
	Get(ctx context.Context, storeID, userID string) (*domain.Member, error)
}

type Service struct {
	repo    storeRepo
	members memberRepo
}

func New(repo storeRepo, members memberRepo) *Service {
	return &Service{repo: repo, members: members}
}

// Input is the editable part of a store. TaxRate is a percentage.
type Input struct {
	Name     string          `json:"name"`
	LogoURL  string          `json:"logoUrl"`
	Currency string          `json:"currency"`
	TaxRate  decimal.Decimal `json:"taxRate"`
}

func (in Input) normalize() (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.LogoURL = strings.TrimSpace(in.LogoURL)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = format.DefaultCurrency
	}
	if in.Name == "" {
		return in, fmt.Errorf("%w: name required", domain.ErrInvalidInput)
	}
	if !format.ValidCurrency(in.Currency) {
		return in, fmt.Errorf("%w: unknown currency %q", domain.ErrInvalidInput, in.Currency)
	}
	if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(maxTaxRate) {
		return in, fmt.Errorf("%w: tax rate must be between 0 and 100", domain.ErrInvalidInput)
	}
	in.TaxRate = in.TaxRate.RoundBank(2)
	return in, nil
}

// Create registers a store owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID string, in Input) (*domain.Store, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: owner required", domain.ErrInvalidInput)
	}
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, domain.Store{
		Name:     in.Name,
		LogoURL:  in.LogoURL,
		Currency: in.Currency,
		TaxRate:  in.TaxRate,
		OwnerID:  ownerID,
	})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Store, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Store, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	current.Name = in.Name
	current.LogoURL = in.LogoURL
	current.Currency = in.Currency
	current.TaxRate = in.TaxRate
	return s.repo.Update(ctx, *current)
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]domain.Store, error) {
	return s.repo.ListForUser(ctx, userID)
}

// Resolve loads the store and the caller's role in it. Users who neither own
// nor belong to the store get domain.ErrForbidden.
func (s *Service) Resolve(ctx context.Context, storeID, userID string) (*domain.Store, string, error) {
	st, err := s.repo.GetByID(ctx, storeID)
	if err != nil {
		return nil, "", err
	}
	if userID != "" && st.OwnerID == userID {
		return st, domain.RoleOwner, nil
	}
	if userID == "" {
		return nil, "", domain.ErrForbidden
	}
	m, err := s.members.Get(ctx, storeID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrForbidden
		}
		return nil, "", err
	}
	return st, m.Role, nil
}
