package store

import (
	"context"
	"errors"
	"testing"

	"nimbus-pos/internal/domain"

	"github.com/shopspring/decimal"
)

type stubStoreRepo struct {
	stores  map[string]*domain.Store
	created domain.Store
	updated domain.Store
}

func (s *stubStoreRepo) Create(_ context.Context, st domain.Store) (*domain.Store, error) {
	s.created = st
	st.ID = "new-store"
	return &st, nil
}

func (s *stubStoreRepo) GetByID(_ context.Context, id string) (*domain.Store, error) {
	st, ok := s.stores[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (s *stubStoreRepo) Update(_ context.Context, st domain.Store) (*domain.Store, error) {
	s.updated = st
	return &st, nil
}

func (s *stubStoreRepo) ListForUser(_ context.Context, _ string) ([]domain.Store, error) {
	return nil, nil
}

type stubMemberRepo struct {
	members map[string]domain.Member
	err     error
}

func (s *stubMemberRepo) Get(_ context.Context, storeID, userID string) (*domain.Member, error) {
	if s.err != nil {
		return nil, s.err
	}
	m, ok := s.members[storeID+"/"+userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &m, nil
}

func newService() (*Service, *stubStoreRepo) {
	repo := &stubStoreRepo{stores: map[string]*domain.Store{
		"s1": {ID: "s1", Name: "Main", Currency: "USD", OwnerID: "owner"},
	}}
	members := &stubMemberRepo{members: map[string]domain.Member{
		"s1/cashier": {StoreID: "s1", UserID: "cashier", Role: domain.RoleCashier},
	}}
	return New(repo, members), repo
}

func TestCreateNormalizesInput(t *testing.T) {
	svc, repo := newService()

	got, err := svc.Create(context.Background(), "owner", Input{Name: "  Deli ", Currency: " eur ", TaxRate: decimal.RequireFromString("7.125")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.ID != "new-store" {
		t.Fatalf("unexpected id %s", got.ID)
	}
	if repo.created.Name != "Deli" || repo.created.Currency != "EUR" || repo.created.OwnerID != "owner" {
		t.Fatalf("unexpected store %+v", repo.created)
	}
	if !repo.created.TaxRate.Equal(decimal.RequireFromString("7.12")) {
		t.Fatalf("tax rate not rounded: %s", repo.created.TaxRate)
	}
}

func TestCreateDefaultsCurrency(t *testing.T) {
	svc, repo := newService()
	if _, err := svc.Create(context.Background(), "owner", Input{Name: "Deli"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if repo.created.Currency != "USD" {
		t.Fatalf("currency = %s", repo.created.Currency)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newService()
	cases := map[string]Input{
		"missing name":  {Currency: "USD"},
		"bad currency":  {Name: "x", Currency: "ZZZ"},
		"negative tax":  {Name: "x", TaxRate: decimal.NewFromInt(-1)},
		"tax above 100": {Name: "x", TaxRate: decimal.RequireFromString("100.01")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), "owner", in); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
	if _, err := svc.Create(context.Background(), "", Input{Name: "x"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected owner validation, got %v", err)
	}
}

func TestUpdateKeepsOwner(t *testing.T) {
	svc, repo := newService()
	if _, err := svc.Update(context.Background(), "s1", Input{Name: "Renamed", Currency: "GBP", TaxRate: decimal.NewFromInt(20)}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if repo.updated.OwnerID != "owner" || repo.updated.Name != "Renamed" || repo.updated.Currency != "GBP" {
		t.Fatalf("unexpected update %+v", repo.updated)
	}
	if _, err := svc.Update(context.Background(), "missing", Input{Name: "x"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, role, err := svc.Resolve(ctx, "s1", "owner")
	if err != nil || role != domain.RoleOwner {
		t.Fatalf("owner: role=%s err=%v", role, err)
	}
	_, role, err = svc.Resolve(ctx, "s1", "cashier")
	if err != nil || role != domain.RoleCashier {
		t.Fatalf("member: role=%s err=%v", role, err)
	}
	if _, _, err := svc.Resolve(ctx, "s1", "stranger"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, _, err := svc.Resolve(ctx, "s1", ""); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for anonymous, got %v", err)
	}
	if _, _, err := svc.Resolve(ctx, "nope", "owner"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
