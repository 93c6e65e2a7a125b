package staff

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nimbus-pos/internal/domain"
	memberrepo "nimbus-pos/internal/repository/member"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPINLength = 4
	maxPINLength = 8
)

// ErrInvalidPIN is returned when a PIN does not match the stored hash.
var ErrInvalidPIN = errors.New("invalid pin")

type Service struct {
	repo memberrepo.Repository
	cost int
}

func New(repo memberrepo.Repository) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost}
}

type AddInput struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	PIN    string `json:"pin"`
}

// UpdateInput changes only the fields that are set. An empty PIN clears it.
type UpdateInput struct {
	Role *string `json:"role"`
	PIN  *string `json:"pin"`
}

func (s *Service) List(ctx context.Context, storeID string) ([]domain.Member, error) {
	return s.repo.List(ctx, storeID)
}

func (s *Service) Add(ctx context.Context, st domain.Store, in AddInput) (*domain.Member, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidInput)
	}
	if userID == st.OwnerID {
		return nil, fmt.Errorf("%w: user already owns the store", domain.ErrAlreadyExists)
	}
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role == "" {
		role = domain.RoleCashier
	}
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, in.Role)
	}
	hash, err := s.hashPIN(in.PIN)
	if err != nil {
		return nil, err
	}
	return s.repo.Add(ctx, domain.Member{StoreID: st.ID, UserID: userID, Role: role, PINHash: hash})
}

func (s *Service) Update(ctx context.Context, storeID, userID string, in UpdateInput) (*domain.Member, error) {
	m, err := s.repo.Get(ctx, storeID, userID)
	if err != nil {
		return nil, err
	}
	if in.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*in.Role))
		if !domain.ValidRole(role) {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, *in.Role)
		}
		m.Role = role
	}
	if in.PIN != nil {
		hash, err := s.hashPIN(*in.PIN)
		if err != nil {
			return nil, err
		}
		m.PINHash = hash
	}
	return s.repo.Update(ctx, *m)
}

func (s *Service) Remove(ctx context.Context, storeID, userID string) error {
	return s.repo.Remove(ctx, storeID, userID)
}

// VerifyPIN checks pin against the member's stored hash. Members without a
// PIN never verify.
func (s *Service) VerifyPIN(ctx context.Context, storeID, userID, pin string) (*domain.Member, error) {
	m, err := s.repo.Get(ctx, storeID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidPIN
		}
		return nil, err
	}
	if !m.HasPIN() {
		return nil, ErrInvalidPIN
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.PINHash), []byte(strings.TrimSpace(pin))); err != nil {
		return nil, ErrInvalidPIN
	}
	return m, nil
}

func (s *Service) hashPIN(pin string) (string, error) {
	pin = strings.TrimSpace(pin)
	if pin == "" {
		return "", nil
	}
	if err := validatePIN(pin); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), s.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func validatePIN(pin string) error {
	if len(pin) < minPINLength || len(pin) > maxPINLength {
		return fmt.Errorf("%w: pin must be %d to %d digits", domain.ErrInvalidInput, minPINLength, maxPINLength)
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: pin must contain digits only", domain.ErrInvalidInput)
		}
	}
	return nil
}
