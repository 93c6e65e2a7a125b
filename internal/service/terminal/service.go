// Package terminal runs POS sessions: each request loads the session's cart,
// binds it to the current store, applies one mutation and saves it once.
package terminal

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"nimbus-pos/internal/cart"
	"nimbus-pos/internal/domain"
	"nimbus-pos/internal/format"

	"github.com/google/uuid"
)

type productSource interface {
	GetByID(ctx context.Context, storeID, id string) (*domain.Product, error)
}

type Service struct {
	carts    cart.Store
	products productSource
	logger   *log.Logger
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func New(carts cart.Store, products productSource, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		carts:    carts,
		products: products,
		logger:   logger,
		now:      time.Now,
		locks:    make(map[string]*sessionLock),
	}
}

// NewSessionID returns a fresh POS session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// NormalizeSession trims id and falls back to a new session when it is empty.
func NormalizeSession(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return NewSessionID()
	}
	return id
}

// Mutation changes the cart. Returning an error skips the save.
type Mutation func(c *cart.Cart) (cart.Outcome, error)

// Do runs fn against the session's cart while holding the session lock and
// persists the result.
func (s *Service) Do(ctx context.Context, st domain.Store, session string, fn Mutation) (View, error) {
	unlock := s.lock(session)
	defer unlock()

	key := cart.Key(session)
	c := s.load(ctx, key)
	c.SetBoundStore(st.ID)
	c.SetTaxRate(st.TaxFraction())

	outcome, err := fn(c)
	if err != nil {
		return View{}, err
	}

	if err := s.carts.Save(ctx, key, c.State()); err != nil {
		s.logger.Printf("terminal: save session=%s error=%v", session, err)
		// A stale stored cart must not outlive a clear or a completed sale.
		if c.Empty() {
			if err := s.carts.Delete(ctx, key); err != nil {
				s.logger.Printf("terminal: delete session=%s error=%v", session, err)
			}
		}
	}
	return newView(session, st.Currency, c, outcome), nil
}

func (s *Service) Get(ctx context.Context, st domain.Store, session string) (View, error) {
	return s.Do(ctx, st, session, func(*cart.Cart) (cart.Outcome, error) {
		return cart.Unchanged, nil
	})
}

// AddProduct adds an active product of the store to the cart.
func (s *Service) AddProduct(ctx context.Context, st domain.Store, session, productID string, quantity int) (View, error) {
	p, err := s.products.GetByID(ctx, st.ID, productID)
	if err != nil {
		return View{}, err
	}
	if !p.IsActive {
		return View{}, domain.ErrNotFound
	}
	snapshot := Snapshot(*p, st.Currency)
	return s.Do(ctx, st, session, func(c *cart.Cart) (cart.Outcome, error) {
		return c.AddLine(snapshot, quantity), nil
	})
}

func (s *Service) SetQuantity(ctx context.Context, st domain.Store, session, productID string, quantity int) (View, error) {
	return s.Do(ctx, st, session, func(c *cart.Cart) (cart.Outcome, error) {
		return c.SetLineQuantity(productID, quantity), nil
	})
}

func (s *Service) RemoveLine(ctx context.Context, st domain.Store, session, productID string) (View, error) {
	return s.Do(ctx, st, session, func(c *cart.Cart) (cart.Outcome, error) {
		return c.RemoveLine(productID), nil
	})
}

func (s *Service) Clear(ctx context.Context, st domain.Store, session string) (View, error) {
	return s.Do(ctx, st, session, func(c *cart.Cart) (cart.Outcome, error) {
		return c.Clear(), nil
	})
}

// MarkPending flags the cart as waiting for sync, e.g. while offline.
func (s *Service) MarkPending(ctx context.Context, st domain.Store, session string) (View, error) {
	return s.Do(ctx, st, session, func(c *cart.Cart) (cart.Outcome, error) {
		c.MarkPending()
		return cart.Updated, nil
	})
}

// Discard drops the persisted cart of a session.
func (s *Service) Discard(ctx context.Context, session string) error {
	unlock := s.lock(session)
	defer unlock()
	return s.carts.Delete(ctx, cart.Key(session))
}

// Snapshot converts a stored product into the cart's pricing view.
func Snapshot(p domain.Product, currency string) cart.ProductSnapshot {
	return cart.ProductSnapshot{
		ID:       p.ID,
		StoreID:  p.StoreID,
		Name:     p.Name,
		SKU:      p.SKU,
		Price:    format.FromMinor(p.PriceCents, currency),
		ImageURL: p.ImageURL,
	}
}

func (s *Service) load(ctx context.Context, key string) *cart.Cart {
	st, err := s.carts.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, cart.ErrNoState) {
			s.logger.Printf("terminal: load key=%s error=%v", key, err)
		}
		return cart.New(cart.WithClock(s.now))
	}
	return cart.FromState(st, cart.WithClock(s.now))
}

func (s *Service) lock(session string) func() {
	s.mu.Lock()
	l, ok := s.locks[session]
	if !ok {
		l = &sessionLock{}
		s.locks[session] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, session)
		}
		s.mu.Unlock()
	}
}
