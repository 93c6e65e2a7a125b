package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"nimbus-pos/internal/cart"
	"nimbus-pos/internal/domain"
	"nimbus-pos/internal/format"
	"nimbus-pos/internal/service/terminal"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInsufficientPayment = errors.New("insufficient payment")
	// ErrInsufficientStock aliases the domain error so callers can match either.
	ErrInsufficientStock = domain.ErrInsufficientStock
)

type cartRunner interface {
	Do(ctx context.Context, st domain.Store, session string, fn terminal.Mutation) (terminal.View, error)
}

type productSource interface {
	GetByID(ctx context.Context, storeID, id string) (*domain.Product, error)
}

type saleWriter interface {
	Create(ctx context.Context, s domain.Sale) (*domain.Sale, error)
}

type Service struct {
	carts         cartRunner
	products      productSource
	sales         saleWriter
	logger        *log.Logger
	maxConcurrent int
}

func New(carts cartRunner, products productSource, sales saleWriter, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{carts: carts, products: products, sales: sales, logger: logger, maxConcurrent: 8}
}

type Payment struct {
	Method   string          `json:"method"`
	Tendered decimal.Decimal `json:"tendered"`
	Notes    string          `json:"notes"`
}

// Receipt amounts are rounded to the store currency.
type Receipt struct {
	Sale     domain.Sale     `json:"sale"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Tendered decimal.Decimal `json:"tendered"`
	Change   decimal.Decimal `json:"change"`
	Cart     terminal.View   `json:"cart"`
}

// Checkout turns the session cart into a completed sale and empties the cart.
func (s *Service) Checkout(ctx context.Context, st domain.Store, cashierID, session string, pay Payment) (*Receipt, error) {
	method := strings.ToLower(strings.TrimSpace(pay.Method))
	if method == "" {
		method = domain.PaymentCash
	}
	if method != domain.PaymentCash && method != domain.PaymentCard {
		return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrInvalidInput, pay.Method)
	}
	if strings.TrimSpace(cashierID) == "" {
		return nil, fmt.Errorf("%w: cashier required", domain.ErrInvalidInput)
	}

	var receipt Receipt
	view, err := s.carts.Do(ctx, st, session, func(c *cart.Cart) (cart.Outcome, error) {
		if c.Empty() {
			return cart.Unchanged, ErrEmptyCart
		}
		lines := c.Lines()
		if err := s.validate(ctx, st.ID, lines); err != nil {
			return cart.Unchanged, err
		}

		subtotal := format.Round(c.Subtotal(), st.Currency)
		tax := format.Round(c.TaxAmount(), st.Currency)
		total := subtotal.Add(tax)

		tendered := total
		if method == domain.PaymentCash {
			tendered = pay.Tendered
			if tendered.LessThan(total) {
				return cart.Unchanged, fmt.Errorf("%w: tendered %s, total %s", ErrInsufficientPayment,
					format.FormatCurrency(tendered, st.Currency), format.FormatCurrency(total, st.Currency))
			}
		}

		sale := domain.Sale{
			StoreID:       st.ID,
			CashierID:     cashierID,
			TotalCents:    format.ToMinor(total, st.Currency),
			TaxCents:      format.ToMinor(tax, st.Currency),
			PaymentMethod: method,
			Status:        domain.SaleCompleted,
			Notes:         strings.TrimSpace(pay.Notes),
			Items:         make([]domain.SaleItem, 0, len(lines)),
		}
		for _, l := range lines {
			sale.Items = append(sale.Items, domain.SaleItem{
				ProductID:      l.Product.ID,
				ProductName:    l.Product.Name,
				Quantity:       l.Quantity,
				UnitPriceCents: format.ToMinor(l.Product.Price, st.Currency),
				SubtotalCents:  format.ToMinor(l.Subtotal, st.Currency),
			})
		}

		created, err := s.sales.Create(ctx, sale)
		if err != nil {
			return cart.Unchanged, err
		}

		receipt = Receipt{
			Sale:     *created,
			Subtotal: subtotal,
			Tax:      tax,
			Total:    total,
			Tendered: tendered,
			Change:   tendered.Sub(total),
		}
		// An empty cart the terminal cannot save is deleted instead.
		return c.Clear(), nil
	})
	if err != nil {
		s.logger.Printf("checkout: store_id=%s session=%s error=%v", st.ID, session, err)
		return nil, err
	}
	receipt.Cart = view
	s.logger.Printf("checkout: store_id=%s session=%s sale=%s total=%s", st.ID, session, receipt.Sale.ID, receipt.Total)
	return &receipt, nil
}

// validate re-reads every product in the cart and checks it can still be sold.
func (s *Service) validate(ctx context.Context, storeID string, lines []cart.Line) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for _, l := range lines {
		l := l
		g.Go(func() error {
			p, err := s.products.GetByID(ctx, storeID, l.Product.ID)
			if err != nil {
				return fmt.Errorf("product %s: %w", l.Product.ID, err)
			}
			if !p.IsActive {
				return fmt.Errorf("product %s: %w", l.Product.ID, domain.ErrNotFound)
			}
			if p.CurrentStock < l.Quantity {
				return fmt.Errorf("%w: %s has %d, cart wants %d", ErrInsufficientStock, p.Name, p.CurrentStock, l.Quantity)
			}
			return nil
		})
	}
	return g.Wait()
}
