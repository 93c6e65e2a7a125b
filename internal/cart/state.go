package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Namespace prefixes every persisted cart key.
const Namespace = "nimbus-cart"

// ErrNoState is returned by a Store when nothing was saved under the key.
var ErrNoState = errors.New("cart: no saved state")

// Store persists cart state between requests.
type Store interface {
	Load(ctx context.Context, key string) (State, error)
	Save(ctx context.Context, key string, st State) error
	Delete(ctx context.Context, key string) error
}

// Key returns the storage key for a POS session.
func Key(session string) string {
	return Namespace + ":" + session
}

// State is the persisted form of a Cart.
type State struct {
	Lines        []Line          `json:"lines"`
	StoreID      string          `json:"storeId"`
	TaxRate      decimal.Decimal `json:"taxRate"`
	IsPending    bool            `json:"isPending"`
	LastModified time.Time       `json:"lastModified"`
}

func (c *Cart) State() State {
	return State{
		Lines:        c.Lines(),
		StoreID:      c.storeID,
		TaxRate:      c.taxRate,
		IsPending:    c.pending,
		LastModified: c.lastModified,
	}
}

// FromState rebuilds a cart from persisted state. Subtotals are recomputed,
// lines with a quantity below one, without a store or from a foreign store
// are dropped and duplicate products are merged.
func FromState(st State, opts ...Option) *Cart {
	c := New(opts...)
	c.storeID = st.StoreID
	if st.TaxRate.IsPositive() {
		c.taxRate = st.TaxRate
	}
	c.pending = st.IsPending

	for _, l := range st.Lines {
		if l.Quantity < 1 || l.Product.ID == "" || l.Product.StoreID == "" {
			continue
		}
		if c.storeID == "" {
			c.storeID = l.Product.StoreID
		}
		if l.Product.StoreID != c.storeID {
			continue
		}
		if i := c.indexOf(l.Product.ID); i >= 0 {
			c.lines[i] = newLine(c.lines[i].Product, c.lines[i].Quantity+l.Quantity)
			continue
		}
		c.lines = append(c.lines, newLine(l.Product, l.Quantity))
	}

	if !st.LastModified.IsZero() {
		c.lastModified = st.LastModified.UTC()
	}
	return c
}

// EncodeState serializes st for a Store.
func EncodeState(st State) ([]byte, error) {
	if st.Lines == nil {
		st.Lines = []Line{}
	}
	b, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("encode cart state: %w", err)
	}
	return b, nil
}

func DecodeState(b []byte) (State, error) {
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return State{}, fmt.Errorf("decode cart state: %w", err)
	}
	return st, nil
}
