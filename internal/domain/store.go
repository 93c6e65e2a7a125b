package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Store is a retail location. TaxRate is a percentage (8.25 means 8.25%).
type Store struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	LogoURL   string          `json:"logoUrl,omitempty"`
	Currency  string          `json:"currency"`
	TaxRate   decimal.Decimal `json:"taxRate"`
	OwnerID   string          `json:"ownerId"`
	CreatedAt time.Time       `json:"createdAt"`
}

// TaxFraction converts the percentage into the fraction used by cart arithmetic.
func (s Store) TaxFraction() decimal.Decimal {
	return s.TaxRate.Div(hundred)
}
