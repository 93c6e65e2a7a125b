package terminal

import (
	"time"

	"nimbus-pos/internal/cart"
	"nimbus-pos/internal/format"

	"github.com/shopspring/decimal"
)

type LineView struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku,omitempty"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type Display struct {
	Subtotal  string `json:"subtotal"`
	TaxAmount string `json:"taxAmount"`
	Total     string `json:"total"`
}

// View is the cart as the POS screen renders it. Amounts are exact; Display
// holds them rounded and formatted in the store currency.
type View struct {
	SessionID    string          `json:"sessionId"`
	StoreID      string          `json:"storeId"`
	Currency     string          `json:"currency"`
	Lines        []LineView      `json:"lines"`
	ItemCount    int             `json:"itemCount"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	TaxRate      decimal.Decimal `json:"taxRate"`
	TaxAmount    decimal.Decimal `json:"taxAmount"`
	Total        decimal.Decimal `json:"total"`
	Display      Display         `json:"display"`
	IsPending    bool            `json:"isPending"`
	LastModified time.Time       `json:"lastModified"`
	Outcome      cart.Outcome    `json:"outcome"`
}

func newView(session, currency string, c *cart.Cart, outcome cart.Outcome) View {
	lines := c.Lines()
	out := View{
		SessionID:    session,
		StoreID:      c.BoundStore(),
		Currency:     currency,
		Lines:        make([]LineView, 0, len(lines)),
		ItemCount:    c.ItemCount(),
		Subtotal:     c.Subtotal(),
		TaxRate:      c.TaxRate(),
		TaxAmount:    c.TaxAmount(),
		Total:        c.Total(),
		IsPending:    c.Pending(),
		LastModified: c.LastModified(),
		Outcome:      outcome,
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, LineView{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			SKU:       l.Product.SKU,
			ImageURL:  l.Product.ImageURL,
			UnitPrice: l.Product.Price,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal,
		})
	}
	out.Display = Display{
		Subtotal:  format.FormatCurrency(out.Subtotal, currency),
		TaxAmount: format.FormatCurrency(out.TaxAmount, currency),
		Total:     format.FormatCurrency(out.Total, currency),
	}
	return out
}
