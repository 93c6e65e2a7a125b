package domain

import "time"

const (
	PaymentCash = "cash"
	PaymentCard = "card"

	SaleCompleted = "completed"
)

// Sale is a completed checkout. Amounts are minor units of the store currency.
type Sale struct {
	ID            string     `json:"id"`
	StoreID       string     `json:"storeId"`
	CashierID     string     `json:"cashierId"`
	TotalCents    int64      `json:"totalCents"`
	TaxCents      int64      `json:"taxCents"`
	PaymentMethod string     `json:"paymentMethod"`
	Status        string     `json:"status"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	Items         []SaleItem `json:"items,omitempty"`
}

type SaleItem struct {
	ID             string    `json:"id"`
	SaleID         string    `json:"saleId"`
	ProductID      string    `json:"productId"`
	ProductName    string    `json:"productName,omitempty"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	SubtotalCents  int64     `json:"subtotalCents"`
	CreatedAt      time.Time `json:"createdAt"`
}
