package domain

import "time"

// Product prices are stored in minor units of the owning store's currency.
type Product struct {
	ID             string    `json:"id"`
	StoreID        string    `json:"storeId"`
	CategoryID     *string   `json:"categoryId,omitempty"`
	Name           string    `json:"name"`
	SKU            string    `json:"sku"`
	Barcode        string    `json:"barcode,omitempty"`
	Description    string    `json:"description,omitempty"`
	PriceCents     int64     `json:"priceCents"`
	CostPriceCents *int64    `json:"costPriceCents,omitempty"`
	CurrentStock   int       `json:"currentStock"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
