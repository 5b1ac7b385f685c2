package domain

import "time"

// DefaultLowStockThreshold is applied when a product is created without
// an explicit threshold.
const DefaultLowStockThreshold = 10

type Product struct {
	ID                string
	Name              string
	Description       string
	Price             float64
	StockQuantity     int
	Category          string
	SKU               string
	ImageURL          string
	LowStockThreshold int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// LowOnStock reports whether the product is at or below its restock threshold.
func (p *Product) LowOnStock() bool {
	return p.StockQuantity <= p.LowStockThreshold
}
