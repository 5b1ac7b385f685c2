package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is a member of the status set. No
// transition graph is enforced beyond membership.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderLine is a single line item. Name and unit price are snapshotted
// from the product at order time.
type OrderLine struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   float64
	Total       float64
}

type Order struct {
	ID            string
	OrderNumber   string
	CustomerName  string
	CustomerEmail string
	Lines         []OrderLine
	TotalAmount   float64
	Status        OrderStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Restockable reports whether deleting the order should return its line
// quantities to product stock. Shipped, delivered and cancelled orders
// delete without restocking.
func (o *Order) Restockable() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// QuantityByProduct aggregates line quantities per product, preserving
// first-seen order. Lines may repeat a product within one order.
func (o *Order) QuantityByProduct() ([]string, map[string]int) {
	ids := make([]string, 0, len(o.Lines))
	quantities := make(map[string]int, len(o.Lines))
	for _, line := range o.Lines {
		if _, seen := quantities[line.ProductID]; !seen {
			ids = append(ids, line.ProductID)
		}
		quantities[line.ProductID] += line.Quantity
	}
	return ids, quantities
}
