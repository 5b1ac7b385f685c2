package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyOrder        = errors.New("order has no lines")
	ErrInvalidReference  = errors.New("malformed id")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidRole       = errors.New("invalid role")
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateSKU      = errors.New("product with this SKU already exists")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicateRequest  = errors.New("duplicate request")

	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidToken       = errors.New("could not validate credentials")
	ErrInactiveUser       = errors.New("inactive user")
	ErrPermissionDenied   = errors.New("insufficient permissions")
)

// InsufficientStockError names the product that lacked stock and carries
// the available vs requested figures. errors.Is(err, ErrInsufficientStock)
// matches it.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s. Available: %d, Requested: %d",
		e.ProductName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
