package port

import "context"

// Notifier is the best-effort outbound messaging boundary. Failures are
// logged by callers and never fail the triggering operation.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, orderNumber, customerEmail string, totalAmount float64) error
	SendLowStockAlert(ctx context.Context, productName string, currentStock int, adminEmail string) error
}

// Digester is a deterministic one-way transformation of a password used
// for storage and comparison instead of the plaintext.
type Digester interface {
	Digest(plaintext string) string
}
