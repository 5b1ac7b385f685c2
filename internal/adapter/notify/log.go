package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes notifications to the log. Used when neither SMTP
// nor a broker is configured.
type LogNotifier struct{}

func NewLogNotifier() LogNotifier { return LogNotifier{} }

func (LogNotifier) SendOrderConfirmation(ctx context.Context, orderNumber, customerEmail string, totalAmount float64) error {
	slog.Info("order confirmation",
		"order", orderNumber,
		"to", customerEmail,
		"total", totalAmount,
	)
	return nil
}

func (LogNotifier) SendLowStockAlert(ctx context.Context, productName string, currentStock int, adminEmail string) error {
	slog.Info("low stock alert",
		"product", productName,
		"stock", currentStock,
		"to", adminEmail,
	)
	return nil
}
