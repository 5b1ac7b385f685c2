package port

import "context"

type CacheRepository interface {
	// SetIdempotency sets a key for duplicate-request detection, returns
	// false if the key was already present.
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// SetAlertGuard marks a low-stock alert as sent for a product,
	// returns false if one was already sent within the guard window.
	SetAlertGuard(ctx context.Context, productID string) (bool, error)
}
