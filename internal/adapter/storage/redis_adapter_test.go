package storage

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetIdempotency(t *testing.T) {
	client, mock := redismock.NewClientMock()
	adapter := NewRedisAdapter(client)
	ctx := context.Background()

	mock.ExpectSetNX("order:req:req-1", 1, 24*time.Hour).SetVal(true)
	ok, err := adapter.SetIdempotency(ctx, "req-1")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectSetNX("order:req:req-1", 1, 24*time.Hour).SetVal(false)
	ok, err = adapter.SetIdempotency(ctx, "req-1")
	require.NoError(t, err)
	assert.False(t, ok, "second claim of the same key must lose")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetAlertGuard(t *testing.T) {
	client, mock := redismock.NewClientMock()
	adapter := NewRedisAdapter(client)
	ctx := context.Background()

	mock.ExpectSetNX("lowstock:prod-1", 1, 12*time.Hour).SetVal(true)
	ok, err := adapter.SetAlertGuard(ctx, "prod-1")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectSetNX("lowstock:prod-1", 1, 12*time.Hour).SetVal(false)
	ok, err = adapter.SetAlertGuard(ctx, "prod-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}
