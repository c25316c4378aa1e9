package clickhouse

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-risk-engine/internal/domain"
	"solana-risk-engine/internal/storage"
)

func newInvocation(action string, ts int64) *domain.Invocation {
	return &domain.Invocation{
		ID:         uuid.NewString(),
		Action:     action,
		Params:     []byte(`{"walletAddress":"9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM","timeRange":"24h"}`),
		ParamsHash: "def456",
		Status:     domain.InvocationOK,
		DurationMs: 7,
		Timestamp:  ts,
	}
}

func TestInvocationStore_InsertAndGetByID(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewInvocationStore(conn)

	inv := newInvocation("address_activity", 1700000000000)
	require.NoError(t, store.Insert(ctx, inv))

	retrieved, err := store.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv, retrieved)
}

func TestInvocationStore_InsertDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewInvocationStore(conn)

	inv := newInvocation("news", 1700000000000)
	require.NoError(t, store.Insert(ctx, inv))
	assert.ErrorIs(t, store.Insert(ctx, inv), storage.ErrDuplicateKey)
}

func TestInvocationStore_GetByID_NotFound(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := NewInvocationStore(conn).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestInvocationStore_ListRecentAndCount(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewInvocationStore(conn)

	older := newInvocation("news", 1700000000000)
	newer := newInvocation("risk_analysis", 1700000005000)
	require.NoError(t, store.Insert(ctx, older))
	require.NoError(t, store.Insert(ctx, newer))

	recent, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, newer.ID, recent[0].ID)
	assert.Equal(t, older.ID, recent[1].ID)

	counts, err := store.CountByAction(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["news"])
	assert.Equal(t, int64(1), counts["risk_analysis"])
}
