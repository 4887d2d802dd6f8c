package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
)

func TestOrderStore_UpsertAndGet(t *testing.T) {
	store := NewOrderStore()
	ctx := context.Background()

	signed := time.Date(2025, 1, 23, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Upsert(ctx, &domain.ExecutiveOrder{
		ID:          "eo-14179",
		OrderNumber: "14179",
		Title:       "Removing Barriers to American Leadership in Artificial Intelligence",
		DateSigned:  &signed,
	}))

	got, err := store.Get(ctx, "eo-14179")
	require.NoError(t, err)
	assert.Equal(t, "14179", got.OrderNumber)
	require.NotNil(t, got.DateSigned)
	assert.True(t, got.DateSigned.Equal(signed))
	assert.False(t, got.CreatedAt.IsZero())
}

func TestOrderStore_UpsertPreservesCreatedAt(t *testing.T) {
	store := NewOrderStore()
	ctx := context.Background()

	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Upsert(ctx, &domain.ExecutiveOrder{ID: "eo-1", CreatedAt: created}))
	require.NoError(t, store.Upsert(ctx, &domain.ExecutiveOrder{ID: "eo-1", Title: "updated"}))

	got, err := store.Get(ctx, "eo-1")
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Title)
	assert.True(t, got.CreatedAt.Equal(created))
}

func TestOrderStore_GetMissing(t *testing.T) {
	store := NewOrderStore()

	_, err := store.Get(context.Background(), "eo-0")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVoteStore_Upsert(t *testing.T) {
	store := NewVoteStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, &domain.Vote{
		ID:     "ocd-vote_123",
		BillID: "ocd-bill_abc",
		Motion: "Third Reading",
		Result: "pass",
	}))
	require.NoError(t, store.Upsert(ctx, &domain.Vote{
		ID:     "ocd-vote_123",
		BillID: "ocd-bill_abc",
		Motion: "Third Reading",
		Result: "fail",
	}))

	assert.Equal(t, 1, store.Len())
	got, err := store.Get("ocd-vote_123")
	require.NoError(t, err)
	assert.Equal(t, "fail", got.Result)
}

func TestVoteStore_RejectsMissingID(t *testing.T) {
	store := NewVoteStore()

	assert.ErrorIs(t, store.Upsert(context.Background(), &domain.Vote{}), domain.ErrMissingID)
}

func TestLegislatorStore_Upsert(t *testing.T) {
	store := NewLegislatorStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, &domain.Legislator{
		ID:    "ocd-person_456",
		Name:  "Jane Smith",
		Party: "Independent",
		State: "vt",
	}))

	got, err := store.Get("ocd-person_456")
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", got.Name)
	assert.Equal(t, 1, store.Len())
}
