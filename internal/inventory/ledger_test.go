package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	levels map[int64]Level
	nextID int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{levels: make(map[int64]Level)}
}

func (s *memoryStore) GetLevelForUpdate(ctx context.Context, productID int64) (Level, error) {
	if lvl, ok := s.levels[productID]; ok {
		return lvl, nil
	}
	return Level{}, ErrLevelNotFound
}

func (s *memoryStore) UpsertLevel(ctx context.Context, level Level) error {
	if level.ID == 0 {
		s.nextID++
		level.ID = s.nextID
	}
	s.levels[level.ProductID] = level
	return nil
}

func TestApplyDeltaFoldsOverPostings(t *testing.T) {
	store := newMemoryStore()
	ctx := context.Background()

	lvl, err := ApplyDelta(ctx, store, 1, 5, CreateIfMissing)
	require.NoError(t, err)
	require.EqualValues(t, 5, lvl.Quantity)

	lvl, err = ApplyDelta(ctx, store, 1, -2, RequireExisting)
	require.NoError(t, err)
	require.EqualValues(t, 3, lvl.Quantity)

	lvl, err = ApplyDelta(ctx, store, 1, 10, CreateIfMissing)
	require.NoError(t, err)
	require.EqualValues(t, 13, lvl.Quantity)

	// Quantity is a pure fold over posting history: 5 - 2 + 10.
	require.EqualValues(t, 13, store.levels[1].Quantity)
}

func TestApplyDeltaAllowsNegativeQuantity(t *testing.T) {
	store := newMemoryStore()
	ctx := context.Background()

	_, err := ApplyDelta(ctx, store, 7, 1, CreateIfMissing)
	require.NoError(t, err)

	lvl, err := ApplyDelta(ctx, store, 7, -4, RequireExisting)
	require.NoError(t, err)
	require.EqualValues(t, -3, lvl.Quantity)
}

func TestApplyDeltaRequireExistingRejectsMissingLevel(t *testing.T) {
	store := newMemoryStore()

	_, err := ApplyDelta(context.Background(), store, 42, -1, RequireExisting)
	require.ErrorIs(t, err, ErrLevelNotFound)
	require.Empty(t, store.levels)
}

func TestApplyDeltaRejectsZeroDelta(t *testing.T) {
	store := newMemoryStore()

	_, err := ApplyDelta(context.Background(), store, 1, 0, CreateIfMissing)
	require.ErrorIs(t, err, ErrZeroDelta)
}
