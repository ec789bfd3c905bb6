package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/fruits/pkg/types"
)

func newTable(t *testing.T) (*Backend, types.Table) {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Attach(context.Background(), types.Config{Backend: types.BackendMemory}))
	t.Cleanup(func() { b.Detach() })
	tbl, err := b.GetTable(types.TableFruits)
	require.NoError(t, err)
	return b, tbl
}

func TestLifecycle(t *testing.T) {
	b := NewBackend()
	_, err := b.GetTable(types.TableFruits)
	assert.ErrorIs(t, err, types.ErrCupboardDetached)

	ctx := context.Background()
	require.NoError(t, b.Attach(ctx, types.Config{Backend: types.BackendMemory}))
	assert.ErrorIs(t, b.Attach(ctx, types.Config{Backend: types.BackendMemory}), types.ErrAlreadyAttached)

	_, err = b.GetTable("vegetables")
	assert.ErrorIs(t, err, types.ErrTableNotFound)

	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach())
}

func TestCRUD(t *testing.T) {
	ctx := context.Background()
	_, tbl := newTable(t)

	fruit := types.NewFruit("mango", "orange", "on")
	id, err := tbl.Set(ctx, "", fruit)
	require.NoError(t, err)
	assert.Equal(t, id, fruit.FruitID)

	got, err := tbl.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "mango", got.Name)
	assert.True(t, got.ReadyToEat)

	// Returned values are copies.
	got.Name = "changed"
	again, err := tbl.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "mango", again.Name)

	_, err = tbl.Set(ctx, id, types.NewFruit("mango", "orange", "off"))
	require.NoError(t, err)
	updated, err := tbl.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, updated.FruitID)
	assert.False(t, updated.ReadyToEat)
	assert.True(t, updated.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, tbl.Delete(ctx, id))
	_, err = tbl.Get(ctx, id)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestMissingAndMalformedIDs(t *testing.T) {
	ctx := context.Background()
	_, tbl := newTable(t)
	missing := uuid.NewString()

	_, err := tbl.Get(ctx, missing)
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = tbl.Get(ctx, "nope")
	assert.ErrorIs(t, err, types.ErrInvalidID)
	_, err = tbl.Set(ctx, missing, types.NewFruit("a", "b", ""))
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, tbl.Delete(ctx, missing), types.ErrNotFound)
	assert.ErrorIs(t, tbl.Delete(ctx, ""), types.ErrInvalidID)
}

func TestFetchOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	_, tbl := newTable(t)

	ids, err := tbl.Import(ctx, []*types.Fruit{
		types.NewFruit("apple", "red", "on"),
		types.NewFruit("banana", "yellow", ""),
		types.NewFruit("cherry", "red", "on"),
	})
	require.NoError(t, err)
	require.Len(t, ids, 3)
	require.NoError(t, tbl.Delete(ctx, ids[1]))

	all, err := tbl.Fetch(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "apple", all[0].Name)
	assert.Equal(t, "cherry", all[1].Name)

	red, err := tbl.Fetch(ctx, map[string]any{types.FilterColor: "red", types.FilterReadyToEat: true})
	require.NoError(t, err)
	assert.Len(t, red, 2)

	_, err = tbl.Fetch(ctx, map[string]any{types.FilterColor: 1})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)

	require.NoError(t, tbl.Clear(ctx))
	all, err = tbl.Fetch(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}
