// Tests for fruit CRUD on the SQLite table.
package sqlite

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/fruits/pkg/types"
)

func TestFruitTable_CreateThenGet(t *testing.T) {
	ctx := context.Background()
	b, _ := setupBackend(t, nil)
	tbl := fruitsTable(t, b)

	fruit := types.NewFruit("mango", "orange", "on")
	id, err := tbl.Set(ctx, "", fruit)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, id, fruit.FruitID)
	assert.False(t, fruit.CreatedAt.IsZero())

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())

	got, err := tbl.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.FruitID)
	assert.Equal(t, "mango", got.Name)
	assert.Equal(t, "orange", got.Color)
	assert.True(t, got.ReadyToEat)
	assert.True(t, got.CreatedAt.Equal(fruit.CreatedAt))
}

func TestFruitTable_EmptyFieldsAccepted(t *testing.T) {
	ctx := context.Background()
	b, _ := setupBackend(t, nil)
	tbl := fruitsTable(t, b)

	id, err := tbl.Set(ctx, "", types.NewFruit("", "", ""))
	require.NoError(t, err)

	got, err := tbl.Get(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got.Name)
	assert.Empty(t, got.Color)
	assert.False(t, got.ReadyToEat)
}

func TestFruitTable_UpdateReplacesMutableFields(t *testing.T) {
	ctx := context.Background()
	b, _ := setupBackend(t, nil)
	tbl := fruitsTable(t, b)

	id, err := tbl.Set(ctx, "", types.NewFruit("mango", "orange", "on"))
	require.NoError(t, err)
	before, err := tbl.Get(ctx, id)
	require.NoError(t, err)

	gotID, err := tbl.Set(ctx, id, types.NewFruit("green mango", "green", "off"))
	require.NoError(t, err)
	assert.Equal(t, id, gotID)

	after, err := tbl.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, after.FruitID)
	assert.Equal(t, "green mango", after.Name)
	assert.Equal(t, "green", after.Color)
	assert.False(t, after.ReadyToEat)
	assert.True(t, after.CreatedAt.Equal(before.CreatedAt))
	assert.False(t, after.UpdatedAt.Before(before.UpdatedAt))
}

func TestFruitTable_MissingAndMalformedIDs(t *testing.T) {
	ctx := context.Background()
	b, _ := setupBackend(t, nil)
	tbl := fruitsTable(t, b)
	missing := uuid.Must(uuid.NewV7()).String()

	tests := []struct {
		name    string
		op      func() error
		wantErr error
	}{
		{"get missing", func() error { _, err := tbl.Get(ctx, missing); return err }, types.ErrNotFound},
		{"get empty id", func() error { _, err := tbl.Get(ctx, ""); return err }, types.ErrInvalidID},
		{"get malformed id", func() error { _, err := tbl.Get(ctx, "not-a-uuid"); return err }, types.ErrInvalidID},
		{"update missing", func() error { _, err := tbl.Set(ctx, missing, types.NewFruit("a", "b", "")); return err }, types.ErrNotFound},
		{"update malformed", func() error { _, err := tbl.Set(ctx, "zzz", types.NewFruit("a", "b", "")); return err }, types.ErrInvalidID},
		{"set nil", func() error { _, err := tbl.Set(ctx, "", nil); return err }, types.ErrInvalidData},
		{"delete missing", func() error { return tbl.Delete(ctx, missing) }, types.ErrNotFound},
		{"delete malformed", func() error { return tbl.Delete(ctx, "123") }, types.ErrInvalidID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.op(), tt.wantErr)
		})
	}

	all, err := tbl.Fetch(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all, "update of a missing id must not create a record")
}

func TestFruitTable_DeleteThenGet(t *testing.T) {
	ctx := context.Background()
	b, _ := setupBackend(t, nil)
	tbl := fruitsTable(t, b)

	id, err := tbl.Set(ctx, "", types.NewFruit("kiwi", "brown", "on"))
	require.NoError(t, err)
	require.NoError(t, tbl.Delete(ctx, id))

	_, err = tbl.Get(ctx, id)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestFruitTable_FetchCountsAfterCreatesAndDeletes(t *testing.T) {
	ctx := context.Background()
	b, _ := setupBackend(t, nil)
	tbl := fruitsTable(t, b)

	const creates, deletes = 7, 3
	var ids []string
	for i := 0; i < creates; i++ {
		id, err := tbl.Set(ctx, "", types.NewFruit("fruit", "any", ""))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	for _, id := range ids[:deletes] {
		require.NoError(t, tbl.Delete(ctx, id))
	}

	all, err := tbl.Fetch(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, creates-deletes)
	assert.Equal(t, ids[deletes], all[0].FruitID, "fetch returns oldest first")
}

func TestFruitTable_FetchFilter(t *testing.T) {
	ctx := context.Background()
	b, _ := setupBackend(t, nil)
	tbl := fruitsTable(t, b)

	_, err := tbl.Import(ctx, []*types.Fruit{
		types.NewFruit("apple", "red", "on"),
		types.NewFruit("strawberry", "red", ""),
		types.NewFruit("banana", "yellow", "on"),
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		filter  map[string]any
		want    []string
		wantErr error
	}{
		{"no filter", nil, []string{"apple", "strawberry", "banana"}, nil},
		{"by color", map[string]any{types.FilterColor: "red"}, []string{"apple", "strawberry"}, nil},
		{"by ready", map[string]any{types.FilterReadyToEat: true}, []string{"apple", "banana"}, nil},
		{"by color and ready", map[string]any{types.FilterColor: "red", types.FilterReadyToEat: false}, []string{"strawberry"}, nil},
		{"by name", map[string]any{types.FilterName: "banana"}, []string{"banana"}, nil},
		{"no match", map[string]any{types.FilterColor: "blue"}, []string{}, nil},
		{"bad type", map[string]any{types.FilterReadyToEat: "on"}, nil, types.ErrInvalidFilter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tbl.Fetch(ctx, tt.filter)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			names := []string{}
			for _, f := range got {
				names = append(names, f.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestFruitTable_ClearAndImport(t *testing.T) {
	ctx := context.Background()
	b, dir := setupBackend(t, nil)
	tbl := fruitsTable(t, b)

	_, err := tbl.Set(ctx, "", types.NewFruit("old", "grey", ""))
	require.NoError(t, err)

	require.NoError(t, tbl.Clear(ctx))
	all, err := tbl.Fetch(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, jsonlLines(t, dir))

	seeds := []*types.Fruit{
		types.NewFruit("apple", "red", "on"),
		types.NewFruit("grape", "purple", ""),
	}
	ids, err := tbl.Import(ctx, seeds)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, ids[0], seeds[0].FruitID)
	assert.NotEqual(t, ids[0], ids[1])
	assert.Len(t, jsonlLines(t, dir), 2)

	_, err = tbl.Import(ctx, []*types.Fruit{nil})
	assert.ErrorIs(t, err, types.ErrInvalidData)
}
