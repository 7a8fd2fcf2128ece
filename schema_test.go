package recordstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaManager(t *testing.T) {
	repo, _ := newTestRepository(t)
	schema := repo.Schema()
	ctx := context.Background()

	exists, err := schema.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, schema.Init(ctx), "init is idempotent")

	cols, err := schema.Columns(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultColumns().List(), Map(cols, func(c ColumnInfo) string { return c.Name }))
	assert.Equal(t, ColumnInfo{Name: "id", Type: "TEXT", NotNull: true}, cols[0])
	assert.Equal(t, ColumnInfo{Name: "updated_at", Type: "TIMESTAMP", NotNull: false}, cols[6])

	missing, err := schema.MissingColumns(ctx)
	require.NoError(t, err)
	assert.Empty(t, missing)

	require.NoError(t, schema.Drop(ctx))
	require.NoError(t, schema.Drop(ctx), "dropping a missing table is fine")

	exists, err = schema.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	cols, err = schema.Columns(ctx)
	require.NoError(t, err)
	assert.Empty(t, cols)
}

func TestSchemaManager_MissingColumns(t *testing.T) {
	repo, _ := newTestRepository(t)

	renamed, err := CreateSqliteRepository(testDB(repo), WithTableDef(TableDef{
		Columns: Columns{Data: "payload", DeletedBy: "removed_by"},
	}))
	require.NoError(t, err)

	exists, err := renamed.Schema().Exists(context.Background())
	require.NoError(t, err)
	assert.True(t, exists, "same physical table")

	missing, err := renamed.Schema().MissingColumns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"payload", "removed_by"}, missing)
}
