package recordstore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeSortClause(t *testing.T) {
	td := DefaultTableDef()

	clause, err := MakeSortClause(td, SortByUpdated, Descending)
	require.NoError(t, err)
	assert.Equal(t, `"updated_at" DESC NULLS LAST, "id" ASC`, clause)

	clause, err = MakeSortClause(td, SortByDeleted, Ascending)
	require.NoError(t, err)
	assert.Equal(t, `"deleted_at" ASC NULLS LAST, "id" ASC`, clause)

	clause, err = MakeSortClause(td, SortByCreated, Ascending)
	require.NoError(t, err)
	assert.Equal(t, `"created_at" ASC, "id" ASC`, clause)

	_, err = MakeSortClause(td, SortBy(-1), Ascending)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = MakeSortClause(td, SortByCreated, SortOrder(2))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestParseSort(t *testing.T) {
	for in, want := range map[string]SortBy{"": SortByCreated, "Created": SortByCreated, " updated ": SortByUpdated, "deleted": SortByDeleted} {
		got, err := ParseSortBy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseSortBy("name")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	for in, want := range map[string]SortOrder{"": Ascending, "ASC": Ascending, "ascending": Ascending, "desc": Descending, "Descending": Descending} {
		got, err := ParseSortOrder(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err = ParseSortOrder("up")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFullTableName(t *testing.T) {
	assert.Equal(t, `"records"`, fullTableName(DefaultTableDef()))
	assert.Equal(t, `"app"."vehicles"`, fullTableName(TableDef{Schema: "app", Name: "vehicles"}))
}

func TestWrapStoreError(t *testing.T) {
	pgDup := &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	err := wrapStoreError(postgresDialect{}, fmt.Errorf("exec: %w", pgDup))
	assert.True(t, IsDuplicateKey(err))
	var pgErr *pgconn.PgError
	assert.True(t, errors.As(err, &pgErr))

	other := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}
	assert.False(t, IsDuplicateKey(wrapStoreError(postgresDialect{}, other)))

	liteDup := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}
	assert.True(t, IsDuplicateKey(wrapStoreError(sqliteDialect{}, liteDup)))

	notNull := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintNotNull}
	assert.False(t, IsDuplicateKey(wrapStoreError(sqliteDialect{}, notNull)))

	assert.NoError(t, wrapStoreError(sqliteDialect{}, nil))
}

func TestDialectFor(t *testing.T) {
	for _, driver := range []string{"pgx", "pgx/v5", "postgres"} {
		d, err := dialectFor(driver)
		require.NoError(t, err)
		assert.Equal(t, "postgres", d.name())
	}

	d, err := dialectFor("sqlite3")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.name())

	_, err = dialectFor("godror")
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}
