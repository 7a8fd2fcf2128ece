package recordstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// sqliteDialect stores ids and documents as TEXT. JSON operators such as
// data->>'make' need SQLite 3.38 or later, which go-sqlite3 bundles.
type sqliteDialect struct{}

// CreateSqliteRepository builds a repository over a database opened with
// the sqlite3 driver, see ConnectSqlite.
func CreateSqliteRepository(db *sqlx.DB, options ...RepositoryOption) (*Repository, error) {
	return newRepository(sqliteDialect{}, db, options...)
}

func (sqliteDialect) name() string {
	return "sqlite"
}

func (sqliteDialect) documentParam(param string) string {
	return ":" + param
}

func (sqliteDialect) createTableSQL(td TableDef) string {
	c := td.Columns
	cols := []string{
		quoteIdent(c.ID) + " TEXT NOT NULL PRIMARY KEY",
		quoteIdent(c.Type) + " TEXT NOT NULL",
		quoteIdent(c.TenantID) + " TEXT NULL",
		quoteIdent(c.Data) + " TEXT NOT NULL",
		quoteIdent(c.CreatedAt) + " TIMESTAMP NOT NULL",
		quoteIdent(c.CreatedBy) + " TEXT NULL",
		quoteIdent(c.UpdatedAt) + " TIMESTAMP NULL",
		quoteIdent(c.UpdatedBy) + " TEXT NULL",
		quoteIdent(c.DeletedAt) + " TIMESTAMP NULL",
		quoteIdent(c.DeletedBy) + " TEXT NULL",
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", fullTableName(td), strings.Join(cols, ", "))
}

func (sqliteDialect) createIndexSQL(td TableDef) []string {
	c := td.Columns
	table := fullTableName(td)
	return []string{
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s, %s)",
			quoteIdent(td.indexName("tenant_id_id")), table, quoteIdent(c.TenantID), quoteIdent(c.ID)),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s, %s)",
			quoteIdent(td.indexName("tenant_id_type")), table, quoteIdent(c.TenantID), quoteIdent(c.Type)),
	}
}

func (sqliteDialect) tableExistsSQL(td TableDef) (string, Params) {
	var p Params
	p.Set("table", td.Name)
	return "SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = :table)", p
}

func (sqliteDialect) columnsSQL(td TableDef) (string, Params) {
	var p Params
	p.Set("table", td.Name)
	return `SELECT name AS name, type AS type, "notnull" = 1 AS not_null FROM pragma_table_info(:table) ORDER BY cid`, p
}

func (sqliteDialect) isDuplicateKey(err error) bool {
	var sqErr sqlite3.Error
	if !errors.As(err, &sqErr) {
		return false
	}
	return sqErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || sqErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// SQLite databases have no schemas to qualify a table with.
func (sqliteDialect) validate(td TableDef) error {
	if td.Schema != "" {
		return invalidArgument("schema", "sqlite tables cannot be schema qualified, got %q", td.Schema)
	}
	return nil
}
