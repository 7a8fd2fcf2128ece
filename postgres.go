package recordstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

type postgresDialect struct{}

// CreatePostgresRepository builds a repository over a database opened with
// the pgx driver, see ConnectPostgresql.
func CreatePostgresRepository(db *sqlx.DB, options ...RepositoryOption) (*Repository, error) {
	return newRepository(postgresDialect{}, db, options...)
}

func (postgresDialect) name() string {
	return "postgres"
}

func (postgresDialect) documentParam(param string) string {
	return fmt.Sprintf("CAST(:%s AS JSONB)", param)
}

func (postgresDialect) createTableSQL(td TableDef) string {
	c := td.Columns
	cols := []string{
		quoteIdent(c.ID) + " UUID NOT NULL PRIMARY KEY",
		quoteIdent(c.Type) + " TEXT NOT NULL",
		quoteIdent(c.TenantID) + " UUID NULL",
		quoteIdent(c.Data) + " JSONB NOT NULL",
		quoteIdent(c.CreatedAt) + " TIMESTAMPTZ NOT NULL",
		quoteIdent(c.CreatedBy) + " UUID NULL",
		quoteIdent(c.UpdatedAt) + " TIMESTAMPTZ NULL",
		quoteIdent(c.UpdatedBy) + " UUID NULL",
		quoteIdent(c.DeletedAt) + " TIMESTAMPTZ NULL",
		quoteIdent(c.DeletedBy) + " UUID NULL",
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", fullTableName(td), strings.Join(cols, ", "))
}

func (postgresDialect) createIndexSQL(td TableDef) []string {
	c := td.Columns
	table := fullTableName(td)
	return []string{
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s, %s)",
			quoteIdent(td.indexName("tenant_id_id")), table, quoteIdent(c.TenantID), quoteIdent(c.ID)),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s, %s)",
			quoteIdent(td.indexName("tenant_id_type")), table, quoteIdent(c.TenantID), quoteIdent(c.Type)),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s USING GIN (%s)",
			quoteIdent(td.indexName("data")), table, quoteIdent(c.Data)),
	}
}

func (postgresDialect) tableExistsSQL(td TableDef) (string, Params) {
	qry := "SELECT EXISTS (SELECT 1 FROM information_schema.tables" +
		" WHERE table_schema = COALESCE(CAST(:schema AS TEXT), current_schema()) AND table_name = :table)"
	return qry, schemaParams(td)
}

func (postgresDialect) columnsSQL(td TableDef) (string, Params) {
	qry := "SELECT column_name AS name, data_type AS type, is_nullable = 'NO' AS not_null" +
		" FROM information_schema.columns" +
		" WHERE table_schema = COALESCE(CAST(:schema AS TEXT), current_schema()) AND table_name = :table" +
		" ORDER BY ordinal_position"
	return qry, schemaParams(td)
}

func (postgresDialect) isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (postgresDialect) validate(TableDef) error {
	return nil
}

func schemaParams(td TableDef) Params {
	var p Params
	if td.Schema == "" {
		p.Set("schema", nil)
	} else {
		p.Set("schema", td.Schema)
	}
	p.Set("table", td.Name)
	return p
}
