package recordstore

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// dialect captures what differs between the engines the repository runs on.
// SQL text is otherwise shared.
type dialect interface {
	name() string
	// documentParam renders the placeholder for a value written to the
	// document column.
	documentParam(param string) string
	createTableSQL(td TableDef) string
	createIndexSQL(td TableDef) []string
	tableExistsSQL(td TableDef) (string, Params)
	// columnsSQL lists the physical columns as rows of name, type, not_null.
	columnsSQL(td TableDef) (string, Params)
	isDuplicateKey(err error) bool
	validate(td TableDef) error
}

func quoteIdent(name string) string {
	return pq.QuoteIdentifier(name)
}

func fullTableName(td TableDef) string {
	if td.Schema != "" {
		return quoteIdent(td.Schema) + "." + quoteIdent(td.Name)
	}
	return quoteIdent(td.Name)
}

// wrapStoreError tags duplicate key failures with ErrDuplicateKey. The
// driver error stays in the chain so callers can still inspect it.
func wrapStoreError(d dialect, err error) error {
	if err == nil {
		return nil
	}
	if d.isDuplicateKey(err) {
		return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	}
	return err
}

func sortColumn(td TableDef, by SortBy) (string, error) {
	switch by {
	case SortByCreated:
		return td.Columns.CreatedAt, nil
	case SortByUpdated:
		return td.Columns.UpdatedAt, nil
	case SortByDeleted:
		return td.Columns.DeletedAt, nil
	default:
		return "", invalidArgument("sortBy", "unknown sort key %d", int(by))
	}
}

func sortDirection(order SortOrder) (string, error) {
	switch order {
	case Ascending:
		return "ASC", nil
	case Descending:
		return "DESC", nil
	default:
		return "", invalidArgument("sortOrder", "unknown sort order %d", int(order))
	}
}

// MakeSortClause renders the ORDER BY list for a listing. The id column
// breaks ties so equal timestamps still come back in a stable order.
func MakeSortClause(td TableDef, by SortBy, order SortOrder) (string, error) {
	col, err := sortColumn(td, by)
	if err != nil {
		return "", err
	}

	dir, err := sortDirection(order)
	if err != nil {
		return "", err
	}

	// updated and deleted stamps are nullable; unset ones sort last in
	// either direction on every dialect.
	if by != SortByCreated {
		dir += " NULLS LAST"
	}

	return fmt.Sprintf("%s %s, %s ASC", quoteIdent(col), dir, quoteIdent(td.Columns.ID)), nil
}

// ParseSortBy accepts the names printed by SortBy.String.
func ParseSortBy(s string) (SortBy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "created":
		return SortByCreated, nil
	case "updated":
		return SortByUpdated, nil
	case "deleted":
		return SortByDeleted, nil
	default:
		return 0, invalidArgument("sortBy", "unknown sort key %q", s)
	}
}

// ParseSortOrder accepts asc/desc and their long forms.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return 0, invalidArgument("sortOrder", "unknown sort order %q", s)
	}
}

func selectColumns(td TableDef) string {
	c := td.Columns
	aliased := []struct{ col, alias string }{
		{c.ID, "id"},
		{c.Type, "type"},
		{c.TenantID, "tenant_id"},
		{c.Data, "data"},
		{c.CreatedAt, "created_at"},
		{c.CreatedBy, "created_by"},
		{c.UpdatedAt, "updated_at"},
		{c.UpdatedBy, "updated_by"},
		{c.DeletedAt, "deleted_at"},
		{c.DeletedBy, "deleted_by"},
	}

	return strings.Join(Map(aliased, func(a struct{ col, alias string }) string {
		return fmt.Sprintf("%s AS %s", quoteIdent(a.col), a.alias)
	}), ", ")
}
