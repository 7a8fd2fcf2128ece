package recordstore

import (
	"fmt"
	"regexp"
)

const DefaultTableName = "records"

// TableDef names the backing table and its ten columns. Several logical
// tables can share one physical shape by giving each its own TableDef.
type TableDef struct {
	Schema  string  `yaml:"schema"`
	Name    string  `yaml:"name"`
	Columns Columns `yaml:"columns"`
}

type Columns struct {
	ID        string `yaml:"id"`
	Type      string `yaml:"type"`
	TenantID  string `yaml:"tenant_id"`
	Data      string `yaml:"data"`
	CreatedAt string `yaml:"created_at"`
	CreatedBy string `yaml:"created_by"`
	UpdatedAt string `yaml:"updated_at"`
	UpdatedBy string `yaml:"updated_by"`
	DeletedAt string `yaml:"deleted_at"`
	DeletedBy string `yaml:"deleted_by"`
}

func DefaultColumns() Columns {
	return Columns{
		ID:        "id",
		Type:      "type",
		TenantID:  "tenant_id",
		Data:      "data",
		CreatedAt: "created_at",
		CreatedBy: "created_by",
		UpdatedAt: "updated_at",
		UpdatedBy: "updated_by",
		DeletedAt: "deleted_at",
		DeletedBy: "deleted_by",
	}
}

func DefaultTableDef() TableDef {
	return TableDef{Name: DefaultTableName, Columns: DefaultColumns()}
}

// WithDefaults returns a copy where every empty name is replaced by its default.
func (td TableDef) WithDefaults() TableDef {
	def := DefaultColumns()
	fill := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}

	fill(&td.Name, DefaultTableName)
	fill(&td.Columns.ID, def.ID)
	fill(&td.Columns.Type, def.Type)
	fill(&td.Columns.TenantID, def.TenantID)
	fill(&td.Columns.Data, def.Data)
	fill(&td.Columns.CreatedAt, def.CreatedAt)
	fill(&td.Columns.CreatedBy, def.CreatedBy)
	fill(&td.Columns.UpdatedAt, def.UpdatedAt)
	fill(&td.Columns.UpdatedBy, def.UpdatedBy)
	fill(&td.Columns.DeletedAt, def.DeletedAt)
	fill(&td.Columns.DeletedBy, def.DeletedBy)
	return td
}

// List returns the columns in table order.
func (c Columns) List() []string {
	return []string{
		c.ID, c.Type, c.TenantID, c.Data,
		c.CreatedAt, c.CreatedBy,
		c.UpdatedAt, c.UpdatedBy,
		c.DeletedAt, c.DeletedBy,
	}
}

var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgreSQL truncates longer identifiers.
const maxIdentifierLength = 63

func validateIdentifier(param, name string) error {
	if name == "" {
		return invalidArgument(param, "identifier is empty")
	}
	if len(name) > maxIdentifierLength {
		return invalidArgument(param, "identifier %q is longer than %d characters", name, maxIdentifierLength)
	}
	if !validIdentifier.MatchString(name) {
		return invalidArgument(param, "identifier %q may only contain letters, digits and underscores", name)
	}
	return nil
}

// Validate allowlists every configured identifier. Only names that pass
// are ever written into SQL text.
func (td TableDef) Validate() error {
	if td.Schema != "" {
		if err := validateIdentifier("schema", td.Schema); err != nil {
			return err
		}
	}
	if err := validateIdentifier("table", td.Name); err != nil {
		return err
	}

	seen := make(map[string]bool)
	for _, col := range td.Columns.List() {
		if err := validateIdentifier("column", col); err != nil {
			return err
		}
		if seen[col] {
			return invalidArgument("column", "column %q is configured more than once", col)
		}
		seen[col] = true
	}

	return nil
}

// indexName derives an index name that stays unique per table.
func (td TableDef) indexName(suffix string) string {
	name := fmt.Sprintf("idx_%s_%s", td.Name, suffix)
	if len(name) > maxIdentifierLength {
		name = name[:maxIdentifierLength]
	}
	return name
}
