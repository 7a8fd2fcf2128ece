package recordstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableDef_WithDefaults(t *testing.T) {
	td := TableDef{Columns: Columns{Data: "payload"}}.WithDefaults()

	assert.Equal(t, DefaultTableName, td.Name)
	assert.Equal(t, "payload", td.Columns.Data)
	assert.Equal(t, "id", td.Columns.ID)
	assert.Equal(t, "deleted_by", td.Columns.DeletedBy)
	assert.Equal(t, DefaultTableDef(), TableDef{}.WithDefaults())
}

func TestTableDef_Validate(t *testing.T) {
	require.NoError(t, DefaultTableDef().Validate())
	require.NoError(t, TableDef{Schema: "app", Name: "vehicles"}.WithDefaults().Validate())

	tests := []struct {
		name  string
		td    TableDef
		param string
	}{
		{"injected table", TableDef{Name: `records"; DROP TABLE x; --`}, "table"},
		{"bad schema", TableDef{Schema: "app.x", Name: "records"}, "schema"},
		{"leading digit", TableDef{Name: "1records"}, "table"},
		{"too long", TableDef{Name: strings.Repeat("r", 64)}, "table"},
		{"bad column", TableDef{Name: "records", Columns: Columns{Data: "da ta"}}, "column"},
		{"duplicate column", TableDef{Name: "records", Columns: Columns{UpdatedAt: "created_at"}}, "column"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.td.WithDefaults().Validate()
			var argErr *ArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, tt.param, argErr.Param)
		})
	}
}

func TestTableDef_IndexName(t *testing.T) {
	assert.Equal(t, "idx_records_data", DefaultTableDef().indexName("data"))

	long := TableDef{Name: strings.Repeat("t", 60)}
	assert.Len(t, long.indexName("tenant_id_type"), maxIdentifierLength)
}
