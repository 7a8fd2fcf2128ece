package recordstore

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	goldenTenant = uuid.MustParse("6f1d4c2e-8a3b-4f5e-9c7d-0b1a2c3d4e5f")
	goldenUser   = uuid.MustParse("0c9e8d7f-6a5b-4c3d-8e2f-1a0b9c8d7e6f")
	goldenRecord = uuid.MustParse("3b2a1c0d-9e8f-4a7b-8c6d-5e4f3a2b1c0d")
)

func goldenAmbient() ambient {
	return ambient{tenant: goldenTenant, user: goldenUser, now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func render(qry string, p Params) string {
	return qry + "\n-- params: " + strings.Join(p.Names(), ", ")
}

func assertGolden(t *testing.T, name string, stmts ...string) {
	t.Helper()
	g := goldie.New(t)
	g.Assert(t, name, []byte(strings.Join(stmts, "\n")+"\n"))
}

func TestStatements_Get(t *testing.T) {
	repo := &Repository{dialect: postgresDialect{}, table: DefaultTableDef()}

	qry, params := repo.getQuery(GetRequest{ID: goldenRecord, Type: "car"}, goldenAmbient())
	assertGolden(t, "postgres_get", render(qry, params))

	v, _ := params.Get(paramType)
	assert.Equal(t, "car", v)

	_, params = repo.getQuery(GetRequest{ID: goldenRecord}, goldenAmbient())
	v, ok := params.Get(paramType)
	assert.True(t, ok)
	assert.Nil(t, v, "an empty type binds NULL so any type matches")
}

func TestStatements_List(t *testing.T) {
	repo := &Repository{dialect: postgresDialect{}, table: DefaultTableDef()}

	qry, params, err := repo.listQuery(ListRequest{
		Type:      "car",
		Filter:    NewFilter("data->>'make' = :make", map[string]any{"make": "Toyota"}),
		SortBy:    SortByDeleted,
		SortOrder: Descending,
	}, goldenAmbient())
	require.NoError(t, err)
	assertGolden(t, "postgres_list", render(qry, params))
}

func TestStatements_Page(t *testing.T) {
	repo := &Repository{dialect: postgresDialect{}, table: DefaultTableDef()}
	req := ListRequest{Type: "car"}

	countQry, countParams, err := repo.countQuery(req, goldenAmbient())
	require.NoError(t, err)
	pageQry, pageParams, err := repo.pageQuery(req, goldenAmbient(), 3, 10)
	require.NoError(t, err)

	assertGolden(t, "postgres_page", render(countQry, countParams), render(pageQry, pageParams))

	offset, _ := pageParams.Get(paramOffset)
	assert.Equal(t, 20, offset)
	size, _ := pageParams.Get(paramPageSize)
	assert.Equal(t, 10, size)
}

func writeStatements(repo *Repository) []string {
	amb := goldenAmbient()
	doc := `{"make":"Toyota"}`

	insert, insertParams := repo.insertQuery(InsertRequest{ID: goldenRecord, Type: "car"}, doc, amb)
	update, updateParams := repo.updateQuery(UpdateRequest{ID: goldenRecord, Type: "car"}, doc, amb)
	soft, softParams := repo.softDeleteQuery(goldenRecord, amb)
	del, delParams := repo.deleteQuery(goldenRecord, amb)
	exists, existsParams := repo.existsQuery(goldenRecord, amb)

	return []string{
		render(insert, insertParams),
		render(update, updateParams),
		render(soft, softParams),
		render(del, delParams),
		render(exists, existsParams),
	}
}

func TestStatements_Writes(t *testing.T) {
	assertGolden(t, "postgres_writes",
		writeStatements(&Repository{dialect: postgresDialect{}, table: DefaultTableDef()})...)
	assertGolden(t, "sqlite_writes",
		writeStatements(&Repository{dialect: sqliteDialect{}, table: DefaultTableDef()})...)
}

func TestStatements_InsertGlobal(t *testing.T) {
	repo := &Repository{dialect: postgresDialect{}, table: DefaultTableDef()}

	_, params := repo.insertQuery(InsertRequest{ID: goldenRecord, Type: "car", Global: true}, "{}", goldenAmbient())
	tenant, ok := params.Get(paramTenantID)
	assert.True(t, ok)
	assert.Nil(t, tenant)

	user, _ := params.Get(paramCreatedBy)
	assert.Equal(t, goldenUser, user, "global records still record who created them")
}

func TestStatements_Schema(t *testing.T) {
	vehicles := TableDef{Schema: "app", Name: "vehicles", Columns: Columns{Data: "payload"}}.WithDefaults()
	pg := &SchemaManager{dialect: postgresDialect{}, table: vehicles}
	assertGolden(t, "postgres_schema", append(pg.initStatements(), pg.dropStatement())...)

	lite := &SchemaManager{dialect: sqliteDialect{}, table: DefaultTableDef()}
	assertGolden(t, "sqlite_schema", append(lite.initStatements(), lite.dropStatement())...)
}

func TestStatements_CustomColumns(t *testing.T) {
	td := TableDef{
		Name:    "docs",
		Columns: Columns{ID: "doc_id", TenantID: "org_id", DeletedAt: "removed_at"},
	}.WithDefaults()
	repo := &Repository{dialect: postgresDialect{}, table: td}

	qry, _ := repo.existsQuery(goldenRecord, goldenAmbient())
	assert.Equal(t,
		`SELECT EXISTS (SELECT 1 FROM "docs" WHERE "doc_id" = :id AND ("org_id" IS NULL OR "org_id" = :tenantId) AND ("removed_at" IS NULL OR :includeDeleted = TRUE))`,
		qry)

	qry, _ = repo.getQuery(GetRequest{ID: goldenRecord}, goldenAmbient())
	assert.Contains(t, qry, `"doc_id" AS id`)
	assert.Contains(t, qry, `"org_id" AS tenant_id`)
	assert.Contains(t, qry, `"removed_at" AS deleted_at`)
}
