package recordstore

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportCSV_Positional(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := tenantCtx(uuid.New())
	id := uuid.New()

	in := id.String() + `,car,"{""make"":""Toyota""}"` + "\n" +
		`,car,"{""make"":""Mazda""}",true` + "\n"

	n, err := ImportCSV(ctx, repo, strings.NewReader(in), false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rec, err := GetByID[car](ctx, repo, id)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Toyota", rec.Data.Make)
	assert.False(t, rec.IsGlobal())

	recs, err := List[car](tenantCtx(uuid.New()), repo, ListRequest{Type: "car"})
	require.NoError(t, err)
	require.Len(t, recs, 1, "only the global row is visible to another tenant")
	assert.Equal(t, "Mazda", recs[0].Data.Make)
}

func TestImportCSV_Header(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := tenantCtx(uuid.New())

	in := "Data,Type\n" +
		`"{""make"":""Kia""}",car` + "\n" +
		`"{""make"":""Audi""}",car` + "\n"

	n, err := ImportCSV(ctx, repo, strings.NewReader(in), true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	recs, err := List[car](ctx, repo, ListRequest{Type: "car"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Kia", "Audi"}, Map(recs, func(r Record[car]) string { return r.Data.Make }))
}

func TestImportCSV_Errors(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := tenantCtx(uuid.New())

	_, err := ImportCSV(ctx, repo, strings.NewReader("type,data,colour\n"), true)
	assert.ErrorContains(t, err, "unknown column")

	_, err = ImportCSV(ctx, repo, strings.NewReader("id,type\n"), true)
	assert.ErrorContains(t, err, `"data" is required`)

	in := `,car,{}` + "\n" +
		`,car,[1` + "\n" +
		`,car,{}` + "\n"
	n, err := ImportCSV(ctx, repo, strings.NewReader(in), false)
	assert.Equal(t, 1, n, "rows before the failing one stay written")
	assert.ErrorContains(t, err, "csv row 2")

	_, err = ImportCSV(ctx, repo, strings.NewReader(`not-an-id,car,{}`+"\n"), false)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ImportCSV(ctx, repo, strings.NewReader(`,car,{},maybe`+"\n"), false)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
