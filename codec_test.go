package recordstore

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONCodec_Marshal(t *testing.T) {
	var c JSONCodec

	doc, err := c.Marshal(car{Make: "Toyota", Year: 2020})
	require.NoError(t, err)
	assert.JSONEq(t, `{"make":"Toyota","model":"","year":2020}`, doc)

	for _, v := range []any{`{"a":1}`, []byte(`{"a":1}`), json.RawMessage(`{"a":1}`)} {
		doc, err := c.Marshal(v)
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, doc, "%T is stored as given", v)
	}

	_, err = c.Marshal(`{"a":`)
	assert.Error(t, err)

	_, err = c.Marshal(make(chan int))
	assert.Error(t, err)
}

func TestJSONCodec_Unmarshal(t *testing.T) {
	var c JSONCodec

	var got car
	require.NoError(t, c.Unmarshal(`{"make":"Mazda","year":2001}`, &got))
	assert.Equal(t, car{Make: "Mazda", Year: 2001}, got)

	var s string
	require.NoError(t, c.Unmarshal(`{"x":true}`, &s))
	assert.Equal(t, `{"x":true}`, s)

	var raw json.RawMessage
	require.NoError(t, c.Unmarshal(`[1,2]`, &raw))
	assert.Equal(t, json.RawMessage(`[1,2]`), raw)

	assert.Error(t, c.Unmarshal(`not json`, &got))
}

func TestMapRecord(t *testing.T) {
	tenant := uuid.New()
	deleted := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	raw := RawRecord{
		ID:        uuid.New(),
		TenantID:  &tenant,
		Type:      "car",
		Data:      `{"make":"Kia"}`,
		CreatedAt: deleted.Add(-time.Hour),
		DeletedAt: &deleted,
	}

	rec, err := MapRecord[car](JSONCodec{}, raw)
	require.NoError(t, err)
	assert.Equal(t, raw.ID, rec.ID)
	assert.Equal(t, raw.TenantID, rec.TenantID)
	assert.Equal(t, raw.CreatedAt, rec.CreatedAt)
	assert.Equal(t, raw.DeletedAt, rec.DeletedAt)
	assert.Equal(t, "Kia", rec.Data.Make)

	raw.Data = `[`
	_, err = MapRecord[car](JSONCodec{}, raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), raw.ID.String())
}

func TestParseDocument(t *testing.T) {
	v, err := ParseDocument(RawRecord{Data: `{"make":"Kia","tags":["a","b"]}`})
	require.NoError(t, err)
	assert.Equal(t, "Kia", string(v.GetStringBytes("make")))
	assert.Len(t, v.GetArray("tags"), 2)

	_, err = ParseDocument(RawRecord{Data: `{`})
	assert.Error(t, err)
}
