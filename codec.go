package recordstore

import (
	"encoding/json"
	"fmt"

	"github.com/valyala/fastjson"
)

// Codec turns payloads into the text stored in the document column and back.
type Codec interface {
	Marshal(v any) (string, error)
	Unmarshal(doc string, v any) error
}

// JSONCodec is the default codec. Payloads that already are documents
// (string, []byte, json.RawMessage) are stored as given once they parse as
// JSON.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) (string, error) {
	var doc string
	switch val := v.(type) {
	case string:
		doc = val
	case []byte:
		doc = string(val)
	case json.RawMessage:
		doc = string(val)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("marshal document: %w", err)
		}
		return string(b), nil
	}

	if err := fastjson.Validate(doc); err != nil {
		return "", fmt.Errorf("invalid document: %w", err)
	}
	return doc, nil
}

func (JSONCodec) Unmarshal(doc string, v any) error {
	switch dst := v.(type) {
	case *string:
		*dst = doc
		return nil
	case *json.RawMessage:
		*dst = json.RawMessage(doc)
		return nil
	}

	if err := json.Unmarshal([]byte(doc), v); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}
	return nil
}

// MapRecord decodes the stored document of raw into T using codec.
func MapRecord[T any](codec Codec, raw RawRecord) (Record[T], error) {
	var data T
	if err := codec.Unmarshal(raw.Data, &data); err != nil {
		return Record[T]{}, fmt.Errorf("record %s: %w", raw.ID, err)
	}

	return Record[T]{
		ID:        raw.ID,
		TenantID:  raw.TenantID,
		Type:      raw.Type,
		Data:      data,
		CreatedAt: raw.CreatedAt,
		CreatedBy: raw.CreatedBy,
		UpdatedAt: raw.UpdatedAt,
		UpdatedBy: raw.UpdatedBy,
		DeletedAt: raw.DeletedAt,
		DeletedBy: raw.DeletedBy,
	}, nil
}

func mapRecords[T any](codec Codec, raws []RawRecord) ([]Record[T], error) {
	out := make([]Record[T], 0, len(raws))
	for _, raw := range raws {
		rec, err := MapRecord[T](codec, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// ParseDocument gives schema-less access to the stored document of raw.
func ParseDocument(raw RawRecord) (*fastjson.Value, error) {
	v, err := fastjson.Parse(raw.Data)
	if err != nil {
		return nil, fmt.Errorf("record %s: parse document: %w", raw.ID, err)
	}
	return v, nil
}
