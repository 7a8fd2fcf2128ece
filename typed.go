package recordstore

import (
	"context"

	"github.com/google/uuid"
)

// Get reads one record and decodes its document into T with the codec of r.
func Get[T any](ctx context.Context, r *Repository, req GetRequest) (*Record[T], error) {
	raw, err := r.Get(ctx, req)
	if err != nil || raw == nil {
		return nil, err
	}

	rec, err := MapRecord[T](r.codec, *raw)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func GetByID[T any](ctx context.Context, r *Repository, id uuid.UUID, opts ...GetOption) (*Record[T], error) {
	req := GetRequest{ID: id}
	for _, opt := range opts {
		opt(&req)
	}
	return Get[T](ctx, r, req)
}

func GetString[T any](ctx context.Context, r *Repository, id string, opts ...GetOption) (*Record[T], error) {
	parsed, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return GetByID[T](ctx, r, parsed, opts...)
}

func List[T any](ctx context.Context, r *Repository, req ListRequest) ([]Record[T], error) {
	raws, err := r.List(ctx, req)
	if err != nil {
		return nil, err
	}
	return mapRecords[T](r.codec, raws)
}

func ListPaged[T any](ctx context.Context, r *Repository, req ListRequest) (Page[T], error) {
	raw, err := r.ListPaged(ctx, req)
	if err != nil {
		return Page[T]{}, err
	}

	recs, err := mapRecords[T](r.codec, raw.Records)
	if err != nil {
		return Page[T]{}, err
	}

	return Page[T]{
		Records:    recs,
		TotalCount: raw.TotalCount,
		PageNumber: raw.PageNumber,
		PageSize:   raw.PageSize,
	}, nil
}
