package recordstore

import (
	"time"

	"github.com/google/uuid"
)

// Record is a stored document together with its tenancy and audit columns.
// Data holds the payload already mapped to the caller's type.
type Record[T any] struct {
	ID        uuid.UUID  `json:"id"`
	TenantID  *uuid.UUID `json:"tenantId,omitempty"`
	Type      string     `json:"type"`
	Data      T          `json:"data"`
	CreatedAt time.Time  `json:"createdAt"`
	CreatedBy *uuid.UUID `json:"createdBy,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	UpdatedBy *uuid.UUID `json:"updatedBy,omitempty"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	DeletedBy *uuid.UUID `json:"deletedBy,omitempty"`
}

// RawRecord carries the payload as the serialized document read from the store.
type RawRecord = Record[string]

// IsDeleted reports whether the record has been soft deleted.
func (r Record[T]) IsDeleted() bool {
	return r.DeletedAt != nil
}

// IsGlobal reports whether the record is visible to every tenant.
func (r Record[T]) IsGlobal() bool {
	return r.TenantID == nil
}

type InsertRequest struct {
	ID   uuid.UUID
	Type string
	Data any
	// Global stores the record without a tenant, making it visible under
	// every tenant context. The zero value scopes the record to the
	// ambient tenant.
	Global bool
}

type UpdateRequest struct {
	ID   uuid.UUID
	Type string
	Data any
}

type GetRequest struct {
	ID uuid.UUID
	// Type restricts the match to records of this type when non-empty.
	Type           string
	IncludeDeleted bool
}

// GetOption adjusts a GetRequest built from a bare id.
type GetOption func(r *GetRequest)

func OfType(typ string) GetOption {
	return func(r *GetRequest) {
		r.Type = typ
	}
}

func IncludingDeleted() GetOption {
	return func(r *GetRequest) {
		r.IncludeDeleted = true
	}
}

type ListRequest struct {
	Type           string
	Filter         *Filter
	IncludeDeleted bool
	SortBy         SortBy
	SortOrder      SortOrder
	// PageNumber and PageSize are only read by ListPaged. Zero selects
	// the defaults (page 1, DefaultPageSize).
	PageNumber int
	PageSize   int
}

const DefaultPageSize = 10

type SortBy int

const (
	SortByCreated SortBy = iota
	SortByUpdated
	SortByDeleted
)

func (s SortBy) String() string {
	switch s {
	case SortByCreated:
		return "created"
	case SortByUpdated:
		return "updated"
	case SortByDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

func (o SortOrder) String() string {
	switch o {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return "unknown"
	}
}

// Page is one window of a paged listing.
type Page[T any] struct {
	Records    []Record[T] `json:"records"`
	TotalCount int         `json:"totalCount"`
	PageNumber int         `json:"pageNumber"`
	PageSize   int         `json:"pageSize"`
}

func (p Page[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

func (p Page[T]) IsFirstPage() bool {
	return p.PageNumber == 1
}

func (p Page[T]) IsLastPage() bool {
	return p.PageNumber >= p.TotalPages()
}

// StartIndex is the 1-based position of the first record of the page.
func (p Page[T]) StartIndex() int {
	return (p.PageNumber-1)*p.PageSize + 1
}

// EndIndex is the 1-based position of the last record of the page. It is
// StartIndex-1 when the page is empty.
func (p Page[T]) EndIndex() int {
	return min(p.StartIndex()+p.PageSize-1, p.TotalCount)
}
