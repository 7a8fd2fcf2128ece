package recordstore

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// predicate accumulates WHERE clauses and the parameters they reference.
// Clauses are joined with AND in the order they were added.
type predicate struct {
	cols    Columns
	clauses []string
	params  Params
}

func newPredicate(td TableDef) *predicate {
	return &predicate{cols: td.Columns}
}

// tenant limits rows to global records plus those of tenantID. A nil
// tenantID leaves only global records visible.
func (p *predicate) tenant(tenantID any) *predicate {
	col := quoteIdent(p.cols.TenantID)
	p.clauses = append(p.clauses, fmt.Sprintf("(%s IS NULL OR %s = :%s)", col, col, paramTenantID))
	p.params.Set(paramTenantID, tenantID)
	return p
}

func (p *predicate) id(id uuid.UUID) *predicate {
	p.clauses = append(p.clauses, fmt.Sprintf("%s = :%s", quoteIdent(p.cols.ID), paramID))
	p.params.Set(paramID, id)
	return p
}

func (p *predicate) requiredType(typ string) *predicate {
	p.clauses = append(p.clauses, fmt.Sprintf("%s = :%s", quoteIdent(p.cols.Type), paramType))
	p.params.Set(paramType, typ)
	return p
}

// optionalType matches any type when typ is empty.
func (p *predicate) optionalType(typ string) *predicate {
	p.clauses = append(p.clauses,
		fmt.Sprintf("(CAST(:%s AS TEXT) IS NULL OR %s = :%s)", paramType, quoteIdent(p.cols.Type), paramType))
	if typ == "" {
		p.params.Set(paramType, nil)
	} else {
		p.params.Set(paramType, typ)
	}
	return p
}

func (p *predicate) softDelete(includeDeleted bool) *predicate {
	p.clauses = append(p.clauses,
		fmt.Sprintf("(%s IS NULL OR :%s = TRUE)", quoteIdent(p.cols.DeletedAt), paramIncludeDeleted))
	p.params.Set(paramIncludeDeleted, includeDeleted)
	return p
}

// filter appends a caller written clause. Its parameters are merged into
// the bag and may not shadow any name bound so far.
func (p *predicate) filter(f *Filter) error {
	if f == nil {
		return nil
	}
	if err := f.validate(); err != nil {
		return err
	}

	merged, err := p.params.Merge(f.Params)
	if err != nil {
		return err
	}

	p.params = merged
	p.clauses = append(p.clauses, "("+f.Query+")")
	return nil
}

func (p *predicate) where() string {
	if len(p.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(p.clauses, " AND ")
}
