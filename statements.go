package recordstore

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	paramData      = "data"
	paramCreatedAt = "createdAt"
	paramCreatedBy = "createdBy"
	paramUpdatedAt = "updatedAt"
	paramUpdatedBy = "updatedBy"
	paramDeletedAt = "deletedAt"
	paramDeletedBy = "deletedBy"
)

func (r *Repository) insertQuery(req InsertRequest, doc string, amb ambient) (string, Params) {
	c := r.table.Columns
	cols := Map([]string{c.ID, c.Type, c.TenantID, c.Data, c.CreatedAt, c.CreatedBy}, quoteIdent)
	values := []string{
		":" + paramID,
		":" + paramType,
		":" + paramTenantID,
		r.dialect.documentParam(paramData),
		":" + paramCreatedAt,
		":" + paramCreatedBy,
	}

	var tenant any
	if !req.Global {
		tenant = amb.tenant
	}

	var p Params
	p.Set(paramID, req.ID)
	p.Set(paramType, req.Type)
	p.Set(paramTenantID, tenant)
	p.Set(paramData, doc)
	p.Set(paramCreatedAt, amb.now)
	p.Set(paramCreatedBy, amb.user)

	qry := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		fullTableName(r.table), strings.Join(cols, ", "), strings.Join(values, ", "))
	return qry, p
}

func (r *Repository) getQuery(req GetRequest, amb ambient) (string, Params) {
	pred := newPredicate(r.table).
		tenant(amb.tenant).
		id(req.ID).
		optionalType(req.Type).
		softDelete(req.IncludeDeleted)

	qry := fmt.Sprintf("SELECT %s FROM %s%s", selectColumns(r.table), fullTableName(r.table), pred.where())
	return qry, pred.params
}

func (r *Repository) listPredicate(req ListRequest, amb ambient) (*predicate, error) {
	if strings.TrimSpace(req.Type) == "" {
		return nil, invalidArgument("type", "type is required")
	}

	pred := newPredicate(r.table).
		tenant(amb.tenant).
		requiredType(req.Type).
		softDelete(req.IncludeDeleted)

	if err := pred.filter(req.Filter); err != nil {
		return nil, err
	}
	return pred, nil
}

func (r *Repository) listQuery(req ListRequest, amb ambient) (string, Params, error) {
	pred, err := r.listPredicate(req, amb)
	if err != nil {
		return "", Params{}, err
	}

	order, err := MakeSortClause(r.table, req.SortBy, req.SortOrder)
	if err != nil {
		return "", Params{}, err
	}

	qry := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s",
		selectColumns(r.table), fullTableName(r.table), pred.where(), order)
	return qry, pred.params, nil
}

func (r *Repository) pageQuery(req ListRequest, amb ambient, pageNumber, pageSize int) (string, Params, error) {
	qry, params, err := r.listQuery(req, amb)
	if err != nil {
		return "", Params{}, err
	}

	params.Set(paramPageSize, pageSize)
	params.Set(paramOffset, (pageNumber-1)*pageSize)
	return qry + fmt.Sprintf(" LIMIT :%s OFFSET :%s", paramPageSize, paramOffset), params, nil
}

func (r *Repository) countQuery(req ListRequest, amb ambient) (string, Params, error) {
	pred, err := r.listPredicate(req, amb)
	if err != nil {
		return "", Params{}, err
	}

	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", fullTableName(r.table), pred.where()), pred.params, nil
}

func (r *Repository) updateQuery(req UpdateRequest, doc string, amb ambient) (string, Params) {
	c := r.table.Columns
	pred := newPredicate(r.table).
		id(req.ID).
		requiredType(req.Type).
		tenant(amb.tenant)

	pred.params.Set(paramData, doc)
	pred.params.Set(paramUpdatedAt, amb.now)
	pred.params.Set(paramUpdatedBy, amb.user)

	qry := fmt.Sprintf("UPDATE %s SET %s = %s, %s = :%s, %s = :%s%s",
		fullTableName(r.table),
		quoteIdent(c.Data), r.dialect.documentParam(paramData),
		quoteIdent(c.UpdatedAt), paramUpdatedAt,
		quoteIdent(c.UpdatedBy), paramUpdatedBy,
		pred.where())
	return qry, pred.params
}

func (r *Repository) deleteQuery(id uuid.UUID, amb ambient) (string, Params) {
	pred := newPredicate(r.table).id(id).tenant(amb.tenant)
	return fmt.Sprintf("DELETE FROM %s%s", fullTableName(r.table), pred.where()), pred.params
}

func (r *Repository) softDeleteQuery(id uuid.UUID, amb ambient) (string, Params) {
	c := r.table.Columns
	pred := newPredicate(r.table).id(id).tenant(amb.tenant)
	pred.params.Set(paramDeletedAt, amb.now)
	pred.params.Set(paramDeletedBy, amb.user)

	qry := fmt.Sprintf("UPDATE %s SET %s = :%s, %s = :%s%s",
		fullTableName(r.table),
		quoteIdent(c.DeletedAt), paramDeletedAt,
		quoteIdent(c.DeletedBy), paramDeletedBy,
		pred.where())
	return qry, pred.params
}

func (r *Repository) existsQuery(id uuid.UUID, amb ambient) (string, Params) {
	pred := newPredicate(r.table).id(id).tenant(amb.tenant).softDelete(false)
	return fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s%s)", fullTableName(r.table), pred.where()), pred.params
}
