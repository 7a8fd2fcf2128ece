package recordstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// Executor runs SQL text with :name parameters. The repository never talks
// to a driver any other way, so a test or a caller with its own connection
// handling can swap it out with WithExecutor.
type Executor interface {
	// Execute runs a statement and reports the number of affected rows.
	Execute(ctx context.Context, query string, params Params) (int64, error)
	// Query scans every row into dest, a pointer to a slice.
	Query(ctx context.Context, dest any, query string, params Params) error
	// QuerySingleOrDefault scans the first row into dest. found is false,
	// with a nil error, when there is no row.
	QuerySingleOrDefault(ctx context.Context, dest any, query string, params Params) (found bool, err error)
	// QueryScalar scans the single column of the single row into dest.
	QueryScalar(ctx context.Context, dest any, query string, params Params) error
}

type sqlxExecutor struct {
	db sqlx.ExtContext
}

// NewExecutor returns the Executor used by default. db may be a *sqlx.DB or
// a *sqlx.Tx.
func NewExecutor(db sqlx.ExtContext) Executor {
	return &sqlxExecutor{db: db}
}

func (e *sqlxExecutor) bind(query string, params Params) (string, []any, error) {
	return e.db.BindNamed(query, params.Map())
}

func (e *sqlxExecutor) Execute(ctx context.Context, query string, params Params) (int64, error) {
	qry, args, err := e.bind(query, params)
	if err != nil {
		return 0, err
	}

	res, err := e.db.ExecContext(ctx, qry, args...)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (e *sqlxExecutor) Query(ctx context.Context, dest any, query string, params Params) error {
	qry, args, err := e.bind(query, params)
	if err != nil {
		return err
	}

	return sqlx.SelectContext(ctx, e.db, dest, qry, args...)
}

func (e *sqlxExecutor) QuerySingleOrDefault(ctx context.Context, dest any, query string, params Params) (bool, error) {
	qry, args, err := e.bind(query, params)
	if err != nil {
		return false, err
	}

	if err := sqlx.GetContext(ctx, e.db, dest, qry, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (e *sqlxExecutor) QueryScalar(ctx context.Context, dest any, query string, params Params) error {
	qry, args, err := e.bind(query, params)
	if err != nil {
		return err
	}

	return sqlx.GetContext(ctx, e.db, dest, qry, args...)
}

// recordRow is the scan target of every record query. Columns are aliased
// to these names whatever the table calls them.
type recordRow struct {
	ID        uuid.UUID     `db:"id"`
	Type      string        `db:"type"`
	TenantID  uuid.NullUUID `db:"tenant_id"`
	Data      string        `db:"data"`
	CreatedAt time.Time     `db:"created_at"`
	CreatedBy uuid.NullUUID `db:"created_by"`
	UpdatedAt null.Time     `db:"updated_at"`
	UpdatedBy uuid.NullUUID `db:"updated_by"`
	DeletedAt null.Time     `db:"deleted_at"`
	DeletedBy uuid.NullUUID `db:"deleted_by"`
}

func (r recordRow) toRecord() RawRecord {
	return RawRecord{
		ID:        r.ID,
		TenantID:  nullUUIDPtr(r.TenantID),
		Type:      r.Type,
		Data:      r.Data,
		CreatedAt: r.CreatedAt,
		CreatedBy: nullUUIDPtr(r.CreatedBy),
		UpdatedAt: r.UpdatedAt.Ptr(),
		UpdatedBy: nullUUIDPtr(r.UpdatedBy),
		DeletedAt: r.DeletedAt.Ptr(),
		DeletedBy: nullUUIDPtr(r.DeletedBy),
	}
}

func nullUUIDPtr(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
}

// ColumnInfo describes one physical column of the backing table.
type ColumnInfo struct {
	Name    string `db:"name" json:"name"`
	Type    string `db:"type" json:"type"`
	NotNull bool   `db:"not_null" json:"notNull"`
}
