package recordstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	opInsert     = "insert"
	opGet        = "get"
	opList       = "list"
	opListPaged  = "list_paged"
	opUpdate     = "update"
	opDelete     = "delete"
	opSoftDelete = "soft_delete"
	opExists     = "exists"
)

// Repository reads and writes records of one table. Every call resolves the
// tenant, user and time once from the configured providers and keeps no
// state between calls, so a Repository is safe for concurrent use.
type Repository struct {
	dialect dialect
	table   TableDef
	exec    Executor
	codec   Codec
	tenants TenantProvider
	users   UserProvider
	clock   Clock
	log     *zap.Logger
	metrics *Metrics
}

// CreateRepository picks the dialect from the driver db was opened with.
func CreateRepository(db *sqlx.DB, options ...RepositoryOption) (*Repository, error) {
	if db == nil {
		return nil, invalidArgument("db", "database is nil")
	}

	d, err := dialectFor(db.DriverName())
	if err != nil {
		return nil, err
	}

	return newRepository(d, db, options...)
}

var (
	postgresDrivers = []string{"pgx", "pgx/v5", "postgres"}
	sqliteDrivers   = []string{"sqlite3"}
)

func dialectFor(driver string) (dialect, error) {
	switch {
	case SliceContains(postgresDrivers, driver):
		return postgresDialect{}, nil
	case SliceContains(sqliteDrivers, driver):
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

func newRepository(d dialect, db *sqlx.DB, options ...RepositoryOption) (*Repository, error) {
	opt := defaultOption()
	for _, op := range options {
		op(opt)
	}

	td := opt.tableDef.WithDefaults()
	if err := td.Validate(); err != nil {
		return nil, err
	}
	if err := d.validate(td); err != nil {
		return nil, err
	}

	exec := opt.executor
	if exec == nil {
		if db == nil {
			return nil, invalidArgument("db", "database is nil")
		}
		exec = NewExecutor(db)
	}

	repo := &Repository{
		dialect: d,
		table:   td,
		exec:    exec,
		codec:   opt.codec,
		tenants: opt.tenants,
		users:   opt.users,
		clock:   opt.clock,
		log:     opt.logger,
		metrics: opt.metrics,
	}

	if repo.codec == nil {
		repo.codec = JSONCodec{}
	}
	if repo.tenants == nil {
		repo.tenants = ContextTenant
	}
	if repo.users == nil {
		repo.users = ContextUser
	}
	if repo.clock == nil {
		repo.clock = SystemClock
	}
	if repo.log == nil {
		repo.log = zap.NewNop()
	}
	repo.log = repo.log.With(zap.String("dialect", d.name()), Table(td))

	return repo, nil
}

func (r *Repository) TableDef() TableDef {
	return r.table
}

func (r *Repository) Codec() Codec {
	return r.codec
}

// Schema returns the manager that creates and drops the backing table.
func (r *Repository) Schema() *SchemaManager {
	return &SchemaManager{dialect: r.dialect, table: r.table, exec: r.exec, log: r.log}
}

func (r *Repository) resolve(ctx context.Context) ambient {
	tenantID, hasTenant := r.tenants.TenantID(ctx)
	userID, hasUser := r.users.UserID(ctx)
	return ambient{
		tenant: optionalID(tenantID, hasTenant),
		user:   optionalID(userID, hasUser),
		now:    r.clock.Now().UTC(),
	}
}

func (r *Repository) done(op string, start time.Time, err *error) {
	r.metrics.observe(op, start, *err)
	if *err != nil {
		r.log.Warn("record store operation failed", Op(op), zap.Error(*err))
	}
}

func (r *Repository) trace(op string, amb ambient, qry string, params Params) {
	if ce := r.log.Check(zap.DebugLevel, "statement"); ce != nil {
		ce.Write(Op(op), TenantID(amb.tenant), UserID(amb.user), SQL(qry), Bindings(params))
	}
}

// Insert writes a new record stamped with the ambient user and time. An id
// that is already taken fails with ErrDuplicateKey.
func (r *Repository) Insert(ctx context.Context, req InsertRequest) (err error) {
	defer r.done(opInsert, time.Now(), &err)

	if req.ID == uuid.Nil {
		return invalidArgument("id", "id is required")
	}
	if strings.TrimSpace(req.Type) == "" {
		return invalidArgument("type", "type is required")
	}

	doc, err := r.codec.Marshal(req.Data)
	if err != nil {
		return err
	}

	amb := r.resolve(ctx)
	qry, params := r.insertQuery(req, doc, amb)
	r.trace(opInsert, amb, qry, params)

	_, err = r.exec.Execute(ctx, qry, params)
	return wrapStoreError(r.dialect, err)
}

// Get returns the record or nil when no visible record matches.
func (r *Repository) Get(ctx context.Context, req GetRequest) (rec *RawRecord, err error) {
	defer r.done(opGet, time.Now(), &err)

	amb := r.resolve(ctx)
	qry, params := r.getQuery(req, amb)
	r.trace(opGet, amb, qry, params)

	var row recordRow
	found, err := r.exec.QuerySingleOrDefault(ctx, &row, qry, params)
	if err != nil || !found {
		return nil, err
	}

	raw := row.toRecord()
	return &raw, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, opts ...GetOption) (*RawRecord, error) {
	req := GetRequest{ID: id}
	for _, opt := range opts {
		opt(&req)
	}
	return r.Get(ctx, req)
}

// GetString is Get for an id taken from user input.
func (r *Repository) GetString(ctx context.Context, id string, opts ...GetOption) (*RawRecord, error) {
	parsed, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, parsed, opts...)
}

// ParseID parses a record id, rejecting blank and malformed input with an
// *ArgumentError for the id parameter.
func ParseID(id string) (uuid.UUID, error) {
	s := strings.TrimSpace(id)
	if s == "" {
		return uuid.Nil, invalidArgument("id", "id is empty")
	}

	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, invalidArgument("id", "%q is not a valid UUID", id)
	}
	return parsed, nil
}

// List returns every visible record of req.Type in sort order. Paging
// fields are ignored.
func (r *Repository) List(ctx context.Context, req ListRequest) (recs []RawRecord, err error) {
	defer r.done(opList, time.Now(), &err)

	amb := r.resolve(ctx)
	qry, params, err := r.listQuery(req, amb)
	if err != nil {
		return nil, err
	}
	r.trace(opList, amb, qry, params)

	var rows []recordRow
	if err := r.exec.Query(ctx, &rows, qry, params); err != nil {
		return nil, err
	}

	return Map(rows, recordRow.toRecord), nil
}

// ListPaged returns one page of List together with the total count. The
// count and the page are read by two concurrent statements.
func (r *Repository) ListPaged(ctx context.Context, req ListRequest) (page Page[string], err error) {
	defer r.done(opListPaged, time.Now(), &err)

	pageNumber, pageSize, err := pageBounds(req)
	if err != nil {
		return Page[string]{}, err
	}

	amb := r.resolve(ctx)
	countQry, countParams, err := r.countQuery(req, amb)
	if err != nil {
		return Page[string]{}, err
	}
	pageQry, pageParams, err := r.pageQuery(req, amb, pageNumber, pageSize)
	if err != nil {
		return Page[string]{}, err
	}

	var total int64
	var rows []recordRow

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r.trace(opListPaged, amb, countQry, countParams)
		return r.exec.QueryScalar(gctx, &total, countQry, countParams)
	})
	g.Go(func() error {
		r.trace(opListPaged, amb, pageQry, pageParams)
		return r.exec.Query(gctx, &rows, pageQry, pageParams)
	})
	if err := g.Wait(); err != nil {
		return Page[string]{}, err
	}

	return Page[string]{
		Records:    Map(rows, recordRow.toRecord),
		TotalCount: int(total),
		PageNumber: pageNumber,
		PageSize:   pageSize,
	}, nil
}

// Update replaces the document of a record and stamps it as updated. A
// record of another type or outside the tenant is left alone, which shows
// as zero affected rows rather than an error.
func (r *Repository) Update(ctx context.Context, req UpdateRequest) (affected int64, err error) {
	defer r.done(opUpdate, time.Now(), &err)

	if req.ID == uuid.Nil {
		return 0, invalidArgument("id", "id is required")
	}
	if strings.TrimSpace(req.Type) == "" {
		return 0, invalidArgument("type", "type is required")
	}

	doc, err := r.codec.Marshal(req.Data)
	if err != nil {
		return 0, err
	}

	amb := r.resolve(ctx)
	qry, params := r.updateQuery(req, doc, amb)
	r.trace(opUpdate, amb, qry, params)

	return r.exec.Execute(ctx, qry, params)
}

// Delete removes a visible record for good, whatever its type or soft
// delete state.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (affected int64, err error) {
	defer r.done(opDelete, time.Now(), &err)

	amb := r.resolve(ctx)
	qry, params := r.deleteQuery(id, amb)
	r.trace(opDelete, amb, qry, params)

	return r.exec.Execute(ctx, qry, params)
}

// SoftDelete stamps a visible record as deleted. Deleting it again moves
// the stamp forward.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) (affected int64, err error) {
	defer r.done(opSoftDelete, time.Now(), &err)

	amb := r.resolve(ctx)
	qry, params := r.softDeleteQuery(id, amb)
	r.trace(opSoftDelete, amb, qry, params)

	return r.exec.Execute(ctx, qry, params)
}

// Exists reports whether id names a visible record that is not soft deleted.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (exists bool, err error) {
	defer r.done(opExists, time.Now(), &err)

	amb := r.resolve(ctx)
	qry, params := r.existsQuery(id, amb)
	r.trace(opExists, amb, qry, params)

	if err := r.exec.QueryScalar(ctx, &exists, qry, params); err != nil {
		return false, err
	}
	return exists, nil
}

type ExistsResult struct {
	Exists bool
	Err    error
}

// ExistsAsync runs Exists in its own goroutine. The channel yields exactly
// one result and is then closed.
func (r *Repository) ExistsAsync(ctx context.Context, id uuid.UUID) <-chan ExistsResult {
	ch := make(chan ExistsResult, 1)
	go func() {
		defer close(ch)
		exists, err := r.Exists(ctx, id)
		ch <- ExistsResult{Exists: exists, Err: err}
	}()
	return ch
}

func pageBounds(req ListRequest) (pageNumber, pageSize int, err error) {
	pageNumber, pageSize = req.PageNumber, req.PageSize
	if pageNumber < 0 {
		return 0, 0, invalidArgument("pageNumber", "must be at least 1, got %d", pageNumber)
	}
	if pageSize < 0 {
		return 0, 0, invalidArgument("pageSize", "must be at least 1, got %d", pageSize)
	}
	if pageNumber == 0 {
		pageNumber = 1
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	return pageNumber, pageSize, nil
}
