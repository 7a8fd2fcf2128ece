package recordstore

import "go.uber.org/zap"

type RepositoryOption func(o *option)

type option struct {
	tableDef TableDef
	codec    Codec
	tenants  TenantProvider
	users    UserProvider
	clock    Clock
	logger   *zap.Logger
	metrics  *Metrics
	executor Executor
}

func defaultOption() *option {
	return &option{
		tableDef: DefaultTableDef(),
		codec:    JSONCodec{},
		tenants:  ContextTenant,
		users:    ContextUser,
		clock:    SystemClock,
		logger:   zap.NewNop(),
	}
}

// WithTableDef maps the repository onto another table or other column
// names. Empty names keep their defaults.
func WithTableDef(td TableDef) RepositoryOption {
	return func(o *option) {
		o.tableDef = td
	}
}

// WithTable keeps the default column names but stores records in table.
func WithTable(name string) RepositoryOption {
	return func(o *option) {
		o.tableDef.Name = name
	}
}

func WithCodec(codec Codec) RepositoryOption {
	return func(o *option) {
		o.codec = codec
	}
}

func WithTenantProvider(p TenantProvider) RepositoryOption {
	return func(o *option) {
		o.tenants = p
	}
}

func WithUserProvider(p UserProvider) RepositoryOption {
	return func(o *option) {
		o.users = p
	}
}

func WithClock(c Clock) RepositoryOption {
	return func(o *option) {
		o.clock = c
	}
}

func WithLogger(l *zap.Logger) RepositoryOption {
	return func(o *option) {
		o.logger = l
	}
}

func WithMetrics(m *Metrics) RepositoryOption {
	return func(o *option) {
		o.metrics = m
	}
}

// WithExecutor replaces the sqlx backed executor. The *sqlx.DB given to
// the constructor is then only used to pick the dialect.
func WithExecutor(e Executor) RepositoryOption {
	return func(o *option) {
		o.executor = e
	}
}
