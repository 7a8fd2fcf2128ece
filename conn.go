package recordstore

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// PGConfig locates a PostgreSQL database. DSN wins when set; otherwise the
// connection string is assembled from the remaining fields.
type PGConfig struct {
	DSN      string
	Host     string
	Port     string
	Database string
	User     string
	Password string
	// MaxConns and MinConns size the pool. Zero keeps the pgxpool defaults.
	MaxConns int32
	MinConns int32
}

func (c PGConfig) connString() string {
	if c.DSN != "" {
		return c.DSN
	}

	port := c.Port
	if port == "" {
		port = "5432"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, port),
		Path:     "/" + c.Database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// ConnectPostgresql opens a pgx pool and exposes it as a *sqlx.DB bound to
// the pgx driver. Closing the returned DB closes the pool.
func ConnectPostgresql(ctx context.Context, config PGConfig) (*sqlx.DB, error) {
	cfg, err := pgxpool.ParseConfig(config.connString())
	if err != nil {
		return nil, fmt.Errorf("parse pgxpool config: %w", err)
	}

	if config.MaxConns > 0 {
		cfg.MaxConns = config.MaxConns
	}
	if config.MinConns > 0 {
		cfg.MinConns = config.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("new pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgxpool ping: %w", err)
	}

	return sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx"), nil
}

var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

// ConnectSqlite opens or creates the SQLite database at path. SQLite takes
// one writer at a time, so the pool is held to a single connection.
func ConnectSqlite(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	for _, pragma := range sqlitePragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	return db, nil
}
