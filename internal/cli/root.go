package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/likearthian/recordstore"
	"github.com/likearthian/recordstore/internal/config"
	"github.com/likearthian/recordstore/internal/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	EnvFile    string
	Driver     string
	DSN        string
	Table      string
	Tenant     string
	User       string

	config *config.Config
	log    *zap.Logger
}

// NewRootCommand creates the root command for recordctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "recordctl",
		Short: "Inspect and administer a record store",
		Long: `recordctl reads and writes the tenant scoped JSON records of a record store
table and manages the table itself.

The connection comes from --config, RECORDSTORE_* environment variables or
the --driver/--dsn flags, in increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded before the config")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "database driver (pgx|sqlite3)")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "connection string, or file path for sqlite3")
	cmd.PersistentFlags().StringVar(&opts.Table, "table", "", "backing table name")
	cmd.PersistentFlags().StringVar(&opts.Tenant, "tenant", "", "tenant id the command runs for")
	cmd.PersistentFlags().StringVar(&opts.User, "user", "", "user id stamped on writes")

	// Add subcommands
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewExistsCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewSoftDeleteCommand(opts))
	cmd.AddCommand(NewInsertCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))

	return cmd
}

func (o *RootOptions) load(cmd *cobra.Command) error {
	if err := config.LoadEnvFile(o.EnvFile, cmd.Flags().Changed("env-file")); err != nil {
		return WrapExitError(ExitCommandError, "load env file", err)
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}

	if o.Driver != "" {
		cfg.Storage.Driver = o.Driver
	}
	if o.DSN != "" {
		cfg.Storage.DSN = o.DSN
	}
	if o.Table != "" {
		cfg.Table.Name = o.Table
	}

	log, err := logger.Build(logger.Config{Env: cfg.Log.Env, Level: cfg.Log.Level, ServiceName: "recordctl"})
	if err != nil {
		return WrapExitError(ExitCommandError, "build logger", err)
	}

	o.config = cfg
	o.log = log
	return nil
}

// session is an open connection plus the repository on top of it.
type session struct {
	db   *sqlx.DB
	repo *recordstore.Repository
	ctx  context.Context
}

func (s *session) Close() error {
	return s.db.Close()
}

func (o *RootOptions) open(ctx context.Context) (*session, error) {
	cfg := o.config
	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	ctx, err := o.identity(ctx)
	if err != nil {
		return nil, err
	}

	var db *sqlx.DB
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		db, err = recordstore.ConnectPostgresql(ctx, recordstore.PGConfig{
			DSN:      cfg.Storage.DSN,
			MaxConns: int32(cfg.Storage.MaxConns),
			MinConns: int32(cfg.Storage.MinConns),
		})
	case config.DriverSqlite:
		db, err = recordstore.ConnectSqlite(cfg.Storage.DSN)
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "connect", err)
	}

	repo, err := recordstore.CreateRepository(db,
		recordstore.WithTableDef(cfg.Table),
		recordstore.WithLogger(o.log),
	)
	if err != nil {
		db.Close()
		return nil, WrapExitError(ExitCommandError, "create repository", err)
	}

	return &session{db: db, repo: repo, ctx: ctx}, nil
}

// identity puts the --tenant and --user ids on ctx.
func (o *RootOptions) identity(ctx context.Context) (context.Context, error) {
	if o.Tenant != "" {
		id, err := parseFlagID("tenant", o.Tenant)
		if err != nil {
			return nil, err
		}
		ctx = recordstore.WithTenant(ctx, id)
	}
	if o.User != "" {
		id, err := parseFlagID("user", o.User)
		if err != nil {
			return nil, err
		}
		ctx = recordstore.WithUser(ctx, id)
	}
	return ctx, nil
}

func parseFlagID(flag, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, NewExitError(ExitCommandError, fmt.Sprintf("--%s: %q is not a valid UUID", flag, value))
	}
	return id, nil
}

// withSession opens a session for the duration of fn.
func (o *RootOptions) withSession(cmd *cobra.Command, fn func(s *session) error) error {
	s, err := o.open(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(s)
}
