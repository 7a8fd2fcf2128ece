package recordstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// SchemaManager creates and drops the backing table of a Repository.
type SchemaManager struct {
	dialect dialect
	table   TableDef
	exec    Executor
	log     *zap.Logger
}

func (s *SchemaManager) initStatements() []string {
	return append([]string{s.dialect.createTableSQL(s.table)}, s.dialect.createIndexSQL(s.table)...)
}

// Init creates the table and its indexes unless the table is already there.
// Calling it again is a no-op.
func (s *SchemaManager) Init(ctx context.Context) error {
	exists, err := s.Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		s.log.Debug("table already exists, skipping init")
		return nil
	}

	for _, stmt := range s.initStatements() {
		s.log.Debug("statement", Op("schema_init"), SQL(stmt))
		if _, err := s.exec.Execute(ctx, stmt, Params{}); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	s.log.Info("table created")
	return nil
}

func (s *SchemaManager) dropStatement() string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", fullTableName(s.table))
}

// Drop removes the table and everything in it. A missing table is not an error.
func (s *SchemaManager) Drop(ctx context.Context) error {
	stmt := s.dropStatement()
	s.log.Debug("statement", Op("schema_drop"), SQL(stmt))
	if _, err := s.exec.Execute(ctx, stmt, Params{}); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}

	s.log.Info("table dropped")
	return nil
}

// Exists asks the engine catalog whether the table is there.
func (s *SchemaManager) Exists(ctx context.Context) (bool, error) {
	qry, params := s.dialect.tableExistsSQL(s.table)
	s.log.Debug("statement", Op("schema_exists"), SQL(qry), Bindings(params))

	var exists bool
	if err := s.exec.QueryScalar(ctx, &exists, qry, params); err != nil {
		return false, fmt.Errorf("check table: %w", err)
	}
	return exists, nil
}

// Columns lists the physical columns of the table in table order. It is
// empty when the table does not exist.
func (s *SchemaManager) Columns(ctx context.Context) ([]ColumnInfo, error) {
	qry, params := s.dialect.columnsSQL(s.table)
	s.log.Debug("statement", Op("schema_columns"), SQL(qry), Bindings(params))

	var cols []ColumnInfo
	if err := s.exec.Query(ctx, &cols, qry, params); err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	return cols, nil
}

// MissingColumns returns the configured columns the physical table lacks.
func (s *SchemaManager) MissingColumns(ctx context.Context) ([]string, error) {
	cols, err := s.Columns(ctx)
	if err != nil {
		return nil, err
	}

	present := Map(cols, func(c ColumnInfo) string { return c.Name })
	return FilterSlice(s.table.Columns.List(), func(name string) bool {
		return !SliceContains(present, name)
	}), nil
}
