package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/likearthian/recordstore"
)

// SchemaStatus is the output of schema status.
type SchemaStatus struct {
	Table   string                   `json:"table"`
	Exists  bool                     `json:"exists"`
	Columns []recordstore.ColumnInfo `json:"columns,omitempty"`
	Missing []string                 `json:"missing,omitempty"`
}

// NewSchemaCommand creates the schema command group.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Create, drop or inspect the backing table",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the table and its indexes if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withSession(cmd, func(s *session) error {
				if err := s.repo.Schema().Init(s.ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "table %s ready\n", s.repo.TableDef().Name)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "drop",
		Short: "Drop the table and every record in it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withSession(cmd, func(s *session) error {
				if err := s.repo.Schema().Drop(s.ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "table %s dropped\n", s.repo.TableDef().Name)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report whether the table exists and which columns it lacks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withSession(cmd, func(s *session) error {
				return runSchemaStatus(cmd, s)
			})
		},
	})

	return cmd
}

func runSchemaStatus(cmd *cobra.Command, s *session) error {
	schema := s.repo.Schema()
	status := SchemaStatus{Table: s.repo.TableDef().Name}

	exists, err := schema.Exists(s.ctx)
	if err != nil {
		return err
	}
	status.Exists = exists

	if exists {
		if status.Columns, err = schema.Columns(s.ctx); err != nil {
			return err
		}
		if status.Missing, err = schema.MissingColumns(s.ctx); err != nil {
			return err
		}
	}

	return writeJSON(cmd.OutOrStdout(), status)
}
