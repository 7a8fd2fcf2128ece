package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/likearthian/recordstore"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	var typ string
	var includeDeleted bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print one record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withSession(cmd, func(s *session) error {
				opts := []recordstore.GetOption{recordstore.OfType(typ)}
				if includeDeleted {
					opts = append(opts, recordstore.IncludingDeleted())
				}

				raw, err := s.repo.GetString(s.ctx, args[0], opts...)
				if err != nil {
					return err
				}
				if raw == nil {
					return NewExitError(ExitFailure, "not found")
				}

				rec, err := documentRecord(s.repo.Codec(), *raw)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), rec)
			})
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "only match records of this type")
	cmd.Flags().BoolVar(&includeDeleted, "include-deleted", false, "also match soft deleted records")

	return cmd
}

type listOptions struct {
	filter         string
	params         []string
	sort           string
	order          string
	page           int
	pageSize       int
	includeDeleted bool
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list <type>",
		Short: "Print the records of a type as JSON",
		Long: `Print the records of a type as JSON.

--filter adds a condition on the stored document, with values bound from
--param, for example:

  recordctl list car --filter "data->>'make' = :make" --param make=Toyota

Passing --page or --page-size prints one page and the paging totals instead
of every record.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request(args[0])
			if err != nil {
				return err
			}

			paged := cmd.Flags().Changed("page") || cmd.Flags().Changed("page-size")
			return rootOpts.withSession(cmd, func(s *session) error {
				if paged {
					page, err := recordstore.ListPaged[json.RawMessage](s.ctx, s.repo, req)
					if err != nil {
						return err
					}
					return writeJSON(cmd.OutOrStdout(), newPageOutput(page))
				}

				recs, err := recordstore.List[json.RawMessage](s.ctx, s.repo, req)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), recs)
			})
		},
	}

	cmd.Flags().StringVar(&opts.filter, "filter", "", "condition on the document, with :name parameters")
	cmd.Flags().StringArrayVar(&opts.params, "param", nil, "filter parameter as name=value (repeatable)")
	cmd.Flags().StringVar(&opts.sort, "sort", "created", "sort key (created|updated|deleted)")
	cmd.Flags().StringVar(&opts.order, "order", "asc", "sort order (asc|desc)")
	cmd.Flags().IntVar(&opts.page, "page", 1, "page number, from 1")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", recordstore.DefaultPageSize, "records per page")
	cmd.Flags().BoolVar(&opts.includeDeleted, "include-deleted", false, "also list soft deleted records")

	return cmd
}

func (o *listOptions) request(typ string) (recordstore.ListRequest, error) {
	sortBy, err := recordstore.ParseSortBy(o.sort)
	if err != nil {
		return recordstore.ListRequest{}, err
	}
	order, err := recordstore.ParseSortOrder(o.order)
	if err != nil {
		return recordstore.ListRequest{}, err
	}
	if o.page < 1 || o.pageSize < 1 {
		return recordstore.ListRequest{}, NewExitError(ExitCommandError, "--page and --page-size must be at least 1")
	}

	req := recordstore.ListRequest{
		Type:           typ,
		IncludeDeleted: o.includeDeleted,
		SortBy:         sortBy,
		SortOrder:      order,
		PageNumber:     o.page,
		PageSize:       o.pageSize,
	}

	if o.filter == "" {
		if len(o.params) > 0 {
			return recordstore.ListRequest{}, NewExitError(ExitCommandError, "--param needs --filter")
		}
		return req, nil
	}

	params := make(map[string]any, len(o.params))
	for _, kv := range o.params {
		name, value, ok := strings.Cut(kv, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return recordstore.ListRequest{}, NewExitError(ExitCommandError, fmt.Sprintf("--param %q: expected name=value", kv))
		}
		params[name] = value
	}
	req.Filter = recordstore.NewFilter(o.filter, params)

	return req, nil
}

func idCommand(use, short string, rootOpts *RootOptions, run func(cmd *cobra.Command, s *session, id uuid.UUID) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := recordstore.ParseID(args[0])
			if err != nil {
				return err
			}
			return rootOpts.withSession(cmd, func(s *session) error {
				return run(cmd, s, id)
			})
		},
	}
}

// NewExistsCommand creates the exists command.
func NewExistsCommand(rootOpts *RootOptions) *cobra.Command {
	return idCommand("exists", "Print whether a live record exists", rootOpts,
		func(cmd *cobra.Command, s *session, id uuid.UUID) error {
			exists, err := s.repo.Exists(s.ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), exists)
			return nil
		})
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return idCommand("delete", "Remove a record permanently", rootOpts,
		func(cmd *cobra.Command, s *session, id uuid.UUID) error {
			n, err := s.repo.Delete(s.ctx, id)
			if err != nil {
				return err
			}
			return printAffected(cmd, n)
		})
}

// NewSoftDeleteCommand creates the soft-delete command.
func NewSoftDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return idCommand("soft-delete", "Mark a record as deleted", rootOpts,
		func(cmd *cobra.Command, s *session, id uuid.UUID) error {
			n, err := s.repo.SoftDelete(s.ctx, id)
			if err != nil {
				return err
			}
			return printAffected(cmd, n)
		})
}

func printAffected(cmd *cobra.Command, n int64) error {
	fmt.Fprintf(cmd.OutOrStdout(), "%d record(s) affected\n", n)
	if n == 0 {
		return NewExitError(ExitFailure, "no record affected")
	}
	return nil
}

// NewInsertCommand creates the insert command.
func NewInsertCommand(rootOpts *RootOptions) *cobra.Command {
	var idFlag string
	var global bool

	cmd := &cobra.Command{
		Use:   "insert <type> <json>",
		Short: "Insert a record and print its id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := uuid.New()
			if idFlag != "" {
				parsed, err := recordstore.ParseID(idFlag)
				if err != nil {
					return err
				}
				id = parsed
			}

			return rootOpts.withSession(cmd, func(s *session) error {
				err := s.repo.Insert(s.ctx, recordstore.InsertRequest{
					ID:     id,
					Type:   args[0],
					Data:   args[1],
					Global: global,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&idFlag, "id", "", "record id (default: random)")
	cmd.Flags().BoolVar(&global, "global", false, "store without a tenant, visible to all tenants")

	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <type> <json>",
		Short: "Replace the document of a record of the given type",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := recordstore.ParseID(args[0])
			if err != nil {
				return err
			}

			return rootOpts.withSession(cmd, func(s *session) error {
				n, err := s.repo.Update(s.ctx, recordstore.UpdateRequest{ID: id, Type: args[1], Data: args[2]})
				if err != nil {
					return err
				}
				return printAffected(cmd, n)
			})
		},
	}
}
