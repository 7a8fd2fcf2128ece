package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/likearthian/recordstore"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var header bool

	cmd := &cobra.Command{
		Use:   "import <file.csv|->",
		Short: "Insert records from a CSV file",
		Long: `Insert one record per CSV row.

Without --header the columns are id, type, data and an optional global flag.
With --header the first row names the columns, in any order. A blank id gets
a random one. Use - to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return WrapExitError(ExitCommandError, "open csv", err)
				}
				defer f.Close()
				in = f
			}

			return rootOpts.withSession(cmd, func(s *session) error {
				n, err := recordstore.ImportCSV(s.ctx, s.repo, in, header)
				fmt.Fprintf(cmd.OutOrStdout(), "%d record(s) imported\n", n)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&header, "header", false, "first row names the columns")

	return cmd
}
