package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mirotrak/mirotrak/internal/service"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "Print the row count of every table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := rootOpts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := service.NewDatabaseService(store, nil).Tables(cmd.Context())
			if err != nil {
				return err
			}

			if rootOpts.Format == "json" {
				return newPrinter(rootOpts, cmd.OutOrStdout()).emit(stats, "")
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TABLE\tROWS")
			for _, stat := range stats {
				fmt.Fprintf(tw, "%s\t%d\n", stat.Name, stat.RowCount)
			}
			return tw.Flush()
		},
	}
}
