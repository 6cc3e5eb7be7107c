package cli

import (
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		Long: `Create every table, index and trigger of the schema.

Migrations are idempotent and run in one transaction, so it is safe to run
on every deploy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := rootOpts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			applied, err := store.Migrate(cmd.Context())
			if err != nil {
				return err
			}

			return newPrinter(rootOpts, cmd.OutOrStdout()).emit(
				map[string]int{"applied": applied},
				"applied %d migration(s)\n", applied)
		},
	}
}
