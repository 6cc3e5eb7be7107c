package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mirotrak/mirotrak/internal/service"
)

type exportOptions struct {
	output string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON snapshot of every table",
		Long: `Write the versioned JSON snapshot served by GET /api/database/export.

The snapshot goes to stdout unless --output names a file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the snapshot to this file")

	return cmd
}

func runExport(cmd *cobra.Command, rootOpts *RootOptions, opts *exportOptions) error {
	store, err := rootOpts.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	snapshot, err := service.NewDatabaseService(store, nil).Export(cmd.Context())
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", opts.output, err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	if opts.output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "snapshot written to %s\n", opts.output)
	}
	return nil
}
