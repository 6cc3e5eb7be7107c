package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mirotrak/mirotrak/internal/model"
	"github.com/mirotrak/mirotrak/internal/service"
)

type importOptions struct {
	settings string
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the dataset with a JSON snapshot",
		Long: `Restore a snapshot produced by export.

Every table except settings is wiped and reloaded in one transaction, keeping
the original ids. Settings are merged by key unless --settings=replace.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.settings, "settings", string(model.SettingsMerge), "settings restore mode (merge|replace)")

	return cmd
}

func runImport(cmd *cobra.Command, rootOpts *RootOptions, opts *importOptions, path string) error {
	mode, err := model.ParseSettingsMode(opts.settings)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var snapshot model.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return fmt.Errorf("%s is not a snapshot: %w", path, err)
	}

	store, err := rootOpts.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := service.NewDatabaseService(store, nil).Import(cmd.Context(), &snapshot, mode)
	if err != nil {
		return err
	}

	return newPrinter(rootOpts, cmd.OutOrStdout()).emit(
		struct {
			Imported     *model.ImportResult `json:"imported"`
			SettingsMode model.SettingsMode  `json:"settingsMode"`
		}{result, mode},
		"imported clients=%d subscriptions=%d events=%d prompts=%d aiPhotos=%d settings=%d (%s)\n",
		result.Clients, result.Subscriptions, result.Events, result.Prompts, result.AiPhotos, result.Settings, mode)
}
