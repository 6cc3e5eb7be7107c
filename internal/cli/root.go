// Package cli implements mirotrakctl, the operator command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mirotrak/mirotrak/internal/config"
	"github.com/mirotrak/mirotrak/internal/repository"
	"github.com/mirotrak/mirotrak/internal/service"
)

// Store is the database surface the commands need.
type Store interface {
	service.DatabaseStore
	Migrate(ctx context.Context) (int, error)
	Close()
}

// OpenFunc connects to the database at url.
type OpenFunc func(ctx context.Context, url string) (Store, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DatabaseURL string
	Format      string // "json" | "text"

	// Open defaults to a pgx pool. Tests swap it for an in-memory store.
	Open OpenFunc
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for mirotrakctl.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{Open: openRepository})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mirotrakctl",
		Short:         "MiroTrak operator tool",
		Long:          "Schema migrations, backups and admin key management for a MiroTrak database.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", "", "PostgreSQL connection string (default $DATABASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewTablesCommand(opts))
	cmd.AddCommand(NewHashKeyCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openStore resolves the connection string and opens the store.
// The caller must Close it.
func (o *RootOptions) openStore(ctx context.Context) (Store, error) {
	url := o.DatabaseURL
	if url == "" {
		fromEnv, err := config.DatabaseURL()
		if err != nil {
			return nil, errors.New("no database: pass --database-url or set DATABASE_URL")
		}
		url = fromEnv
	}

	open := o.Open
	if open == nil {
		open = openRepository
	}

	store, err := open(ctx, url)
	if err != nil {
		return nil, errors.New(config.SanitizeError(err, url))
	}
	return store, nil
}

func openRepository(ctx context.Context, url string) (Store, error) {
	repo, err := repository.New(ctx, url)
	if err != nil {
		return nil, err
	}
	return repo, nil
}
