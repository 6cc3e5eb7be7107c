package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mirotrak/mirotrak/internal/auth"
)

type hashKeyOutput struct {
	Key  string `json:"key,omitempty"`
	Hash string `json:"hash"`
}

// NewHashKeyCommand creates the hash-key command.
func NewHashKeyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key [key]",
		Short: "Print the argon2id hash to use as ADMIN_KEY_HASH",
		Long: `Hash an admin key for the ADMIN_KEY_HASH variable.

Without an argument a new random key is generated and printed once along with
its hash. Store the key somewhere safe: it cannot be recovered from the hash.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := hashKeyOutput{}

			if len(args) == 1 {
				if args[0] == "" {
					return fmt.Errorf("key must not be empty")
				}
				hash, err := auth.HashKey(args[0])
				if err != nil {
					return err
				}
				out.Hash = hash
				return newPrinter(rootOpts, cmd.OutOrStdout()).emit(out, "%s\n", out.Hash)
			}

			generated, err := auth.GenerateAdminKey()
			if err != nil {
				return err
			}
			out.Key = generated.Plaintext
			out.Hash = generated.Hash

			return newPrinter(rootOpts, cmd.OutOrStdout()).emit(out,
				"key:  %s\nhash: %s\n", out.Key, out.Hash)
		},
	}
}
