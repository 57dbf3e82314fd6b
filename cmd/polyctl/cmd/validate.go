package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/polystage/polystage/internal/document"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a file holds a loadable scene record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			rec, err := document.Decode(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d staged, %d placed)\n",
				args[0], len(rec.Staging), len(rec.Workspace))
			return nil
		},
	}
}
