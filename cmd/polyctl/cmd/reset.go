package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polystage/polystage/internal/engine"
)

func newResetCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the stored scene",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer closeStore(st)

			sess := engine.NewSession(engine.WithStore(st, g.cfg.SceneKey))
			if err := sess.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scene %q deleted\n", g.cfg.SceneKey)
			return nil
		},
	}
}
