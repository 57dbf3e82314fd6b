package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polystage/polystage/internal/document"
	"github.com/polystage/polystage/internal/engine"
)

func newSeedCmd(g *globals) *cobra.Command {
	var (
		seed  uint64
		place int
	)
	c := &cobra.Command{
		Use:   "seed",
		Short: "Generate shapes and store them as the scene",
		Long: `Generate a fresh batch of shapes, optionally drop some of them onto the
workspace in a row, and save the result, replacing the stored scene.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer closeStore(st)

			var src engine.ShapeSource = document.NewGenerator()
			if cmd.Flags().Changed("seed") {
				src = document.NewSeededGenerator(seed)
			}
			sess := engine.NewSession(
				engine.WithStore(st, g.cfg.SceneKey),
				engine.WithShapeSource(src),
				engine.WithZoomPolicy(g.cfg.ZoomPolicy()),
			)
			if err := sess.Generate(); err != nil {
				return err
			}
			staged := sess.Scene().Staging()
			for i, e := range staged {
				if i >= place {
					break
				}
				sess.DragStart(e.ID)
				at := document.Point{X: float64(i) * 1.5 * document.BoxSize, Y: 0}
				sess.Drop(document.ContainerWorkspace, at)
				sess.DragEnd(e.ID)
			}
			if err := sess.Save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %d staged and %d placed shape(s) under %q\n",
				len(sess.Scene().Staging()), len(sess.Scene().Workspace()), g.cfg.SceneKey)
			return nil
		},
	}
	c.Flags().Uint64Var(&seed, "seed", 0, "random seed for reproducible shapes")
	c.Flags().IntVar(&place, "place", 0, "number of shapes to drop onto the workspace")
	return c
}
