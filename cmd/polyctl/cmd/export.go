package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/polystage/polystage/internal/document"
	"github.com/polystage/polystage/internal/export"
	"github.com/polystage/polystage/internal/store"
)

func newExportCmd(g *globals) *cobra.Command {
	opts := export.DefaultOptions()
	var out string
	c := &cobra.Command{
		Use:   "export",
		Short: "Render the stored workspace to a PNG file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer closeStore(st)

			rec := document.NewEmptyRecord()
			data, err := st.Get(cmd.Context(), g.cfg.SceneKey)
			switch {
			case errors.Is(err, store.ErrNotFound):
			case err != nil:
				return err
			default:
				if rec, err = document.Decode(data); err != nil {
					return err
				}
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := export.RenderPNG(f, rec, opts); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d, %d shape(s))\n", out, opts.Width, opts.Height, len(rec.Workspace))
			return nil
		},
	}
	c.Flags().StringVarP(&out, "out", "o", "workspace.png", "output file")
	c.Flags().IntVar(&opts.Width, "width", opts.Width, "image width in pixels")
	c.Flags().IntVar(&opts.Height, "height", opts.Height, "image height in pixels")
	c.Flags().BoolVar(&opts.Grid, "grid", opts.Grid, "draw the 100-unit grid")
	c.Flags().StringVar(&opts.Background, "background", opts.Background, "background colour as #rrggbb")
	return c
}
