package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/polystage/polystage/internal/document"
	"github.com/polystage/polystage/internal/store"
)

func newShowCmd(g *globals) *cobra.Command {
	var asJSON bool
	c := &cobra.Command{
		Use:   "show",
		Short: "Summarise the stored scene",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer closeStore(st)

			data, err := st.Get(cmd.Context(), g.cfg.SceneKey)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no scene stored under %q", g.cfg.SceneKey)
			}
			if err != nil {
				return err
			}
			rec, err := document.Decode(data)
			if err != nil {
				return err
			}
			if asJSON {
				out, err := document.Encode(rec)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return err
			}
			printSummary(cmd.OutOrStdout(), g.cfg.SceneKey, rec)
			return nil
		},
	}
	c.Flags().BoolVar(&asJSON, "json", false, "print the record as JSON")
	return c
}

func printSummary(w io.Writer, key string, rec *document.SceneRecord) {
	fmt.Fprintf(w, "Scene %q (version %d)\n", key, rec.Version)
	fmt.Fprintf(w, "  Transform: scale %g, offset (%g, %g)\n",
		rec.Transform.Scale, rec.Transform.Offset.X, rec.Transform.Offset.Y)
	fmt.Fprintf(w, "  Staging:   %d shape(s)\n", len(rec.Staging))
	fmt.Fprintf(w, "  Workspace: %d shape(s)\n", len(rec.Workspace))
	for _, e := range rec.Workspace {
		fmt.Fprintf(w, "    %-40s %s  at (%g, %g)  %d sides\n",
			e.ID, e.FillColor, e.Position.X, e.Position.Y, len(e.Geometry))
	}
}
