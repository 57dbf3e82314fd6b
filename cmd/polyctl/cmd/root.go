package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/polystage/polystage/internal/config"
	"github.com/polystage/polystage/internal/logging"
	"github.com/polystage/polystage/internal/store"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	driver      string
	sqlitePath  string
	databaseURL string
	key         string
	verbose     bool

	cfg *config.Config
}

// NewRootCmd builds the polyctl command tree.
func NewRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "polyctl",
		Short: "Inspect and maintain stored polygon editor scenes",
		Long: `polyctl works on the scene record the editor saves, using the same
store configuration as the server (environment, CONFIG_FILE, or flags).

Examples:
  polyctl show                                   # Summarise the stored scene
  polyctl validate scene.json                    # Check a record file
  polyctl seed --seed 42 --place 3               # Store a generated scene
  polyctl export --out scene.png --width 800     # Render the workspace
  polyctl reset                                  # Delete the stored scene`,
		Version:       "0.3.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&g.driver, "driver", "", "store driver: memory, sqlite or postgres")
	root.PersistentFlags().StringVar(&g.sqlitePath, "sqlite-path", "", "SQLite database file")
	root.PersistentFlags().StringVar(&g.databaseURL, "database-url", "", "Postgres connection string")
	root.PersistentFlags().StringVar(&g.key, "key", "", "storage key of the scene")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newShowCmd(g),
		newValidateCmd(),
		newSeedCmd(g),
		newExportCmd(g),
		newResetCmd(g),
	)
	return root
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (g *globals) load(cmd *cobra.Command) error {
	level := "warn"
	if g.verbose {
		level = "debug"
	}
	logging.Setup(cmd.ErrOrStderr(), logging.Options{Level: level})

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("driver") {
		cfg.StoreDriver = g.driver
	}
	if flags.Changed("sqlite-path") {
		cfg.SQLitePath = g.sqlitePath
	}
	if flags.Changed("database-url") {
		cfg.DatabaseURL = g.databaseURL
	}
	if flags.Changed("key") {
		cfg.SceneKey = g.key
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	g.cfg = cfg
	slog.Debug("store selected", "driver", cfg.StoreDriver, "key", cfg.SceneKey)
	return nil
}

func (g *globals) open(cmd *cobra.Command) (store.Store, error) {
	st, err := store.Open(cmd.Context(), g.cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", g.cfg.StoreDriver, err)
	}
	return st, nil
}

func closeStore(st io.Closer) {
	if err := st.Close(); err != nil {
		slog.Warn("close store", "error", err)
	}
}
