package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"friendchat/internal/config"
	"friendchat/internal/store"
)

// rootOptions holds flags shared by all subcommands.
type rootOptions struct {
	Verbose bool

	cfg *config.Config
	log *slog.Logger
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "friendchat",
		Short: "Friend graph and direct message service",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			level := cfg.SlogLevel()
			if opts.Verbose {
				level = slog.LevelDebug
			}
			opts.cfg = cfg
			opts.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
				With("app", cfg.AppName, "env", cfg.Env)
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))

	return cmd
}

// openStore connects to the configured database and brings its schema up to date.
func openStore(opts *rootOptions) (*store.Store, error) {
	st, err := store.Open(opts.cfg.DBDriver, opts.cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := st.Migrate(); err != nil {
		st.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return st, nil
}
