package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/bootstrap"
	"github.com/Domenick1991/flightbooking/internal/engine"
	"github.com/Domenick1991/flightbooking/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand creates the flightapp command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "flightapp",
		Short: "Flight booking client",
		Long:  "Search, book, pay for and cancel flight reservations against the shared booking database.",
	}

	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "config.yaml"
	}
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", defaultPath, "path to config file")

	cmd.AddCommand(newReplCommand(opts))
	cmd.AddCommand(newClearCommand(opts))
	cmd.AddCommand(newImportFlightsCommand(opts))

	return cmd
}

func newReplCommand(opts *RootOptions) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:          "repl",
		Short:        "Start an interactive booking session",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFactory(cmd.Context(), opts, func(ctx context.Context, f *engine.Factory) error {
				return NewREPL(f.NewEngine(), cmd.InOrStdin(), cmd.OutOrStdout(), !quiet).Run(ctx)
			})
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print the menu and prompt")
	return cmd
}

func newClearCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "clear",
		Short:        "Delete all users and reservations",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFactory(cmd.Context(), opts, func(ctx context.Context, f *engine.Factory) error {
				if err := f.ClearTables(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Cleared users and reservations")
				return nil
			})
		},
	}
}

func newImportFlightsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "import-flights <file.csv>",
		Short:        "Load reference flights from a CSV file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			flights, err := ReadFlightsCSV(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			return withFactory(cmd.Context(), opts, func(ctx context.Context, f *engine.Factory) error {
				if err := f.LoadFlights(ctx, flights); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d flights\n", len(flights))
				return nil
			})
		},
	}
}

func withFactory(ctx context.Context, opts *RootOptions, fn func(ctx context.Context, f *engine.Factory) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	factory, closeFn, err := bootstrap.NewFactory(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", zap.Error(err))
		return err
	}
	defer closeFn()
	return fn(ctx, factory)
}
