package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/handiism/shelfsync/internal/abs"
	"github.com/handiism/shelfsync/internal/config"
	"github.com/handiism/shelfsync/internal/download"
	"github.com/handiism/shelfsync/internal/logging"
	"github.com/handiism/shelfsync/internal/match"
	"github.com/handiism/shelfsync/internal/model"
	"github.com/handiism/shelfsync/internal/reconcile"
	"github.com/handiism/shelfsync/internal/tui"
)

var version = "dev"

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCommand(),
		fang.WithVersion(version),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		source     string
		target     string
		dest       string
		reverse    bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "shelfsync-tui",
		Short: "Interactive catalog sync between two Audiobookshelf servers",
		Long: `Compare two servers, review the books the target is missing and download
them with a live progress view.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return errors.New("shelfsync-tui needs a terminal; use 'shelfsync sync' in scripts")
			}

			settings, _, _, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if source == target {
				return errors.New("source and target must be different servers")
			}
			logger, err := fileLogger(settings)
			if err != nil {
				return err
			}

			sourceClient, err := settings.NewClient(source, logger, abs.WithUserAgent("shelfsync-tui/"+version))
			if err != nil {
				return err
			}
			targetClient, err := settings.NewClient(target, logger, abs.WithUserAgent("shelfsync-tui/"+version))
			if err != nil {
				return err
			}
			if dest == "" {
				dest = settings.Download.Path
			} else if dest, err = config.ExpandPath(dest); err != nil {
				return err
			}

			svc := reconcile.NewService(
				reconcile.WithMatcher(match.New(settings.Normalizer())),
				reconcile.WithLogger(logger),
			)
			from := sourceClient
			if reverse {
				from = targetClient
			}

			return tui.Run(tui.Config{
				SourceName:  source,
				TargetName:  target,
				Destination: dest,
				Reverse:     reverse,
				Verbose:     verbose,
				Reconcile: func(ctx context.Context) (*model.ReconciliationResult, error) {
					return svc.Reconcile(ctx, sourceClient, targetClient, reconcile.Filter{})
				},
				NewBatch: func(onProgress func(download.ProgressEvent)) tui.Batch {
					opts := settings.DownloadOptions()
					opts.Destination = dest
					opts.Logger = logger
					opts.OnProgress = onProgress
					return download.New(from, opts)
				},
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Configuration file path")
	cmd.Flags().StringVar(&source, "source", "", "Source server name")
	cmd.Flags().StringVar(&target, "target", "", "Target server name")
	cmd.Flags().StringVarP(&dest, "dest", "d", "", "Destination directory (default download.path)")
	cmd.Flags().BoolVar(&reverse, "reverse", false, "Download what the source is missing, from the target")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose progress")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

// fileLogger writes to logging.file only; stderr belongs to the UI.
func fileLogger(settings *config.Settings) (*slog.Logger, error) {
	if settings.Logging.File == "" {
		return logging.Discard(), nil
	}
	return logging.New(logging.Options{
		Level:       settings.Logging.Level,
		Format:      settings.Logging.Format,
		OutputPaths: []string{settings.Logging.File},
	})
}
