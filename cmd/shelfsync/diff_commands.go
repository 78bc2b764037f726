package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/handiism/shelfsync/internal/abs"
	"github.com/handiism/shelfsync/internal/config"
	"github.com/handiism/shelfsync/internal/model"
	"github.com/handiism/shelfsync/internal/reconcile"
	"github.com/handiism/shelfsync/internal/report"
)

var errSameServer = errors.New("source and target must be different servers")

// reconcileFlags are shared by diff and sync.
type reconcileFlags struct {
	source          string
	target          string
	sourceLibraries []string
	targetLibraries []string
}

func (f *reconcileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.source, "source", "", "Source server name")
	cmd.Flags().StringVar(&f.target, "target", "", "Target server name")
	cmd.Flags().StringArrayVar(&f.sourceLibraries, "source-library", nil, "Restrict the source to a library ID (repeatable)")
	cmd.Flags().StringArrayVar(&f.targetLibraries, "target-library", nil, "Restrict the target to a library ID (repeatable)")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("target")
}

// reconciliation holds one compared pair of servers.
type reconciliation struct {
	source *abs.Client
	target *abs.Client
	result *model.ReconciliationResult
}

func (f *reconcileFlags) run(cmd *cobra.Command, ctx *commandContext, svc *reconcile.Service) (*reconciliation, error) {
	if f.source == f.target {
		return nil, errSameServer
	}
	source, err := ctx.client(f.source)
	if err != nil {
		return nil, err
	}
	target, err := ctx.client(f.target)
	if err != nil {
		return nil, err
	}

	result, err := svc.Reconcile(cmd.Context(), source, target, reconcile.Filter{
		Source: trimAll(f.sourceLibraries),
		Target: trimAll(f.targetLibraries),
	})
	if err != nil {
		return nil, err
	}
	return &reconciliation{source: source, target: target, result: result}, nil
}

func newDiffCommand(ctx *commandContext) *cobra.Command {
	var flags reconcileFlags
	var details bool
	var yamlPath string

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare the catalogs of two servers",
		Long: `Fetch both catalogs, match books across them and print what each side is
missing. --details adds a sample of the matches of every tier; --yaml writes
the whole report to a file ("-" for stdout).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			rec, err := flags.run(cmd, ctx, svc)
			if err != nil {
				return err
			}

			rep := report.Build(rec.result, settings.ReportOptions())
			out := cmd.OutOrStdout()
			if err := rep.WriteSummary(out); err != nil {
				return err
			}
			if details {
				if err := rep.WriteMatches(out); err != nil {
					return err
				}
			}
			if yamlPath != "" {
				if err := writeYAMLReport(out, yamlPath, rep); err != nil {
					return err
				}
			}

			if rep.InSync() {
				printStatus(out, statusOK, "✓ %s and %s are in sync", flags.source, flags.target)
			} else {
				printStatus(out, statusWarn, "! %d missing on %s, %d missing on %s",
					rep.MissingInTarget.Count, flags.target, rep.MissingInSource.Count, flags.source)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&details, "details", false, "Show matched items per tier")
	cmd.Flags().StringVar(&yamlPath, "yaml", "", "Write the report as YAML to this file (- for stdout)")
	return cmd
}

func writeYAMLReport(stdout io.Writer, path string, rep *report.Report) error {
	if path == "-" {
		return rep.WriteYAML(stdout)
	}
	path, err := config.ExpandPath(path)
	if err != nil {
		return fmt.Errorf("resolve report path: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := rep.WriteYAML(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	printStatus(stdout, statusInfo, "Report written to %s", path)
	return nil
}

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var flags reconcileFlags
	var (
		dest        string
		dryRun      bool
		concurrency int
		delay       time.Duration
		retries     int
		reverse     bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Download the books missing on the target",
		Long: `Compare two servers and download every book the target is missing from the
source into --dest, ready for upload. With --reverse the books the source is
missing are downloaded from the target instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			opts := settings.DownloadOptions()
			opts.OnProgress = progressPrinter(out, verbose)
			var cc reconcile.ConcurrencyConfig
			if cmd.Flags().Changed("concurrency") {
				cc.Concurrency = concurrency
			}
			if cmd.Flags().Changed("delay") {
				cc.InterDownloadDelay = &delay
			}
			if cmd.Flags().Changed("retries") {
				cc.MaxRetries = &retries
			}

			svc, err := ctx.service(reconcile.WithDownloadOptions(opts))
			if err != nil {
				return err
			}
			rec, err := flags.run(cmd, ctx, svc)
			if err != nil {
				return err
			}

			if err := report.Build(rec.result, settings.ReportOptions()).WriteSummary(out); err != nil {
				return err
			}

			items, from, to := rec.result.MissingInTarget, rec.source, flags.target
			if reverse {
				items, from, to = rec.result.MissingInSource, rec.target, flags.source
			}
			if len(items) == 0 {
				printStatus(out, statusOK, "✓ Nothing missing on %s", to)
				return nil
			}

			if dest == "" {
				dest = settings.Download.Path
			} else if dest, err = config.ExpandPath(dest); err != nil {
				return fmt.Errorf("resolve destination: %w", err)
			}

			if dryRun {
				printStatus(out, statusInfo, "[Dry run] would download %d item(s) from %s into %s", len(items), from.BaseURL(), dest)
				return report.WriteItems(out, items)
			}

			printStatus(out, statusInfo, "Downloading %d item(s) from %s into %s", len(items), from.BaseURL(), dest)
			start := time.Now()
			summary, err := svc.DownloadMissing(cmd.Context(), from, items, dest, cc)
			if err != nil {
				return err
			}
			if cmd.Context().Err() != nil {
				printStatus(out, statusWarn, "Download cancelled.")
				return cmd.Context().Err()
			}

			kind := statusOK
			if summary.Failed > 0 {
				kind = statusWarn
			}
			printStatus(out, kind, "Complete! Downloaded %d/%d items in %s", summary.Success, summary.Total, time.Since(start).Round(time.Second))
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d downloads failed", summary.Failed, summary.Total)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&dest, "dest", "d", "", "Destination directory (default download.path)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the books that would be downloaded")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Simultaneous downloads (default download.max_concurrent)")
	cmd.Flags().DurationVar(&delay, "delay", 0, "Pause held by each finished download (default download.delay_seconds)")
	cmd.Flags().IntVar(&retries, "retries", 0, "Extra attempts per archive (default download.max_retries)")
	cmd.Flags().BoolVar(&reverse, "reverse", false, "Download what the source is missing, from the target")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose progress")
	return cmd
}
