// Command htcacheclean reclaims disk space from an Apache-style HTTP cache
// tree: it is a thin wrapper around internal/evictor that parses flags,
// sets up logging, validates the cache root, and reports the exit status
// the process contract requires.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/yourusername/htcacheclean/internal/config"
	"github.com/yourusername/htcacheclean/internal/diag"
	"github.com/yourusername/htcacheclean/internal/evictor"
	"github.com/yourusername/htcacheclean/internal/logging"
	"github.com/yourusername/htcacheclean/internal/safety"
	"github.com/yourusername/htcacheclean/internal/sizespec"
)

// Exit codes per the process contract: 0 whenever a scan completes, even
// with per-entry failures; non-zero only for fatal setup errors.
const (
	exitOK    = 0
	exitSetup = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	path := pflag.StringP("path", "p", "", "cache root directory (required)")
	minFreeSpace := pflag.StringP("min-free-space", "f", "10%", "minimum free disk space to maintain")
	minFreeInodes := pflag.StringP("min-free-inodes", "F", "5%", "minimum free inodes to maintain")
	jobs := pflag.IntP("jobs", "j", 0, "parallel scan workers (0 = auto: max(1, NumCPU/2))")
	verbose := pflag.CountP("verbose", "v", "increase log verbosity (repeatable)")
	logFile := pflag.String("log-file", "", "also write logs to this file")
	dryRun := pflag.Bool("dry-run", false, "rank and report candidates without deleting them")
	monitor := pflag.Bool("monitor", false, "log periodic resource/bottleneck samples while running")
	progress := pflag.Bool("progress", false, "print a live progress line to stdout")
	pflag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "htcacheclean: --path is required")
		pflag.Usage()
		return exitSetup
	}

	if err := logging.Init(*verbose, *logFile); err != nil {
		fmt.Fprintf(os.Stderr, "htcacheclean: logging setup failed: %v\n", err)
		return exitSetup
	}
	defer logging.Close()

	cfg, err := buildConfig(*path, *minFreeSpace, *minFreeInodes, *jobs, *dryRun, *monitor, *progress)
	if err != nil {
		logging.Error("configuration rejected", zap.Error(err))
		fmt.Fprintf(os.Stderr, "htcacheclean: %v\n", err)
		return exitSetup
	}

	resolvedRoot, err := safety.ValidateCacheRoot(cfg.Path)
	if err != nil {
		logging.Error("cache root rejected", zap.Error(err))
		fmt.Fprintf(os.Stderr, "htcacheclean: %v\n", err)
		return exitSetup
	}
	cfg.Path = resolvedRoot

	if err := os.Chdir(cfg.Path); err != nil {
		logging.Error("chdir to cache root failed", zap.String("path", cfg.Path), zap.Error(err))
		fmt.Fprintf(os.Stderr, "htcacheclean: cannot chdir to %s: %v\n", cfg.Path, err)
		return exitSetup
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var prog evictor.Progress
	var reporter *diag.Reporter
	if cfg.Progress {
		reporter = diag.NewReporter()
		prog = reporter
	}

	if cfg.Monitor {
		mon := diag.NewMonitor()
		go mon.Run(ctx, time.Second)
	}

	logging.Info("starting eviction pass",
		zap.String("path", cfg.Path),
		zap.String("min_free_space", cfg.MinFreeSpace.String()),
		zap.String("min_free_inodes", cfg.MinFreeInodes.String()),
		zap.Int("jobs", cfg.Jobs),
		zap.Bool("dry_run", cfg.DryRun),
	)

	result, err := evictor.Run(ctx, cfg, time.Now(), prog)
	if err != nil {
		logging.Error("eviction pass failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "htcacheclean: %v\n", err)
		return exitSetup
	}

	if reporter != nil {
		reporter.Finish(result.Deleted, result.DeletedFolders, result.Failed)
	}

	logging.Info("eviction pass done",
		zap.Uint64("deleted", result.Deleted),
		zap.Uint64("deleted_folders", result.DeletedFolders),
		zap.Uint64("failed", result.Failed),
	)

	return exitOK
}

func buildConfig(path, minFreeSpaceRaw, minFreeInodesRaw string, jobs int, dryRun, monitor, progress bool) (config.Config, error) {
	minFreeSpace, err := sizespec.Parse(minFreeSpaceRaw)
	if err != nil {
		return config.Config{}, fmt.Errorf("invalid --min-free-space: %w", err)
	}
	minFreeInodes, err := sizespec.Parse(minFreeInodesRaw)
	if err != nil {
		return config.Config{}, fmt.Errorf("invalid --min-free-inodes: %w", err)
	}

	if jobs <= 0 {
		jobs = max(1, runtime.NumCPU()/2)
	}

	cfg := config.Config{
		Path:          path,
		MinFreeSpace:  minFreeSpace,
		MinFreeInodes: minFreeInodes,
		Jobs:          jobs,
		DryRun:        dryRun,
		Monitor:       monitor,
		Progress:      progress,
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
