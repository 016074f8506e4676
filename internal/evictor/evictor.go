// Package evictor orchestrates one eviction pass over a cache tree: a
// tempfile sweep, a parallel scan that ranks every live entry by how
// strongly it deserves to be evicted, and a final bounded deletion run that
// keeps rechecking disk usage so it stops as soon as the configured floor
// is satisfied.
package evictor

import (
	"context"
	"math/rand/v2"
	"os"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/htcacheclean/internal/cacheentry"
	"github.com/yourusername/htcacheclean/internal/cacheformat"
	"github.com/yourusername/htcacheclean/internal/config"
	"github.com/yourusername/htcacheclean/internal/logging"
	"github.com/yourusername/htcacheclean/internal/scanner"
	"github.com/yourusername/htcacheclean/internal/stats"
	"github.com/yourusername/htcacheclean/internal/topqueue"
	"github.com/yourusername/htcacheclean/internal/usage"
)

const (
	// channelCapacity bounds how many ranked entries can be in flight
	// between scan workers and the draining goroutine at once.
	channelCapacity = 1000
	// queueCapacity is how many of the worst entries the ranking queue
	// retains at a time.
	queueCapacity = 1000
	// maxDeleteCount hard-caps how many entries a single pass will ever
	// consider for deletion, regardless of how much the cache exceeds its
	// floor.
	maxDeleteCount = 1_000_000

	// desperateThreshold marks usage so far past the configured floor that
	// Vary-parent protection is abandoned; every entry is fair game.
	desperateThreshold = 105.0

	finalDeleteChunk = 10

	// Early-exit thresholds applied after each finalDeleteChunk: below the
	// lower bound we always stop; between the two we stop with low
	// probability, to avoid every run racing to the exact same usage floor.
	earlyExitLowerBound = 99.0
	earlyExitUpperBound = 99.5
	earlyExitChance     = 1.0 / 256.0
)

// Progress is notified as an eviction pass moves through its phases, for an
// optional UI or metrics layer to observe. A nil Progress is a no-op.
type Progress interface {
	ScanStarted(folderCount int)
	ScanProgress(entriesRanked int)
	DeletionStarted(candidateCount int)
	DeletionProgress(deleted int)
}

type noopProgress struct{}

func (noopProgress) ScanStarted(int)      {}
func (noopProgress) ScanProgress(int)     {}
func (noopProgress) DeletionStarted(int)  {}
func (noopProgress) DeletionProgress(int) {}

// Run performs one complete eviction pass against cfg.Path and returns the
// accumulated statistics. now is threaded through explicitly so tests (and
// a future --monitor loop) can control aging deterministically.
func Run(ctx context.Context, cfg config.Config, now time.Time, progress Progress) (stats.Stats, error) {
	if progress == nil {
		progress = noopProgress{}
	}

	var total stats.Stats

	folders, err := scanner.ScanRoot(cfg.Path, now, &total)
	if err != nil {
		return total, err
	}

	startUsage, err := usage.Probe(cfg.Path, cfg.MinFreeSpace, cfg.MinFreeInodes)
	if err != nil {
		return total, err
	}
	desperate := startUsage > desperateThreshold

	logging.Info("scan starting",
		zap.Int("folders", len(folders)),
		zap.Float64("usage", startUsage),
		zap.Bool("desperate", desperate),
	)
	progress.ScanStarted(len(folders))

	rand.Shuffle(len(folders), func(i, j int) { folders[i], folders[j] = folders[j], folders[i] })

	jobs := cfg.Jobs
	if jobs < 1 {
		jobs = 1
	}
	chunkSize := len(folders)/jobs + 1

	channel := make(chan cacheentry.Entry, channelCapacity)
	var wg sync.WaitGroup
	workerStats := make([]stats.Stats, 0, jobs)
	var workerStatsMu sync.Mutex

	for start := 0; start < len(folders); start += chunkSize {
		end := start + chunkSize
		if end > len(folders) {
			end = len(folders)
		}
		chunk := folders[start:end]

		wg.Add(1)
		go func(chunk []string) {
			defer wg.Done()
			workerDesperate := desperate
			if u, err := usage.Probe(cfg.Path, cfg.MinFreeSpace, cfg.MinFreeInodes); err == nil {
				workerDesperate = u > desperateThreshold
			}
			var local stats.Stats
			sink := &channelSink{ch: channel}
			for _, folder := range chunk {
				if ctx.Err() != nil {
					return
				}
				if err := scanner.ScanFolder(folder, false, workerDesperate, now, sink, &local); err != nil {
					logging.Warn("scan folder failed", zap.String("path", folder), zap.Error(err))
				}
			}
			workerStatsMu.Lock()
			workerStats = append(workerStats, local)
			workerStatsMu.Unlock()
		}(chunk)
	}

	queue := topqueue.NewBounded(queueCapacity, maxDeleteCount, cacheentry.Less)
	drainDone := make(chan struct{})
	go func() {
		defer close(drainDone)
		done := 0
		for entry := range channel {
			queue.Push(entry)
			done++
			progress.ScanProgress(done)
		}
	}()

	wg.Wait()
	close(channel)
	<-drainDone

	total.Merge(stats.Sum(workerStats))

	candidates := queue.IntoSorted()
	progress.DeletionStarted(len(candidates))

	deleteStats := runFinalDeletion(ctx, cfg, candidates, progress)
	total.Merge(deleteStats)

	logging.Info("eviction pass complete",
		zap.Uint64("deleted", total.Deleted),
		zap.Uint64("deleted_folders", total.DeletedFolders),
		zap.Uint64("failed", total.Failed),
	)

	return total, nil
}

type channelSink struct {
	ch chan<- cacheentry.Entry
}

func (s *channelSink) Push(e cacheentry.Entry) {
	s.ch <- e
}

func runFinalDeletion(ctx context.Context, cfg config.Config, candidates []cacheentry.Entry, progress Progress) stats.Stats {
	var total stats.Stats
	deleted := 0

	for i := 0; i < len(candidates); i += finalDeleteChunk {
		if ctx.Err() != nil {
			break
		}

		end := i + finalDeleteChunk
		if end > len(candidates) {
			end = len(candidates)
		}

		for _, entry := range candidates[i:end] {
			deleteEntry(entry, cfg.DryRun, &total)
			deleted++
		}
		progress.DeletionProgress(deleted)

		currentUsage, err := usage.Probe(cfg.Path, cfg.MinFreeSpace, cfg.MinFreeInodes)
		if err != nil {
			logging.Warn("usage probe failed during deletion", zap.Error(err))
			continue
		}

		if currentUsage < earlyExitLowerBound {
			break
		}
		if currentUsage < earlyExitUpperBound && rand.Float64() < earlyExitChance {
			break
		}

		runtime.Gosched()
	}

	return total
}

func deleteEntry(e cacheentry.Entry, dryRun bool, total *stats.Stats) {
	if dryRun {
		logging.Debug("dry-run delete", zap.String("header", e.HeaderPath))
		total.Count(nil)
		return
	}

	// Best-effort: a missing data file is not itself a failure, the header
	// delete below is what we report on.
	if err := os.Remove(e.DataPath()); err != nil && !os.IsNotExist(err) {
		logging.FileWarning(e.DataPath(), err.Error())
	}
	if e.Format == cacheformat.FormatVary {
		if err := os.RemoveAll(e.VaryPath()); err != nil {
			logging.FileWarning(e.VaryPath(), err.Error())
		}
	}

	err := os.Remove(e.HeaderPath)
	if err != nil && !os.IsNotExist(err) {
		logging.FileError(e.HeaderPath, err)
	}
	total.Count(nilIfNotExist(err))
}

func nilIfNotExist(err error) error {
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
