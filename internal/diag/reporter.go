// Package diag provides optional operator-facing diagnostics for a running
// eviction pass: a live progress line (-progress) and a periodic resource
// bottleneck monitor (-monitor). Neither affects eviction decisions; both
// are purely observational.
package diag

import (
	"fmt"
	"math"
	"time"
)

// Reporter implements evictor.Progress, printing a live progress line to
// stdout as scanning and deletion proceed.
type Reporter struct {
	scanTotal      int
	scanStart      time.Time
	deletionTotal  int
	deletionStart  time.Time
}

// NewReporter constructs a Reporter. Call its methods from the evictor's
// Progress hooks; it is safe to pass around as that interface directly.
func NewReporter() *Reporter {
	return &Reporter{}
}

// ScanStarted records how many shards were discovered and begins timing.
func (r *Reporter) ScanStarted(folderCount int) {
	r.scanTotal = folderCount
	r.scanStart = time.Now()
	fmt.Printf("scanning %d shard director%s\n", folderCount, plural(folderCount))
}

// ScanProgress reports how many ranked entries have been produced so far.
func (r *Reporter) ScanProgress(entriesRanked int) {
	fmt.Printf("\rranked %s entries", formatNumber(entriesRanked))
}

// DeletionStarted records the candidate count selected for eviction.
func (r *Reporter) DeletionStarted(candidateCount int) {
	fmt.Println()
	r.deletionTotal = candidateCount
	r.deletionStart = time.Now()
	fmt.Printf("deleting %s candidate entries\n", formatNumber(candidateCount))
}

// DeletionProgress updates the live deletion progress line.
func (r *Reporter) DeletionProgress(deleted int) {
	if r.deletionTotal == 0 {
		return
	}
	elapsed := time.Since(r.deletionStart)
	rate := rateOf(deleted, elapsed)
	pct := float64(deleted) / float64(r.deletionTotal) * 100
	eta := etaOf(r.deletionTotal-deleted, rate)

	fmt.Printf("\rdeleting: %s / %s (%.1f%%) | %s/sec | elapsed %s | eta %s",
		formatNumber(deleted), formatNumber(r.deletionTotal), pct,
		formatNumber(int(rate)), formatDuration(elapsed), formatDuration(eta))
}

// Finish prints final counters once the pass completes.
func (r *Reporter) Finish(deleted, deletedFolders, failed uint64) {
	fmt.Println()
	fmt.Printf("done: %d entries, %d empty directories reclaimed, %d failures\n",
		deleted, deletedFolders, failed)
}

func rateOf(count int, elapsed time.Duration) float64 {
	if elapsed.Seconds() == 0 {
		return 0
	}
	return float64(count) / elapsed.Seconds()
}

func etaOf(remaining int, rate float64) time.Duration {
	if remaining <= 0 {
		return 0
	}
	if rate == 0 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(float64(remaining)/rate) * time.Second
}

func formatDuration(d time.Duration) string {
	if d >= time.Duration(math.MaxInt64) {
		return "unknown"
	}
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	if n < 1000 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
