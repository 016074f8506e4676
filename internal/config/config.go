// Package config holds the resolved, validated settings for one eviction
// run, independent of how they were sourced (CLI flags today).
package config

import (
	"fmt"

	"github.com/yourusername/htcacheclean/internal/sizespec"
)

// Config is the fully-resolved configuration for an eviction pass.
type Config struct {
	Path          string
	MinFreeSpace  sizespec.SizeSpec
	MinFreeInodes sizespec.SizeSpec
	Jobs          int
	DryRun        bool
	Monitor       bool
	Progress      bool
}

// Validate checks invariants Config must hold before an eviction run starts.
func (c Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("config: path must not be empty")
	}
	if c.Jobs < 1 {
		return fmt.Errorf("config: jobs must be at least 1, got %d", c.Jobs)
	}
	return nil
}
