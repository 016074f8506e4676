package main

import "testing"

func TestBuildConfigDefaults(t *testing.T) {
	cfg, err := buildConfig("/var/cache/mod_cache_disk", "10%", "5%", 0, false, false, false)
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if cfg.Jobs < 1 {
		t.Fatalf("expected auto-resolved jobs >= 1, got %d", cfg.Jobs)
	}
	if cfg.MinFreeSpace.String() != "10%" {
		t.Fatalf("MinFreeSpace = %q, want 10%%", cfg.MinFreeSpace.String())
	}
	if cfg.MinFreeInodes.String() != "5%" {
		t.Fatalf("MinFreeInodes = %q, want 5%%", cfg.MinFreeInodes.String())
	}
}

func TestBuildConfigExplicitJobs(t *testing.T) {
	cfg, err := buildConfig("/cache", "10%", "5%", 4, true, true, true)
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if cfg.Jobs != 4 {
		t.Fatalf("Jobs = %d, want 4", cfg.Jobs)
	}
	if !cfg.DryRun || !cfg.Monitor || !cfg.Progress {
		t.Fatalf("expected DryRun/Monitor/Progress all true, got %+v", cfg)
	}
}

func TestBuildConfigRejectsInvalidMinFreeSpace(t *testing.T) {
	if _, err := buildConfig("/cache", "not-a-size", "5%", 1, false, false, false); err == nil {
		t.Fatal("expected error for invalid --min-free-space")
	}
}

func TestBuildConfigRejectsInvalidMinFreeInodes(t *testing.T) {
	if _, err := buildConfig("/cache", "10%", "not-a-size", 1, false, false, false); err == nil {
		t.Fatal("expected error for invalid --min-free-inodes")
	}
}

func TestBuildConfigRejectsEmptyPath(t *testing.T) {
	if _, err := buildConfig("", "10%", "5%", 1, false, false, false); err == nil {
		t.Fatal("expected error for empty path")
	}
}
