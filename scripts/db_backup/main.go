package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/garnizeh/candidatures/internal/backup"
	"github.com/garnizeh/candidatures/internal/config"
	"github.com/garnizeh/candidatures/internal/logging"
)

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	mgr := backup.New(cfg.DatabasePath, cfg.Backup.Dir,
		backup.WithRetention(cfg.Backup.Retention),
		backup.WithLogger(logging.Setup(cfg.Log.Level, cfg.Log.Format)),
	)
	name, err := mgr.Snapshot(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database backup completed: %s\n", filepath.Join(mgr.Dir(), name))
}
