package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/garnizeh/candidatures/internal/backup"
	"github.com/garnizeh/candidatures/internal/config"
	"github.com/garnizeh/candidatures/internal/logging"
)

// Restores a snapshot over the database. Run it with the server stopped.
// Without -name the newest snapshot is used.
func main() {
	name := flag.String("name", "", "snapshot file name, e.g. backup_20250102_030405.db")
	flag.Parse()

	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	mgr := backup.New(cfg.DatabasePath, cfg.Backup.Dir,
		backup.WithLogger(logging.Setup(cfg.Log.Level, cfg.Log.Format)),
	)

	target := *name
	if target == "" {
		list, err := mgr.List(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
			os.Exit(1)
		}
		if len(list) == 0 {
			fmt.Fprintf(os.Stderr, "Restore error: no snapshots in %s\n", mgr.Dir())
			os.Exit(1)
		}
		target = list[0].Name
	}

	if err := mgr.Restore(ctx, target); err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database restore completed from %s.\n", target)
}
