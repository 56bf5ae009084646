package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/calldeck/callquery/internal/config"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

// Applies migrations/*.up.sql to the SQLite dataset file in lexical order.
// Statements use IF NOT EXISTS so re-running is safe.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if cfg.Store.Driver != "" && cfg.Store.Driver != "sqlite" {
		fmt.Fprintf(os.Stderr, "migrate only supports the sqlite driver, got %q\n", cfg.Store.Driver)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
		panic(fmt.Sprintf("Failed to create data directory: %v", err))
	}

	fmt.Printf("Opening dataset at %s...\n", cfg.Store.Path)

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s", cfg.Store.Path))
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	files, err := filepath.Glob("migrations/*.up.sql")
	if err != nil {
		panic(err)
	}
	sort.Strings(files)

	if len(files) == 0 {
		fmt.Println("No migration files found under migrations/")
		return
	}

	ctx := context.Background()
	for _, file := range files {
		fmt.Printf("Applying migration: %s\n", file)
		content, err := os.ReadFile(file)
		if err != nil {
			panic(err)
		}

		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			fmt.Printf("Error applying %s: %v\n", file, err)
			continue
		}
		fmt.Printf("%s applied successfully\n", file)
	}
}
