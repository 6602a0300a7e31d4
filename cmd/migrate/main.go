package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	_ = godotenv.Load()

	mode := flag.String("mode", "up", "migration mode: up or down")
	dir := flag.String("dir", "./migrations", "directory holding *.up.sql / *.down.sql files")
	flag.Parse()

	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		log.Fatal("DB_URL not set in environment")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer db.Close()

	if err := run(db, *mode, *dir); err != nil {
		log.Fatal(err)
	}
}

func run(db *sql.DB, mode, migrationsDir string) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	switch mode {
	case "up":
		files, err := migrationFiles(migrationsDir, ".up.sql")
		if err != nil {
			return err
		}
		return applyUp(db, files)
	case "down":
		files, err := migrationFiles(migrationsDir, ".down.sql")
		if err != nil {
			return err
		}
		return applyDown(db, files)
	default:
		return fmt.Errorf("unknown mode: %s (use 'up' or 'down')", mode)
	}
}

func migrationFiles(dir, suffix string) ([]string, error) {
	all, err := filepath.Glob(filepath.Join(dir, "*"+suffix))
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	sort.Strings(all)
	return all, nil
}

// version strips the direction suffix so an up and its matching down file
// share one schema_migrations row.
func version(file, suffix string) string {
	return strings.TrimSuffix(filepath.Base(file), suffix)
}

func applyUp(db *sql.DB, files []string) error {
	for _, file := range files {
		v := version(file, ".up.sql")

		var exists bool
		err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, v).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if exists {
			fmt.Printf("skipping already applied migration: %s\n", v)
			continue
		}

		if err := applyFile(db, file, v, true); err != nil {
			return err
		}
		fmt.Printf("applied migration: %s\n", v)
	}
	return nil
}

func applyDown(db *sql.DB, files []string) error {
	// roll back newest first
	for i := len(files) - 1; i >= 0; i-- {
		file := files[i]
		v := version(file, ".down.sql")

		var exists bool
		err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, v).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if !exists {
			continue
		}

		if err := applyFile(db, file, v, false); err != nil {
			return err
		}
		fmt.Printf("rolled back migration: %s\n", v)
	}
	return nil
}

func applyFile(db *sql.DB, file, v string, up bool) error {
	content, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(content)); err != nil {
		return fmt.Errorf("failed to apply %s: %w", file, err)
	}

	if up {
		_, err = tx.Exec(`INSERT INTO schema_migrations (version) VALUES ($1)`, v)
	} else {
		_, err = tx.Exec(`DELETE FROM schema_migrations WHERE version = $1`, v)
	}
	if err != nil {
		return fmt.Errorf("failed to record migration %s: %w", v, err)
	}

	return tx.Commit()
}
