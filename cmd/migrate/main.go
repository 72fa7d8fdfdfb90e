package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/chrissnell/roofsolar/internal/log"
	"github.com/chrissnell/roofsolar/pkg/config"
	"github.com/chrissnell/roofsolar/pkg/migrate"
	_ "modernc.org/sqlite" // SQLite driver
)

func main() {
	var (
		dbPath         = flag.String("db", "", "Path to the SQLite configuration database")
		migrationDir   = flag.String("dir", "", "Migration directory (default: the built-in configuration schema)")
		migrationTable = flag.String("table", "schema_migrations", "Migration table name")
		command        = flag.String("command", "up", "Migration command: up, down, to, plan, version, status")
		targetVersion  = flag.String("target", "", "Target version for down/to/plan commands")
		helpFlag       = flag.Bool("help", false, "Show help")
	)

	flag.Parse()

	if *helpFlag {
		showHelp()
		return
	}

	if err := log.Init(false); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *dbPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -db flag is required\n")
		showHelp()
		os.Exit(1)
	}

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	var provider *migrate.FileProvider
	if *migrationDir == "" {
		provider = migrate.NewFSProvider(config.Migrations(), *migrationTable)
	} else {
		provider = migrate.NewFileProvider(*migrationDir, *migrationTable)
	}
	migrator := migrate.NewMigrator(db, provider, log.Infof)

	switch *command {
	case "up":
		err = migrator.MigrateUp()
	case "down", "to":
		var target int
		target, err = parseTarget(*targetVersion, *command)
		if err != nil {
			break
		}
		if *command == "down" {
			err = migrator.MigrateDown(target)
		} else {
			err = migrator.MigrateTo(target)
		}
	case "version":
		version, err := migrator.GetCurrentVersion()
		if err != nil {
			log.Fatalf("Failed to get current version: %v", err)
		}
		fmt.Printf("Current version: %d\n", version)
		return
	case "plan":
		target := migrate.Latest
		if *targetVersion != "" {
			if target, err = parseTarget(*targetVersion, *command); err != nil {
				break
			}
		}
		if err = showPlan(migrator, target); err == nil {
			return
		}
	case "status":
		if err = showStatus(migrator); err == nil {
			return
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", *command)
		showHelp()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("Migration command failed: %v", err)
	}

	fmt.Println("Migration completed successfully")
}

func parseTarget(raw, command string) (int, error) {
	if raw == "" {
		return 0, fmt.Errorf("-target flag is required for %s command", command)
	}
	target, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid target version: %w", err)
	}
	return target, nil
}

func showStatus(migrator *migrate.Migrator) error {
	currentVersion, err := migrator.GetCurrentVersion()
	if err != nil {
		return err
	}
	status, err := migrator.Status()
	if err != nil {
		return err
	}

	fmt.Printf("Current version: %d\n\n", currentVersion)
	for _, s := range status {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		rollback := ""
		if !s.Reversible {
			rollback = " (no down script)"
		}
		fmt.Printf("  %03d %-8s %s%s\n", s.Version, state, s.Name, rollback)
	}
	return nil
}

func showPlan(migrator *migrate.Migrator, target int) error {
	steps, err := migrator.Plan(target)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		fmt.Println("Nothing to do")
		return nil
	}
	for _, s := range steps {
		fmt.Printf("  %03d %-4s %s -> version %d\n", s.Version, s.Direction, s.Name, s.ResultVersion())
	}
	return nil
}

func showHelp() {
	fmt.Println("Configuration Database Migration Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  migrate [flags]")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -db string         SQLite database path (required)")
	fmt.Println("  -dir string        Migration directory (default: built-in schema)")
	fmt.Println("  -table string      Migration table name (default: schema_migrations)")
	fmt.Println("  -command string    Migration command (default: up)")
	fmt.Println("  -target string     Target version for down/to commands")
	fmt.Println("  -help              Show this help message")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up                 Apply all pending migrations")
	fmt.Println("  down               Roll back to target version")
	fmt.Println("  to                 Migrate to specific version (up or down)")
	fmt.Println("  plan               List the steps up (or to -target) without running them")
	fmt.Println("  version            Show current migration version")
	fmt.Println("  status             Show migration status")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  migrate -db roofsolar.db -command up")
	fmt.Println("  migrate -db roofsolar.db -command down -target 0")
	fmt.Println("  migrate -db roofsolar.db -command status")
}
