package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/agencyhub/backend/internal/infrastructure/config"
	"github.com/agencyhub/backend/internal/infrastructure/logger"
	"github.com/agencyhub/backend/internal/infrastructure/migration"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: migrate [flags] <command> [args]

Commands:
  up              Apply all pending migrations
  down            Roll back all migrations
  step <n>        Apply n migrations (negative n rolls back)
  version         Print current migration version
  force <v>       Set version without running migrations (repairs dirty state)

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	var (
		migrationsPath = flag.String("path", "migrations", "Path to migration files")
		logLevel       = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:  *logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	migrator, err := migration.New(db, *migrationsPath, log)
	if err != nil {
		log.Fatal("failed to create migrator", zap.Error(err))
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			log.Error("failed to close migrator", zap.Error(err))
		}
	}()

	command := flag.Arg(0)
	switch command {
	case "up":
		if err := migrator.Up(); err != nil {
			log.Fatal("migration up failed", zap.Error(err))
		}
		log.Info("migrations up to date")

	case "down":
		if err := migrator.Down(); err != nil {
			log.Fatal("migration down failed", zap.Error(err))
		}
		log.Info("all migrations rolled back")

	case "step":
		if flag.NArg() < 2 {
			log.Fatal("step requires a count, e.g. 'step 1' or 'step -1'")
		}
		n, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			log.Fatal("invalid step count", zap.String("arg", flag.Arg(1)))
		}
		if err := migrator.Steps(n); err != nil {
			log.Fatal("migration step failed", zap.Error(err))
		}
		log.Info("migration step complete", zap.Int("steps", n))

	case "version":
		version, dirty, err := migrator.Version()
		if err != nil {
			log.Fatal("failed to get version", zap.Error(err))
		}
		log.Info("current migration version",
			zap.Uint("version", version),
			zap.Bool("dirty", dirty))

	case "force":
		if flag.NArg() < 2 {
			log.Fatal("force requires a version, e.g. 'force 3'")
		}
		v, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			log.Fatal("invalid version", zap.String("arg", flag.Arg(1)))
		}
		if err := migrator.Force(v); err != nil {
			log.Fatal("failed to force version", zap.Error(err))
		}
		log.Info("version forced", zap.Int("version", v))

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		usage()
		os.Exit(2)
	}
}
