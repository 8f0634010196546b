// cmd/tools/dbmigrate/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/clubconnect/internal/config"
)

const defaultMigrationsPath = "internal/db/migrations"

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var (
		configPath     = flag.String("config", "", "Path to app.yaml; its database filename is used when -db is empty")
		dbPath         = flag.String("db", "", "Path to SQLite database")
		migrationsPath = flag.String("migrations", defaultMigrationsPath, "Path to migrations directory")
		command        = flag.String("command", "", "Command to run (up, down, steps, force, version)")
		steps          = flag.Int("n", 0, "Step count for steps, version for force")
	)
	flag.Parse()

	database, err := resolveDBPath(*dbPath, *configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid database flags")
	}
	if *command == "" {
		fmt.Fprintln(os.Stderr, "-command is required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Convert paths to absolute
	absDB, err := filepath.Abs(database)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid database path")
	}

	absMigrations, err := filepath.Abs(*migrationsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid migrations path")
	}

	// Ensure migrations directory exists
	if _, err := os.Stat(absMigrations); os.IsNotExist(err) {
		log.Fatal().Str("path", absMigrations).Msg("Migrations directory does not exist")
	}

	// Create database directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(absDB), 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create database directory")
	}

	sourceURL := fmt.Sprintf("file://%s", absMigrations)
	databaseURL := fmt.Sprintf("sqlite3://%s?_foreign_keys=on", absDB)

	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create migrate instance")
	}
	defer m.Close()

	logger := log.With().Str("db", absDB).Str("command", *command).Logger()
	if err := run(m, *command, *steps); err != nil {
		logger.Fatal().Err(err).Msg("Migration command failed")
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Info().Msg("No migrations applied")
	case err != nil:
		logger.Fatal().Err(err).Msg("Failed to get version")
	default:
		logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("Migration command completed")
	}
}

func resolveDBPath(dbPath, configPath string) (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if configPath == "" {
		return "", errors.New("either -db or -config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", err
	}
	return cfg.Database.Filename, nil
}

func run(m *migrate.Migrate, command string, n int) error {
	var err error
	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		if n == 0 {
			return errors.New("steps requires -n")
		}
		err = m.Steps(n)
	case "force":
		err = m.Force(n)
	case "version":
		return nil
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
