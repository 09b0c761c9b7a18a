package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/cherrycherry3/crt-backend/internal/config"
	"github.com/cherrycherry3/crt-backend/internal/repository/postgres"
	"github.com/cherrycherry3/crt-backend/pkg/logger"
	"github.com/joho/godotenv"
)

const (
	defaultSchemaPath = "migrations/001_init.sql"
	setupTimeout      = 2 * time.Minute

	tableExistsQuery = `SELECT EXISTS (
		SELECT FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = $1
	)`
)

var expectedTables = []string{
	"roles", "users", "login_history",
	"colleges", "college_branches", "academic_years", "college_admins",
	"students", "student_scores", "teachers",
	"courses", "college_courses", "course_files", "student_courses",
	"tests", "test_attempts", "rankings", "audit_logs",
}

func main() {
	schemaPath := flag.String("schema", defaultSchemaPath, "path to the schema file")
	flag.Parse()

	log := logger.New(logger.Options{Level: "info", Format: logger.FormatConsole, Service: "crt-setup"})

	if err := godotenv.Load(".env"); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	log.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.Database).Msg("connected")

	schema, err := os.ReadFile(*schemaPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *schemaPath).Msg("failed to read schema file")
	}

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	// Simple protocol lets a multi-statement script run in one Exec.
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to acquire connection")
	}
	defer conn.Release()

	if _, err := conn.Conn().PgConn().Exec(ctx, string(schema)).ReadAll(); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schema")
	}

	log.Info().Str("path", *schemaPath).Msg("schema applied")

	missing := 0
	for _, table := range expectedTables {
		var exists bool
		if err := db.Pool.QueryRow(ctx, tableExistsQuery, table).Scan(&exists); err != nil {
			log.Error().Err(err).Str("table", table).Msg("failed to check table")
			missing++
			continue
		}

		if !exists {
			log.Error().Str("table", table).Msg("table not created")
			missing++
			continue
		}

		log.Info().Str("table", table).Msg("table ready")
	}

	if missing > 0 {
		log.Fatal().Int("missing", missing).Msg("database setup incomplete")
	}

	log.Info().Msg("database setup complete")
}
