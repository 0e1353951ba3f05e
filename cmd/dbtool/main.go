package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"commute-route-service/internal/adapters/repositories"
	"commute-route-service/internal/adapters/survey"
	"commute-route-service/internal/app"
	"commute-route-service/internal/config"
	"commute-route-service/internal/platform/db"
	"commute-route-service/internal/platform/obs"
)

// dbtool prepares the stores without needing directions credentials:
// SQLite schema, optional Postgres cache schema and survey import.
func main() {
	_ = godotenv.Load()

	var (
		sqlitePath  = flag.String("sqlite", config.Get("COMMUTE_DATABASE_SQLITE_PATH", "data/app.db"), "SQLite file for survey answers and routes")
		databaseURL = flag.String("postgres", config.Get("COMMUTE_DATABASE_URL", ""), "Postgres URL for the shared caches (optional)")
		surveyPath  = flag.String("survey", "", "survey CSV to import (optional)")
		encoding    = flag.String("encoding", config.Get("COMMUTE_SURVEY_ENCODING", "latin1"), "survey encoding: latin1 or utf8")
	)
	flag.Parse()

	log, err := obs.NewLogger(config.Get("COMMUTE_APP_ENV", "development"), "dbtool")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("initializing sqlite schema", zap.String("path", *sqlitePath))
	store, err := app.OpenStore(*sqlitePath)
	if err != nil {
		log.Fatal("schema initialization failed", zap.Error(err))
	}
	defer store.Close()

	if strings.TrimSpace(*databaseURL) != "" {
		log.Info("initializing postgres cache schema")
		pg, err := db.Open(*databaseURL)
		if err != nil {
			log.Fatal("postgres connection failed", zap.Error(err))
		}
		defer pg.Close()

		if err := repositories.InitPostgresSchema(pg); err != nil {
			log.Fatal("postgres schema initialization failed", zap.Error(err))
		}
	}
	log.Info("schema ready")

	if *surveyPath == "" {
		return
	}

	opts := survey.DefaultOptions()
	opts.Encoding = *encoding

	log.Info("importing survey", zap.String("path", *surveyPath))
	n, err := repositories.SeedFromCSV(context.Background(), store, *surveyPath, opts, log.Named("survey"))
	if err != nil {
		log.Fatal("import failed", zap.Error(err))
	}
	log.Info("import complete", zap.Int("rows", n))
}
