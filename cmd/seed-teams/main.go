package main

import (
	"context"
	"flag"
	"os"

	"dynasty-bot/internal/constants"
	"dynasty-bot/internal/database"
	"dynasty-bot/internal/db"
	"dynasty-bot/internal/domain"
	"dynasty-bot/internal/logger"
	"dynasty-bot/internal/repository"
	"dynasty-bot/internal/teamseed"

	"github.com/itbasis/go-clock"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	defaultDB := os.Getenv("DB_PATH")
	if defaultDB == "" {
		defaultDB = "dynasty.db"
	}

	file := flag.String("file", "", "team seed YAML file (default: bundled list)")
	dbPath := flag.String("db", defaultDB, "sqlite database path")
	dryRun := flag.Bool("dry-run", false, "validate the file without writing")
	flag.Parse()

	log := logger.New()

	var (
		teams []domain.Team
		err   error
	)
	if *file == "" {
		teams = teamseed.Default()
	} else if teams, err = teamseed.LoadFile(*file); err != nil {
		log.Fatal().Err(err).Msg("invalid team file")
	}
	log.Info().Int("teams", len(teams)).Str("file", *file).Msg("team file loaded")

	if *dryRun {
		return
	}

	sqlDB, err := database.Open(*dbPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), constants.RequestTimeout)
	defer cancel()

	repo := repository.NewTeamRepository(sqlDB, db.New(sqlDB), clock.New(), log)
	if err := teamseed.Seed(ctx, repo, teams); err != nil {
		log.Fatal().Err(err).Msg("failed to seed teams")
	}
	log.Info().Str("db", *dbPath).Int("teams", len(teams)).Msg("teams seeded")
}
