package main

import (
	"context"
	"database/sql"

	"dynasty-bot/internal/bot"
	"dynasty-bot/internal/constants"
	fxmodules "dynasty-bot/internal/fx"
	"dynasty-bot/internal/repository"
	"dynasty-bot/internal/scheduler"
	"dynasty-bot/internal/server"
	"dynasty-bot/internal/teamseed"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runBot),
	).Run()
}

func runBot(
	lc fx.Lifecycle,
	b *bot.Bot,
	sched *scheduler.Scheduler,
	health *server.HealthServer,
	teams *repository.TeamRepository,
	db *sql.DB,
	logger zerolog.Logger,
) {
	health.SetReady(b.Ready)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := seedTeams(ctx, teams, logger); err != nil {
				return err
			}
			if err := b.Open(); err != nil {
				return err
			}
			if err := sched.Start(); err != nil {
				return err
			}
			health.Start()
			logger.Info().Msg("bot started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down bot")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := health.Stop(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("error stopping health server")
			}
			if err := sched.Stop(); err != nil {
				logger.Warn().Err(err).Msg("error stopping scheduler")
			}
			if err := b.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing discord session")
			}
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}

			logger.Info().Msg("bot stopped gracefully")
			return nil
		},
	})
}

// seedTeams loads the bundled team list into an empty catalog.
func seedTeams(ctx context.Context, teams *repository.TeamRepository, logger zerolog.Logger) error {
	existing, err := teams.ListTeams(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	defaults := teamseed.Default()
	if err := teamseed.Seed(ctx, teams, defaults); err != nil {
		return err
	}
	logger.Info().Int("teams", len(defaults)).Msg("seeded default team catalog")
	return nil
}
