package fx

import (
	"database/sql"

	"dynasty-bot/internal/api"
	"dynasty-bot/internal/bot"
	"dynasty-bot/internal/config"
	"dynasty-bot/internal/database"
	"dynasty-bot/internal/db"
	"dynasty-bot/internal/guildconfig"
	"dynasty-bot/internal/logger"
	"dynasty-bot/internal/notify"
	"dynasty-bot/internal/repository"
	"dynasty-bot/internal/scheduler"
	"dynasty-bot/internal/server"
	"dynasty-bot/internal/service"

	"github.com/bwmarrin/discordgo"
	"github.com/itbasis/go-clock"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

func ProvideClock() clock.Clock {
	return clock.New()
}

func ProvideConfigCache(store *repository.ConfigRepository, logger zerolog.Logger) *guildconfig.Cache {
	return guildconfig.NewCache(store, logger)
}

func ProvideNotifier(g *bot.Gateway) notify.Notifier {
	return g
}

func ProvideRoleManager(g *bot.Gateway) notify.RoleManager {
	return g
}

func ProvideScheduler(
	cfg *config.Config,
	offers *service.OfferService,
	pinger *api.KeepAliveClient,
	configs *guildconfig.Cache,
	notifier notify.Notifier,
	clk clock.Clock,
	logger zerolog.Logger,
) (*scheduler.Scheduler, error) {
	return scheduler.New(cfg, offers, pinger, configs, notifier, clk, logger)
}

func ProvideBot(
	cfg *config.Config,
	session *discordgo.Session,
	gateway *bot.Gateway,
	configs *guildconfig.Cache,
	leagues *service.LeagueService,
	offers *service.OfferService,
	rosters *service.RosterService,
	setup *service.SetupService,
	sched *scheduler.Scheduler,
	logger zerolog.Logger,
) *bot.Bot {
	return bot.New(cfg, session, gateway, configs, leagues, offers, rosters, setup, sched, logger)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	fx.Provide(ProvideClock),
	// repos
	fx.Provide(repository.NewConfigRepository),
	fx.Provide(repository.NewTeamRepository),
	fx.Provide(repository.NewSeasonRepository),
	fx.Provide(repository.NewOfferRepository),
	fx.Provide(ProvideConfigCache),
	// discord
	fx.Provide(bot.NewSession),
	fx.Provide(bot.NewGateway),
	fx.Provide(ProvideNotifier),
	fx.Provide(ProvideRoleManager),
	// api client
	fx.Provide(api.NewKeepAliveClient),
	// svc
	fx.Provide(service.NewLeagueService),
	fx.Provide(service.NewOfferService),
	fx.Provide(service.NewRosterService),
	fx.Provide(service.NewSetupService),
	fx.Provide(ProvideScheduler),
	// bot + health
	fx.Provide(ProvideBot),
	fx.Provide(server.NewHealthServer),
)
