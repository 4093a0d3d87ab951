package bot

import (
	"context"
	"fmt"
	"time"

	"dynasty-bot/internal/config"
	"dynasty-bot/internal/constants"
	"dynasty-bot/internal/domain"
	"dynasty-bot/internal/guildconfig"
	"dynasty-bot/internal/middleware"
	"dynasty-bot/internal/service"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// StreamReminders schedules the follow-up ping for a posted stream link.
type StreamReminders interface {
	ScheduleStreamReminder(ctx context.Context, guildID, channelID, userID string) (bool, time.Time, error)
}

type Bot struct {
	session   *discordgo.Session
	gateway   *Gateway
	configs   *guildconfig.Cache
	leagues   *service.LeagueService
	offers    *service.OfferService
	rosters   *service.RosterService
	setup     *service.SetupService
	reminders StreamReminders
	prompts   *prompts
	appID     string
	timeout   time.Duration
	logger    zerolog.Logger
}

func New(
	cfg *config.Config,
	session *discordgo.Session,
	gateway *Gateway,
	configs *guildconfig.Cache,
	leagues *service.LeagueService,
	offers *service.OfferService,
	rosters *service.RosterService,
	setup *service.SetupService,
	reminders StreamReminders,
	logger zerolog.Logger,
) *Bot {
	b := &Bot{
		session:   session,
		gateway:   gateway,
		configs:   configs,
		leagues:   leagues,
		offers:    offers,
		rosters:   rosters,
		setup:     setup,
		reminders: reminders,
		prompts:   newPrompts(),
		appID:     cfg.DiscordAppID,
		timeout:   cfg.Week15PromptTimeout,
		logger:    logger.With().Str("component", "bot").Logger(),
	}
	b.registerHandlers()
	return b
}

func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	if err := b.registerCommands(); err != nil {
		return err
	}
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// Ready reports whether the gateway connection is up.
func (b *Bot) Ready() bool {
	return b.session.DataReady
}

func (b *Bot) registerHandlers() {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onGuildCreate)
	b.session.AddHandler(b.onInteraction)
	b.session.AddHandler(b.onMessage)
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("bot is ready")
	for _, g := range r.Guilds {
		b.initGuild(g)
	}
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	b.initGuild(g.Guild)
}

func (b *Bot) initGuild(g *discordgo.Guild) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()

	if _, err := b.setup.InitGuild(ctx, g.ID, g.Name); err != nil {
		b.logger.Error().Err(err).Str("guild_id", g.ID).Msg("failed to initialize guild")
	}
}

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	if !hasStreamLink(m.Content) {
		return
	}

	ctx, logger, _ := middleware.WithRequestID(context.Background(), b.logger, "")
	ctx, cancel := context.WithTimeout(ctx, constants.DiscordAPITimeout)
	defer cancel()

	cfg, err := b.configs.Get(ctx, m.GuildID)
	if err != nil {
		logger.Error().Err(err).Str("guild_id", m.GuildID).Msg("failed to load config")
		return
	}
	if !cfg.SetupComplete || !cfg.Features.Enabled(domain.FeatureStreamReminders) {
		return
	}
	streamID, err := b.gateway.ChannelID(ctx, m.GuildID, domain.ChannelStreaming)
	if err != nil || streamID != m.ChannelID {
		return
	}

	scheduled, at, err := b.reminders.ScheduleStreamReminder(ctx, m.GuildID, m.ChannelID, m.Author.ID)
	if err != nil {
		if _, ok := service.AsRejection(err); !ok {
			logger.Error().Err(err).Str("guild_id", m.GuildID).Msg("failed to schedule stream reminder")
		}
		return
	}
	if scheduled {
		logger.Info().
			Str("guild_id", m.GuildID).
			Str("user_id", m.Author.ID).
			Time("at", at).
			Msg("stream reminder scheduled")
	}
}

// interaction carries one request through its handler.
type interaction struct {
	ctx    context.Context
	s      *discordgo.Session
	i      *discordgo.InteractionCreate
	logger zerolog.Logger
}

func (in *interaction) userID() string {
	if in.i.Member != nil && in.i.Member.User != nil {
		return in.i.Member.User.ID
	}
	if in.i.User != nil {
		return in.i.User.ID
	}
	return ""
}

func (in *interaction) isAdmin() bool {
	return in.i.Member != nil && in.i.Member.Permissions&adminPermissions != 0
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, logger, _ := middleware.WithRequestID(context.Background(), b.logger, "")
	in := &interaction{ctx: ctx, s: s, i: i}
	in.logger = logger.With().Str("guild_id", i.GuildID).Str("user_id", in.userID()).Logger()

	defer func() {
		if r := recover(); r != nil {
			in.logger.Error().Interface("panic", r).Msg("interaction handler panicked")
			b.fail(in, fmt.Errorf("panic: %v", r))
		}
	}()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.dispatchCommand(in)
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.autocomplete(in)
	case discordgo.InteractionMessageComponent:
		b.dispatchComponent(in)
	}
}

func (b *Bot) dispatchCommand(in *interaction) {
	name := in.i.ApplicationCommandData().Name
	in.logger.Debug().Str("command", name).Msg("received command")

	if in.i.GuildID == "" {
		b.reply(in, "This command only works inside a league server.", true)
		return
	}

	switch name {
	case "joboffers":
		b.handleJobOffers(in)
	case "game-result":
		b.handleGameResult(in)
	case "any-game-result":
		b.adminOnly(in, b.handleAnyGameResult)
	case "press-release":
		b.handlePressRelease(in)
	case "ranking":
		b.handleRanking(in, false)
	case "ranking-all-time":
		b.handleRanking(in, true)
	case "setup":
		b.adminOnly(in, b.handleSetup)
	case "config":
		b.adminOnly(in, b.handleConfig)
	case "assign-team":
		b.adminOnly(in, b.handleAssignTeam)
	case "resetteam":
		b.adminOnly(in, b.handleResetTeam)
	case "listteams":
		b.handleListTeams(in)
	case "advance":
		b.adminOnly(in, b.handleAdvance)
	case "move-coach":
		b.adminOnly(in, b.handleMoveCoach)
	case "league-status":
		b.handleLeagueStatus(in)
	default:
		in.logger.Warn().Str("command", name).Msg("unknown command")
	}
}

func (b *Bot) adminOnly(in *interaction, handler func(*interaction)) {
	if !in.isAdmin() {
		b.reply(in, "Only league admins can use this command.", true)
		return
	}
	handler(in)
}

func (b *Bot) reply(in *interaction, content string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	b.respond(in, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func (b *Bot) respond(in *interaction, resp *discordgo.InteractionResponse) {
	if err := in.s.InteractionRespond(in.i.Interaction, resp); err != nil {
		in.logger.Warn().Err(err).Msg("failed to respond to interaction")
	}
}

// deferReply acknowledges the interaction so slow work can finish with edit.
func (b *Bot) deferReply(in *interaction, ephemeral bool) {
	resp := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource}
	if ephemeral {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	b.respond(in, resp)
}

func (b *Bot) edit(in *interaction, content string, embeds ...*discordgo.MessageEmbed) {
	edit := &discordgo.WebhookEdit{Content: &content}
	if len(embeds) > 0 {
		edit.Embeds = &embeds
	}
	if _, err := in.s.InteractionResponseEdit(in.i.Interaction, edit); err != nil {
		in.logger.Warn().Err(err).Msg("failed to edit interaction response")
	}
}

// fail answers a deferred or fresh interaction with the outcome of err.
// Rejections carry their own message; anything else is logged and hidden.
func (b *Bot) fail(in *interaction, err error) {
	msg := userMessage(err)
	if _, ok := service.AsRejection(err); !ok {
		in.logger.Error().Err(err).Msg("interaction failed")
	}
	if _, editErr := in.s.InteractionResponseEdit(in.i.Interaction, &discordgo.WebhookEdit{Content: &msg}); editErr != nil {
		b.reply(in, msg, true)
	}
}

func userMessage(err error) string {
	if r, ok := service.AsRejection(err); ok {
		return r.Message
	}
	return "Something went wrong. Please try again."
}

func warningsSuffix(warnings []string) string {
	if len(warnings) == 0 {
		return ""
	}
	out := "\n\nHeads up:"
	for _, w := range warnings {
		out += "\n- " + w
	}
	return out
}
