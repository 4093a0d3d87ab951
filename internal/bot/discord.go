package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dynasty-bot/internal/config"
	"dynasty-bot/internal/domain"
	"dynasty-bot/internal/guildconfig"
	"dynasty-bot/internal/notify"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

var (
	ErrChannelNotFound = errors.New("channel not found")
	ErrRoleUnavailable = errors.New("head coach role unavailable")
)

// discordAPI is the slice of *discordgo.Session the gateway talks to.
type discordAPI interface {
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// NewSession builds the gateway session. It is opened by the bot's lifecycle hook.
func NewSession(cfg *config.Config) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent
	return session, nil
}

// Gateway delivers notifications and manages the head coach role over the
// Discord REST API.
type Gateway struct {
	api     discordAPI
	configs *guildconfig.Cache
	logger  zerolog.Logger
}

func NewGateway(session *discordgo.Session, configs *guildconfig.Cache, logger zerolog.Logger) *Gateway {
	return newGateway(session, configs, logger)
}

func newGateway(api discordAPI, configs *guildconfig.Cache, logger zerolog.Logger) *Gateway {
	return &Gateway{
		api:     api,
		configs: configs,
		logger:  logger.With().Str("component", "gateway").Logger(),
	}
}

func (g *Gateway) Notify(ctx context.Context, n notify.Notification) error {
	cfg, err := g.configs.Get(ctx, n.Target.GuildID)
	if err != nil {
		return err
	}
	msg, err := render(cfg, n)
	if err != nil {
		return err
	}

	opt := discordgo.WithContext(ctx)
	t := n.Target
	switch {
	case t.ChannelID != "":
		_, err := g.api.ChannelMessageSendComplex(t.ChannelID, msg, opt)
		return err
	case t.UserID != "":
		err := g.sendDM(ctx, t.UserID, msg)
		if err == nil {
			return nil
		}
		g.logger.Debug().Err(err).Str("user_id", t.UserID).Msg("direct message failed, falling back to channel")
	}
	return g.sendToRole(ctx, cfg, t, msg)
}

func (g *Gateway) sendDM(ctx context.Context, userID string, msg *discordgo.MessageSend) error {
	opt := discordgo.WithContext(ctx)
	ch, err := g.api.UserChannelCreate(userID, opt)
	if err != nil {
		return fmt.Errorf("open dm: %w", err)
	}
	if _, err := g.api.ChannelMessageSendComplex(ch.ID, msg, opt); err != nil {
		return fmt.Errorf("send dm: %w", err)
	}
	return nil
}

func (g *Gateway) sendToRole(ctx context.Context, cfg domain.GuildConfig, t notify.Target, msg *discordgo.MessageSend) error {
	channelID, err := g.resolveChannel(ctx, cfg, t.Channel, t.Fallback)
	if err != nil {
		return err
	}
	_, err = g.api.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx))
	return err
}

// resolveChannel looks up the text channel configured for role, then for
// fallback. Names are compared case-insensitively at use time so renames in
// the config take effect immediately.
func (g *Gateway) resolveChannel(ctx context.Context, cfg domain.GuildConfig, role, fallback domain.ChannelRole) (string, error) {
	channels, err := g.api.GuildChannels(cfg.GuildID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("list channels: %w", err)
	}
	for _, r := range []domain.ChannelRole{role, fallback} {
		if r == "" {
			continue
		}
		if id := findTextChannel(channels, cfg.Channels.Name(r)); id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrChannelNotFound, role)
}

func findTextChannel(channels []*discordgo.Channel, name string) string {
	if name == "" {
		return ""
	}
	for _, c := range channels {
		if c.Type == discordgo.ChannelTypeGuildText && strings.EqualFold(c.Name, name) {
			return c.ID
		}
	}
	return ""
}

// ChannelID resolves a logical channel for callers outside the notifier.
func (g *Gateway) ChannelID(ctx context.Context, guildID string, role domain.ChannelRole) (string, error) {
	cfg, err := g.configs.Get(ctx, guildID)
	if err != nil {
		return "", err
	}
	return g.resolveChannel(ctx, cfg, role, "")
}

func (g *Gateway) GrantHeadCoach(ctx context.Context, guildID, userID, roleName, roleID string) (string, error) {
	role, err := g.findRole(ctx, guildID, roleName, roleID)
	if err != nil {
		return "", err
	}
	opt := discordgo.WithContext(ctx)
	if role == nil {
		if roleName == "" {
			return "", ErrRoleUnavailable
		}
		role, err = g.api.GuildRoleCreate(guildID, &discordgo.RoleParams{Name: roleName}, opt)
		if err != nil {
			return "", fmt.Errorf("create role %q: %w", roleName, err)
		}
		g.logger.Info().Str("guild_id", guildID).Str("role", roleName).Msg("created head coach role")
	}
	if err := g.api.GuildMemberRoleAdd(guildID, userID, role.ID, opt); err != nil {
		return "", fmt.Errorf("grant role: %w", err)
	}
	return role.ID, nil
}

func (g *Gateway) RevokeHeadCoach(ctx context.Context, guildID, userID, roleName, roleID string) error {
	role, err := g.findRole(ctx, guildID, roleName, roleID)
	if err != nil {
		return err
	}
	if role == nil {
		return nil
	}
	if err := g.api.GuildMemberRoleRemove(guildID, userID, role.ID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}
	return nil
}

// findRole prefers the cached id and falls back to a case-insensitive name match.
func (g *Gateway) findRole(ctx context.Context, guildID, roleName, roleID string) (*discordgo.Role, error) {
	roles, err := g.api.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	if roleID != "" {
		for _, r := range roles {
			if r.ID == roleID {
				return r, nil
			}
		}
	}
	if roleName != "" {
		for _, r := range roles {
			if strings.EqualFold(r.Name, roleName) {
				return r, nil
			}
		}
	}
	return nil, nil
}

var (
	_ notify.Notifier    = (*Gateway)(nil)
	_ notify.RoleManager = (*Gateway)(nil)
)
