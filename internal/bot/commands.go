package bot

import (
	"fmt"

	"dynasty-bot/internal/constants"
	"dynasty-bot/internal/domain"
	"dynasty-bot/internal/guildconfig"
	"dynasty-bot/internal/league"

	"github.com/bwmarrin/discordgo"
)

const adminPermissions int64 = discordgo.PermissionAdministrator | discordgo.PermissionManageServer

var (
	minScore     = 0.0
	minPositive  = 1.0
	minSeason    = 1.0
	adminDefault = adminPermissions
	dmAllowed    = false
)

func teamOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         name,
		Description:  description,
		Required:     required,
		Autocomplete: true,
	}
}

func scoreOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: description,
		Required:    true,
		MinValue:    &minScore,
		MaxValue:    constants.MaxScore,
	}
}

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		Required:    true,
	}
}

func phaseChoices() []*discordgo.ApplicationCommandOptionChoice {
	phases := league.Phases()
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(phases))
	for i, p := range phases {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{
			Name:  league.Label(p, league.StartSub(p)),
			Value: string(p),
		}
	}
	return choices
}

func settingChoices() []*discordgo.ApplicationCommandOptionChoice {
	names := guildconfig.SettingNames()
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(names))
	for i, n := range names {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{Name: n, Value: n}
	}
	return choices
}

func featureOptions() []*discordgo.ApplicationCommandOption {
	features := domain.Features()
	opts := make([]*discordgo.ApplicationCommandOption, len(features))
	for i, f := range features {
		opts[i] = &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        string(f),
			Description: fmt.Sprintf("Enable %s", f),
		}
	}
	return opts
}

func admin(cmd *discordgo.ApplicationCommand) *discordgo.ApplicationCommand {
	cmd.DefaultMemberPermissions = &adminDefault
	cmd.DMPermission = &dmAllowed
	return cmd
}

func guildOnly(cmd *discordgo.ApplicationCommand) *discordgo.ApplicationCommand {
	cmd.DMPermission = &dmAllowed
	return cmd
}

func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		guildOnly(&discordgo.ApplicationCommand{
			Name:        "joboffers",
			Description: "Get job offers from open teams",
		}),
		guildOnly(&discordgo.ApplicationCommand{
			Name:        "game-result",
			Description: "Report the result of your game",
			Options: []*discordgo.ApplicationCommandOption{
				teamOption("opponent", "The team you played", true),
				scoreOption("your_score", "Your team's score"),
				scoreOption("opponent_score", "Your opponent's score"),
			},
		}),
		admin(&discordgo.ApplicationCommand{
			Name:        "any-game-result",
			Description: "Report a result between any two teams",
			Options: []*discordgo.ApplicationCommandOption{
				teamOption("team1", "First team", true),
				teamOption("team2", "Second team", true),
				scoreOption("score1", "First team's score"),
				scoreOption("score2", "Second team's score"),
			},
		}),
		guildOnly(&discordgo.ApplicationCommand{
			Name:        "press-release",
			Description: "Publish a press release to the news feed",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "What you want to say",
					Required:    true,
					MaxLength:   constants.MaxPressReleaseLength,
				},
			},
		}),
		guildOnly(&discordgo.ApplicationCommand{
			Name:        "ranking",
			Description: "Current season standings",
		}),
		guildOnly(&discordgo.ApplicationCommand{
			Name:        "ranking-all-time",
			Description: "All-time standings",
		}),
		admin(&discordgo.ApplicationCommand{
			Name:        "setup",
			Description: "Finish setting up the league",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "league_name", Description: "League display name", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "abbreviation", Description: "Short league tag", Required: true},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "league_type",
					Description: "New league or an established one already in progress",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "New", Value: string(domain.LeagueTypeNew)},
						{Name: "Established", Value: string(domain.LeagueTypeEstablished)},
					},
				},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "season", Description: "Current season (established leagues)", MinValue: &minSeason},
				{Type: discordgo.ApplicationCommandOptionString, Name: "phase", Description: "Current phase (established leagues)", Choices: phaseChoices()},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "week", Description: "Week within the phase (established leagues)", MinValue: &minPositive},
				{Type: discordgo.ApplicationCommandOptionString, Name: "role_head_coach", Description: "Head coach role name"},
				{Type: discordgo.ApplicationCommandOptionString, Name: "advance_intervals", Description: "Allowed advance windows in hours, e.g. 24, 48"},
				{Type: discordgo.ApplicationCommandOptionString, Name: "timezones", Description: "Deadline timezones, e.g. America/New_York, UTC"},
			},
		}),
		admin(&discordgo.ApplicationCommand{
			Name:        "config",
			Description: "View or change league configuration",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "view", Description: "Show the current configuration"},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "edit",
					Description: "Change one setting",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "setting", Description: "Setting to change", Required: true, Choices: settingChoices()},
						{Type: discordgo.ApplicationCommandOptionString, Name: "value", Description: "New value", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "features",
					Description: "Turn features on or off",
					Options:     featureOptions(),
				},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "reload", Description: "Reload the configuration from storage"},
			},
		}),
		admin(&discordgo.ApplicationCommand{
			Name:        "assign-team",
			Description: "Assign a team to a coach",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("Coach to assign"),
				teamOption("team", "Team to assign", true),
				{Type: discordgo.ApplicationCommandOptionBoolean, Name: "announce", Description: "Announce the signing (default yes)"},
			},
		}),
		admin(&discordgo.ApplicationCommand{
			Name:        "resetteam",
			Description: "Remove a coach from their team",
			Options:     []*discordgo.ApplicationCommandOption{userOption("Coach to remove")},
		}),
		guildOnly(&discordgo.ApplicationCommand{
			Name:        "listteams",
			Description: "List taken and available teams",
		}),
		admin(&discordgo.ApplicationCommand{
			Name:        "advance",
			Description: "Advance the league and set a new deadline",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "hours", Description: "Hours until the next deadline", MinValue: &minPositive},
			},
		}),
		admin(&discordgo.ApplicationCommand{
			Name:        "move-coach",
			Description: "Move a coach to a different team",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("Coach to move"),
				teamOption("team", "New team", true),
			},
		}),
		guildOnly(&discordgo.ApplicationCommand{
			Name:        "league-status",
			Description: "Show the current season, phase and deadline",
		}),
	}
}

func (b *Bot) registerCommands() error {
	appID := b.appID
	if appID == "" && b.session.State != nil && b.session.State.User != nil {
		appID = b.session.State.User.ID
	}
	registered, err := b.session.ApplicationCommandBulkOverwrite(appID, "", commandDefinitions())
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	b.logger.Info().Int("count", len(registered)).Msg("slash commands registered")
	return nil
}
