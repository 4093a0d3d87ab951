package bot

import (
	"context"
	"fmt"
	"strings"

	"dynasty-bot/internal/constants"
	"dynasty-bot/internal/domain"
	"dynasty-bot/internal/league"
	"dynasty-bot/internal/service"

	"github.com/bwmarrin/discordgo"
)

type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	m := make(options, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func (o options) str(name string) string {
	if v, ok := o[name]; ok {
		return strings.TrimSpace(v.StringValue())
	}
	return ""
}

func (o options) integer(name string) (int, bool) {
	if v, ok := o[name]; ok {
		return int(v.IntValue()), true
	}
	return 0, false
}

func (o options) boolean(name string, fallback bool) bool {
	if v, ok := o[name]; ok {
		return v.BoolValue()
	}
	return fallback
}

func (o options) user(name string) string {
	if v, ok := o[name]; ok {
		return v.UserValue(nil).ID
	}
	return ""
}

func (b *Bot) handleJobOffers(in *interaction) {
	b.deferReply(in, true)

	userID := in.userID()
	batch, err := b.offers.Request(in.ctx, in.i.GuildID, userID)
	if err != nil {
		b.fail(in, err)
		return
	}
	if len(batch.Offers) == 0 {
		b.edit(in, "No teams are available for job offers right now. Check back later.")
		return
	}

	cfg, err := b.configs.Get(in.ctx, in.i.GuildID)
	if err != nil {
		b.fail(in, err)
		return
	}
	embed := offersEmbed(cfg, batch)
	buttons := offerButtons(in.i.GuildID, batch.Offers)

	dm, err := in.s.UserChannelCreate(userID, discordgo.WithContext(in.ctx))
	if err == nil {
		_, err = in.s.ChannelMessageSendComplex(dm.ID, &discordgo.MessageSend{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: buttons,
		}, discordgo.WithContext(in.ctx))
	}
	if err == nil {
		b.edit(in, "Your job offers are in your DMs.")
		return
	}

	in.logger.Debug().Err(err).Msg("could not DM offers, answering in channel")
	content := "I couldn't DM you, so here are your offers:"
	embeds := []*discordgo.MessageEmbed{embed}
	if _, err := in.s.InteractionResponseEdit(in.i.Interaction, &discordgo.WebhookEdit{
		Content:    &content,
		Embeds:     &embeds,
		Components: &buttons,
	}); err != nil {
		in.logger.Warn().Err(err).Msg("failed to edit interaction response")
	}
}

func (b *Bot) handleGameResult(in *interaction) {
	b.deferReply(in, false)

	opts := optionMap(in.i.ApplicationCommandData().Options)
	yours, _ := opts.integer("your_score")
	theirs, _ := opts.integer("opponent_score")

	out, err := b.leagues.SubmitResult(in.ctx, in.i.GuildID, in.userID(), opts.str("opponent"), yours, theirs)
	if err != nil {
		b.fail(in, err)
		return
	}
	b.edit(in, resultSummary(out)+warningsSuffix(out.Warnings))
}

func (b *Bot) handleAnyGameResult(in *interaction) {
	b.deferReply(in, false)

	opts := optionMap(in.i.ApplicationCommandData().Options)
	s1, _ := opts.integer("score1")
	s2, _ := opts.integer("score2")

	out, err := b.leagues.AdminResult(in.ctx, in.i.GuildID, in.userID(), opts.str("team1"), opts.str("team2"), s1, s2)
	if err != nil {
		b.fail(in, err)
		return
	}
	b.edit(in, resultSummary(out)+warningsSuffix(out.Warnings))
}

func resultSummary(out *service.ResultOutcome) string {
	return fmt.Sprintf("Result recorded: %s\n%s is now %d-%d, %s is now %d-%d.",
		scoreLine(out.Result),
		out.Record1.Team.Name, out.Record1.Wins, out.Record1.Losses,
		out.Record2.Team.Name, out.Record2.Wins, out.Record2.Losses)
}

func (b *Bot) handlePressRelease(in *interaction) {
	b.deferReply(in, true)

	opts := optionMap(in.i.ApplicationCommandData().Options)
	_, warnings, err := b.leagues.PressRelease(in.ctx, in.i.GuildID, in.userID(), opts.str("message"))
	if err != nil {
		b.fail(in, err)
		return
	}
	b.edit(in, "Press release published."+warningsSuffix(warnings))
}

func (b *Bot) handleRanking(in *interaction, allTime bool) {
	b.deferReply(in, false)

	cfg, err := b.configs.Get(in.ctx, in.i.GuildID)
	if err != nil {
		b.fail(in, err)
		return
	}

	var (
		st    *service.Standings
		title string
	)
	if allTime {
		st, err = b.leagues.AllTimeStandings(in.ctx, in.i.GuildID)
		title = fmt.Sprintf("%s All-Time Standings", cfg.LeagueName)
	} else {
		st, err = b.leagues.Standings(in.ctx, in.i.GuildID)
		if st != nil {
			title = fmt.Sprintf("%s Season %d Standings", cfg.LeagueName, st.Season)
		}
	}
	if err != nil {
		b.fail(in, err)
		return
	}
	b.edit(in, "", standingsEmbed(cfg, title, st))
}

// setupInput maps the /setup options onto a SetupInput. A starting point is
// only built when any of season, phase or week was given.
func setupInput(opts options) (service.SetupInput, error) {
	in := service.SetupInput{
		LeagueName:         opts.str("league_name"),
		LeagueAbbreviation: opts.str("abbreviation"),
		LeagueType:         domain.LeagueType(opts.str("league_type")),
		Settings:           map[string]string{},
	}
	for _, key := range []string{"role_head_coach", "advance_intervals", "timezones"} {
		if v := opts.str(key); v != "" {
			in.Settings[key] = v
		}
	}

	season, hasSeason := opts.integer("season")
	week, hasWeek := opts.integer("week")
	phaseName := opts.str("phase")
	if !hasSeason && !hasWeek && phaseName == "" {
		return in, nil
	}

	start := league.Initial()
	if hasSeason {
		start.Season = season
	}
	if phaseName != "" {
		p, err := league.ParsePhase(phaseName)
		if err != nil {
			return in, err
		}
		start.Phase = p
	}
	if !hasWeek {
		week = 1
	}
	start.Sub = week + league.StartSub(start.Phase) - 1
	in.Start = &start
	return in, nil
}

func (b *Bot) handleSetup(in *interaction) {
	b.deferReply(in, true)

	input, err := setupInput(optionMap(in.i.ApplicationCommandData().Options))
	if err != nil {
		b.edit(in, err.Error())
		return
	}
	cfg, err := b.setup.Complete(in.ctx, in.i.GuildID, input)
	if err != nil {
		b.fail(in, err)
		return
	}
	b.edit(in, fmt.Sprintf("%s is set up and ready to go!", cfg.LeagueName), configEmbed(cfg))
}

func (b *Bot) handleConfig(in *interaction) {
	data := in.i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	opts := optionMap(sub.Options)

	b.deferReply(in, true)

	var (
		cfg domain.GuildConfig
		err error
		msg string
	)
	switch sub.Name {
	case "view":
		cfg, err = b.setup.Config(in.ctx, in.i.GuildID)
	case "edit":
		setting := opts.str("setting")
		cfg, err = b.setup.UpdateSetting(in.ctx, in.i.GuildID, setting, opts.str("value"))
		msg = fmt.Sprintf("Updated `%s`.", setting)
	case "features":
		features := make(map[domain.Feature]bool)
		for _, f := range domain.Features() {
			if v, ok := opts[string(f)]; ok {
				features[f] = v.BoolValue()
			}
		}
		if len(features) == 0 {
			b.edit(in, "Pick at least one feature to change.")
			return
		}
		cfg, err = b.setup.SetFeatures(in.ctx, in.i.GuildID, features)
		msg = "Features updated."
	case "reload":
		cfg, err = b.setup.Reload(in.ctx, in.i.GuildID)
		msg = "Configuration reloaded."
	default:
		b.edit(in, "Unknown subcommand.")
		return
	}
	if err != nil {
		b.fail(in, err)
		return
	}
	b.edit(in, msg, configEmbed(cfg))
}

func (b *Bot) handleAssignTeam(in *interaction) {
	b.deferReply(in, false)

	opts := optionMap(in.i.ApplicationCommandData().Options)
	userID := opts.user("user")
	out, err := b.rosters.AssignTeam(in.ctx, in.i.GuildID, userID, opts.str("team"), opts.boolean("announce", true))
	if err != nil {
		b.fail(in, err)
		return
	}
	msg := fmt.Sprintf("%s has been assigned to **%s**.", mention(userID), out.Team.Name)
	if out.Previous != nil {
		msg += fmt.Sprintf(" They left **%s**.", out.Previous.Name)
	}
	b.edit(in, msg+warningsSuffix(out.Warnings))
}

func (b *Bot) handleResetTeam(in *interaction) {
	b.deferReply(in, false)

	userID := optionMap(in.i.ApplicationCommandData().Options).user("user")
	out, err := b.rosters.ResetTeam(in.ctx, in.i.GuildID, userID)
	if err != nil {
		b.fail(in, err)
		return
	}
	b.edit(in, fmt.Sprintf("%s has been removed from **%s**.", mention(userID), out.Team.Name)+warningsSuffix(out.Warnings))
}

func (b *Bot) handleMoveCoach(in *interaction) {
	b.deferReply(in, false)

	opts := optionMap(in.i.ApplicationCommandData().Options)
	userID := opts.user("user")
	out, err := b.rosters.MoveCoach(in.ctx, in.i.GuildID, userID, opts.str("team"))
	if err != nil {
		b.fail(in, err)
		return
	}
	b.edit(in, fmt.Sprintf("%s moved from **%s** to **%s**.", mention(userID), teamName(out.Previous), out.Team.Name)+
		warningsSuffix(out.Warnings))
}

// handleListTeams posts the list to the team lists channel when it exists,
// and answers in place otherwise.
func (b *Bot) handleListTeams(in *interaction) {
	b.deferReply(in, true)

	cfg, err := b.configs.Get(in.ctx, in.i.GuildID)
	if err != nil {
		b.fail(in, err)
		return
	}
	teams, err := b.rosters.ListTeams(in.ctx, in.i.GuildID)
	if err != nil {
		b.fail(in, err)
		return
	}
	embed := teamListEmbed(cfg, teams)

	channelID, err := b.gateway.ChannelID(in.ctx, in.i.GuildID, domain.ChannelTeamLists)
	if err == nil && channelID != in.i.ChannelID {
		if _, err := in.s.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(in.ctx)); err == nil {
			b.edit(in, fmt.Sprintf("Team list posted in <#%s>.", channelID))
			return
		}
	}
	b.edit(in, "", embed)
}

func (b *Bot) handleLeagueStatus(in *interaction) {
	b.deferReply(in, false)

	cfg, err := b.configs.Get(in.ctx, in.i.GuildID)
	if err != nil {
		b.fail(in, err)
		return
	}
	meta, err := b.leagues.State(in.ctx, in.i.GuildID)
	if err != nil {
		b.fail(in, err)
		return
	}
	b.edit(in, "", statusEmbed(cfg, meta))
}

func (b *Bot) handleAdvance(in *interaction) {
	b.deferReply(in, false)

	hours, _ := optionMap(in.i.ApplicationCommandData().Options).integer("hours")
	out, err := b.leagues.Advance(in.ctx, in.i.GuildID, hours, b.week15Chooser(in))
	if err != nil {
		b.fail(in, err)
		return
	}

	msg := fmt.Sprintf("Advanced from **%s** to **%s**. Deadline in %d hours.",
		out.Previous.Label(), out.Meta.State.Label(), out.Hours)
	if out.Skipped {
		msg += " The rest of the regular season was skipped."
	}
	if out.Rollover {
		msg += fmt.Sprintf(" Welcome to season %d!", out.Meta.State.Season)
	}
	if len(out.Recap) > 0 {
		msg += fmt.Sprintf(" %d results were recapped.", len(out.Recap))
	}
	b.edit(in, msg+warningsSuffix(out.Warnings))
}

// week15Chooser asks the admin who ran /advance through a follow-up with two
// buttons and waits for the press or for ctx to end.
func (b *Bot) week15Chooser(in *interaction) service.Week15Chooser {
	return service.Week15ChooserFunc(func(ctx context.Context, t league.Transition) (service.Week15Choice, error) {
		id, answer := b.prompts.open(in.userID())
		defer b.prompts.close(id)

		seconds := int(b.timeout.Seconds())
		if seconds <= 0 {
			seconds = int(constants.Week15PromptTimeout.Seconds())
		}
		_, err := in.s.FollowupMessageCreate(in.i.Interaction, true, &discordgo.WebhookParams{
			Content:    fmt.Sprintf("Season %d is about to enter **Week 15**. Play it, or skip to the conference championships? (%ds to decide)", t.From.Season, seconds),
			Components: week15Components(id),
			Flags:      discordgo.MessageFlagsEphemeral,
		})
		if err != nil {
			return 0, fmt.Errorf("send week 15 prompt: %w", err)
		}

		select {
		case choice := <-answer:
			return choice, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	})
}
