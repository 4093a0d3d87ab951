package bot

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"dynasty-bot/internal/domain"
	"dynasty-bot/internal/league"
	"dynasty-bot/internal/notify"
	"dynasty-bot/internal/service"

	"github.com/bwmarrin/discordgo"
)

const (
	embedFieldLimit = 1024
	deadlineLayout  = "Jan 2, 3:04 PM MST"
)

func mention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}

func stars(v float64) string {
	if v == float64(int(v)) {
		return fmt.Sprintf("%d★", int(v))
	}
	return fmt.Sprintf("%.1f★", v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

// formatDeadline renders t once per zone. Unknown zones fall back to UTC.
func formatDeadline(t time.Time, zones []string) string {
	if len(zones) == 0 {
		zones = []string{"UTC"}
	}
	var sb strings.Builder
	for _, zone := range zones {
		loc, err := time.LoadLocation(zone)
		if err != nil {
			loc = time.UTC
		}
		sb.WriteString(fmt.Sprintf("%s: **%s**\n", zone, t.In(loc).Format(deadlineLayout)))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func scoreLine(r domain.Result) string {
	if winner, loser, ok := r.Winner(); ok {
		ws, ls := r.Score1, r.Score2
		if winner.ID == r.Team2.ID {
			ws, ls = r.Score2, r.Score1
		}
		return fmt.Sprintf("**%s** %d - %d %s", winner.Name, ws, ls, loser.Name)
	}
	return fmt.Sprintf("%s %d - %d %s (tie)", r.Team1.Name, r.Score1, r.Score2, r.Team2.Name)
}

func recordLine(rank int, r domain.Record) string {
	return fmt.Sprintf("%d. **%s** %d-%d (%.3f)", rank, r.Team.Name, r.Wins, r.Losses, r.Pct())
}

func advanceEmbed(cfg domain.GuildConfig, n notify.Notification) *discordgo.MessageEmbed {
	desc := fmt.Sprintf("The league has advanced to **%s**.\nAll games must be completed within **%d hours**.",
		n.State.Label(), n.Hours)
	if n.Skipped {
		desc = fmt.Sprintf("The rest of the regular season was skipped. The league moves straight to **%s**.\n"+
			"All games must be completed within **%d hours**.", n.State.Label(), n.Hours)
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Advance: Season %d %s", n.State.Season, n.State.Label()),
		Description: desc,
		Color:       cfg.Colors.Primary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Deadline", Value: formatDeadline(n.Deadline, cfg.Timezones)},
			{Name: "Previous", Value: n.PreviousState.Label(), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func recapEmbed(cfg domain.GuildConfig, n notify.Notification) *discordgo.MessageEmbed {
	lines := make([]string, 0, len(n.Results))
	for _, r := range n.Results {
		lines = append(lines, scoreLine(r))
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s Recap: Season %d %s", cfg.LeagueAbbreviation, n.State.Season, n.State.Label()),
		Description: truncate(strings.Join(lines, "\n"), 4096),
		Color:       cfg.Colors.Primary,
	}
}

func rolloverEmbed(cfg domain.GuildConfig, n notify.Notification) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s Season %d Begins", cfg.LeagueName, n.State.Season),
		Description: fmt.Sprintf("Season %d is in the books. Welcome to %s of season %d!", n.PreviousState.Season, n.State.Label(), n.State.Season),
		Color:       cfg.Colors.Primary,
	}
}

func expiredContent(cfg domain.GuildConfig, n notify.Notification) string {
	names := make([]string, 0, len(n.Teams))
	for _, t := range n.Teams {
		names = append(names, t.Name)
	}
	return fmt.Sprintf("%s your job offers in **%s** have expired: %s. Run `/joboffers` for a new batch.",
		mention(n.UserID), cfg.LeagueName, strings.Join(names, ", "))
}

func signedEmbed(cfg domain.GuildConfig, n notify.Notification) *discordgo.MessageEmbed {
	team := teamName(n.Team)
	e := &discordgo.MessageEmbed{
		Color:     cfg.Colors.Primary,
		Timestamp: time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Coach", Value: mention(n.UserID), Inline: true},
			{Name: "Team", Value: team, Inline: true},
		},
	}
	switch n.Kind {
	case notify.KindCoachMoved:
		e.Title = fmt.Sprintf("Coach Moved: %s", team)
		e.Description = fmt.Sprintf("%s has moved from **%s** to **%s**.", mention(n.UserID), teamName(n.PreviousTeam), team)
	case notify.KindCoachReleased:
		e.Title = fmt.Sprintf("Coach Released: %s", team)
		e.Description = fmt.Sprintf("%s is no longer the head coach of **%s**.", mention(n.UserID), team)
		e.Color = cfg.Colors.Loss
	default:
		e.Title = fmt.Sprintf("Coach Signed: %s", team)
		e.Description = fmt.Sprintf("%s has been named head coach of **%s**!", mention(n.UserID), team)
		if n.PreviousTeam != nil {
			e.Description += fmt.Sprintf(" (previously %s)", n.PreviousTeam.Name)
		}
	}
	return e
}

func resultEmbed(cfg domain.GuildConfig, n notify.Notification) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Final: Season %d %s", n.State.Season, n.State.Label()),
		Color: cfg.Colors.Win,
	}
	if len(n.Results) > 0 {
		r := n.Results[0]
		e.Description = scoreLine(r)
		if r.Tie() {
			e.Color = cfg.Colors.Primary
		}
	}
	if n.UserID != "" {
		e.Fields = []*discordgo.MessageEmbedField{{Name: "Reported by", Value: mention(n.UserID), Inline: true}}
	}
	return e
}

func pressEmbed(cfg domain.GuildConfig, n notify.Notification) *discordgo.MessageEmbed {
	title := "Press Release"
	if n.Team != nil {
		title = fmt.Sprintf("Press Release: %s", n.Team.Name)
	}
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: n.Message,
		Color:       cfg.Colors.Primary,
		Fields:      []*discordgo.MessageEmbedField{{Name: "From", Value: mention(n.UserID), Inline: true}},
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

func reminderContent(n notify.Notification) string {
	return fmt.Sprintf("%s **Stream Reminder:** %d minutes have passed since you posted your stream link! Make sure you've notified your opponent.",
		mention(n.UserID), n.Minutes)
}

// render turns a notification into a message for the guild's channels.
func render(cfg domain.GuildConfig, n notify.Notification) (*discordgo.MessageSend, error) {
	msg := &discordgo.MessageSend{}
	switch n.Kind {
	case notify.KindAdvance:
		msg.Embeds = []*discordgo.MessageEmbed{advanceEmbed(cfg, n)}
	case notify.KindWeekRecap:
		msg.Embeds = []*discordgo.MessageEmbed{recapEmbed(cfg, n)}
	case notify.KindSeasonRollover:
		msg.Embeds = []*discordgo.MessageEmbed{rolloverEmbed(cfg, n)}
	case notify.KindOffersExpired:
		msg.Content = expiredContent(cfg, n)
	case notify.KindCoachSigned, notify.KindCoachMoved, notify.KindCoachReleased:
		msg.Embeds = []*discordgo.MessageEmbed{signedEmbed(cfg, n)}
	case notify.KindGameResult:
		msg.Embeds = []*discordgo.MessageEmbed{resultEmbed(cfg, n)}
	case notify.KindPressRelease:
		msg.Embeds = []*discordgo.MessageEmbed{pressEmbed(cfg, n)}
	case notify.KindStreamReminder:
		msg.Content = reminderContent(n)
	default:
		return nil, fmt.Errorf("unknown notification kind %q", n.Kind)
	}
	return msg, nil
}

func teamName(t *domain.Team) string {
	if t == nil {
		return "an unknown team"
	}
	return t.Name
}

func offersEmbed(cfg domain.GuildConfig, batch *service.OfferBatch) *discordgo.MessageEmbed {
	lines := make([]string, 0, len(batch.Offers))
	for i, o := range batch.Offers {
		line := fmt.Sprintf("%d. **%s** %s", i+1, o.Team.Name, stars(o.Team.StarRating))
		if o.Team.Conference != "" {
			line += fmt.Sprintf(" (%s)", o.Team.Conference)
		}
		lines = append(lines, line)
	}
	title := fmt.Sprintf("%s Job Offers", cfg.LeagueName)
	if batch.Existing {
		title += " (still pending)"
	}
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: strings.Join(lines, "\n"),
		Color:       cfg.Colors.Primary,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Offers expire %s", batch.ExpiresAt.UTC().Format(deadlineLayout)),
		},
	}
}

// offerButtons lays the offers out five to a row.
func offerButtons(guildID string, offers []domain.Offer) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	for start := 0; start < len(offers); start += 5 {
		end := min(start+5, len(offers))
		buttons := make([]discordgo.MessageComponent, 0, end-start)
		for _, o := range offers[start:end] {
			buttons = append(buttons, discordgo.Button{
				Label:    truncate(o.Team.Name, 80),
				Style:    discordgo.SuccessButton,
				CustomID: acceptOfferID(guildID, o.Team.ID),
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}
	return rows
}

func standingsEmbed(cfg domain.GuildConfig, title string, st *service.Standings) *discordgo.MessageEmbed {
	if len(st.Records) == 0 {
		return &discordgo.MessageEmbed{Title: title, Description: "No games have been reported yet.", Color: cfg.Colors.Primary}
	}
	lines := make([]string, 0, len(st.Records))
	for i, r := range st.Records {
		lines = append(lines, recordLine(i+1, r))
	}
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: truncate(strings.Join(lines, "\n"), 4096),
		Color:       cfg.Colors.Primary,
	}
}

func teamListEmbed(cfg domain.GuildConfig, teams []domain.TeamStatus) *discordgo.MessageEmbed {
	var taken, open []string
	for _, t := range teams {
		if t.Taken() {
			taken = append(taken, fmt.Sprintf("**%s**: %s", t.Team.Name, mention(t.UserID)))
		} else {
			open = append(open, fmt.Sprintf("**%s** %s", t.Team.Name, stars(t.Team.StarRating)))
		}
	}
	takenValue, openValue := "_None_", "_None, all teams taken!_"
	if len(taken) > 0 {
		takenValue = truncate(strings.Join(taken, "\n"), embedFieldLimit)
	}
	if len(open) > 0 {
		openValue = truncate(strings.Join(open, "\n"), embedFieldLimit)
	}
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s Team List", cfg.LeagueName),
		Color: cfg.Colors.Primary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: fmt.Sprintf("Taken Teams (%d)", len(taken)), Value: takenValue},
			{Name: fmt.Sprintf("Available Teams (%d)", len(open)), Value: openValue},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Contact an admin to join the league!"},
	}
}

func statusEmbed(cfg domain.GuildConfig, meta domain.Meta) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s Status", cfg.LeagueName),
		Color: cfg.Colors.Primary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Season", Value: fmt.Sprint(meta.State.Season), Inline: true},
			{Name: "Phase", Value: meta.State.Label(), Inline: true},
		},
	}
	if meta.AdvanceDeadline != nil {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("Next advance (%dh window)", meta.AdvanceHours),
			Value: formatDeadline(*meta.AdvanceDeadline, cfg.Timezones),
		})
	}
	return e
}

func configEmbed(cfg domain.GuildConfig) *discordgo.MessageEmbed {
	onOff := func(v bool) string {
		if v {
			return "on"
		}
		return "off"
	}
	var features []string
	for _, f := range domain.Features() {
		features = append(features, fmt.Sprintf("`%s`: %s", f, onOff(cfg.Features.Enabled(f))))
	}
	var channels []string
	for _, role := range domain.ChannelRoles() {
		channels = append(channels, fmt.Sprintf("`%s`: #%s", role, cfg.Channels.Name(role)))
	}
	maxStars := "none"
	if cfg.JobOffers.MaxStars != nil {
		maxStars = stars(*cfg.JobOffers.MaxStars)
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s (%s) Configuration", cfg.LeagueName, cfg.LeagueAbbreviation),
		Color:       cfg.Colors.Primary,
		Description: fmt.Sprintf("Setup complete: **%s**, league type: **%s**", onOff(cfg.SetupComplete), cfg.LeagueType),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Features", Value: strings.Join(features, "\n"), Inline: true},
			{Name: "Channels", Value: strings.Join(channels, "\n"), Inline: true},
			{Name: "Head coach role", Value: cfg.HeadCoachRole},
			{Name: "Job offers", Value: fmt.Sprintf("%d offers, %s to %s, expire after %dh",
				cfg.JobOffers.Count, stars(cfg.JobOffers.MinStars), maxStars, cfg.JobOffers.ExpiryHours)},
			{Name: "Advance windows", Value: fmt.Sprintf("%v hours", cfg.AdvanceIntervals), Inline: true},
			{Name: "Stream reminder", Value: fmt.Sprintf("%d minutes", cfg.StreamReminderMinutes), Inline: true},
			{Name: "Timezones", Value: strings.Join(cfg.Timezones, ", ")},
		},
	}
}

// week15Components are the continue or skip buttons for prompt id.
func week15Components(id string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Continue to Week 15", Style: discordgo.PrimaryButton, CustomID: week15ID(id, service.Week15Continue)},
			discordgo.Button{Label: "Skip to " + league.Label(league.ConfChamp, 0), Style: discordgo.SecondaryButton, CustomID: week15ID(id, service.Week15Skip)},
		}},
	}
}
