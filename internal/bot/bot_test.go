package bot

import (
	"errors"
	"strings"
	"testing"
	"time"

	"dynasty-bot/internal/domain"
	"dynasty-bot/internal/guildconfig"
	"dynasty-bot/internal/league"
	"dynasty-bot/internal/notify"
	"dynasty-bot/internal/service"

	"github.com/bwmarrin/discordgo"
)

var errBoom = errors.New("boom")

func TestAcceptOfferID(t *testing.T) {
	id := acceptOfferID("123456", 42)
	if id != "accept-offer_123456_42" {
		t.Fatalf("acceptOfferID() = %q", id)
	}

	tests := map[string]struct {
		id     string
		guild  string
		team   int64
		wantOK bool
	}{
		"round trip":    {id: id, guild: "123456", team: 42, wantOK: true},
		"wrong prefix":  {id: "week15_abc_skip"},
		"missing team":  {id: "accept-offer_123456"},
		"bad team":      {id: "accept-offer_123456_x"},
		"zero team":     {id: "accept-offer_123456_0"},
		"missing guild": {id: "accept-offer__42"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			guild, team, ok := parseAcceptOfferID(tt.id)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if guild != tt.guild || team != tt.team {
				t.Errorf("got (%q, %d), want (%q, %d)", guild, team, tt.guild, tt.team)
			}
		})
	}
}

func TestWeek15ID(t *testing.T) {
	tests := map[string]struct {
		id         string
		wantPrompt string
		wantChoice service.Week15Choice
		wantOK     bool
	}{
		"continue":       {id: week15ID("p-1", service.Week15Continue), wantPrompt: "p-1", wantChoice: service.Week15Continue, wantOK: true},
		"skip":           {id: week15ID("p-1", service.Week15Skip), wantPrompt: "p-1", wantChoice: service.Week15Skip, wantOK: true},
		"unknown action": {id: "week15_p-1_maybe"},
		"no prompt":      {id: "week15__skip"},
		"other button":   {id: "accept-offer_1_2"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			prompt, choice, ok := parseWeek15ID(tt.id)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if prompt != tt.wantPrompt || choice != tt.wantChoice {
				t.Errorf("got (%q, %v), want (%q, %v)", prompt, choice, tt.wantPrompt, tt.wantChoice)
			}
		})
	}
}

func TestHasStreamLink(t *testing.T) {
	tests := map[string]struct {
		content string
		want    bool
	}{
		"twitch":     {content: "live now https://twitch.tv/coach", want: true},
		"youtube":    {content: "https://www.youtube.com/watch?v=abc", want: true},
		"short":      {content: "http://youtu.be/abc", want: true},
		"upper case": {content: "HTTPS://TWITCH.TV/coach", want: true},
		"other site": {content: "https://example.com/twitch.tv/", want: false},
		"no scheme":  {content: "twitch.tv/coach", want: false},
		"plain text": {content: "gg", want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := hasStreamLink(tt.content); got != tt.want {
				t.Errorf("hasStreamLink(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestPrompts(t *testing.T) {
	p := newPrompts()
	id, answer := p.open("admin")

	if p.resolve(id, "someone-else", service.Week15Skip) {
		t.Fatal("prompt answered by another user")
	}
	if !p.resolve(id, "admin", service.Week15Skip) {
		t.Fatal("prompt not answered by its owner")
	}
	if got := <-answer; got != service.Week15Skip {
		t.Errorf("answer = %v, want skip", got)
	}
	if p.resolve(id, "admin", service.Week15Continue) {
		t.Error("prompt answered twice")
	}

	id2, _ := p.open("admin")
	p.close(id2)
	if p.len() != 0 {
		t.Errorf("pending = %d, want 0", p.len())
	}
}

func TestFormatDeadline(t *testing.T) {
	deadline := time.Date(2024, 9, 2, 16, 0, 0, 0, time.UTC)

	got := formatDeadline(deadline, []string{"America/New_York", "UTC"})
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), got)
	}
	if !strings.Contains(lines[0], "Sep 2, 12:00 PM EDT") {
		t.Errorf("new york line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "Sep 2, 4:00 PM UTC") {
		t.Errorf("utc line = %q", lines[1])
	}

	if got := formatDeadline(deadline, nil); !strings.Contains(got, "4:00 PM UTC") {
		t.Errorf("no zones = %q", got)
	}
}

func TestScoreLine(t *testing.T) {
	bama := domain.Team{ID: 1, Name: "Alabama"}
	uga := domain.Team{ID: 2, Name: "Georgia"}

	tests := map[string]struct {
		result domain.Result
		want   string
	}{
		"team1 wins": {result: domain.Result{Team1: bama, Team2: uga, Score1: 27, Score2: 24}, want: "**Alabama** 27 - 24 Georgia"},
		"team2 wins": {result: domain.Result{Team1: bama, Team2: uga, Score1: 10, Score2: 31}, want: "**Georgia** 31 - 10 Alabama"},
		"tie":        {result: domain.Result{Team1: bama, Team2: uga, Score1: 14, Score2: 14}, want: "Alabama 14 - 14 Georgia (tie)"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := scoreLine(tt.result); got != tt.want {
				t.Errorf("scoreLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	cfg := guildconfig.Defaults("g1", "Saturday League")
	team := &domain.Team{ID: 1, Name: "Iowa", StarRating: 3.5}
	week15 := league.State{Season: 2, Phase: league.Regular, Sub: 14}

	tests := map[string]struct {
		n           notify.Notification
		wantContent string
		wantTitle   string
	}{
		"advance": {
			n:         notify.Notification{Kind: notify.KindAdvance, State: week15, Hours: 48, Deadline: time.Now()},
			wantTitle: "Advance: Season 2 Week 15",
		},
		"recap": {
			n:         notify.Notification{Kind: notify.KindWeekRecap, State: week15},
			wantTitle: "Recap: Season 2 Week 15",
		},
		"rollover": {
			n:         notify.Notification{Kind: notify.KindSeasonRollover, State: league.State{Season: 3, Phase: league.Preseason}},
			wantTitle: "Season 3 Begins",
		},
		"expired": {
			n:           notify.Notification{Kind: notify.KindOffersExpired, UserID: "u1", Teams: []domain.Team{*team}},
			wantContent: "Iowa",
		},
		"signed": {
			n:         notify.Notification{Kind: notify.KindCoachSigned, UserID: "u1", Team: team},
			wantTitle: "Coach Signed: Iowa",
		},
		"moved": {
			n:         notify.Notification{Kind: notify.KindCoachMoved, UserID: "u1", Team: team, PreviousTeam: &domain.Team{Name: "Utah"}},
			wantTitle: "Coach Moved: Iowa",
		},
		"released": {
			n:         notify.Notification{Kind: notify.KindCoachReleased, UserID: "u1", Team: team},
			wantTitle: "Coach Released: Iowa",
		},
		"press": {
			n:         notify.Notification{Kind: notify.KindPressRelease, UserID: "u1", Team: team, Message: "We're back."},
			wantTitle: "Press Release: Iowa",
		},
		"reminder": {
			n:           notify.Notification{Kind: notify.KindStreamReminder, UserID: "u1", Minutes: 45},
			wantContent: "45 minutes",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			msg, err := render(cfg, tt.n)
			if err != nil {
				t.Fatalf("render() error = %v", err)
			}
			if tt.wantContent != "" && !strings.Contains(msg.Content, tt.wantContent) {
				t.Errorf("content = %q, want it to contain %q", msg.Content, tt.wantContent)
			}
			if tt.wantTitle != "" {
				if len(msg.Embeds) != 1 {
					t.Fatalf("got %d embeds", len(msg.Embeds))
				}
				if !strings.Contains(msg.Embeds[0].Title, tt.wantTitle) {
					t.Errorf("title = %q, want it to contain %q", msg.Embeds[0].Title, tt.wantTitle)
				}
			}
		})
	}

	if _, err := render(cfg, notify.Notification{Kind: "bogus"}); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestOfferButtons(t *testing.T) {
	offers := make([]domain.Offer, 7)
	for i := range offers {
		offers[i] = domain.Offer{Team: domain.Team{ID: int64(i + 1), Name: "Team"}}
	}

	rows := offerButtons("g1", offers)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	first := rows[0].(discordgo.ActionsRow)
	second := rows[1].(discordgo.ActionsRow)
	if len(first.Components) != 5 || len(second.Components) != 2 {
		t.Errorf("row sizes = %d, %d", len(first.Components), len(second.Components))
	}
	if btn := second.Components[1].(discordgo.Button); btn.CustomID != "accept-offer_g1_7" {
		t.Errorf("last button id = %q", btn.CustomID)
	}
}

func TestTeamListEmbed(t *testing.T) {
	cfg := guildconfig.Defaults("g1", "")
	embed := teamListEmbed(cfg, []domain.TeamStatus{
		{Team: domain.Team{Name: "Alabama", StarRating: 5}, UserID: "u1"},
		{Team: domain.Team{Name: "Rice", StarRating: 2.5}},
	})
	if embed.Fields[0].Name != "Taken Teams (1)" || embed.Fields[1].Name != "Available Teams (1)" {
		t.Errorf("fields = %q, %q", embed.Fields[0].Name, embed.Fields[1].Name)
	}
	if !strings.Contains(embed.Fields[1].Value, "2.5★") {
		t.Errorf("available = %q", embed.Fields[1].Value)
	}
}

func TestSetupInput(t *testing.T) {
	str := func(name, v string) *discordgo.ApplicationCommandInteractionDataOption {
		return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: v}
	}
	num := func(name string, v int) *discordgo.ApplicationCommandInteractionDataOption {
		return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(v)}
	}

	tests := map[string]struct {
		opts      []*discordgo.ApplicationCommandInteractionDataOption
		wantStart *league.State
		wantErr   bool
	}{
		"new league": {
			opts: []*discordgo.ApplicationCommandInteractionDataOption{str("league_name", "SDL"), str("abbreviation", "SDL")},
		},
		"established regular week 6": {
			opts:      []*discordgo.ApplicationCommandInteractionDataOption{str("league_type", "established"), num("season", 3), str("phase", "regular"), num("week", 6)},
			wantStart: &league.State{Season: 3, Phase: league.Regular, Sub: 5},
		},
		"transfer portal week 2": {
			opts:      []*discordgo.ApplicationCommandInteractionDataOption{num("season", 2), str("phase", "transfer_portal"), num("week", 2)},
			wantStart: &league.State{Season: 2, Phase: league.TransferPortal, Sub: 2},
		},
		"season only": {
			opts:      []*discordgo.ApplicationCommandInteractionDataOption{num("season", 4)},
			wantStart: &league.State{Season: 4, Phase: league.Preseason, Sub: 0},
		},
		"bad phase": {
			opts:    []*discordgo.ApplicationCommandInteractionDataOption{str("phase", "offseason")},
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			in, err := setupInput(optionMap(tt.opts))
			if (err != nil) != tt.wantErr {
				t.Fatalf("setupInput() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			switch {
			case tt.wantStart == nil && in.Start != nil:
				t.Errorf("unexpected start %+v", *in.Start)
			case tt.wantStart != nil && (in.Start == nil || *in.Start != *tt.wantStart):
				t.Errorf("start = %+v, want %+v", in.Start, *tt.wantStart)
			}
		})
	}
}

func TestSetupInputSettings(t *testing.T) {
	opts := optionMap([]*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "timezones", Type: discordgo.ApplicationCommandOptionString, Value: "UTC"},
		{Name: "role_head_coach", Type: discordgo.ApplicationCommandOptionString, Value: " HC "},
	})
	in, err := setupInput(opts)
	if err != nil {
		t.Fatalf("setupInput() error = %v", err)
	}
	if in.Settings["timezones"] != "UTC" || in.Settings["role_head_coach"] != "HC" {
		t.Errorf("settings = %v", in.Settings)
	}
	if _, ok := in.Settings["advance_intervals"]; ok {
		t.Error("unset option should not be stored")
	}
}

func TestFocusedOption(t *testing.T) {
	opts := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "user"},
		{Name: "sub", Options: []*discordgo.ApplicationCommandInteractionDataOption{{Name: "team", Focused: true}}},
	}
	if f := focusedOption(opts); f == nil || f.Name != "team" {
		t.Errorf("focusedOption() = %+v", f)
	}
	if f := focusedOption(opts[:1]); f != nil {
		t.Errorf("expected nil, got %+v", f)
	}
}

func TestUserMessage(t *testing.T) {
	rej := &service.Rejection{Code: service.RejectNoTeam, Message: "you don't have a team"}
	if got := userMessage(rej); got != rej.Message {
		t.Errorf("userMessage(rejection) = %q", got)
	}
	if got := userMessage(errBoom); strings.Contains(got, "boom") {
		t.Errorf("internal error leaked: %q", got)
	}
}

func TestCommandDefinitions(t *testing.T) {
	want := []string{
		"joboffers", "game-result", "any-game-result", "press-release", "ranking", "ranking-all-time",
		"setup", "config", "assign-team", "resetteam", "listteams", "advance", "move-coach", "league-status",
	}
	cmds := commandDefinitions()
	names := make(map[string]*discordgo.ApplicationCommand, len(cmds))
	for _, c := range cmds {
		names[c.Name] = c
	}
	for _, n := range want {
		if _, ok := names[n]; !ok {
			t.Errorf("missing command %q", n)
		}
	}
	if names["advance"].DefaultMemberPermissions == nil {
		t.Error("advance should be restricted to admins")
	}
	if names["joboffers"].DefaultMemberPermissions != nil {
		t.Error("joboffers should be open to members")
	}
	if len(settingChoices()) > 25 {
		t.Errorf("too many setting choices: %d", len(settingChoices()))
	}
}
