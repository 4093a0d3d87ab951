package guildconfig

import (
	"database/sql"
	"reflect"
	"testing"

	"dynasty-bot/internal/db"
	"dynasty-bot/internal/domain"
)

func storedRow() *db.GuildConfig {
	return &db.GuildConfig{
		GuildID:               "g1",
		LeagueName:            "Saturday League",
		LeagueAbbreviation:    "SL",
		SetupComplete:         true,
		LeagueType:            "established",
		FeatureJobOffers:      true,
		FeatureAdvanceSystem:  true,
		ChannelNewsFeed:       "news",
		RoleHeadCoach:         "HC",
		RoleHeadCoachID:       "role-1",
		StarRatingMin:         3,
		StarRatingMax:         sql.NullFloat64{Float64: 4.5, Valid: true},
		JobOffersCount:        5,
		JobOffersExpiryHours:  24,
		StreamReminderMinutes: 30,
		AdvanceIntervals:      "[12, 24, 48]",
		Timezones:             `["America/New_York", "UTC"]`,
		ColorPrimary:          "0x123456",
		ColorWin:              "#00ff00",
		ColorLoss:             "ff0000",
	}
}

func TestParseMissingRow(t *testing.T) {
	cfg, warnings := Parse("g1", nil)
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	want := Defaults("g1", "")
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("expected defaults %+v, got %+v", want, cfg)
	}
	if cfg.SetupComplete {
		t.Error("defaults must not be setup complete")
	}
	if !reflect.DeepEqual(cfg.AdvanceIntervals, []int{24, 48}) {
		t.Errorf("unexpected default intervals %v", cfg.AdvanceIntervals)
	}
}

func TestParseStoredRow(t *testing.T) {
	cfg, warnings := Parse("g1", storedRow())
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}

	if cfg.LeagueName != "Saturday League" || cfg.LeagueType != domain.LeagueTypeEstablished {
		t.Errorf("unexpected league fields %+v", cfg)
	}
	if !cfg.Features.JobOffers || cfg.Features.StreamReminders || !cfg.Features.AdvanceSystem {
		t.Errorf("unexpected features %+v", cfg.Features)
	}
	if cfg.Channels.NewsFeed != "news" || cfg.Channels.Streaming != "streaming" {
		t.Errorf("unexpected channels %+v", cfg.Channels)
	}
	if cfg.JobOffers.MaxStars == nil || *cfg.JobOffers.MaxStars != 4.5 {
		t.Errorf("expected max stars 4.5, got %v", cfg.JobOffers.MaxStars)
	}
	if !reflect.DeepEqual(cfg.AdvanceIntervals, []int{12, 24, 48}) {
		t.Errorf("unexpected intervals %v", cfg.AdvanceIntervals)
	}
	if !reflect.DeepEqual(cfg.Timezones, []string{"America/New_York", "UTC"}) {
		t.Errorf("unexpected timezones %v", cfg.Timezones)
	}
	if cfg.Colors.Primary != 0x123456 || cfg.Colors.Win != 0x00ff00 || cfg.Colors.Loss != 0xff0000 {
		t.Errorf("unexpected colors %+v", cfg.Colors)
	}
}

func TestParseFallbacks(t *testing.T) {
	row := storedRow()
	row.AdvanceIntervals = "[24, abc"
	row.Timezones = "Mars/Olympus"
	row.ColorWin = "green"
	row.JobOffersCount = 0

	cfg, warnings := Parse("g1", row)
	if len(warnings) != 4 {
		t.Fatalf("expected 4 warnings, got %d: %v", len(warnings), warnings)
	}
	if !reflect.DeepEqual(cfg.AdvanceIntervals, DefaultAdvanceIntervals) {
		t.Errorf("expected default intervals, got %v", cfg.AdvanceIntervals)
	}
	if !reflect.DeepEqual(cfg.Timezones, DefaultTimezones) {
		t.Errorf("expected default timezones, got %v", cfg.Timezones)
	}
	if cfg.Colors.Win != DefaultColorWin {
		t.Errorf("expected default win color, got %#x", cfg.Colors.Win)
	}
	if cfg.Colors.Primary != 0x123456 {
		t.Errorf("valid colors must survive, got %#x", cfg.Colors.Primary)
	}
	if cfg.JobOffers.Count != DefaultJobOffersCount {
		t.Errorf("expected default count, got %d", cfg.JobOffers.Count)
	}
}

func TestParseIntervals(t *testing.T) {
	tests := map[string]struct {
		raw     string
		want    []int
		wantErr bool
	}{
		"bracketed":         {raw: "[24, 48]", want: []int{24, 48}},
		"bare comma list":   {raw: "24,48,72", want: []int{24, 48, 72}},
		"quoted entries":    {raw: `["12", "24"]`, want: []int{12, 24}},
		"duplicates":        {raw: "24, 24, 48", want: []int{24, 48}},
		"single":            {raw: "36", want: []int{36}},
		"empty":             {raw: "", wantErr: true},
		"empty brackets":    {raw: "[]", wantErr: true},
		"unbalanced":        {raw: "[24, 48", wantErr: true},
		"not a number":      {raw: "24, soon", wantErr: true},
		"non positive hour": {raw: "0, 24", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseIntervals(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := map[string]struct {
		raw     string
		want    int
		wantErr bool
	}{
		"0x prefix":    {raw: "0x1e90ff", want: 0x1e90ff},
		"upper prefix": {raw: "0XFF0000", want: 0xff0000},
		"hash":         {raw: "#00ff00", want: 0x00ff00},
		"bare":         {raw: "abcdef", want: 0xabcdef},
		"empty":        {raw: "", wantErr: true},
		"not hex":      {raw: "0xgg0000", wantErr: true},
		"too large":    {raw: "0x1000000", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseColor(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error, got %#x", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %#x, got %#x", tc.want, got)
			}
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	hours, err := ParseIntervals(FormatIntervals([]int{6, 12}))
	if err != nil || !reflect.DeepEqual(hours, []int{6, 12}) {
		t.Errorf("intervals did not survive formatting: %v %v", hours, err)
	}
	zones, err := ParseTimezones(FormatTimezones([]string{"UTC", "Europe/London"}))
	if err != nil || !reflect.DeepEqual(zones, []string{"UTC", "Europe/London"}) {
		t.Errorf("timezones did not survive formatting: %v %v", zones, err)
	}
}

func TestApplySetting(t *testing.T) {
	tests := map[string]struct {
		name    string
		value   string
		check   func(t *testing.T, u domain.ConfigUpdate)
		wantErr bool
	}{
		"league name": {
			name:  "league_name",
			value: "Sunday League",
			check: func(t *testing.T, u domain.ConfigUpdate) {
				if u.LeagueName == nil || *u.LeagueName != "Sunday League" {
					t.Errorf("unexpected league name %v", u.LeagueName)
				}
			},
		},
		"channel strips hash": {
			name:  "channel_news_feed",
			value: "#headlines",
			check: func(t *testing.T, u domain.ConfigUpdate) {
				if u.Channels[domain.ChannelNewsFeed] != "headlines" {
					t.Errorf("unexpected channels %v", u.Channels)
				}
			},
		},
		"intervals are normalized": {
			name:  "advance_intervals",
			value: "48,24",
			check: func(t *testing.T, u domain.ConfigUpdate) {
				if u.AdvanceIntervals == nil || *u.AdvanceIntervals != "[48, 24]" {
					t.Errorf("unexpected intervals %v", u.AdvanceIntervals)
				}
			},
		},
		"clear max stars": {
			name:  "star_rating_max_for_offers",
			value: "none",
			check: func(t *testing.T, u domain.ConfigUpdate) {
				if !u.StarRatingMaxSet || u.StarRatingMax != nil {
					t.Errorf("expected cleared max, got %+v", u)
				}
			},
		},
		"role rename drops cached id": {
			name:  "role_head_coach",
			value: "Coaches",
			check: func(t *testing.T, u domain.ConfigUpdate) {
				if u.HeadCoachRoleID == nil || *u.HeadCoachRoleID != "" {
					t.Errorf("expected role id reset, got %v", u.HeadCoachRoleID)
				}
			},
		},
		"bad stars":       {name: "star_rating_for_offers", value: "6", wantErr: true},
		"bad count":       {name: "job_offers_count", value: "-1", wantErr: true},
		"bad color":       {name: "embed_color_win", value: "green", wantErr: true},
		"unknown setting": {name: "setup_complete", value: "true", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			u, err := ApplySetting(tc.name, tc.value)
			if tc.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				if !u.Empty() {
					t.Errorf("rejected setting must produce an empty update, got %+v", u)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tc.check(t, u)
		})
	}
}
