package service_test

import (
	"context"
	"testing"

	"dynasty-bot/internal/domain"
	"dynasty-bot/internal/league"
	"dynasty-bot/internal/service"
)

func TestInitGuild(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created, err := e.setup.InitGuild(ctx, guild, "Saturday Heroes")
	if err != nil || !created {
		t.Fatalf("InitGuild() = %v, %v; want true", created, err)
	}
	created, err = e.setup.InitGuild(ctx, guild, "Saturday Heroes")
	if err != nil || created {
		t.Fatalf("second InitGuild() = %v, %v; want false", created, err)
	}

	cfg, err := e.setup.Config(ctx, guild)
	if err != nil {
		t.Fatalf("Config() error = %v", err)
	}
	if cfg.LeagueName != "Saturday Heroes" || cfg.SetupComplete {
		t.Errorf("config = %+v", cfg)
	}
	meta, err := e.league.State(ctx, guild)
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if meta.State != league.Initial() {
		t.Errorf("state = %v, want initial", meta.State)
	}
}

func TestCompleteNewLeague(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cfg, err := e.setup.Complete(ctx, guild, service.SetupInput{
		LeagueName:         "Saturday Heroes",
		LeagueAbbreviation: "SH",
		Settings: map[string]string{
			"job_offers_count":  "4",
			"advance_intervals": "[12, 24]",
			"channel_news_feed": "#headlines",
		},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if !cfg.SetupComplete || cfg.LeagueType != domain.LeagueTypeNew {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.JobOffers.Count != 4 || cfg.Channels.NewsFeed != "headlines" {
		t.Errorf("settings not applied: %+v", cfg)
	}
	if len(cfg.AdvanceIntervals) != 2 || cfg.AdvanceIntervals[0] != 12 {
		t.Errorf("intervals = %v, want [12 24]", cfg.AdvanceIntervals)
	}
}

func TestCompleteEstablishedLeague(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	start := league.State{Season: 4, Phase: league.Regular, Sub: 6}

	_, err := e.setup.Complete(ctx, guild, service.SetupInput{
		LeagueType: domain.LeagueTypeEstablished,
		Start:      &start,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	meta, err := e.league.State(ctx, guild)
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if meta.State != start {
		t.Errorf("state = %v, want %v", meta.State, start)
	}

	again := league.State{Season: 9, Phase: league.Preseason}
	_, err = e.setup.Complete(ctx, guild, service.SetupInput{
		LeagueType: domain.LeagueTypeEstablished,
		Start:      &again,
	})
	expectRejection(t, err, service.RejectSetupComplete)

	meta, _ = e.league.State(ctx, guild)
	if meta.State != start {
		t.Errorf("second import moved the league to %v", meta.State)
	}
}

func TestCompleteRejections(t *testing.T) {
	bad := league.State{Season: 1, Phase: league.Bowl, Sub: 7}
	ok := league.State{Season: 1, Phase: league.Bowl, Sub: 1}

	tests := map[string]struct {
		in   service.SetupInput
		want service.RejectCode
	}{
		"unknown type":      {in: service.SetupInput{LeagueType: "legacy"}, want: service.RejectInvalidInput},
		"import into new":   {in: service.SetupInput{LeagueType: domain.LeagueTypeNew, Start: &ok}, want: service.RejectInvalidInput},
		"invalid start":     {in: service.SetupInput{LeagueType: domain.LeagueTypeEstablished, Start: &bad}, want: service.RejectInvalidInput},
		"unknown setting":   {in: service.SetupInput{Settings: map[string]string{"volume": "11"}}, want: service.RejectInvalidInput},
		"bad setting value": {in: service.SetupInput{Settings: map[string]string{"job_offers_count": "-1"}}, want: service.RejectInvalidInput},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e := newEnv(t)
			_, err := e.setup.Complete(context.Background(), guild, tt.in)
			expectRejection(t, err, tt.want)

			cfg, err := e.setup.Config(context.Background(), guild)
			if err != nil {
				t.Fatalf("Config() error = %v", err)
			}
			if cfg.SetupComplete {
				t.Error("rejected setup marked the guild complete")
			}
		})
	}
}

func TestUpdateSetting(t *testing.T) {
	e := newEnv(t)
	e.ready(t, guild)
	ctx := context.Background()

	cfg, err := e.setup.UpdateSetting(ctx, guild, "star_rating_max_for_offers", "4")
	if err != nil {
		t.Fatalf("UpdateSetting() error = %v", err)
	}
	if cfg.JobOffers.MaxStars == nil || *cfg.JobOffers.MaxStars != 4 {
		t.Errorf("max stars = %v, want 4", cfg.JobOffers.MaxStars)
	}

	cfg, err = e.setup.UpdateSetting(ctx, guild, "star_rating_max_for_offers", "none")
	if err != nil {
		t.Fatalf("UpdateSetting() error = %v", err)
	}
	if cfg.JobOffers.MaxStars != nil {
		t.Errorf("max stars = %v, want cleared", *cfg.JobOffers.MaxStars)
	}

	_, err = e.setup.UpdateSetting(ctx, guild, "timezones", "Mars/Olympus")
	expectRejection(t, err, service.RejectInvalidInput)
}
