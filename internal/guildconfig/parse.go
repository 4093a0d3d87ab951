package guildconfig

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"dynasty-bot/internal/db"
	"dynasty-bot/internal/domain"
)

const (
	DefaultLeagueName            = "Dynasty League"
	DefaultHeadCoachRole         = "head coach"
	DefaultStarRatingMin         = 2.5
	DefaultJobOffersCount        = 3
	DefaultJobOffersExpiryHours  = 48
	DefaultStreamReminderMinutes = 45
	DefaultColorPrimary          = 0x1e90ff
	DefaultColorWin              = 0x00ff00
	DefaultColorLoss             = 0xff0000
)

var (
	DefaultAdvanceIntervals = []int{24, 48}
	DefaultTimezones        = []string{"America/New_York", "America/Chicago", "America/Denver", "America/Los_Angeles"}
	DefaultChannels         = domain.Channels{
		NewsFeed:       "news-feed",
		AdvanceTracker: "advance-tracker",
		TeamLists:      "team-lists",
		SignedCoaches:  "signed-coaches",
		Streaming:      "streaming",
	}
)

var errEmptyList = errors.New("empty list")

type ParseWarning struct {
	Field string
	Value string
	Err   error
}

func (w ParseWarning) String() string {
	return fmt.Sprintf("%s %q: %v", w.Field, w.Value, w.Err)
}

func Defaults(guildID, leagueName string) domain.GuildConfig {
	if leagueName == "" {
		leagueName = DefaultLeagueName
	}
	return domain.GuildConfig{
		GuildID:    guildID,
		LeagueName: leagueName,
		LeagueType: domain.LeagueTypeNew,
		Features: domain.FeatureFlags{
			JobOffers:       true,
			StreamReminders: true,
			AdvanceSystem:   true,
			PressReleases:   true,
			Rankings:        true,
		},
		Channels:      DefaultChannels,
		HeadCoachRole: DefaultHeadCoachRole,
		JobOffers: domain.JobOfferSettings{
			MinStars:    DefaultStarRatingMin,
			Count:       DefaultJobOffersCount,
			ExpiryHours: DefaultJobOffersExpiryHours,
		},
		StreamReminderMinutes: DefaultStreamReminderMinutes,
		AdvanceIntervals:      append([]int(nil), DefaultAdvanceIntervals...),
		Timezones:             append([]string(nil), DefaultTimezones...),
		Colors: domain.Colors{
			Primary: DefaultColorPrimary,
			Win:     DefaultColorWin,
			Loss:    DefaultColorLoss,
		},
	}
}

// Parse turns a stored row into a fully defaulted config. A nil row yields
// the defaults. Malformed fields fall back to their default and are reported
// as warnings; Parse never fails.
func Parse(guildID string, row *db.GuildConfig) (domain.GuildConfig, []ParseWarning) {
	cfg := Defaults(guildID, "")
	if row == nil {
		return cfg, nil
	}

	var warnings []ParseWarning
	warn := func(field, value string, err error) {
		warnings = append(warnings, ParseWarning{Field: field, Value: value, Err: err})
	}

	if row.LeagueName != "" {
		cfg.LeagueName = row.LeagueName
	}
	cfg.LeagueAbbreviation = row.LeagueAbbreviation
	cfg.SetupComplete = row.SetupComplete

	if lt := domain.LeagueType(row.LeagueType); lt.Valid() {
		cfg.LeagueType = lt
	} else if row.LeagueType != "" {
		warn("league_type", row.LeagueType, errors.New("unknown league type"))
	}

	cfg.Features = domain.FeatureFlags{
		JobOffers:       row.FeatureJobOffers,
		StreamReminders: row.FeatureStreamReminders,
		AdvanceSystem:   row.FeatureAdvanceSystem,
		PressReleases:   row.FeaturePressReleases,
		Rankings:        row.FeatureRankings,
	}

	cfg.Channels = domain.Channels{
		NewsFeed:       orDefault(row.ChannelNewsFeed, DefaultChannels.NewsFeed),
		AdvanceTracker: orDefault(row.ChannelAdvanceTracker, DefaultChannels.AdvanceTracker),
		TeamLists:      orDefault(row.ChannelTeamLists, DefaultChannels.TeamLists),
		SignedCoaches:  orDefault(row.ChannelSignedCoaches, DefaultChannels.SignedCoaches),
		Streaming:      orDefault(row.ChannelStreaming, DefaultChannels.Streaming),
	}
	cfg.HeadCoachRole = orDefault(row.RoleHeadCoach, DefaultHeadCoachRole)
	cfg.HeadCoachRoleID = row.RoleHeadCoachID

	if validStars(row.StarRatingMin) {
		cfg.JobOffers.MinStars = row.StarRatingMin
	} else {
		warn("star_rating_min", strconv.FormatFloat(row.StarRatingMin, 'f', -1, 64), errors.New("out of range"))
	}
	if row.StarRatingMax.Valid {
		if validStars(row.StarRatingMax.Float64) {
			maxStars := row.StarRatingMax.Float64
			cfg.JobOffers.MaxStars = &maxStars
		} else {
			warn("star_rating_max", strconv.FormatFloat(row.StarRatingMax.Float64, 'f', -1, 64), errors.New("out of range"))
		}
	}
	if row.JobOffersCount > 0 {
		cfg.JobOffers.Count = int(row.JobOffersCount)
	} else {
		warn("job_offers_count", strconv.FormatInt(row.JobOffersCount, 10), errors.New("must be positive"))
	}
	if row.JobOffersExpiryHours > 0 {
		cfg.JobOffers.ExpiryHours = int(row.JobOffersExpiryHours)
	} else {
		warn("job_offers_expiry_hours", strconv.FormatInt(row.JobOffersExpiryHours, 10), errors.New("must be positive"))
	}
	if row.StreamReminderMinutes > 0 {
		cfg.StreamReminderMinutes = int(row.StreamReminderMinutes)
	} else {
		warn("stream_reminder_minutes", strconv.FormatInt(row.StreamReminderMinutes, 10), errors.New("must be positive"))
	}

	if intervals, err := ParseIntervals(row.AdvanceIntervals); err == nil {
		cfg.AdvanceIntervals = intervals
	} else {
		warn("advance_intervals", row.AdvanceIntervals, err)
	}
	if zones, err := ParseTimezones(row.Timezones); err == nil {
		cfg.Timezones = zones
	} else {
		warn("timezones", row.Timezones, err)
	}

	colors := []struct {
		field string
		raw   string
		dst   *int
	}{
		{"color_primary", row.ColorPrimary, &cfg.Colors.Primary},
		{"color_win", row.ColorWin, &cfg.Colors.Win},
		{"color_loss", row.ColorLoss, &cfg.Colors.Loss},
	}
	for _, c := range colors {
		v, err := ParseColor(c.raw)
		if err != nil {
			warn(c.field, c.raw, err)
			continue
		}
		*c.dst = v
	}

	return cfg, warnings
}

// splitList accepts both `[a, b]` and `a, b` encodings, with optional quotes.
func splitList(raw string) ([]string, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "[") != strings.HasSuffix(s, "]") {
		return nil, errors.New("unbalanced brackets")
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")

	var items []string
	for _, part := range strings.Split(s, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		if part == "" {
			continue
		}
		items = append(items, part)
	}
	if len(items) == 0 {
		return nil, errEmptyList
	}
	return items, nil
}

func ParseIntervals(raw string) ([]int, error) {
	items, err := splitList(raw)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(items))
	out := make([]int, 0, len(items))
	for _, item := range items {
		h, err := strconv.Atoi(item)
		if err != nil {
			return nil, fmt.Errorf("invalid interval %q", item)
		}
		if h <= 0 {
			return nil, fmt.Errorf("interval must be positive, got %d", h)
		}
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out, nil
}

func ParseTimezones(raw string) ([]string, error) {
	items, err := splitList(raw)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if _, err := time.LoadLocation(item); err != nil {
			return nil, fmt.Errorf("unknown timezone %q", item)
		}
	}
	return items, nil
}

func ParseColor(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "#")
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	if s == "" {
		return 0, errors.New("empty color")
	}
	v, err := strconv.ParseInt(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid hex color: %w", err)
	}
	if v < 0 || v > 0xffffff {
		return 0, fmt.Errorf("color %#x out of range", v)
	}
	return int(v), nil
}

func FormatIntervals(hours []int) string {
	parts := make([]string, len(hours))
	for i, h := range hours {
		parts[i] = strconv.Itoa(h)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func FormatTimezones(zones []string) string {
	parts := make([]string, len(zones))
	for i, z := range zones {
		parts[i] = strconv.Quote(z)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func FormatColor(v int) string {
	return fmt.Sprintf("0x%06x", v)
}

func validStars(v float64) bool {
	return v >= 0 && v <= 5
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
