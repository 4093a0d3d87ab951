package guildconfig

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"dynasty-bot/internal/domain"
)

var ErrUnknownSetting = errors.New("unknown setting")

type setting struct {
	description string
	apply       func(value string, u *domain.ConfigUpdate) error
}

func stringSetting(set func(u *domain.ConfigUpdate, v string)) func(string, *domain.ConfigUpdate) error {
	return func(value string, u *domain.ConfigUpdate) error {
		value = strings.TrimSpace(value)
		if value == "" {
			return errors.New("value must not be empty")
		}
		set(u, value)
		return nil
	}
}

func positiveIntSetting(set func(u *domain.ConfigUpdate, v int)) func(string, *domain.ConfigUpdate) error {
	return func(value string, u *domain.ConfigUpdate) error {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n <= 0 {
			return fmt.Errorf("%q is not a positive whole number", value)
		}
		set(u, n)
		return nil
	}
}

func channelSetting(role domain.ChannelRole) func(string, *domain.ConfigUpdate) error {
	return stringSetting(func(u *domain.ConfigUpdate, v string) {
		if u.Channels == nil {
			u.Channels = map[domain.ChannelRole]string{}
		}
		u.Channels[role] = strings.TrimPrefix(v, "#")
	})
}

func colorSetting(set func(u *domain.ConfigUpdate, v string)) func(string, *domain.ConfigUpdate) error {
	return func(value string, u *domain.ConfigUpdate) error {
		c, err := ParseColor(value)
		if err != nil {
			return err
		}
		set(u, FormatColor(c))
		return nil
	}
}

func parseStars(value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || !validStars(v) {
		return 0, fmt.Errorf("%q is not a star rating between 0 and 5", value)
	}
	return v, nil
}

var settings = map[string]setting{
	"league_name": {"League display name", stringSetting(func(u *domain.ConfigUpdate, v string) {
		u.LeagueName = &v
	})},
	"league_abbreviation": {"Short league tag", stringSetting(func(u *domain.ConfigUpdate, v string) {
		u.LeagueAbbreviation = &v
	})},
	"channel_news_feed":       {"News feed channel name", channelSetting(domain.ChannelNewsFeed)},
	"channel_advance_tracker": {"Advance announcements channel name", channelSetting(domain.ChannelAdvanceTracker)},
	"channel_team_lists":      {"Team list channel name", channelSetting(domain.ChannelTeamLists)},
	"channel_signed_coaches":  {"Signed coaches channel name", channelSetting(domain.ChannelSignedCoaches)},
	"channel_streaming":       {"Streaming channel name", channelSetting(domain.ChannelStreaming)},
	"role_head_coach": {"Head coach role name", stringSetting(func(u *domain.ConfigUpdate, v string) {
		u.HeadCoachRole = &v
		u.HeadCoachRoleID = domain.Ptr("")
	})},
	"star_rating_for_offers": {"Minimum star rating for job offers", func(value string, u *domain.ConfigUpdate) error {
		v, err := parseStars(value)
		if err != nil {
			return err
		}
		u.StarRatingMin = &v
		return nil
	}},
	"star_rating_max_for_offers": {"Maximum star rating for job offers (none to clear)", func(value string, u *domain.ConfigUpdate) error {
		u.StarRatingMaxSet = true
		if strings.EqualFold(strings.TrimSpace(value), "none") {
			u.StarRatingMax = nil
			return nil
		}
		v, err := parseStars(value)
		if err != nil {
			return err
		}
		u.StarRatingMax = &v
		return nil
	}},
	"job_offers_count": {"Number of teams offered per request", positiveIntSetting(func(u *domain.ConfigUpdate, v int) {
		u.JobOffersCount = &v
	})},
	"job_offers_expiry_hours": {"Hours before job offers expire", positiveIntSetting(func(u *domain.ConfigUpdate, v int) {
		u.JobOffersExpiryHours = &v
	})},
	"stream_reminder_minutes": {"Minutes before a stream reminder", positiveIntSetting(func(u *domain.ConfigUpdate, v int) {
		u.StreamReminderMinutes = &v
	})},
	"advance_intervals": {"Allowed advance windows in hours, e.g. 24, 48", func(value string, u *domain.ConfigUpdate) error {
		hours, err := ParseIntervals(value)
		if err != nil {
			return err
		}
		s := FormatIntervals(hours)
		u.AdvanceIntervals = &s
		return nil
	}},
	"timezones": {"Deadline display timezones, e.g. America/New_York, UTC", func(value string, u *domain.ConfigUpdate) error {
		zones, err := ParseTimezones(value)
		if err != nil {
			return err
		}
		s := FormatTimezones(zones)
		u.Timezones = &s
		return nil
	}},
	"embed_color_primary": {"Primary embed color (hex)", colorSetting(func(u *domain.ConfigUpdate, v string) {
		u.ColorPrimary = &v
	})},
	"embed_color_win": {"Win embed color (hex)", colorSetting(func(u *domain.ConfigUpdate, v string) {
		u.ColorWin = &v
	})},
	"embed_color_loss": {"Loss embed color (hex)", colorSetting(func(u *domain.ConfigUpdate, v string) {
		u.ColorLoss = &v
	})},
}

// SettingNames lists the keys accepted by ApplySetting in sorted order.
func SettingNames() []string {
	names := make([]string, 0, len(settings))
	for name := range settings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func SettingDescription(name string) string {
	return settings[name].description
}

// ApplySetting validates value and returns the partial update that stores it.
func ApplySetting(name, value string) (domain.ConfigUpdate, error) {
	var u domain.ConfigUpdate
	s, ok := settings[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return u, fmt.Errorf("%w: %s", ErrUnknownSetting, name)
	}
	if err := s.apply(value, &u); err != nil {
		return domain.ConfigUpdate{}, err
	}
	return u, nil
}
