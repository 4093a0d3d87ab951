package domain

type LeagueType string

const (
	LeagueTypeNew         LeagueType = "new"
	LeagueTypeEstablished LeagueType = "established"
)

func (t LeagueType) Valid() bool {
	return t == LeagueTypeNew || t == LeagueTypeEstablished
}

type Feature string

const (
	FeatureJobOffers       Feature = "job_offers"
	FeatureStreamReminders Feature = "stream_reminders"
	FeatureAdvanceSystem   Feature = "advance_system"
	FeaturePressReleases   Feature = "press_releases"
	FeatureRankings        Feature = "rankings"
)

func Features() []Feature {
	return []Feature{
		FeatureJobOffers,
		FeatureStreamReminders,
		FeatureAdvanceSystem,
		FeaturePressReleases,
		FeatureRankings,
	}
}

type ChannelRole string

const (
	ChannelNewsFeed       ChannelRole = "news_feed"
	ChannelAdvanceTracker ChannelRole = "advance_tracker"
	ChannelTeamLists      ChannelRole = "team_lists"
	ChannelSignedCoaches  ChannelRole = "signed_coaches"
	ChannelStreaming      ChannelRole = "streaming"
)

func ChannelRoles() []ChannelRole {
	return []ChannelRole{
		ChannelNewsFeed,
		ChannelAdvanceTracker,
		ChannelTeamLists,
		ChannelSignedCoaches,
		ChannelStreaming,
	}
}

type FeatureFlags struct {
	JobOffers       bool
	StreamReminders bool
	AdvanceSystem   bool
	PressReleases   bool
	Rankings        bool
}

func (f FeatureFlags) Enabled(feature Feature) bool {
	switch feature {
	case FeatureJobOffers:
		return f.JobOffers
	case FeatureStreamReminders:
		return f.StreamReminders
	case FeatureAdvanceSystem:
		return f.AdvanceSystem
	case FeaturePressReleases:
		return f.PressReleases
	case FeatureRankings:
		return f.Rankings
	}
	return false
}

type Channels struct {
	NewsFeed       string
	AdvanceTracker string
	TeamLists      string
	SignedCoaches  string
	Streaming      string
}

func (c Channels) Name(role ChannelRole) string {
	switch role {
	case ChannelNewsFeed:
		return c.NewsFeed
	case ChannelAdvanceTracker:
		return c.AdvanceTracker
	case ChannelTeamLists:
		return c.TeamLists
	case ChannelSignedCoaches:
		return c.SignedCoaches
	case ChannelStreaming:
		return c.Streaming
	}
	return ""
}

type JobOfferSettings struct {
	MinStars    float64
	MaxStars    *float64
	Count       int
	ExpiryHours int
}

type Colors struct {
	Primary int
	Win     int
	Loss    int
}

// GuildConfig is the parsed, fully defaulted configuration of one guild.
type GuildConfig struct {
	GuildID               string
	LeagueName            string
	LeagueAbbreviation    string
	SetupComplete         bool
	LeagueType            LeagueType
	Features              FeatureFlags
	Channels              Channels
	HeadCoachRole         string
	HeadCoachRoleID       string
	JobOffers             JobOfferSettings
	StreamReminderMinutes int
	AdvanceIntervals      []int
	Timezones             []string
	Colors                Colors
}

func (c GuildConfig) AllowsInterval(hours int) bool {
	for _, h := range c.AdvanceIntervals {
		if h == hours {
			return true
		}
	}
	return false
}

func (c GuildConfig) DefaultInterval() int {
	if len(c.AdvanceIntervals) == 0 {
		return 0
	}
	return c.AdvanceIntervals[0]
}

// ConfigUpdate is a partial write; nil fields are left untouched.
type ConfigUpdate struct {
	LeagueName            *string
	LeagueAbbreviation    *string
	SetupComplete         *bool
	LeagueType            *LeagueType
	Features              map[Feature]bool
	Channels              map[ChannelRole]string
	HeadCoachRole         *string
	HeadCoachRoleID       *string
	StarRatingMin         *float64
	StarRatingMaxSet      bool
	StarRatingMax         *float64
	JobOffersCount        *int
	JobOffersExpiryHours  *int
	StreamReminderMinutes *int
	AdvanceIntervals      *string
	Timezones             *string
	ColorPrimary          *string
	ColorWin              *string
	ColorLoss             *string
}

func (u ConfigUpdate) Empty() bool {
	return u.LeagueName == nil && u.LeagueAbbreviation == nil && u.SetupComplete == nil &&
		u.LeagueType == nil && len(u.Features) == 0 && len(u.Channels) == 0 &&
		u.HeadCoachRole == nil && u.HeadCoachRoleID == nil && u.StarRatingMin == nil &&
		!u.StarRatingMaxSet && u.JobOffersCount == nil && u.JobOffersExpiryHours == nil &&
		u.StreamReminderMinutes == nil && u.AdvanceIntervals == nil && u.Timezones == nil &&
		u.ColorPrimary == nil && u.ColorWin == nil && u.ColorLoss == nil
}

func Ptr[T any](v T) *T {
	return &v
}
