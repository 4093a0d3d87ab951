package db

import "database/sql"

type GuildConfig struct {
	GuildID                string
	LeagueName             string
	LeagueAbbreviation     string
	SetupComplete          bool
	LeagueType             string
	FeatureJobOffers       bool
	FeatureStreamReminders bool
	FeatureAdvanceSystem   bool
	FeaturePressReleases   bool
	FeatureRankings        bool
	ChannelNewsFeed        string
	ChannelAdvanceTracker  string
	ChannelTeamLists       string
	ChannelSignedCoaches   string
	ChannelStreaming       string
	RoleHeadCoach          string
	RoleHeadCoachID        string
	StarRatingMin          float64
	StarRatingMax          sql.NullFloat64
	JobOffersCount         int64
	JobOffersExpiryHours   int64
	StreamReminderMinutes  int64
	AdvanceIntervals       string
	Timezones              string
	ColorPrimary           string
	ColorWin               string
	ColorLoss              string
	CreatedAt              int64
	UpdatedAt              int64
}

type Team struct {
	ID         int64
	Name       string
	StarRating float64
	Conference string
}

type TeamAssignment struct {
	TeamID     int64
	GuildID    string
	UserID     string
	AssignedAt int64
	TeamName   string
	StarRating float64
	Conference string
}

type LeagueMeta struct {
	GuildID         string
	Season          int64
	Week            int64
	CurrentPhase    string
	CurrentSubPhase int64
	AdvanceHours    int64
	AdvanceDeadline sql.NullInt64
	CreatedAt       int64
	UpdatedAt       int64
}

type Record struct {
	TeamID   int64
	Season   int64
	GuildID  string
	Wins     int64
	Losses   int64
	TeamName string
}

type Result struct {
	ID          string
	GuildID     string
	Season      int64
	Phase       string
	SubPhase    int64
	Week        int64
	Team1ID     int64
	Team2ID     int64
	Score1      int64
	Score2      int64
	SubmittedBy string
	CreatedAt   int64
	Team1Name   string
	Team2Name   string
}

type JobOffer struct {
	ID         string
	GuildID    string
	UserID     string
	TeamID     int64
	ExpiresAt  int64
	CreatedAt  int64
	TeamName   string
	StarRating float64
	Conference string
}

type NewsFeed struct {
	ID        string
	GuildID   string
	AuthorID  string
	TeamName  string
	Message   string
	CreatedAt int64
}
