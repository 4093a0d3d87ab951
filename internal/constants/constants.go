package constants

import "time"

const (
	OfferSweepInterval  = 30 * time.Minute
	Week15PromptTimeout = 60 * time.Second
	SelfPingInterval    = 14 * time.Minute
)

const (
	DiscordAPITimeout = 10 * time.Second
	DatabaseTimeout   = 5 * time.Second
	RequestTimeout    = 30 * time.Second
)

const (
	DBMaxOpenConns    = 10
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	AutocompleteLimit      = 25
	SweepNotifyConcurrency = 4
	MaxPressReleaseLength  = 1500
	MaxScore               = 999
)
