package notify

import (
	"context"
	"time"

	"dynasty-bot/internal/domain"
	"dynasty-bot/internal/league"
)

type Kind string

const (
	KindAdvance        Kind = "advance"
	KindWeekRecap      Kind = "week_recap"
	KindSeasonRollover Kind = "season_rollover"
	KindOffersExpired  Kind = "offers_expired"
	KindCoachSigned    Kind = "coach_signed"
	KindCoachMoved     Kind = "coach_moved"
	KindCoachReleased  Kind = "coach_released"
	KindGameResult     Kind = "game_result"
	KindPressRelease   Kind = "press_release"
	KindStreamReminder Kind = "stream_reminder"
)

// Target names where a notification goes. A non-empty UserID means a direct
// message, with Channel as the fallback when the user cannot be reached.
type Target struct {
	GuildID string
	UserID  string
	Channel domain.ChannelRole
	// Fallback is tried when Channel cannot be resolved in the guild.
	Fallback domain.ChannelRole
	// ChannelID addresses a concrete channel, bypassing role resolution.
	ChannelID string
}

type Notification struct {
	Kind   Kind
	Target Target

	State         league.State
	PreviousState league.State
	Deadline      time.Time
	Hours         int
	Minutes       int
	Skipped       bool

	UserID       string
	Team         *domain.Team
	PreviousTeam *domain.Team
	Teams        []domain.Team
	Results      []domain.Result
	Message      string
}

// Notifier delivers logical notifications. Implementations own formatting
// and transport; a returned error is logged by the caller and never fails
// the operation that produced the notification.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type RoleManager interface {
	// GrantHeadCoach gives the user the head coach role, resolving it by id
	// first and by name second, and returns the id that was used.
	GrantHeadCoach(ctx context.Context, guildID, userID, roleName, roleID string) (string, error)
	RevokeHeadCoach(ctx context.Context, guildID, userID, roleName, roleID string) error
}

type Nop struct{}

func (Nop) Notify(context.Context, Notification) error { return nil }

func (Nop) GrantHeadCoach(_ context.Context, _, _, _, roleID string) (string, error) {
	return roleID, nil
}

func (Nop) RevokeHeadCoach(context.Context, string, string, string, string) error { return nil }
