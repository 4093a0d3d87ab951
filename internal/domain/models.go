package domain

import (
	"time"

	"dynasty-bot/internal/league"
)

type Team struct {
	ID         int64
	Name       string
	StarRating float64
	Conference string
}

type Assignment struct {
	Team       Team
	GuildID    string
	UserID     string
	AssignedAt time.Time
}

type TeamStatus struct {
	Team   Team
	UserID string
}

func (s TeamStatus) Taken() bool {
	return s.UserID != ""
}

type Meta struct {
	GuildID         string
	State           league.State
	Week            int
	AdvanceHours    int
	AdvanceDeadline *time.Time
	UpdatedAt       time.Time
}

type Record struct {
	Team    Team
	Season  int
	GuildID string
	Wins    int
	Losses  int
}

func (r Record) Games() int {
	return r.Wins + r.Losses
}

func (r Record) Pct() float64 {
	if r.Games() == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.Games())
}

type Result struct {
	ID          string
	GuildID     string
	State       league.State
	Week        int
	Team1       Team
	Team2       Team
	Score1      int
	Score2      int
	SubmittedBy string
	CreatedAt   time.Time
}

func (r Result) Tie() bool {
	return r.Score1 == r.Score2
}

// Winner returns the winning and losing team; ok is false on a tie.
func (r Result) Winner() (winner, loser Team, ok bool) {
	switch {
	case r.Score1 > r.Score2:
		return r.Team1, r.Team2, true
	case r.Score2 > r.Score1:
		return r.Team2, r.Team1, true
	default:
		return Team{}, Team{}, false
	}
}

type Offer struct {
	ID        string
	GuildID   string
	UserID    string
	Team      Team
	ExpiresAt time.Time
	CreatedAt time.Time
}

type PressRelease struct {
	ID        string
	GuildID   string
	AuthorID  string
	TeamName  string
	Message   string
	CreatedAt time.Time
}
