package repository

import (
	"database/sql"
	"errors"
	"time"

	"dynasty-bot/internal/db"
	"dynasty-bot/internal/domain"
)

var ErrNotFound = errors.New("not found")

func toTeam(t db.Team) domain.Team {
	return domain.Team{
		ID:         t.ID,
		Name:       t.Name,
		StarRating: t.StarRating,
		Conference: t.Conference,
	}
}

func toTeams(rows []db.Team) []domain.Team {
	teams := make([]domain.Team, len(rows))
	for i, t := range rows {
		teams[i] = toTeam(t)
	}
	return teams
}

func unix(t time.Time) int64 {
	return t.UTC().Unix()
}

func fromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
