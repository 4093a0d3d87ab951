package db

import (
	"context"
	"database/sql"
)

const listJobOffers = `
SELECT o.id, o.guild_id, o.user_id, o.team_id, o.expires_at, o.created_at,
       t.name, t.star_rating, t.conference
FROM job_offers o
JOIN teams t ON t.id = o.team_id
WHERE o.guild_id = @guild_id
  AND (@user_id IS NULL OR o.user_id = @user_id)
  AND (@team_id IS NULL OR o.team_id = @team_id)
  AND (@active_at IS NULL OR o.expires_at > @active_at)
ORDER BY t.star_rating DESC, t.name
`

type JobOfferFilterParams struct {
	GuildID  string
	UserID   sql.NullString
	TeamID   sql.NullInt64
	ActiveAt sql.NullInt64
}

func (arg JobOfferFilterParams) args() []interface{} {
	return []interface{}{
		sql.Named("guild_id", arg.GuildID),
		sql.Named("user_id", arg.UserID),
		sql.Named("team_id", arg.TeamID),
		sql.Named("active_at", arg.ActiveAt),
	}
}

func (q *Queries) ListJobOffers(ctx context.Context, arg JobOfferFilterParams) ([]JobOffer, error) {
	rows, err := q.db.QueryContext(ctx, listJobOffers, arg.args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []JobOffer
	for rows.Next() {
		var i JobOffer
		if err := rows.Scan(
			&i.ID,
			&i.GuildID,
			&i.UserID,
			&i.TeamID,
			&i.ExpiresAt,
			&i.CreatedAt,
			&i.TeamName,
			&i.StarRating,
			&i.Conference,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertJobOffer = `
INSERT INTO job_offers (id, guild_id, user_id, team_id, expires_at, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

type InsertJobOfferParams struct {
	ID        string
	GuildID   string
	UserID    string
	TeamID    int64
	ExpiresAt int64
	CreatedAt int64
}

func (q *Queries) InsertJobOffer(ctx context.Context, arg InsertJobOfferParams) error {
	_, err := q.db.ExecContext(ctx, insertJobOffer,
		arg.ID,
		arg.GuildID,
		arg.UserID,
		arg.TeamID,
		arg.ExpiresAt,
		arg.CreatedAt,
	)
	return err
}

const deleteJobOffers = `
DELETE FROM job_offers
WHERE guild_id = @guild_id
  AND (@user_id IS NULL OR user_id = @user_id)
  AND (@team_id IS NULL OR team_id = @team_id)
  AND (@active_at IS NULL OR expires_at > @active_at)
`

func (q *Queries) DeleteJobOffers(ctx context.Context, arg JobOfferFilterParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteJobOffers, arg.args()...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const claimExpiredJobOffers = `
DELETE FROM job_offers
WHERE expires_at <= ?
RETURNING id, guild_id, user_id, team_id, expires_at, created_at
`

func (q *Queries) ClaimExpiredJobOffers(ctx context.Context, now int64) ([]JobOffer, error) {
	rows, err := q.db.QueryContext(ctx, claimExpiredJobOffers, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []JobOffer
	for rows.Next() {
		var i JobOffer
		if err := rows.Scan(
			&i.ID,
			&i.GuildID,
			&i.UserID,
			&i.TeamID,
			&i.ExpiresAt,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
