package db

import (
	"context"
	"database/sql"
)

const getTeam = `
SELECT id, name, star_rating, conference FROM teams WHERE id = ?
`

func (q *Queries) GetTeam(ctx context.Context, id int64) (Team, error) {
	row := q.db.QueryRowContext(ctx, getTeam, id)
	var i Team
	err := row.Scan(&i.ID, &i.Name, &i.StarRating, &i.Conference)
	return i, err
}

const getTeamByName = `
SELECT id, name, star_rating, conference FROM teams WHERE name = ? COLLATE NOCASE
`

func (q *Queries) GetTeamByName(ctx context.Context, name string) (Team, error) {
	row := q.db.QueryRowContext(ctx, getTeamByName, name)
	var i Team
	err := row.Scan(&i.ID, &i.Name, &i.StarRating, &i.Conference)
	return i, err
}

const listTeams = `
SELECT id, name, star_rating, conference FROM teams ORDER BY name
`

func (q *Queries) ListTeams(ctx context.Context) ([]Team, error) {
	rows, err := q.db.QueryContext(ctx, listTeams)
	if err != nil {
		return nil, err
	}
	return scanTeams(rows)
}

const listTeamsByRating = `
SELECT id, name, star_rating, conference
FROM teams
WHERE star_rating >= @min_rating
  AND (@max_rating IS NULL OR star_rating <= @max_rating)
ORDER BY star_rating DESC, name
`

type ListTeamsByRatingParams struct {
	MinRating float64
	MaxRating sql.NullFloat64
}

func (q *Queries) ListTeamsByRating(ctx context.Context, arg ListTeamsByRatingParams) ([]Team, error) {
	rows, err := q.db.QueryContext(ctx, listTeamsByRating,
		sql.Named("min_rating", arg.MinRating),
		sql.Named("max_rating", arg.MaxRating),
	)
	if err != nil {
		return nil, err
	}
	return scanTeams(rows)
}

const searchTeams = `
SELECT id, name, star_rating, conference
FROM teams
WHERE name LIKE ?
ORDER BY name
LIMIT ?
`

type SearchTeamsParams struct {
	Pattern string
	Limit   int64
}

func (q *Queries) SearchTeams(ctx context.Context, arg SearchTeamsParams) ([]Team, error) {
	rows, err := q.db.QueryContext(ctx, searchTeams, arg.Pattern, arg.Limit)
	if err != nil {
		return nil, err
	}
	return scanTeams(rows)
}

const upsertTeam = `
INSERT INTO teams (name, star_rating, conference)
VALUES (?, ?, ?)
ON CONFLICT (name) DO UPDATE SET
    star_rating = excluded.star_rating,
    conference = excluded.conference
`

type UpsertTeamParams struct {
	Name       string
	StarRating float64
	Conference string
}

func (q *Queries) UpsertTeam(ctx context.Context, arg UpsertTeamParams) error {
	_, err := q.db.ExecContext(ctx, upsertTeam, arg.Name, arg.StarRating, arg.Conference)
	return err
}

func scanTeams(rows *sql.Rows) ([]Team, error) {
	defer rows.Close()
	var items []Team
	for rows.Next() {
		var i Team
		if err := rows.Scan(&i.ID, &i.Name, &i.StarRating, &i.Conference); err != nil {
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

const assignmentColumns = `
SELECT a.team_id, a.guild_id, a.user_id, a.assigned_at, t.name, t.star_rating, t.conference
FROM team_assignments a
JOIN teams t ON t.id = a.team_id
`

const getAssignmentByUser = assignmentColumns + `WHERE a.guild_id = ? AND a.user_id = ?`

type GetAssignmentByUserParams struct {
	GuildID string
	UserID  string
}

func (q *Queries) GetAssignmentByUser(ctx context.Context, arg GetAssignmentByUserParams) (TeamAssignment, error) {
	row := q.db.QueryRowContext(ctx, getAssignmentByUser, arg.GuildID, arg.UserID)
	return scanAssignment(row)
}

const getAssignmentByTeam = assignmentColumns + `WHERE a.guild_id = ? AND a.team_id = ?`

type GetAssignmentByTeamParams struct {
	GuildID string
	TeamID  int64
}

func (q *Queries) GetAssignmentByTeam(ctx context.Context, arg GetAssignmentByTeamParams) (TeamAssignment, error) {
	row := q.db.QueryRowContext(ctx, getAssignmentByTeam, arg.GuildID, arg.TeamID)
	return scanAssignment(row)
}

const listAssignments = assignmentColumns + `WHERE a.guild_id = ? ORDER BY t.name`

func (q *Queries) ListAssignments(ctx context.Context, guildID string) ([]TeamAssignment, error) {
	rows, err := q.db.QueryContext(ctx, listAssignments, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TeamAssignment
	for rows.Next() {
		var i TeamAssignment
		if err := rows.Scan(
			&i.TeamID,
			&i.GuildID,
			&i.UserID,
			&i.AssignedAt,
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

func scanAssignment(row *sql.Row) (TeamAssignment, error) {
	var i TeamAssignment
	err := row.Scan(
		&i.TeamID,
		&i.GuildID,
		&i.UserID,
		&i.AssignedAt,
		&i.TeamName,
		&i.StarRating,
		&i.Conference,
	)
	return i, err
}

const upsertAssignment = `
INSERT INTO team_assignments (team_id, guild_id, user_id, assigned_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (team_id, guild_id) DO UPDATE SET
    user_id = excluded.user_id,
    assigned_at = excluded.assigned_at
`

type UpsertAssignmentParams struct {
	TeamID     int64
	GuildID    string
	UserID     string
	AssignedAt int64
}

func (q *Queries) UpsertAssignment(ctx context.Context, arg UpsertAssignmentParams) error {
	_, err := q.db.ExecContext(ctx, upsertAssignment, arg.TeamID, arg.GuildID, arg.UserID, arg.AssignedAt)
	return err
}

const insertAssignmentIfAbsent = `
INSERT INTO team_assignments (team_id, guild_id, user_id, assigned_at)
VALUES (?, ?, ?, ?)
ON CONFLICT DO NOTHING
`

func (q *Queries) InsertAssignmentIfAbsent(ctx context.Context, arg UpsertAssignmentParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertAssignmentIfAbsent, arg.TeamID, arg.GuildID, arg.UserID, arg.AssignedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteAssignment = `
DELETE FROM team_assignments WHERE team_id = ? AND guild_id = ?
`

type DeleteAssignmentParams struct {
	TeamID  int64
	GuildID string
}

func (q *Queries) DeleteAssignment(ctx context.Context, arg DeleteAssignmentParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAssignment, arg.TeamID, arg.GuildID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteAssignmentByUser = `
DELETE FROM team_assignments WHERE guild_id = ? AND user_id = ?
`

type DeleteAssignmentByUserParams struct {
	GuildID string
	UserID  string
}

func (q *Queries) DeleteAssignmentByUser(ctx context.Context, arg DeleteAssignmentByUserParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAssignmentByUser, arg.GuildID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
