package db

import (
	"context"
	"database/sql"
)

const getLeagueMeta = `
SELECT guild_id, season, week, current_phase, current_sub_phase,
       advance_hours, advance_deadline, created_at, updated_at
FROM league_meta
WHERE guild_id = ?
`

func (q *Queries) GetLeagueMeta(ctx context.Context, guildID string) (LeagueMeta, error) {
	row := q.db.QueryRowContext(ctx, getLeagueMeta, guildID)
	var i LeagueMeta
	err := row.Scan(
		&i.GuildID,
		&i.Season,
		&i.Week,
		&i.CurrentPhase,
		&i.CurrentSubPhase,
		&i.AdvanceHours,
		&i.AdvanceDeadline,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertLeagueMeta = `
INSERT INTO league_meta (guild_id, created_at, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (guild_id) DO NOTHING
`

type InsertLeagueMetaParams struct {
	GuildID   string
	CreatedAt int64
}

func (q *Queries) InsertLeagueMeta(ctx context.Context, arg InsertLeagueMetaParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertLeagueMeta, arg.GuildID, arg.CreatedAt, arg.CreatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const advanceLeagueMeta = `
UPDATE league_meta SET
    season            = @season,
    week              = @week,
    current_phase     = @phase,
    current_sub_phase = @sub_phase,
    advance_hours     = @advance_hours,
    advance_deadline  = @advance_deadline,
    updated_at        = @updated_at
WHERE guild_id = @guild_id
  AND season = @expected_season
  AND current_phase = @expected_phase
  AND current_sub_phase = @expected_sub_phase
`

type AdvanceLeagueMetaParams struct {
	GuildID          string
	Season           int64
	Week             int64
	Phase            string
	SubPhase         int64
	AdvanceHours     int64
	AdvanceDeadline  sql.NullInt64
	UpdatedAt        int64
	ExpectedSeason   int64
	ExpectedPhase    string
	ExpectedSubPhase int64
}

func (q *Queries) AdvanceLeagueMeta(ctx context.Context, arg AdvanceLeagueMetaParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, advanceLeagueMeta,
		sql.Named("season", arg.Season),
		sql.Named("week", arg.Week),
		sql.Named("phase", arg.Phase),
		sql.Named("sub_phase", arg.SubPhase),
		sql.Named("advance_hours", arg.AdvanceHours),
		sql.Named("advance_deadline", arg.AdvanceDeadline),
		sql.Named("updated_at", arg.UpdatedAt),
		sql.Named("guild_id", arg.GuildID),
		sql.Named("expected_season", arg.ExpectedSeason),
		sql.Named("expected_phase", arg.ExpectedPhase),
		sql.Named("expected_sub_phase", arg.ExpectedSubPhase),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const importLeagueMeta = `
INSERT INTO league_meta (guild_id, season, week, current_phase, current_sub_phase, created_at, updated_at)
VALUES (@guild_id, @season, @week, @phase, @sub_phase, @updated_at, @updated_at)
ON CONFLICT (guild_id) DO UPDATE SET
    season            = excluded.season,
    week              = excluded.week,
    current_phase     = excluded.current_phase,
    current_sub_phase = excluded.current_sub_phase,
    advance_deadline  = NULL,
    updated_at        = excluded.updated_at
`

type ImportLeagueMetaParams struct {
	GuildID   string
	Season    int64
	Week      int64
	Phase     string
	SubPhase  int64
	UpdatedAt int64
}

func (q *Queries) ImportLeagueMeta(ctx context.Context, arg ImportLeagueMetaParams) error {
	_, err := q.db.ExecContext(ctx, importLeagueMeta,
		sql.Named("guild_id", arg.GuildID),
		sql.Named("season", arg.Season),
		sql.Named("week", arg.Week),
		sql.Named("phase", arg.Phase),
		sql.Named("sub_phase", arg.SubPhase),
		sql.Named("updated_at", arg.UpdatedAt),
	)
	return err
}

const getRecord = `
SELECT r.team_id, r.season, r.guild_id, r.wins, r.losses, t.name
FROM records r
JOIN teams t ON t.id = r.team_id
WHERE r.team_id = ? AND r.season = ? AND r.guild_id = ?
`

type GetRecordParams struct {
	TeamID  int64
	Season  int64
	GuildID string
}

func (q *Queries) GetRecord(ctx context.Context, arg GetRecordParams) (Record, error) {
	row := q.db.QueryRowContext(ctx, getRecord, arg.TeamID, arg.Season, arg.GuildID)
	var i Record
	err := row.Scan(&i.TeamID, &i.Season, &i.GuildID, &i.Wins, &i.Losses, &i.TeamName)
	return i, err
}

const addRecord = `
INSERT INTO records (team_id, season, guild_id, wins, losses)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (team_id, season, guild_id) DO UPDATE SET
    wins = records.wins + excluded.wins,
    losses = records.losses + excluded.losses
`

type AddRecordParams struct {
	TeamID  int64
	Season  int64
	GuildID string
	Wins    int64
	Losses  int64
}

func (q *Queries) AddRecord(ctx context.Context, arg AddRecordParams) error {
	_, err := q.db.ExecContext(ctx, addRecord, arg.TeamID, arg.Season, arg.GuildID, arg.Wins, arg.Losses)
	return err
}

const listSeasonRecords = `
SELECT r.team_id, r.season, r.guild_id, r.wins, r.losses, t.name
FROM records r
JOIN teams t ON t.id = r.team_id
WHERE r.guild_id = ? AND r.season = ?
ORDER BY r.wins DESC, r.losses ASC, t.name
`

type ListSeasonRecordsParams struct {
	GuildID string
	Season  int64
}

func (q *Queries) ListSeasonRecords(ctx context.Context, arg ListSeasonRecordsParams) ([]Record, error) {
	rows, err := q.db.QueryContext(ctx, listSeasonRecords, arg.GuildID, arg.Season)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

const listAllTimeRecords = `
SELECT r.team_id, 0, r.guild_id, SUM(r.wins), SUM(r.losses), t.name
FROM records r
JOIN teams t ON t.id = r.team_id
WHERE r.guild_id = ?
GROUP BY r.team_id, r.guild_id, t.name
ORDER BY SUM(r.wins) DESC, SUM(r.losses) ASC, t.name
`

func (q *Queries) ListAllTimeRecords(ctx context.Context, guildID string) ([]Record, error) {
	rows, err := q.db.QueryContext(ctx, listAllTimeRecords, guildID)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()
	var items []Record
	for rows.Next() {
		var i Record
		if err := rows.Scan(&i.TeamID, &i.Season, &i.GuildID, &i.Wins, &i.Losses, &i.TeamName); err != nil {
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

const insertResult = `
INSERT INTO results (id, guild_id, season, phase, sub_phase, week, team1_id, team2_id, score1, score2, submitted_by, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertResultParams struct {
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
}

func (q *Queries) InsertResult(ctx context.Context, arg InsertResultParams) error {
	_, err := q.db.ExecContext(ctx, insertResult,
		arg.ID,
		arg.GuildID,
		arg.Season,
		arg.Phase,
		arg.SubPhase,
		arg.Week,
		arg.Team1ID,
		arg.Team2ID,
		arg.Score1,
		arg.Score2,
		arg.SubmittedBy,
		arg.CreatedAt,
	)
	return err
}

const listSlotResults = `
SELECT r.id, r.guild_id, r.season, r.phase, r.sub_phase, r.week, r.team1_id, r.team2_id,
       r.score1, r.score2, r.submitted_by, r.created_at, t1.name, t2.name
FROM results r
JOIN teams t1 ON t1.id = r.team1_id
JOIN teams t2 ON t2.id = r.team2_id
WHERE r.guild_id = ? AND r.season = ? AND r.phase = ? AND r.sub_phase = ?
ORDER BY r.created_at, r.id
`

type ListSlotResultsParams struct {
	GuildID  string
	Season   int64
	Phase    string
	SubPhase int64
}

func (q *Queries) ListSlotResults(ctx context.Context, arg ListSlotResultsParams) ([]Result, error) {
	rows, err := q.db.QueryContext(ctx, listSlotResults, arg.GuildID, arg.Season, arg.Phase, arg.SubPhase)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Result
	for rows.Next() {
		var i Result
		if err := rows.Scan(
			&i.ID,
			&i.GuildID,
			&i.Season,
			&i.Phase,
			&i.SubPhase,
			&i.Week,
			&i.Team1ID,
			&i.Team2ID,
			&i.Score1,
			&i.Score2,
			&i.SubmittedBy,
			&i.CreatedAt,
			&i.Team1Name,
			&i.Team2Name,
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

const insertNews = `
INSERT INTO news_feed (id, guild_id, author_id, team_name, message, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

type InsertNewsParams struct {
	ID        string
	GuildID   string
	AuthorID  string
	TeamName  string
	Message   string
	CreatedAt int64
}

func (q *Queries) InsertNews(ctx context.Context, arg InsertNewsParams) error {
	_, err := q.db.ExecContext(ctx, insertNews, arg.ID, arg.GuildID, arg.AuthorID, arg.TeamName, arg.Message, arg.CreatedAt)
	return err
}
