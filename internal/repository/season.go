package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dynasty-bot/internal/db"
	"dynasty-bot/internal/domain"
	"dynasty-bot/internal/league"

	"github.com/itbasis/go-clock"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

const defaultAdvanceHours = 24

type SeasonRepository struct {
	queries *db.Queries
	db      *sql.DB
	clock   clock.Clock
	logger  zerolog.Logger
}

func NewSeasonRepository(sqlDB *sql.DB, queries *db.Queries, clk clock.Clock, logger zerolog.Logger) *SeasonRepository {
	return &SeasonRepository{
		queries: queries,
		db:      sqlDB,
		clock:   clk,
		logger:  logger,
	}
}

func defaultMeta(guildID string) domain.Meta {
	state := league.Initial()
	return domain.Meta{
		GuildID:      guildID,
		State:        state,
		Week:         state.Week(),
		AdvanceHours: defaultAdvanceHours,
	}
}

// GetMeta returns the stored league state, or season 1 preseason when the
// guild has none.
func (r *SeasonRepository) GetMeta(ctx context.Context, guildID string) (domain.Meta, error) {
	row, err := r.queries.GetLeagueMeta(ctx, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultMeta(guildID), nil
	}
	if err != nil {
		return domain.Meta{}, fmt.Errorf("failed to get league meta: %w", err)
	}

	phase, err := league.ParsePhase(row.CurrentPhase)
	if err != nil {
		r.logger.Error().Err(err).Str("guild_id", guildID).Msg("malformed league meta")
		return domain.Meta{}, fmt.Errorf("malformed league meta for guild %s: %w", guildID, err)
	}

	meta := domain.Meta{
		GuildID: row.GuildID,
		State: league.State{
			Season: int(row.Season),
			Phase:  phase,
			Sub:    int(row.CurrentSubPhase),
		},
		Week:         int(row.Week),
		AdvanceHours: int(row.AdvanceHours),
		UpdatedAt:    fromUnix(row.UpdatedAt),
	}
	if row.AdvanceDeadline.Valid {
		deadline := fromUnix(row.AdvanceDeadline.Int64)
		meta.AdvanceDeadline = &deadline
	}
	return meta, nil
}

func (r *SeasonRepository) EnsureMeta(ctx context.Context, guildID string) (bool, error) {
	n, err := r.queries.InsertLeagueMeta(ctx, db.InsertLeagueMetaParams{
		GuildID:   guildID,
		CreatedAt: unix(r.clock.Now()),
	})
	if err != nil {
		return false, fmt.Errorf("failed to create league meta: %w", err)
	}
	return n > 0, nil
}

// AdvanceMeta writes next only if the stored state still equals expected.
// It reports false when another advance got there first.
func (r *SeasonRepository) AdvanceMeta(ctx context.Context, guildID string, expected league.State, next domain.Meta) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)
	now := unix(r.clock.Now())

	if _, err := qtx.InsertLeagueMeta(ctx, db.InsertLeagueMetaParams{GuildID: guildID, CreatedAt: now}); err != nil {
		return false, fmt.Errorf("failed to create league meta: %w", err)
	}

	params := db.AdvanceLeagueMetaParams{
		GuildID:          guildID,
		Season:           int64(next.State.Season),
		Week:             int64(next.Week),
		Phase:            string(next.State.Phase),
		SubPhase:         int64(next.State.Sub),
		AdvanceHours:     int64(next.AdvanceHours),
		UpdatedAt:        now,
		ExpectedSeason:   int64(expected.Season),
		ExpectedPhase:    string(expected.Phase),
		ExpectedSubPhase: int64(expected.Sub),
	}
	if next.AdvanceDeadline != nil {
		params.AdvanceDeadline = sql.NullInt64{Int64: unix(*next.AdvanceDeadline), Valid: true}
	}

	n, err := qtx.AdvanceLeagueMeta(ctx, params)
	if err != nil {
		r.logger.Error().Err(err).Str("guild_id", guildID).Msg("failed to advance league meta")
		return false, fmt.Errorf("failed to advance league meta: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit league meta: %w", err)
	}
	return true, nil
}

// ImportMeta overwrites the league state unconditionally. It is only used
// when an established league is first set up.
func (r *SeasonRepository) ImportMeta(ctx context.Context, guildID string, state league.State) error {
	if err := state.Validate(); err != nil {
		return err
	}
	err := r.queries.ImportLeagueMeta(ctx, db.ImportLeagueMetaParams{
		GuildID:   guildID,
		Season:    int64(state.Season),
		Week:      int64(state.Week()),
		Phase:     string(state.Phase),
		SubPhase:  int64(state.Sub),
		UpdatedAt: unix(r.clock.Now()),
	})
	if err != nil {
		return fmt.Errorf("failed to import league meta: %w", err)
	}
	return nil
}

// GetRecord returns a zero record when the team has not played this season.
func (r *SeasonRepository) GetRecord(ctx context.Context, teamID int64, season int, guildID string) (domain.Record, error) {
	row, err := r.queries.GetRecord(ctx, db.GetRecordParams{
		TeamID:  teamID,
		Season:  int64(season),
		GuildID: guildID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{Team: domain.Team{ID: teamID}, Season: season, GuildID: guildID}, nil
	}
	if err != nil {
		return domain.Record{}, fmt.Errorf("failed to get record: %w", err)
	}
	return toRecord(row), nil
}

func toRecord(row db.Record) domain.Record {
	return domain.Record{
		Team:    domain.Team{ID: row.TeamID, Name: row.TeamName},
		Season:  int(row.Season),
		GuildID: row.GuildID,
		Wins:    int(row.Wins),
		Losses:  int(row.Losses),
	}
}

// RecordResult stores the result and adds the win and loss to both teams'
// season records. Ties are stored but leave records untouched.
func (r *SeasonRepository) RecordResult(ctx context.Context, result domain.Result) (domain.Result, error) {
	if result.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return domain.Result{}, fmt.Errorf("failed to generate nanoid: %w", err)
		}
		result.ID = id
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = r.clock.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Result{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	if err := qtx.InsertResult(ctx, db.InsertResultParams{
		ID:          result.ID,
		GuildID:     result.GuildID,
		Season:      int64(result.State.Season),
		Phase:       string(result.State.Phase),
		SubPhase:    int64(result.State.Sub),
		Week:        int64(result.Week),
		Team1ID:     result.Team1.ID,
		Team2ID:     result.Team2.ID,
		Score1:      int64(result.Score1),
		Score2:      int64(result.Score2),
		SubmittedBy: result.SubmittedBy,
		CreatedAt:   unix(result.CreatedAt),
	}); err != nil {
		return domain.Result{}, fmt.Errorf("failed to insert result: %w", err)
	}

	if winner, loser, ok := result.Winner(); ok {
		season := int64(result.State.Season)
		if err := qtx.AddRecord(ctx, db.AddRecordParams{
			TeamID: winner.ID, Season: season, GuildID: result.GuildID, Wins: 1,
		}); err != nil {
			return domain.Result{}, fmt.Errorf("failed to record win: %w", err)
		}
		if err := qtx.AddRecord(ctx, db.AddRecordParams{
			TeamID: loser.ID, Season: season, GuildID: result.GuildID, Losses: 1,
		}); err != nil {
			return domain.Result{}, fmt.Errorf("failed to record loss: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Result{}, fmt.Errorf("failed to commit result: %w", err)
	}
	return result, nil
}

func (r *SeasonRepository) ListRecords(ctx context.Context, guildID string, season int) ([]domain.Record, error) {
	rows, err := r.queries.ListSeasonRecords(ctx, db.ListSeasonRecordsParams{
		GuildID: guildID,
		Season:  int64(season),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	out := make([]domain.Record, len(rows))
	for i, row := range rows {
		out[i] = toRecord(row)
	}
	return out, nil
}

// ListAllTimeRecords sums every season per team; Season is zero on the result.
func (r *SeasonRepository) ListAllTimeRecords(ctx context.Context, guildID string) ([]domain.Record, error) {
	rows, err := r.queries.ListAllTimeRecords(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list all-time records: %w", err)
	}
	out := make([]domain.Record, len(rows))
	for i, row := range rows {
		out[i] = toRecord(row)
	}
	return out, nil
}

// ListResults returns the results recorded while the league was at state.
func (r *SeasonRepository) ListResults(ctx context.Context, guildID string, state league.State) ([]domain.Result, error) {
	rows, err := r.queries.ListSlotResults(ctx, db.ListSlotResultsParams{
		GuildID:  guildID,
		Season:   int64(state.Season),
		Phase:    string(state.Phase),
		SubPhase: int64(state.Sub),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	out := make([]domain.Result, len(rows))
	for i, row := range rows {
		out[i] = domain.Result{
			ID:          row.ID,
			GuildID:     row.GuildID,
			State:       state,
			Week:        int(row.Week),
			Team1:       domain.Team{ID: row.Team1ID, Name: row.Team1Name},
			Team2:       domain.Team{ID: row.Team2ID, Name: row.Team2Name},
			Score1:      int(row.Score1),
			Score2:      int(row.Score2),
			SubmittedBy: row.SubmittedBy,
			CreatedAt:   fromUnix(row.CreatedAt),
		}
	}
	return out, nil
}

func (r *SeasonRepository) InsertPressRelease(ctx context.Context, pr domain.PressRelease) (domain.PressRelease, error) {
	id, err := gonanoid.New()
	if err != nil {
		return domain.PressRelease{}, fmt.Errorf("failed to generate nanoid: %w", err)
	}
	pr.ID = id
	pr.CreatedAt = r.clock.Now().UTC()

	if err := r.queries.InsertNews(ctx, db.InsertNewsParams{
		ID:        pr.ID,
		GuildID:   pr.GuildID,
		AuthorID:  pr.AuthorID,
		TeamName:  pr.TeamName,
		Message:   pr.Message,
		CreatedAt: unix(pr.CreatedAt),
	}); err != nil {
		return domain.PressRelease{}, fmt.Errorf("failed to insert press release: %w", err)
	}
	return pr, nil
}
