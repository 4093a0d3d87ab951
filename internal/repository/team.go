package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"dynasty-bot/internal/db"
	"dynasty-bot/internal/domain"

	"github.com/itbasis/go-clock"
	"github.com/rs/zerolog"
)

type TeamRepository struct {
	queries *db.Queries
	db      *sql.DB
	clock   clock.Clock
	logger  zerolog.Logger
}

func NewTeamRepository(sqlDB *sql.DB, queries *db.Queries, clk clock.Clock, logger zerolog.Logger) *TeamRepository {
	return &TeamRepository{
		queries: queries,
		db:      sqlDB,
		clock:   clk,
		logger:  logger,
	}
}

// FindTeamByName matches case-insensitively and returns nil when absent.
func (r *TeamRepository) FindTeamByName(ctx context.Context, name string) (*domain.Team, error) {
	row, err := r.queries.GetTeamByName(ctx, strings.TrimSpace(name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find team %q: %w", name, err)
	}
	team := toTeam(row)
	return &team, nil
}

func (r *TeamRepository) GetTeam(ctx context.Context, id int64) (*domain.Team, error) {
	row, err := r.queries.GetTeam(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}
	team := toTeam(row)
	return &team, nil
}

func (r *TeamRepository) ListTeams(ctx context.Context) ([]domain.Team, error) {
	rows, err := r.queries.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return toTeams(rows), nil
}

// ListTeamsByRating returns teams rated at least minStars and, when maxStars
// is set, at most maxStars, best rated first.
func (r *TeamRepository) ListTeamsByRating(ctx context.Context, minStars float64, maxStars *float64) ([]domain.Team, error) {
	rows, err := r.queries.ListTeamsByRating(ctx, db.ListTeamsByRatingParams{
		MinRating: minStars,
		MaxRating: nullFloat(maxStars),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list teams by rating: %w", err)
	}
	return toTeams(rows), nil
}

func (r *TeamRepository) SearchTeams(ctx context.Context, query string, limit int) ([]domain.Team, error) {
	escaped := strings.NewReplacer("%", "", "_", "").Replace(strings.TrimSpace(query))
	rows, err := r.queries.SearchTeams(ctx, db.SearchTeamsParams{
		Pattern: "%" + escaped + "%",
		Limit:   int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search teams: %w", err)
	}
	return toTeams(rows), nil
}

func (r *TeamRepository) UpsertTeams(ctx context.Context, teams []domain.Team) error {
	if len(teams) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)
	for _, t := range teams {
		if err := qtx.UpsertTeam(ctx, db.UpsertTeamParams{
			Name:       t.Name,
			StarRating: t.StarRating,
			Conference: t.Conference,
		}); err != nil {
			return fmt.Errorf("failed to upsert team %q: %w", t.Name, err)
		}
	}

	return tx.Commit()
}

func toAssignment(row db.TeamAssignment) domain.Assignment {
	return domain.Assignment{
		Team: domain.Team{
			ID:         row.TeamID,
			Name:       row.TeamName,
			StarRating: row.StarRating,
			Conference: row.Conference,
		},
		GuildID:    row.GuildID,
		UserID:     row.UserID,
		AssignedAt: fromUnix(row.AssignedAt),
	}
}

func (r *TeamRepository) FindAssignmentByUser(ctx context.Context, guildID, userID string) (*domain.Assignment, error) {
	row, err := r.queries.GetAssignmentByUser(ctx, db.GetAssignmentByUserParams{
		GuildID: guildID,
		UserID:  userID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find assignment for user: %w", err)
	}
	a := toAssignment(row)
	return &a, nil
}

func (r *TeamRepository) FindAssignmentByTeam(ctx context.Context, guildID string, teamID int64) (*domain.Assignment, error) {
	row, err := r.queries.GetAssignmentByTeam(ctx, db.GetAssignmentByTeamParams{
		GuildID: guildID,
		TeamID:  teamID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find assignment for team: %w", err)
	}
	a := toAssignment(row)
	return &a, nil
}

func (r *TeamRepository) ListAssignments(ctx context.Context, guildID string) ([]domain.Assignment, error) {
	rows, err := r.queries.ListAssignments(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	out := make([]domain.Assignment, len(rows))
	for i, row := range rows {
		out[i] = toAssignment(row)
	}
	return out, nil
}

// UpsertAssignment binds team to user; an existing holder of the team in
// the guild is replaced.
func (r *TeamRepository) UpsertAssignment(ctx context.Context, teamID int64, userID, guildID string) error {
	err := r.queries.UpsertAssignment(ctx, db.UpsertAssignmentParams{
		TeamID:     teamID,
		GuildID:    guildID,
		UserID:     userID,
		AssignedAt: unix(r.clock.Now()),
	})
	if err != nil {
		r.logger.Error().Err(err).Int64("team_id", teamID).Str("guild_id", guildID).Msg("failed to upsert assignment")
		return fmt.Errorf("failed to upsert assignment: %w", err)
	}
	return nil
}

// ClaimTeam assigns team to user only if neither already holds an
// assignment in the guild.
func (r *TeamRepository) ClaimTeam(ctx context.Context, teamID int64, userID, guildID string) (bool, error) {
	n, err := r.queries.InsertAssignmentIfAbsent(ctx, db.UpsertAssignmentParams{
		TeamID:     teamID,
		GuildID:    guildID,
		UserID:     userID,
		AssignedAt: unix(r.clock.Now()),
	})
	if err != nil {
		return false, fmt.Errorf("failed to claim team: %w", err)
	}
	return n > 0, nil
}

// ReassignUser drops whatever team the user holds and binds teamID in one
// transaction.
func (r *TeamRepository) ReassignUser(ctx context.Context, teamID int64, userID, guildID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)
	if _, err := qtx.DeleteAssignmentByUser(ctx, db.DeleteAssignmentByUserParams{
		GuildID: guildID,
		UserID:  userID,
	}); err != nil {
		return fmt.Errorf("failed to clear previous assignment: %w", err)
	}
	if err := qtx.UpsertAssignment(ctx, db.UpsertAssignmentParams{
		TeamID:     teamID,
		GuildID:    guildID,
		UserID:     userID,
		AssignedAt: unix(r.clock.Now()),
	}); err != nil {
		return fmt.Errorf("failed to assign team: %w", err)
	}

	return tx.Commit()
}

func (r *TeamRepository) DeleteAssignment(ctx context.Context, teamID int64, guildID string) (bool, error) {
	n, err := r.queries.DeleteAssignment(ctx, db.DeleteAssignmentParams{
		TeamID:  teamID,
		GuildID: guildID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete assignment: %w", err)
	}
	return n > 0, nil
}
