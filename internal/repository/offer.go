package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dynasty-bot/internal/db"
	"dynasty-bot/internal/domain"

	"github.com/itbasis/go-clock"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// OfferFilter narrows ledger reads and deletes to one guild. Zero-valued
// fields are ignored; ActiveAt keeps only offers still unexpired at that
// instant.
type OfferFilter struct {
	GuildID  string
	UserID   string
	TeamID   int64
	ActiveAt time.Time
}

func (f OfferFilter) params() db.JobOfferFilterParams {
	p := db.JobOfferFilterParams{GuildID: f.GuildID}
	if f.UserID != "" {
		p.UserID = sql.NullString{String: f.UserID, Valid: true}
	}
	if f.TeamID != 0 {
		p.TeamID = sql.NullInt64{Int64: f.TeamID, Valid: true}
	}
	if !f.ActiveAt.IsZero() {
		p.ActiveAt = sql.NullInt64{Int64: unix(f.ActiveAt), Valid: true}
	}
	return p
}

type OfferRepository struct {
	queries *db.Queries
	db      *sql.DB
	clock   clock.Clock
	logger  zerolog.Logger
}

func NewOfferRepository(sqlDB *sql.DB, queries *db.Queries, clk clock.Clock, logger zerolog.Logger) *OfferRepository {
	return &OfferRepository{
		queries: queries,
		db:      sqlDB,
		clock:   clk,
		logger:  logger,
	}
}

func toOffer(row db.JobOffer) domain.Offer {
	return domain.Offer{
		ID:      row.ID,
		GuildID: row.GuildID,
		UserID:  row.UserID,
		Team: domain.Team{
			ID:         row.TeamID,
			Name:       row.TeamName,
			StarRating: row.StarRating,
			Conference: row.Conference,
		},
		ExpiresAt: fromUnix(row.ExpiresAt),
		CreatedAt: fromUnix(row.CreatedAt),
	}
}

func (r *OfferRepository) ListOffers(ctx context.Context, filter OfferFilter) ([]domain.Offer, error) {
	if filter.GuildID == "" {
		return nil, fmt.Errorf("offer filter requires a guild")
	}
	rows, err := r.queries.ListJobOffers(ctx, filter.params())
	if err != nil {
		return nil, fmt.Errorf("failed to list job offers: %w", err)
	}
	out := make([]domain.Offer, len(rows))
	for i, row := range rows {
		out[i] = toOffer(row)
	}
	return out, nil
}

// InsertOffers stores the batch atomically, assigning ids and creation times.
func (r *OfferRepository) InsertOffers(ctx context.Context, offers []domain.Offer) ([]domain.Offer, error) {
	if len(offers) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)
	now := r.clock.Now().UTC()
	out := make([]domain.Offer, len(offers))

	for i, offer := range offers {
		if offer.ID == "" {
			offer.ID, err = gonanoid.New()
			if err != nil {
				return nil, fmt.Errorf("failed to generate nanoid: %w", err)
			}
		}
		offer.CreatedAt = now

		if err := qtx.InsertJobOffer(ctx, db.InsertJobOfferParams{
			ID:        offer.ID,
			GuildID:   offer.GuildID,
			UserID:    offer.UserID,
			TeamID:    offer.Team.ID,
			ExpiresAt: unix(offer.ExpiresAt),
			CreatedAt: unix(offer.CreatedAt),
		}); err != nil {
			return nil, fmt.Errorf("failed to insert job offer: %w", err)
		}
		out[i] = offer
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit job offers: %w", err)
	}
	return out, nil
}

func (r *OfferRepository) DeleteOffers(ctx context.Context, filter OfferFilter) (int64, error) {
	if filter.GuildID == "" {
		return 0, fmt.Errorf("offer filter requires a guild")
	}
	n, err := r.queries.DeleteJobOffers(ctx, filter.params())
	if err != nil {
		return 0, fmt.Errorf("failed to delete job offers: %w", err)
	}
	return n, nil
}

// ClaimExpired deletes every offer expired at now and returns the deleted
// rows. A row is returned to exactly one caller.
func (r *OfferRepository) ClaimExpired(ctx context.Context, now time.Time) ([]domain.Offer, error) {
	rows, err := r.queries.ClaimExpiredJobOffers(ctx, unix(now))
	if err != nil {
		return nil, fmt.Errorf("failed to claim expired job offers: %w", err)
	}

	names := make(map[int64]db.Team)
	out := make([]domain.Offer, len(rows))
	for i, row := range rows {
		team, ok := names[row.TeamID]
		if !ok {
			team, err = r.queries.GetTeam(ctx, row.TeamID)
			if err != nil {
				r.logger.Warn().Err(err).Int64("team_id", row.TeamID).Msg("failed to resolve team for expired offer")
				team = db.Team{ID: row.TeamID}
			}
			names[row.TeamID] = team
		}
		row.TeamName = team.Name
		row.StarRating = team.StarRating
		row.Conference = team.Conference
		out[i] = toOffer(row)
	}
	return out, nil
}
