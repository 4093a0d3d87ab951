package testutils

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"dynasty-bot/internal/database"
	"dynasty-bot/internal/db"
	"dynasty-bot/internal/domain"
	"dynasty-bot/internal/repository"

	"github.com/itbasis/go-clock"
	"github.com/rs/zerolog"
)

const (
	GuildID      = "guild-1"
	OtherGuildID = "guild-2"
)

var Epoch = time.Date(2024, time.September, 1, 12, 0, 0, 0, time.UTC)

var (
	Alabama    = domain.Team{Name: "Alabama", StarRating: 5.0, Conference: "SEC"}
	Georgia    = domain.Team{Name: "Georgia", StarRating: 5.0, Conference: "SEC"}
	OhioState  = domain.Team{Name: "Ohio State", StarRating: 4.5, Conference: "Big Ten"}
	Texas      = domain.Team{Name: "Texas", StarRating: 4.5, Conference: "SEC"}
	Oregon     = domain.Team{Name: "Oregon", StarRating: 4.0, Conference: "Big Ten"}
	Utah       = domain.Team{Name: "Utah", StarRating: 3.5, Conference: "Big 12"}
	Iowa       = domain.Team{Name: "Iowa", StarRating: 3.5, Conference: "Big Ten"}
	Kansas     = domain.Team{Name: "Kansas", StarRating: 3.0, Conference: "Big 12"}
	Rice       = domain.Team{Name: "Rice", StarRating: 2.5, Conference: "AAC"}
	UMass      = domain.Team{Name: "UMass", StarRating: 1.5, Conference: "Independent"}
	SeededTeam = []domain.Team{Alabama, Georgia, OhioState, Texas, Oregon, Utah, Iowa, Kansas, Rice, UMass}
)

type TestDB struct {
	DB      *sql.DB
	Queries *db.Queries
	Clock   *clock.Mock
	Logger  zerolog.Logger

	Configs *repository.ConfigRepository
	Teams   *repository.TeamRepository
	Seasons *repository.SeasonRepository
	Offers  *repository.OfferRepository

	byName map[string]domain.Team
}

// NewTestDB migrates a fresh sqlite file under t.TempDir and seeds the
// SeededTeam list. The clock starts at Epoch.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	logger := zerolog.Nop()
	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	if err != nil {
		t.Fatalf("error opening test database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	clk := clock.NewMock()
	clk.Set(Epoch)

	queries := db.New(sqlDB)
	tdb := &TestDB{
		DB:      sqlDB,
		Queries: queries,
		Clock:   clk,
		Logger:  logger,
		Configs: repository.NewConfigRepository(sqlDB, queries, clk, logger),
		Teams:   repository.NewTeamRepository(sqlDB, queries, clk, logger),
		Seasons: repository.NewSeasonRepository(sqlDB, queries, clk, logger),
		Offers:  repository.NewOfferRepository(sqlDB, queries, clk, logger),
		byName:  map[string]domain.Team{},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := tdb.Teams.UpsertTeams(ctx, SeededTeam); err != nil {
		t.Fatalf("error seeding teams: %v", err)
	}
	teams, err := tdb.Teams.ListTeams(ctx)
	if err != nil {
		t.Fatalf("error listing seeded teams: %v", err)
	}
	for _, team := range teams {
		tdb.byName[team.Name] = team
	}
	return tdb
}

// Team returns the stored copy of a seeded team, with its id.
func (d *TestDB) Team(t *testing.T, name string) domain.Team {
	t.Helper()
	team, ok := d.byName[name]
	if !ok {
		t.Fatalf("no seeded team %q", name)
	}
	return team
}

// CompleteSetup creates the guild's config row with setup finished and
// every feature on.
func (d *TestDB) CompleteSetup(t *testing.T, guildID string) {
	t.Helper()
	features := map[domain.Feature]bool{}
	for _, f := range domain.Features() {
		features[f] = true
	}
	err := d.Configs.UpsertConfig(context.Background(), guildID, domain.ConfigUpdate{
		SetupComplete: domain.Ptr(true),
		Features:      features,
	})
	if err != nil {
		t.Fatalf("error completing setup: %v", err)
	}
}

func (d *TestDB) Assign(t *testing.T, guildID, userID, teamName string) {
	t.Helper()
	team := d.Team(t, teamName)
	if err := d.Teams.UpsertAssignment(context.Background(), team.ID, userID, guildID); err != nil {
		t.Fatalf("error assigning %s: %v", teamName, err)
	}
}
