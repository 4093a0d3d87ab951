package repository_test

import (
	"context"
	"testing"

	"dynasty-bot/internal/domain"
	"dynasty-bot/internal/testutils"
)

func TestFindTeamByName(t *testing.T) {
	tdb := testutils.NewTestDB(t)
	ctx := context.Background()

	tests := map[string]struct {
		name  string
		found bool
	}{
		"exact":            {name: "Ohio State", found: true},
		"case insensitive": {name: "ohio state", found: true},
		"padded":           {name: "  Texas ", found: true},
		"missing":          {name: "Hogwarts", found: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			team, err := tdb.Teams.FindTeamByName(ctx, tt.name)
			if err != nil {
				t.Fatalf("FindTeamByName() error = %v", err)
			}
			if (team != nil) != tt.found {
				t.Errorf("FindTeamByName(%q) found = %v, want %v", tt.name, team != nil, tt.found)
			}
		})
	}
}

func TestListTeamsByRating(t *testing.T) {
	tdb := testutils.NewTestDB(t)
	ctx := context.Background()

	tests := map[string]struct {
		min  float64
		max  *float64
		want int
	}{
		"no ceiling":  {min: 2.5, want: 9},
		"with window": {min: 3.5, max: domain.Ptr(4.5), want: 5},
		"top only":    {min: 5.0, want: 2},
		"empty":       {min: 5.5, want: 0},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			teams, err := tdb.Teams.ListTeamsByRating(ctx, tt.min, tt.max)
			if err != nil {
				t.Fatalf("ListTeamsByRating() error = %v", err)
			}
			if len(teams) != tt.want {
				t.Errorf("got %d teams, want %d", len(teams), tt.want)
			}
			for _, team := range teams {
				if team.StarRating < tt.min || (tt.max != nil && team.StarRating > *tt.max) {
					t.Errorf("team %s rated %.1f is outside the window", team.Name, team.StarRating)
				}
			}
		})
	}
}

func TestSearchTeams(t *testing.T) {
	tdb := testutils.NewTestDB(t)

	teams, err := tdb.Teams.SearchTeams(context.Background(), "a", 3)
	if err != nil {
		t.Fatalf("SearchTeams() error = %v", err)
	}
	if len(teams) != 3 {
		t.Errorf("got %d teams, want 3", len(teams))
	}

	teams, err = tdb.Teams.SearchTeams(context.Background(), "%", 10)
	if err != nil {
		t.Fatalf("SearchTeams() error = %v", err)
	}
	if len(teams) != len(testutils.SeededTeam) {
		t.Errorf("wildcards should be stripped: got %d teams, want %d", len(teams), len(testutils.SeededTeam))
	}
}

func TestUpsertTeamsIsIdempotent(t *testing.T) {
	tdb := testutils.NewTestDB(t)
	ctx := context.Background()

	updated := testutils.Rice
	updated.StarRating = 3.0
	if err := tdb.Teams.UpsertTeams(ctx, []domain.Team{updated}); err != nil {
		t.Fatalf("UpsertTeams() error = %v", err)
	}

	teams, err := tdb.Teams.ListTeams(ctx)
	if err != nil {
		t.Fatalf("ListTeams() error = %v", err)
	}
	if len(teams) != len(testutils.SeededTeam) {
		t.Fatalf("got %d teams, want %d", len(teams), len(testutils.SeededTeam))
	}

	rice, err := tdb.Teams.FindTeamByName(ctx, "Rice")
	if err != nil || rice == nil {
		t.Fatalf("FindTeamByName(Rice) = %v, %v", rice, err)
	}
	if rice.StarRating != 3.0 {
		t.Errorf("Rice rating = %.1f, want 3.0", rice.StarRating)
	}
}

func TestClaimTeam(t *testing.T) {
	tdb := testutils.NewTestDB(t)
	ctx := context.Background()
	bama := tdb.Team(t, "Alabama")
	uga := tdb.Team(t, "Georgia")

	ok, err := tdb.Teams.ClaimTeam(ctx, bama.ID, "u1", testutils.GuildID)
	if err != nil || !ok {
		t.Fatalf("first claim = %v, %v; want true", ok, err)
	}

	tests := map[string]struct {
		teamID  int64
		userID  string
		guildID string
		want    bool
	}{
		"team already held":        {teamID: bama.ID, userID: "u2", guildID: testutils.GuildID, want: false},
		"user already holds team":  {teamID: uga.ID, userID: "u1", guildID: testutils.GuildID, want: false},
		"same team in other guild": {teamID: bama.ID, userID: "u2", guildID: testutils.OtherGuildID, want: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ok, err := tdb.Teams.ClaimTeam(ctx, tt.teamID, tt.userID, tt.guildID)
			if err != nil {
				t.Fatalf("ClaimTeam() error = %v", err)
			}
			if ok != tt.want {
				t.Errorf("ClaimTeam() = %v, want %v", ok, tt.want)
			}
		})
	}

	holder, err := tdb.Teams.FindAssignmentByTeam(ctx, testutils.GuildID, bama.ID)
	if err != nil || holder == nil {
		t.Fatalf("FindAssignmentByTeam() = %v, %v", holder, err)
	}
	if holder.UserID != "u1" {
		t.Errorf("holder = %s, want u1", holder.UserID)
	}
}

func TestUpsertAssignment(t *testing.T) {
	tdb := testutils.NewTestDB(t)
	ctx := context.Background()
	iowa := tdb.Team(t, "Iowa")

	if err := tdb.Teams.UpsertAssignment(ctx, iowa.ID, "u1", testutils.GuildID); err != nil {
		t.Fatalf("UpsertAssignment() error = %v", err)
	}
	// The last write for a team wins.
	if err := tdb.Teams.UpsertAssignment(ctx, iowa.ID, "u2", testutils.GuildID); err != nil {
		t.Fatalf("second UpsertAssignment() error = %v", err)
	}

	assignments, err := tdb.Teams.ListAssignments(ctx, testutils.GuildID)
	if err != nil {
		t.Fatalf("ListAssignments() error = %v", err)
	}
	if len(assignments) != 1 || assignments[0].UserID != "u2" || assignments[0].Team.ID != iowa.ID {
		t.Errorf("assignments = %+v, want Iowa held by u2", assignments)
	}
}

func TestReassignUser(t *testing.T) {
	tdb := testutils.NewTestDB(t)
	ctx := context.Background()
	tdb.Assign(t, testutils.GuildID, "u1", "Iowa")

	utah := tdb.Team(t, "Utah")
	if err := tdb.Teams.ReassignUser(ctx, utah.ID, "u1", testutils.GuildID); err != nil {
		t.Fatalf("ReassignUser() error = %v", err)
	}

	assignments, err := tdb.Teams.ListAssignments(ctx, testutils.GuildID)
	if err != nil {
		t.Fatalf("ListAssignments() error = %v", err)
	}
	if len(assignments) != 1 {
		t.Fatalf("got %d assignments, want 1", len(assignments))
	}
	if assignments[0].Team.Name != "Utah" {
		t.Errorf("assigned team = %s, want Utah", assignments[0].Team.Name)
	}
}

func TestDeleteAssignment(t *testing.T) {
	tdb := testutils.NewTestDB(t)
	ctx := context.Background()
	tdb.Assign(t, testutils.GuildID, "u1", "Kansas")
	kansas := tdb.Team(t, "Kansas")

	ok, err := tdb.Teams.DeleteAssignment(ctx, kansas.ID, testutils.GuildID)
	if err != nil || !ok {
		t.Fatalf("DeleteAssignment() = %v, %v; want true", ok, err)
	}
	ok, err = tdb.Teams.DeleteAssignment(ctx, kansas.ID, testutils.GuildID)
	if err != nil || ok {
		t.Fatalf("second DeleteAssignment() = %v, %v; want false", ok, err)
	}

	a, err := tdb.Teams.FindAssignmentByUser(ctx, testutils.GuildID, "u1")
	if err != nil {
		t.Fatalf("FindAssignmentByUser() error = %v", err)
	}
	if a != nil {
		t.Errorf("assignment still present: %+v", a)
	}
}
