package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"dynasty-bot/internal/domain"
	"dynasty-bot/internal/repository"
	"dynasty-bot/internal/testutils"
)

func insertOffers(t *testing.T, tdb *testutils.TestDB, guildID, userID string, expires time.Time, teams ...string) []domain.Offer {
	t.Helper()
	batch := make([]domain.Offer, len(teams))
	for i, name := range teams {
		batch[i] = domain.Offer{GuildID: guildID, UserID: userID, Team: tdb.Team(t, name), ExpiresAt: expires}
	}
	out, err := tdb.Offers.InsertOffers(context.Background(), batch)
	if err != nil {
		t.Fatalf("InsertOffers() error = %v", err)
	}
	return out
}

func TestListOffersFilters(t *testing.T) {
	tdb := testutils.NewTestDB(t)
	ctx := context.Background()

	soon := testutils.Epoch.Add(time.Hour)
	later := testutils.Epoch.Add(48 * time.Hour)
	insertOffers(t, tdb, testutils.GuildID, "u1", later, "Iowa", "Utah")
	insertOffers(t, tdb, testutils.GuildID, "u2", soon, "Iowa")
	insertOffers(t, tdb, testutils.OtherGuildID, "u1", later, "Kansas")

	iowa := tdb.Team(t, "Iowa")
	tests := map[string]struct {
		filter repository.OfferFilter
		want   int
	}{
		"guild":          {filter: repository.OfferFilter{GuildID: testutils.GuildID}, want: 3},
		"user":           {filter: repository.OfferFilter{GuildID: testutils.GuildID, UserID: "u1"}, want: 2},
		"team":           {filter: repository.OfferFilter{GuildID: testutils.GuildID, TeamID: iowa.ID}, want: 2},
		"active":         {filter: repository.OfferFilter{GuildID: testutils.GuildID, ActiveAt: soon}, want: 2},
		"user and team":  {filter: repository.OfferFilter{GuildID: testutils.GuildID, UserID: "u2", TeamID: iowa.ID}, want: 1},
		"other guild":    {filter: repository.OfferFilter{GuildID: testutils.OtherGuildID}, want: 1},
		"unknown guild":  {filter: repository.OfferFilter{GuildID: "nope"}, want: 0},
		"active in past": {filter: repository.OfferFilter{GuildID: testutils.GuildID, ActiveAt: testutils.Epoch}, want: 3},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			offers, err := tdb.Offers.ListOffers(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListOffers() error = %v", err)
			}
			if len(offers) != tt.want {
				t.Errorf("got %d offers, want %d", len(offers), tt.want)
			}
			for _, o := range offers {
				if o.Team.Name == "" {
					t.Errorf("offer %s has no team name", o.ID)
				}
			}
		})
	}
}

func TestListOffersRequiresGuild(t *testing.T) {
	tdb := testutils.NewTestDB(t)

	if _, err := tdb.Offers.ListOffers(context.Background(), repository.OfferFilter{UserID: "u1"}); err == nil {
		t.Error("expected error for filter without guild")
	}
	if _, err := tdb.Offers.DeleteOffers(context.Background(), repository.OfferFilter{}); err == nil {
		t.Error("expected error for delete without guild")
	}
}

func TestDeleteOffers(t *testing.T) {
	tdb := testutils.NewTestDB(t)
	ctx := context.Background()
	later := testutils.Epoch.Add(48 * time.Hour)
	insertOffers(t, tdb, testutils.GuildID, "u1", later, "Iowa", "Utah", "Kansas")
	insertOffers(t, tdb, testutils.GuildID, "u2", later, "Rice")

	n, err := tdb.Offers.DeleteOffers(ctx, repository.OfferFilter{GuildID: testutils.GuildID, UserID: "u1"})
	if err != nil {
		t.Fatalf("DeleteOffers() error = %v", err)
	}
	if n != 3 {
		t.Errorf("deleted %d, want 3", n)
	}

	left, err := tdb.Offers.ListOffers(ctx, repository.OfferFilter{GuildID: testutils.GuildID})
	if err != nil {
		t.Fatalf("ListOffers() error = %v", err)
	}
	if len(left) != 1 || left[0].UserID != "u2" {
		t.Errorf("remaining offers = %+v, want only u2's", left)
	}
}

func TestClaimExpired(t *testing.T) {
	tdb := testutils.NewTestDB(t)
	ctx := context.Background()

	insertOffers(t, tdb, testutils.GuildID, "u1", testutils.Epoch.Add(time.Hour), "Iowa", "Utah")
	insertOffers(t, tdb, testutils.OtherGuildID, "u9", testutils.Epoch.Add(time.Hour), "Iowa")
	insertOffers(t, tdb, testutils.GuildID, "u2", testutils.Epoch.Add(3*time.Hour), "Rice")

	claimed, err := tdb.Offers.ClaimExpired(ctx, testutils.Epoch.Add(time.Hour))
	if err != nil {
		t.Fatalf("ClaimExpired() error = %v", err)
	}
	if len(claimed) != 3 {
		t.Fatalf("claimed %d offers, want 3", len(claimed))
	}
	for _, o := range claimed {
		if o.Team.Name == "" {
			t.Errorf("claimed offer %s has no team name", o.ID)
		}
	}

	again, err := tdb.Offers.ClaimExpired(ctx, testutils.Epoch.Add(time.Hour))
	if err != nil {
		t.Fatalf("ClaimExpired() error = %v", err)
	}
	if len(again) != 0 {
		t.Errorf("offers claimed twice: %+v", again)
	}

	left, err := tdb.Offers.ListOffers(ctx, repository.OfferFilter{GuildID: testutils.GuildID})
	if err != nil {
		t.Fatalf("ListOffers() error = %v", err)
	}
	if len(left) != 1 || left[0].UserID != "u2" {
		t.Errorf("remaining offers = %+v, want only u2's", left)
	}
}

func TestClaimExpiredConcurrent(t *testing.T) {
	tdb := testutils.NewTestDB(t)
	ctx := context.Background()
	insertOffers(t, tdb, testutils.GuildID, "u1", testutils.Epoch, "Iowa", "Utah", "Kansas", "Rice")

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := tdb.Offers.ClaimExpired(ctx, testutils.Epoch)
			if err != nil {
				t.Errorf("ClaimExpired() error = %v", err)
				return
			}
			mu.Lock()
			total += len(claimed)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if total != 4 {
		t.Errorf("claimed %d offers in total, want exactly 4", total)
	}
}
