package service_test

import (
	"errors"
	"testing"
	"time"

	"dynasty-bot/internal/config"
	"dynasty-bot/internal/guildconfig"
	"dynasty-bot/internal/notify/mocknotify"
	"dynasty-bot/internal/service"
	"dynasty-bot/internal/testutils"

	"github.com/stretchr/testify/mock"
)

type env struct {
	*testutils.TestDB
	configs  *guildconfig.Cache
	notifier *mocknotify.Recorder
	roles    *mocknotify.RoleManager

	league *service.LeagueService
	offers *service.OfferService
	roster *service.RosterService
	setup  *service.SetupService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	tdb := testutils.NewTestDB(t)

	roles := &mocknotify.RoleManager{}
	roles.On("GrantHeadCoach", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("role-1", nil).Maybe()
	roles.On("RevokeHeadCoach", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	e := &env{
		TestDB:   tdb,
		configs:  guildconfig.NewCache(tdb.Configs, tdb.Logger),
		notifier: &mocknotify.Recorder{},
		roles:    roles,
	}
	cfg := &config.Config{Week15PromptTimeout: 200 * time.Millisecond}

	e.league = service.NewLeagueService(e.configs, tdb.Seasons, tdb.Teams, e.notifier, tdb.Clock, cfg, tdb.Logger)
	e.offers = service.NewOfferService(e.configs, tdb.Teams, tdb.Offers, e.notifier, roles, tdb.Clock, tdb.Logger)
	e.roster = service.NewRosterService(e.configs, tdb.Teams, tdb.Offers, e.notifier, roles, tdb.Logger)
	e.setup = service.NewSetupService(e.configs, tdb.Configs, tdb.Seasons, tdb.Logger)
	return e
}

// ready runs the guild through setup with every feature on.
func (e *env) ready(t *testing.T, guildID string) {
	t.Helper()
	e.CompleteSetup(t, guildID)
	e.configs.Invalidate(guildID)
}

func expectRejection(t *testing.T, err error, code service.RejectCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s rejection, got nil", code)
	}
	r, ok := service.AsRejection(err)
	if !ok {
		t.Fatalf("expected %s rejection, got %v", code, err)
	}
	if r.Code != code {
		t.Fatalf("rejection code = %s, want %s (%s)", r.Code, code, r.Message)
	}
}

var errBoom = errors.New("boom")
