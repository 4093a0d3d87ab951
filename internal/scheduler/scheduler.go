package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dynasty-bot/internal/api"
	"dynasty-bot/internal/config"
	"dynasty-bot/internal/constants"
	"dynasty-bot/internal/domain"
	"dynasty-bot/internal/guildconfig"
	"dynasty-bot/internal/notify"
	"dynasty-bot/internal/service"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/itbasis/go-clock"
	"github.com/rs/zerolog"
)

const (
	jobOfferSweep = "offer-expiry-sweep"
	jobSelfPing   = "self-ping"
)

type Sweeper interface {
	SweepExpired(ctx context.Context) (*service.SweepReport, error)
}

type Pinger interface {
	Enabled() bool
	Ping(ctx context.Context) (api.PingResult, error)
}

type reminderKey struct {
	guildID   string
	channelID string
	userID    string
}

type Scheduler struct {
	sched    gocron.Scheduler
	sweeper  Sweeper
	pinger   Pinger
	configs  *guildconfig.Cache
	notifier notify.Notifier
	clock    clock.Clock
	interval time.Duration
	logger   zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending map[reminderKey]uuid.UUID
}

func New(
	cfg *config.Config,
	sweeper Sweeper,
	pinger Pinger,
	configs *guildconfig.Cache,
	notifier notify.Notifier,
	clk clock.Clock,
	logger zerolog.Logger,
) (*Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLogger(gocronLogger{logger}))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	interval := cfg.OfferSweepInterval
	if interval <= 0 {
		interval = constants.OfferSweepInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		sched:    sched,
		sweeper:  sweeper,
		pinger:   pinger,
		configs:  configs,
		notifier: notifier,
		clock:    clk,
		interval: interval,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		pending:  make(map[reminderKey]uuid.UUID),
	}, nil
}

// Start registers the recurring jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	_, err := s.sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.sweep),
		gocron.WithName(jobOfferSweep),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule offer sweep: %w", err)
	}

	if s.pinger != nil && s.pinger.Enabled() {
		_, err := s.sched.NewJob(
			gocron.DurationJob(constants.SelfPingInterval),
			gocron.NewTask(s.ping),
			gocron.WithName(jobSelfPing),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule self-ping: %w", err)
		}
	}

	s.sched.Start()
	s.logger.Info().
		Dur("sweep_interval", s.interval).
		Bool("self_ping", s.pinger != nil && s.pinger.Enabled()).
		Msg("scheduler started")
	return nil
}

func (s *Scheduler) Stop() error {
	s.cancel()
	if err := s.sched.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	s.logger.Info().Msg("scheduler stopped")
	return nil
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(s.ctx, constants.RequestTimeout)
	defer cancel()

	report, err := s.sweeper.SweepExpired(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("offer sweep failed")
		return
	}
	if report.Expired > 0 {
		s.logger.Debug().Int("expired", report.Expired).Msg("offer sweep finished")
	}
}

func (s *Scheduler) ping() {
	ctx, cancel := context.WithTimeout(s.ctx, constants.DiscordAPITimeout)
	defer cancel()

	res, err := s.pinger.Ping(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("self-ping failed")
		return
	}
	s.logger.Debug().Int("status", res.Status).Dur("latency", res.Latency).Msg("self-ping ok")
}

// ScheduleStreamReminder queues a one-time reminder in the streaming
// channel after the guild's configured delay. It reports false when the
// feature is off or a reminder for the same user and channel is already
// pending.
func (s *Scheduler) ScheduleStreamReminder(ctx context.Context, guildID, channelID, userID string) (bool, time.Time, error) {
	cfg, err := s.configs.Get(ctx, guildID)
	if err != nil {
		return false, time.Time{}, err
	}
	if !cfg.SetupComplete || !cfg.Features.Enabled(domain.FeatureStreamReminders) {
		return false, time.Time{}, nil
	}

	key := reminderKey{guildID: guildID, channelID: channelID, userID: userID}
	at := s.clock.Now().Add(time.Duration(cfg.StreamReminderMinutes) * time.Minute)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[key]; ok {
		return false, time.Time{}, nil
	}

	job, err := s.sched.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(at)),
		gocron.NewTask(s.remind, key, cfg.StreamReminderMinutes),
		gocron.WithName(fmt.Sprintf("stream-reminder:%s:%s:%s", guildID, channelID, userID)),
	)
	if err != nil {
		return false, time.Time{}, fmt.Errorf("failed to schedule stream reminder: %w", err)
	}
	s.pending[key] = job.ID()

	s.logger.Info().
		Str("guild_id", guildID).
		Str("channel_id", channelID).
		Str("user_id", userID).
		Time("at", at).
		Msg("stream reminder scheduled")
	return true, at, nil
}

func (s *Scheduler) PendingReminders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Scheduler) remind(key reminderKey, minutes int) {
	s.mu.Lock()
	delete(s.pending, key)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(s.ctx, constants.DiscordAPITimeout)
	defer cancel()

	err := s.notifier.Notify(ctx, notify.Notification{
		Kind: notify.KindStreamReminder,
		Target: notify.Target{
			GuildID:   key.guildID,
			ChannelID: key.channelID,
			Channel:   domain.ChannelStreaming,
		},
		UserID:  key.userID,
		Minutes: minutes,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("guild_id", key.guildID).Str("user_id", key.userID).Msg("stream reminder failed")
	}
}

// gocronLogger routes scheduler logs into zerolog.
type gocronLogger struct {
	logger zerolog.Logger
}

func (l gocronLogger) Debug(msg string, args ...any) {
	l.logger.Debug().Fields(args).Msg(msg)
}

func (l gocronLogger) Info(msg string, args ...any) {
	l.logger.Info().Fields(args).Msg(msg)
}

func (l gocronLogger) Warn(msg string, args ...any) {
	l.logger.Warn().Fields(args).Msg(msg)
}

func (l gocronLogger) Error(msg string, args ...any) {
	l.logger.Error().Fields(args).Msg(msg)
}
