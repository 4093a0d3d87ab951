package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"dynasty-bot/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DiscordToken        string
	DiscordAppID        string
	DBPath              string
	LogLevel            string
	HealthPort          string
	SelfPingURL         string
	OfferSweepInterval  time.Duration
	Week15PromptTimeout time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	sweep, err := getDuration("OFFER_SWEEP_INTERVAL", constants.OfferSweepInterval)
	if err != nil {
		return nil, err
	}
	prompt, err := getDuration("WEEK15_PROMPT_TIMEOUT", constants.Week15PromptTimeout)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DiscordToken:        getEnv("DISCORD_TOKEN", ""),
		DiscordAppID:        getEnv("DISCORD_APPLICATION_ID", ""),
		DBPath:              getEnv("DB_PATH", "dynasty.db"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		HealthPort:          getEnv("HEALTH_PORT", ""),
		SelfPingURL:         getEnv("SELF_PING_URL", ""),
		OfferSweepInterval:  sweep,
		Week15PromptTimeout: prompt,
	}

	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("health_port", cfg.HealthPort).
		Str("log_level", cfg.LogLevel).
		Bool("self_ping", cfg.SelfPingURL != "").
		Dur("offer_sweep_interval", cfg.OfferSweepInterval).
		Dur("week15_prompt_timeout", cfg.Week15PromptTimeout).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration accepts Go durations ("30m") or a bare number of seconds.
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("%s must be positive", key)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

var Module = fx.Provide(Load)
