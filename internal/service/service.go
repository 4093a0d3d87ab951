package service

import (
	"context"
	"fmt"

	"dynasty-bot/internal/domain"
	"dynasty-bot/internal/notify"

	"github.com/rs/zerolog"
)

func requireReady(cfg domain.GuildConfig, feature domain.Feature) error {
	if !cfg.SetupComplete {
		return reject(RejectSetupIncomplete, "%s has not finished setup yet", cfg.LeagueName)
	}
	if feature != "" && !cfg.Features.Enabled(feature) {
		return reject(RejectFeatureDisabled, "%s is disabled in this league", feature)
	}
	return nil
}

// warnings collects best-effort side-effect failures.
type warnings []string

func (w *warnings) add(format string, args ...any) {
	*w = append(*w, fmt.Sprintf(format, args...))
}

func deliver(ctx context.Context, n notify.Notifier, logger zerolog.Logger, msg notify.Notification, w *warnings) {
	if err := n.Notify(ctx, msg); err != nil {
		logger.Warn().
			Err(err).
			Str("guild_id", msg.Target.GuildID).
			Str("kind", string(msg.Kind)).
			Msg("notification failed")
		w.add("could not deliver %s notification: %v", msg.Kind, err)
	}
}
