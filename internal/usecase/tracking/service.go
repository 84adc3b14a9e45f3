// Package tracking implements the lot lifecycle engine: role-gated
// transitions over the lot ledger, with the methanol safety override applied
// at analysis time.
package tracking

import (
	"context"
	"log/slog"
	"time"

	"github.com/thiagodalladea/bebida-segura/internal/bootstrap/logging"
	"github.com/thiagodalladea/bebida-segura/internal/errs"
	"github.com/thiagodalladea/bebida-segura/internal/ports"
)

type Service struct {
	repo     ports.TrackingRepository
	uow      ports.UnitOfWork
	cache    ports.Cache
	notifier ports.Notifier
	limitPPM int64
}

// NewService wires the lifecycle engine. limitPPM is the process-wide
// methanol threshold; it never changes after construction.
func NewService(
	repo ports.TrackingRepository,
	uow ports.UnitOfWork,
	cache ports.Cache,
	notifier ports.Notifier,
	limitPPM int64,
) *Service {
	return &Service{
		repo:     repo,
		uow:      uow,
		cache:    cache,
		notifier: notifier,
		limitPPM: limitPPM,
	}
}

// MethanolLimitPPM exposes the configured threshold for reporting surfaces.
func (s *Service) MethanolLimitPPM() int64 {
	return s.limitPPM
}

func nowUTCString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func (s *Service) setCacheBestEffort(ctx context.Context, key, value string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, 0); err != nil {
		logging.Warn(ctx, "cache update failed", slog.String("key", key), slog.Any("err", errs.Loggable(err)))
	}
}

func (s *Service) publishBestEffort(ctx context.Context, event ports.LotEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		logging.Warn(ctx, "event publish failed",
			slog.Uint64("event_id", event.EventID),
			slog.String("type", event.Type),
			slog.Any("err", errs.Loggable(err)),
		)
	}
}

func cacheLotStateKey(lotID uint64) string {
	return "lot_state:" + formatLotID(lotID)
}
