package worker

import (
	"context"
	"time"

	repository "github.com/evently/evently/internal/database/postgres"
	cache "github.com/evently/evently/internal/database/redis"

	"github.com/sirupsen/logrus"
)

// ViewsFlushWorker периодически переносит накопленные в Redis счетчики
// просмотров в колонку events.views.
type ViewsFlushWorker struct {
	cache     *cache.EventCache
	eventRepo repository.EventRepository
	interval  time.Duration
}

func NewViewsFlushWorker(
	eventCache *cache.EventCache,
	eventRepo repository.EventRepository,
	interval time.Duration,
) *ViewsFlushWorker {
	return &ViewsFlushWorker{
		cache:     eventCache,
		eventRepo: eventRepo,
		interval:  interval,
	}
}

func (w *ViewsFlushWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("Views flush worker started")

	for {
		select {
		case <-ctx.Done():
			// Финальный сброс, чтобы не терять счетчики при остановке.
			w.flush(context.Background())
			logrus.Info("Views flush worker stopped")
			return
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

// flush переносит счетчики просмотров в Postgres. Счетчик, который не
// удалось записать, возвращается в кэш и будет повторен на следующем
// тике.
func (w *ViewsFlushWorker) flush(ctx context.Context) {
	counters, err := w.cache.DrainViews(ctx)
	if err != nil {
		logrus.Errorf("Failed to drain view counters: %v", err)
		return
	}

	if len(counters) == 0 {
		return
	}

	successCount := 0
	failedCount := 0

	for eventID, delta := range counters {
		select {
		case <-ctx.Done():
			logrus.Info("Views flush interrupted by context cancellation")
			return
		default:
		}

		if err := w.eventRepo.AddViews(ctx, eventID, delta); err != nil {
			logrus.Errorf("Failed to flush %d views for event %s: %v",
				delta, eventID, err)
			w.cache.RestoreViews(ctx, eventID, delta)
			failedCount++
			continue
		}
		successCount++
	}

	logrus.Infof("Views flush completed: %d events updated, %d failed",
		successCount, failedCount)
}
