package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/domain"
	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/internal/repository/publisher"
)

// changeNotifier publishes change events after a write has been committed.
// A failed publish is logged and does not fail the write.
type changeNotifier struct {
	events publisher.EventPublisher
	logger *slog.Logger
}

func (n changeNotifier) notify(ctx context.Context, table string, eventType domain.ChangeEventType, before, after any, at time.Time) {
	if n.events == nil {
		return
	}
	event := &domain.ChangeEvent{
		EventType: eventType,
		Table:     table,
		Old:       before,
		New:       after,
		Timestamp: at,
	}
	if err := n.events.PublishChange(ctx, event); err != nil {
		n.logger.WarnContext(ctx, "publish change event failed",
			slog.String("table", table),
			slog.String("event", string(eventType)),
			slog.Any("error", err),
		)
	}
}
