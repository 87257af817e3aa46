package publisher

import (
	"context"

	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/domain"
)

type EventPublisher interface {
	PublishChange(ctx context.Context, event *domain.ChangeEvent) error
	PublishZoneAlert(ctx context.Context, alert *domain.ZoneAlert) error
}
