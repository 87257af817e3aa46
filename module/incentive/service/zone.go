package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/domain"
	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/internal/repository/publisher"
)

type nearbyFinder interface {
	NearbyDynamicIncentives(ctx context.Context, point domain.Coordinate, searchRadiusKm float64, now time.Time) (*Result[domain.DynamicIncentive], error)
}

// ZoneService turns location pings into zone-entry alerts for every active
// dynamic incentive whose area contains the ping.
type ZoneService struct {
	finder    nearbyFinder
	publisher publisher.EventPublisher
	radiusKm  float64
	logger    *slog.Logger
}

func NewZoneService(finder nearbyFinder, pub publisher.EventPublisher, radiusKm float64, logger *slog.Logger) *ZoneService {
	return &ZoneService{
		finder:    finder,
		publisher: pub,
		radiusKm:  radiusKm,
		logger:    logger,
	}
}

func (s *ZoneService) CheckAndAlert(ctx context.Context, ping *domain.LocationPing) error {
	res, err := s.finder.NearbyDynamicIncentives(ctx, ping.Location, s.radiusKm, ping.Timestamp)
	if err != nil {
		return err
	}

	for _, inc := range res.Items {
		if inc.UserType != "" && inc.UserType != ping.UserType {
			continue
		}
		alert := &domain.ZoneAlert{
			IncentiveID: inc.ID.String(),
			SubjectID:   ping.SubjectID,
			UserType:    ping.UserType,
			Event:       domain.ZoneEntry,
			Location:    ping.Location,
			Timestamp:   ping.Timestamp.Unix(),
		}
		if err := s.publisher.PublishZoneAlert(ctx, alert); err != nil {
			return err
		}
		s.logger.DebugContext(ctx, "zone alert published",
			slog.String("incentive_id", alert.IncentiveID),
			slog.String("subject_id", alert.SubjectID),
		)
	}
	return nil
}
