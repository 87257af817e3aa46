package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/activity"
	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/domain"
	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/geofence"
	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/internal/repository/database"
)

// SkippedRecord names a stored incentive that could not be evaluated. A bad
// record never fails the whole query; it is left out and reported here.
type SkippedRecord struct {
	ID     uuid.UUID `json:"id"`
	Reason string    `json:"reason"`
}

type Result[T any] struct {
	Items   []T             `json:"items"`
	Skipped []SkippedRecord `json:"skipped,omitempty"`
}

type ActiveQuery struct {
	UserType domain.UserType
	Location string
	// RequireStarted applies the strict start <= now <= end window instead of
	// the buffered end-only check.
	RequireStarted bool
}

// QueryService narrows stored incentives by temporal activity and geofence
// containment for the dashboard and mobile API.
type QueryService struct {
	incentives database.IncentiveRepository
	dynamic    database.DynamicIncentiveRepository
	filter     activity.Filter
	logger     *slog.Logger
	workers    int
}

func NewQueryService(incentives database.IncentiveRepository, dynamic database.DynamicIncentiveRepository, filter activity.Filter, logger *slog.Logger) *QueryService {
	return &QueryService{
		incentives: incentives,
		dynamic:    dynamic,
		filter:     filter,
		logger:     logger,
		workers:    runtime.GOMAXPROCS(0),
	}
}

func (s *QueryService) ActiveIncentives(ctx context.Context, q ActiveQuery, now time.Time) (*Result[domain.Incentive], error) {
	if q.UserType != "" && !q.UserType.Valid() {
		return nil, fmt.Errorf("%w: unknown user type %q", domain.ErrInvalidQuery, q.UserType)
	}

	candidates, err := s.incentives.List(ctx, domain.IncentiveFilter{
		UserType:   q.UserType,
		Location:   q.Location,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("list incentives: %w", err)
	}

	res := &Result[domain.Incentive]{Items: []domain.Incentive{}}
	for _, inc := range candidates {
		var ok bool
		if q.RequireStarted {
			ok, err = activity.IsWithinWindow(inc.StartDate, inc.EndDate, now)
			ok = ok && inc.IsActive
		} else {
			ok, err = s.filter.IsCurrentlyActive(inc.IsActive, inc.EndDate, now)
		}
		if err != nil {
			res.Skipped = append(res.Skipped, s.skip(ctx, inc.ID, err))
			continue
		}
		if ok {
			res.Items = append(res.Items, inc)
		}
	}
	return res, nil
}

// NearbyDynamicIncentives returns active dynamic incentives whose area
// contains point. searchRadiusKm only applies to records that still store a
// bare list of legacy points; circles must carry their own radius.
func (s *QueryService) NearbyDynamicIncentives(ctx context.Context, point domain.Coordinate, searchRadiusKm float64, now time.Time) (*Result[domain.DynamicIncentive], error) {
	if err := point.Validate(); err != nil {
		return nil, err
	}
	if !(searchRadiusKm > 0) || math.IsInf(searchRadiusKm, 0) {
		return nil, fmt.Errorf("%w: search radius must be a positive finite number, got %v", domain.ErrInvalidQuery, searchRadiusKm)
	}

	candidates, err := s.dynamic.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list dynamic incentives: %w", err)
	}

	matched := make([]bool, len(candidates))
	failures := make([]error, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			matched[i], failures[i] = s.evaluate(&candidates[i], point, searchRadiusKm, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result[domain.DynamicIncentive]{Items: []domain.DynamicIncentive{}}
	for i, inc := range candidates {
		if failures[i] != nil {
			res.Skipped = append(res.Skipped, s.skip(ctx, inc.ID, failures[i]))
			continue
		}
		if matched[i] {
			res.Items = append(res.Items, inc)
		}
	}
	return res, nil
}

func (s *QueryService) evaluate(inc *domain.DynamicIncentive, point domain.Coordinate, searchRadiusKm float64, now time.Time) (bool, error) {
	active, err := s.filter.IsCurrentlyActive(inc.IsActive, inc.EndDate, now)
	if err != nil || !active {
		return false, err
	}
	return geofence.AreaContains(point, inc.Area, searchRadiusKm)
}

func (s *QueryService) DynamicIncentivesByCities(ctx context.Context, cities []string, now time.Time) (*Result[domain.DynamicIncentive], error) {
	if len(cities) == 0 {
		return nil, fmt.Errorf("%w: at least one city is required", domain.ErrInvalidQuery)
	}

	names := make([]string, 0, len(cities))
	for _, city := range cities {
		if name, _, ok := domain.CityCoordinate(city); ok {
			names = append(names, name)
			continue
		}
		names = append(names, city)
	}

	candidates, err := s.dynamic.ListByCities(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("list dynamic incentives by cities: %w", err)
	}

	res := &Result[domain.DynamicIncentive]{Items: []domain.DynamicIncentive{}}
	for _, inc := range candidates {
		ok, err := s.filter.IsCurrentlyActive(inc.IsActive, inc.EndDate, now)
		if err != nil {
			res.Skipped = append(res.Skipped, s.skip(ctx, inc.ID, err))
			continue
		}
		if ok {
			res.Items = append(res.Items, inc)
		}
	}
	return res, nil
}

func (s *QueryService) Stats(ctx context.Context) (*domain.Stats, error) {
	incentives, err := s.incentives.List(ctx, domain.IncentiveFilter{})
	if err != nil {
		return nil, fmt.Errorf("list incentives: %w", err)
	}
	dynamic, err := s.dynamic.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list dynamic incentives: %w", err)
	}

	var stats domain.Stats
	for _, inc := range incentives {
		switch inc.UserType {
		case domain.UserTypeCustomer:
			stats.CustomerCount++
			stats.CustomerTotal += inc.Amount
		case domain.UserTypeDriver:
			stats.DriverCount++
			stats.DriverTotal += inc.Amount
		}
	}
	for _, inc := range dynamic {
		stats.DynamicCount++
		stats.DynamicTotal += inc.Amount
	}
	stats.TotalCount = stats.CustomerCount + stats.DriverCount + stats.DynamicCount
	return &stats, nil
}

func (s *QueryService) skip(ctx context.Context, id uuid.UUID, err error) SkippedRecord {
	s.logger.WarnContext(ctx, "skipping incentive", slog.String("id", id.String()), slog.Any("error", err))
	return SkippedRecord{ID: id, Reason: err.Error()}
}
