package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/domain"
	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/internal/repository/database"
	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/internal/repository/publisher"
)

type DynamicIncentiveService struct {
	repo     database.DynamicIncentiveRepository
	notifier changeNotifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewDynamicIncentiveService(repo database.DynamicIncentiveRepository, events publisher.EventPublisher, logger *slog.Logger) *DynamicIncentiveService {
	return &DynamicIncentiveService{
		repo:     repo,
		notifier: changeNotifier{events: events, logger: logger},
		logger:   logger,
		now:      time.Now,
	}
}

func (s *DynamicIncentiveService) Create(ctx context.Context, inc *domain.DynamicIncentive) (*domain.DynamicIncentive, error) {
	canonicalizeCities(inc)
	if errs := domain.ValidateDynamicIncentive(inc); len(errs) > 0 {
		return nil, &domain.ValidationError{Fields: errs}
	}

	now := s.now()
	inc.ID = uuid.New()
	inc.CreatedAt = now
	inc.UpdatedAt = now

	if err := s.repo.Insert(ctx, inc); err != nil {
		return nil, fmt.Errorf("insert dynamic incentive: %w", err)
	}

	s.logger.InfoContext(ctx, "dynamic incentive created",
		slog.String("id", inc.ID.String()),
		slog.String("area", string(inc.Area.Kind)),
	)
	s.notifier.notify(ctx, domain.TableDynamicIncentives, domain.ChangeInsert, nil, inc, now)
	return inc, nil
}

func (s *DynamicIncentiveService) Update(ctx context.Context, inc *domain.DynamicIncentive) (*domain.DynamicIncentive, error) {
	canonicalizeCities(inc)
	if errs := domain.ValidateDynamicIncentive(inc); len(errs) > 0 {
		return nil, &domain.ValidationError{Fields: errs}
	}

	old, err := s.repo.Get(ctx, inc.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	inc.CreatedAt = old.CreatedAt
	inc.UpdatedAt = now
	// legacy points ride along with a new geofence so older clients keep working
	if inc.Area.Kind == domain.AreaGeofence && inc.Area.Points == nil && old.Area.Kind != domain.AreaMalformed {
		inc.Area.Points = old.Area.Points
	}

	if err := s.repo.Update(ctx, inc); err != nil {
		return nil, fmt.Errorf("update dynamic incentive %s: %w", inc.ID, err)
	}

	s.logger.InfoContext(ctx, "dynamic incentive updated", slog.String("id", inc.ID.String()))
	s.notifier.notify(ctx, domain.TableDynamicIncentives, domain.ChangeUpdate, old, inc, now)
	return inc, nil
}

func (s *DynamicIncentiveService) Delete(ctx context.Context, id uuid.UUID) error {
	old, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete dynamic incentive %s: %w", id, err)
	}

	s.logger.InfoContext(ctx, "dynamic incentive deleted", slog.String("id", id.String()))
	s.notifier.notify(ctx, domain.TableDynamicIncentives, domain.ChangeDelete, old, nil, s.now())
	return nil
}

func (s *DynamicIncentiveService) Get(ctx context.Context, id uuid.UUID) (*domain.DynamicIncentive, error) {
	return s.repo.Get(ctx, id)
}

func (s *DynamicIncentiveService) List(ctx context.Context, activeOnly bool) ([]domain.DynamicIncentive, error) {
	return s.repo.List(ctx, activeOnly)
}

func canonicalizeCities(inc *domain.DynamicIncentive) {
	for i, city := range inc.TargetCities {
		if name, _, ok := domain.CityCoordinate(city); ok {
			inc.TargetCities[i] = name
		}
	}
	if name, _, ok := domain.CityCoordinate(inc.Location); ok {
		inc.Location = name
	}
}
