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

type IncentiveService struct {
	repo     database.IncentiveRepository
	notifier changeNotifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewIncentiveService(repo database.IncentiveRepository, events publisher.EventPublisher, logger *slog.Logger) *IncentiveService {
	return &IncentiveService{
		repo:     repo,
		notifier: changeNotifier{events: events, logger: logger},
		logger:   logger,
		now:      time.Now,
	}
}

func (s *IncentiveService) Create(ctx context.Context, inc *domain.Incentive) (*domain.Incentive, error) {
	if inc.UserType == "" {
		inc.UserType = domain.UserTypeDriver
	}
	if err := validate(inc); err != nil {
		return nil, err
	}

	now := s.now()
	inc.ID = uuid.New()
	inc.CreatedAt = now
	inc.UpdatedAt = now

	if err := s.repo.Insert(ctx, inc); err != nil {
		return nil, fmt.Errorf("insert incentive: %w", err)
	}

	s.logger.InfoContext(ctx, "incentive created", slog.String("id", inc.ID.String()), slog.String("user_type", string(inc.UserType)))
	s.notifier.notify(ctx, domain.TableIncentives, domain.ChangeInsert, nil, inc, now)
	return inc, nil
}

func (s *IncentiveService) Update(ctx context.Context, inc *domain.Incentive) (*domain.Incentive, error) {
	if err := validate(inc); err != nil {
		return nil, err
	}

	old, err := s.repo.Get(ctx, inc.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	inc.CreatedAt = old.CreatedAt
	inc.UpdatedAt = now

	if err := s.repo.Update(ctx, inc); err != nil {
		return nil, fmt.Errorf("update incentive %s: %w", inc.ID, err)
	}

	s.logger.InfoContext(ctx, "incentive updated", slog.String("id", inc.ID.String()))
	s.notifier.notify(ctx, domain.TableIncentives, domain.ChangeUpdate, old, inc, now)
	return inc, nil
}

func (s *IncentiveService) Delete(ctx context.Context, id uuid.UUID) error {
	old, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete incentive %s: %w", id, err)
	}

	s.logger.InfoContext(ctx, "incentive deleted", slog.String("id", id.String()))
	s.notifier.notify(ctx, domain.TableIncentives, domain.ChangeDelete, old, nil, s.now())
	return nil
}

func (s *IncentiveService) Get(ctx context.Context, id uuid.UUID) (*domain.Incentive, error) {
	return s.repo.Get(ctx, id)
}

func (s *IncentiveService) List(ctx context.Context, filter domain.IncentiveFilter) ([]domain.Incentive, error) {
	return s.repo.List(ctx, filter)
}

func validate(inc *domain.Incentive) error {
	errs := domain.ValidateIncentive(inc)
	if !inc.UserType.Valid() {
		errs = append(errs, domain.FieldError{Field: "user_type", Msg: "must be customer or driver"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Fields: errs}
	}
	return nil
}
