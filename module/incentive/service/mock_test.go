package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/domain"
)

var discardLogger = slog.New(slog.DiscardHandler)

type mockIncentiveRepo struct {
	insertFn func(ctx context.Context, inc *domain.Incentive) error
	updateFn func(ctx context.Context, inc *domain.Incentive) error
	deleteFn func(ctx context.Context, id uuid.UUID) error
	getFn    func(ctx context.Context, id uuid.UUID) (*domain.Incentive, error)
	listFn   func(ctx context.Context, filter domain.IncentiveFilter) ([]domain.Incentive, error)
}

func (m *mockIncentiveRepo) Insert(ctx context.Context, inc *domain.Incentive) error {
	return m.insertFn(ctx, inc)
}

func (m *mockIncentiveRepo) Update(ctx context.Context, inc *domain.Incentive) error {
	return m.updateFn(ctx, inc)
}

func (m *mockIncentiveRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockIncentiveRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Incentive, error) {
	return m.getFn(ctx, id)
}

func (m *mockIncentiveRepo) List(ctx context.Context, filter domain.IncentiveFilter) ([]domain.Incentive, error) {
	return m.listFn(ctx, filter)
}

type mockDynamicRepo struct {
	insertFn       func(ctx context.Context, inc *domain.DynamicIncentive) error
	updateFn       func(ctx context.Context, inc *domain.DynamicIncentive) error
	deleteFn       func(ctx context.Context, id uuid.UUID) error
	getFn          func(ctx context.Context, id uuid.UUID) (*domain.DynamicIncentive, error)
	listFn         func(ctx context.Context, activeOnly bool) ([]domain.DynamicIncentive, error)
	listByCitiesFn func(ctx context.Context, cities []string) ([]domain.DynamicIncentive, error)
}

func (m *mockDynamicRepo) Insert(ctx context.Context, inc *domain.DynamicIncentive) error {
	return m.insertFn(ctx, inc)
}

func (m *mockDynamicRepo) Update(ctx context.Context, inc *domain.DynamicIncentive) error {
	return m.updateFn(ctx, inc)
}

func (m *mockDynamicRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockDynamicRepo) Get(ctx context.Context, id uuid.UUID) (*domain.DynamicIncentive, error) {
	return m.getFn(ctx, id)
}

func (m *mockDynamicRepo) List(ctx context.Context, activeOnly bool) ([]domain.DynamicIncentive, error) {
	return m.listFn(ctx, activeOnly)
}

func (m *mockDynamicRepo) ListByCities(ctx context.Context, cities []string) ([]domain.DynamicIncentive, error) {
	return m.listByCitiesFn(ctx, cities)
}

type mockPublisher struct {
	publishChangeFn    func(ctx context.Context, event *domain.ChangeEvent) error
	publishZoneAlertFn func(ctx context.Context, alert *domain.ZoneAlert) error
	changes            []*domain.ChangeEvent
	alerts             []*domain.ZoneAlert
}

func (m *mockPublisher) PublishChange(ctx context.Context, event *domain.ChangeEvent) error {
	m.changes = append(m.changes, event)
	if m.publishChangeFn != nil {
		return m.publishChangeFn(ctx, event)
	}
	return nil
}

func (m *mockPublisher) PublishZoneAlert(ctx context.Context, alert *domain.ZoneAlert) error {
	m.alerts = append(m.alerts, alert)
	if m.publishZoneAlertFn != nil {
		return m.publishZoneAlertFn(ctx, alert)
	}
	return nil
}
