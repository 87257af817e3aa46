package database

import (
	"context"

	"github.com/google/uuid"

	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/domain"
)

type IncentiveRepository interface {
	Insert(ctx context.Context, inc *domain.Incentive) error
	Update(ctx context.Context, inc *domain.Incentive) error
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Incentive, error)
	List(ctx context.Context, filter domain.IncentiveFilter) ([]domain.Incentive, error)
}

type DynamicIncentiveRepository interface {
	Insert(ctx context.Context, inc *domain.DynamicIncentive) error
	Update(ctx context.Context, inc *domain.DynamicIncentive) error
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.DynamicIncentive, error)
	List(ctx context.Context, activeOnly bool) ([]domain.DynamicIncentive, error)
	ListByCities(ctx context.Context, cities []string) ([]domain.DynamicIncentive, error)
}
