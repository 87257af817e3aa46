package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/domain"
	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/internal/repository/database"
)

var _ database.DynamicIncentiveRepository = (*DynamicIncentiveRepo)(nil)

const dynamicColumns = `id, title, description, amount, type, start_date, end_date, location, is_active, conditions, user_type, target_cities, coordinates, created_at, updated_at`

type DynamicIncentiveRepo struct {
	db *sql.DB
}

func NewDynamicIncentiveRepo(db *sql.DB) *DynamicIncentiveRepo {
	return &DynamicIncentiveRepo{db: db}
}

func (r *DynamicIncentiveRepo) Insert(ctx context.Context, inc *domain.DynamicIncentive) error {
	coords, err := domain.EncodeArea(inc.Area)
	if err != nil {
		return fmt.Errorf("encode area: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO dynamic_incentives (`+dynamicColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		inc.ID, inc.Title, inc.Description, inc.Amount, string(inc.Type), inc.StartDate, inc.EndDate,
		nullString(inc.Location), inc.IsActive, pq.Array(inc.Conditions), nullString(string(inc.UserType)),
		pq.Array(targetCities(inc.TargetCities)), nullJSON(coords), inc.CreatedAt, inc.UpdatedAt,
	)
	return err
}

func (r *DynamicIncentiveRepo) Update(ctx context.Context, inc *domain.DynamicIncentive) error {
	coords, err := domain.EncodeArea(inc.Area)
	if err != nil {
		return fmt.Errorf("encode area: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE dynamic_incentives SET title = $2, description = $3, amount = $4, type = $5, start_date = $6, end_date = $7, location = $8, is_active = $9, conditions = $10, user_type = $11, target_cities = $12, coordinates = $13, updated_at = $14 WHERE id = $1`,
		inc.ID, inc.Title, inc.Description, inc.Amount, string(inc.Type), inc.StartDate, inc.EndDate,
		nullString(inc.Location), inc.IsActive, pq.Array(inc.Conditions), nullString(string(inc.UserType)),
		pq.Array(targetCities(inc.TargetCities)), nullJSON(coords), inc.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *DynamicIncentiveRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dynamic_incentives WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *DynamicIncentiveRepo) Get(ctx context.Context, id uuid.UUID) (*domain.DynamicIncentive, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+dynamicColumns+` FROM dynamic_incentives WHERE id = $1`,
		id,
	)

	inc, err := scanDynamicIncentive(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dynamic incentive %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return inc, nil
}

func (r *DynamicIncentiveRepo) List(ctx context.Context, activeOnly bool) ([]domain.DynamicIncentive, error) {
	query := `SELECT ` + dynamicColumns + ` FROM dynamic_incentives`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectDynamic(rows)
}

// ListByCities returns enabled incentives targeting any of cities, either
// through target_cities or their primary location.
func (r *DynamicIncentiveRepo) ListByCities(ctx context.Context, cities []string) ([]domain.DynamicIncentive, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+dynamicColumns+` FROM dynamic_incentives WHERE is_active = true AND (target_cities && $1 OR location = ANY($1)) ORDER BY created_at DESC`,
		pq.Array(cities),
	)
	if err != nil {
		return nil, err
	}
	return collectDynamic(rows)
}

func collectDynamic(rows *sql.Rows) ([]domain.DynamicIncentive, error) {
	defer func() { _ = rows.Close() }()

	var results []domain.DynamicIncentive
	for rows.Next() {
		inc, err := scanDynamicIncentive(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *inc)
	}
	return results, rows.Err()
}

func scanDynamicIncentive(s scanner) (*domain.DynamicIncentive, error) {
	var inc domain.DynamicIncentive
	var amountType string
	var location, userType sql.NullString
	var coords []byte
	if err := s.Scan(
		&inc.ID, &inc.Title, &inc.Description, &inc.Amount, &amountType, &inc.StartDate, &inc.EndDate,
		&location, &inc.IsActive, pq.Array(&inc.Conditions), &userType, pq.Array(&inc.TargetCities),
		&coords, &inc.CreatedAt, &inc.UpdatedAt,
	); err != nil {
		return nil, err
	}

	area, err := domain.DecodeArea(coords)
	if err != nil {
		area = domain.MalformedArea(err)
	}

	inc.Type = domain.AmountType(amountType)
	inc.UserType = domain.UserType(userType.String)
	inc.Location = location.String
	inc.Area = area
	return &inc, nil
}

// nullJSON sends the area as text so it casts to jsonb; an absent area is
// stored as SQL NULL.
func nullJSON(raw []byte) any {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return string(raw)
}

// target_cities is NOT NULL in the schema.
func targetCities(cities []string) []string {
	if cities == nil {
		return []string{}
	}
	return cities
}
