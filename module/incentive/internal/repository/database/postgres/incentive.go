package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/domain"
	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/internal/repository/database"
)

var _ database.IncentiveRepository = (*IncentiveRepo)(nil)

const incentiveColumns = `id, title, description, amount, type, start_date, end_date, location, is_active, conditions, user_type, created_at, updated_at`

type IncentiveRepo struct {
	db *sql.DB
}

func NewIncentiveRepo(db *sql.DB) *IncentiveRepo {
	return &IncentiveRepo{db: db}
}

func (r *IncentiveRepo) Insert(ctx context.Context, inc *domain.Incentive) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO incentives (`+incentiveColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		inc.ID, inc.Title, inc.Description, inc.Amount, string(inc.Type), inc.StartDate, inc.EndDate,
		nullString(inc.Location), inc.IsActive, pq.Array(inc.Conditions), string(inc.UserType), inc.CreatedAt, inc.UpdatedAt,
	)
	return err
}

func (r *IncentiveRepo) Update(ctx context.Context, inc *domain.Incentive) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE incentives SET title = $2, description = $3, amount = $4, type = $5, start_date = $6, end_date = $7, location = $8, is_active = $9, conditions = $10, user_type = $11, updated_at = $12 WHERE id = $1`,
		inc.ID, inc.Title, inc.Description, inc.Amount, string(inc.Type), inc.StartDate, inc.EndDate,
		nullString(inc.Location), inc.IsActive, pq.Array(inc.Conditions), string(inc.UserType), inc.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *IncentiveRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM incentives WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *IncentiveRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Incentive, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+incentiveColumns+` FROM incentives WHERE id = $1`,
		id,
	)

	inc, err := scanIncentive(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("incentive %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return inc, nil
}

// List matches an incentive to a location when the incentive has no
// location of its own or the names are equal ignoring case.
func (r *IncentiveRepo) List(ctx context.Context, filter domain.IncentiveFilter) ([]domain.Incentive, error) {
	var conditions []string
	var args []interface{}

	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = true")
	}
	if filter.UserType != "" {
		args = append(args, string(filter.UserType))
		conditions = append(conditions, fmt.Sprintf("user_type = $%d", len(args)))
	}
	if filter.Location != "" {
		args = append(args, filter.Location)
		conditions = append(conditions, fmt.Sprintf("(location IS NULL OR location = '' OR lower(location) = lower($%d))", len(args)))
	}

	query := `SELECT ` + incentiveColumns + ` FROM incentives`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Incentive
	for rows.Next() {
		inc, err := scanIncentive(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *inc)
	}
	return results, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIncentive(s scanner) (*domain.Incentive, error) {
	var inc domain.Incentive
	var amountType, userType string
	var location sql.NullString
	if err := s.Scan(
		&inc.ID, &inc.Title, &inc.Description, &inc.Amount, &amountType, &inc.StartDate, &inc.EndDate,
		&location, &inc.IsActive, pq.Array(&inc.Conditions), &userType, &inc.CreatedAt, &inc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	inc.Type = domain.AmountType(amountType)
	inc.UserType = domain.UserType(userType)
	inc.Location = location.String
	return &inc, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
