package postgres

import (
	"context"
	"fmt"

	"fxconvert/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PivotRepository struct {
	pool *pgxpool.Pool
}

// ListPivotRates returns the USD value per pivot code ("EUR", "SDR").
func (r *PivotRepository) ListPivotRates(ctx context.Context) (map[string]float64, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `select upper(code), usd_value from pivot_rates;`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query pivot rates: %w", domain.ErrRepository, err)
	}
	defer rows.Close()

	pivots := make(map[string]float64, 2)
	for rows.Next() {
		var code string
		var value float64
		if err = rows.Scan(&code, &value); err != nil {
			return nil, fmt.Errorf("%w: failed to scan pivot rate: %w", domain.ErrRepository, err)
		}
		pivots[code] = value
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating pivot rates: %w", domain.ErrRepository, err)
	}
	return pivots, nil
}

func NewPivotRepository(pool *pgxpool.Pool) *PivotRepository {
	return &PivotRepository{pool: pool}
}
