package postgres

import (
	"context"
	"errors"
	"fmt"

	"fxconvert/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RateRepository struct {
	pool *pgxpool.Pool
}

func (r *RateRepository) GetRate(ctx context.Context, currencyID int64, year int, month int) (float64, error) {
	const q = `select rate from monthly_rates where currency_id = $1 and year = $2 and month = $3;`

	var rate float64
	if err := conn(ctx, r.pool).QueryRow(ctx, q, currencyID, year, month).Scan(&rate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrRateNotFound
		}
		return 0, fmt.Errorf("%w: failed to select rate %d for %d-%02d: %w", domain.ErrRepository, currencyID, year, month, err)
	}
	return rate, nil
}

func (r *RateRepository) ListRates(ctx context.Context, currencyID int64, year int) ([]domain.MonthlyRate, error) {
	const q = `
		select id, currency_id, year, month, rate, updated_at
		from monthly_rates
		where currency_id = $1 and year = $2
		order by month;
	`
	return r.queryRates(ctx, q, currencyID, year)
}

func (r *RateRepository) ListRatesAboveThreshold(ctx context.Context, currencyID int64, year int, threshold float64) ([]domain.MonthlyRate, error) {
	const q = `
		select id, currency_id, year, month, rate, updated_at
		from monthly_rates
		where currency_id = $1 and year = $2 and rate > $3
		order by month;
	`
	return r.queryRates(ctx, q, currencyID, year, threshold)
}

func (r *RateRepository) queryRates(ctx context.Context, q string, args ...any) ([]domain.MonthlyRate, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query rates: %w", domain.ErrRepository, err)
	}
	defer rows.Close()

	rates := make([]domain.MonthlyRate, 0, 12)
	for rows.Next() {
		var mr domain.MonthlyRate
		if err = rows.Scan(&mr.ID, &mr.CurrencyID, &mr.Year, &mr.Month, &mr.Rate, &mr.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan rate: %w", domain.ErrRepository, err)
		}
		rates = append(rates, mr)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating rates: %w", domain.ErrRepository, err)
	}
	return rates, nil
}

// UpsertRate inserts the row or, when it exists, locks it, captures the
// current rate and overwrites it. A concurrent first insert on the same key
// blocks the conflicting insert until commit, so the row lock taken after it
// always observes the latest committed rate.
func (r *RateRepository) UpsertRate(ctx context.Context, key domain.RateKey, rate float64) (domain.UpsertResult, error) {
	const (
		insertQ = `
			insert into monthly_rates (currency_id, year, month, rate, updated_at)
			values ($1, $2, $3, $4, now())
			on conflict (currency_id, year, month) do nothing
			returning id, updated_at;
		`
		lockQ = `
			select id, rate from monthly_rates
			where currency_id = $1 and year = $2 and month = $3
			for update;
		`
		updateQ = `update monthly_rates set rate = $2, updated_at = now() where id = $1 returning updated_at;`
	)

	res := domain.UpsertResult{Rate: domain.MonthlyRate{
		CurrencyID: key.CurrencyID,
		Year:       key.Year,
		Month:      key.Month,
		Rate:       rate,
	}}

	err := withinTx(ctx, r.pool, func(ctx context.Context) error {
		q := conn(ctx, r.pool)

		insertErr := q.QueryRow(ctx, insertQ, key.CurrencyID, key.Year, key.Month, rate).Scan(&res.Rate.ID, &res.Rate.UpdatedAt)
		if insertErr == nil {
			return nil
		}
		if !errors.Is(insertErr, pgx.ErrNoRows) {
			return fmt.Errorf("%w: failed to insert rate %s: %w", domain.ErrRepository, key, insertErr)
		}

		var previous float64
		if err := q.QueryRow(ctx, lockQ, key.CurrencyID, key.Year, key.Month).Scan(&res.Rate.ID, &previous); err != nil {
			return fmt.Errorf("%w: failed to lock rate %s: %w", domain.ErrRepository, key, err)
		}
		if err := q.QueryRow(ctx, updateQ, res.Rate.ID, rate).Scan(&res.Rate.UpdatedAt); err != nil {
			return fmt.Errorf("%w: failed to update rate %s: %w", domain.ErrRepository, key, err)
		}
		res.Previous = &previous
		return nil
	})
	if err != nil {
		return domain.UpsertResult{}, err
	}
	return res, nil
}

func NewRateRepository(pool *pgxpool.Pool) *RateRepository {
	return &RateRepository{pool: pool}
}
