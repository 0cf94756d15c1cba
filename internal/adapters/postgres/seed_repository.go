package postgres

import (
	"context"
	"errors"
	"fmt"

	"fxconvert/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SeedRepository struct {
	pool *pgxpool.Pool
}

func (r *SeedRepository) ResetAll(ctx context.Context) error {
	const q = `truncate table rate_audits, monthly_rates, currencies restart identity cascade;`
	if _, err := conn(ctx, r.pool).Exec(ctx, q); err != nil {
		return fmt.Errorf("%w: failed to reset tables: %w", domain.ErrRepository, err)
	}
	return nil
}

// EnsureCurrency returns the stored currency for the (country, indicator)
// pair, creating it when missing. The bool reports whether it was created.
func (r *SeedRepository) EnsureCurrency(ctx context.Context, c domain.Currency) (domain.Currency, bool, error) {
	const (
		insertQ = `
			insert into currencies (country, indicator, frequency, scale)
			values ($1, $2, $3, $4)
			on conflict (lower(country), lower(indicator)) do nothing
			returning id;
		`
		selectQ = `
			select id, country, indicator, frequency, scale
			from currencies
			where lower(country) = lower($1) and lower(indicator) = lower($2);
		`
	)

	q := conn(ctx, r.pool)
	err := q.QueryRow(ctx, insertQ, c.Country, c.Indicator, c.Frequency, c.Scale).Scan(&c.ID)
	if err == nil {
		return c, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Currency{}, false, fmt.Errorf("%w: failed to insert currency %q/%q: %w", domain.ErrRepository, c.Country, c.Indicator, err)
	}

	existing, err := scanCurrency(q.QueryRow(ctx, selectQ, c.Country, c.Indicator))
	if err != nil {
		return domain.Currency{}, false, fmt.Errorf("%w: failed to select currency %q/%q: %w", domain.ErrRepository, c.Country, c.Indicator, err)
	}
	return existing, false, nil
}

// InsertRates bulk inserts rates, skipping keys that already exist.
// It returns the number of rows actually written.
func (r *SeedRepository) InsertRates(ctx context.Context, rates []domain.MonthlyRate) (int64, error) {
	if len(rates) == 0 {
		return 0, nil
	}

	const q = `
		insert into monthly_rates (currency_id, year, month, rate)
		select * from unnest($1::bigint[], $2::integer[], $3::integer[], $4::double precision[])
		on conflict (currency_id, year, month) do nothing;
	`

	ids := make([]int64, len(rates))
	years := make([]int32, len(rates))
	months := make([]int32, len(rates))
	values := make([]float64, len(rates))
	for i, mr := range rates {
		ids[i] = mr.CurrencyID
		years[i] = int32(mr.Year)
		months[i] = int32(mr.Month)
		values[i] = mr.Rate
	}

	tag, err := conn(ctx, r.pool).Exec(ctx, q, ids, years, months, values)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to insert %d rates: %w", domain.ErrRepository, len(rates), err)
	}
	return tag.RowsAffected(), nil
}

func NewSeedRepository(pool *pgxpool.Pool) *SeedRepository {
	return &SeedRepository{pool: pool}
}
