package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fxconvert/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CurrencyRepository struct {
	pool *pgxpool.Pool
}

func (r *CurrencyRepository) FindCurrency(ctx context.Context, country string, indicator string) (domain.Currency, error) {
	const q = `
		select id, country, indicator, frequency, scale
		from currencies
		where lower(country) = lower($1) and lower(indicator) = lower($2);
	`

	country, indicator = strings.TrimSpace(country), strings.TrimSpace(indicator)
	c, err := scanCurrency(conn(ctx, r.pool).QueryRow(ctx, q, country, indicator))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Currency{}, domain.ErrCurrencyNotFound
		}
		return domain.Currency{}, fmt.Errorf("%w: failed to select currency %q/%q: %w", domain.ErrRepository, country, indicator, err)
	}
	return c, nil
}

func (r *CurrencyRepository) GetCurrency(ctx context.Context, id int64) (domain.Currency, error) {
	const q = `select id, country, indicator, frequency, scale from currencies where id = $1;`

	c, err := scanCurrency(conn(ctx, r.pool).QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Currency{}, domain.ErrCurrencyNotFound
		}
		return domain.Currency{}, fmt.Errorf("%w: failed to select currency %d: %w", domain.ErrRepository, id, err)
	}
	return c, nil
}

func (r *CurrencyRepository) ListCountries(ctx context.Context) ([]string, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `select distinct country from currencies order by country;`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query countries: %w", domain.ErrRepository, err)
	}
	countries, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to scan countries: %w", domain.ErrRepository, err)
	}
	return countries, nil
}

func (r *CurrencyRepository) ListCurrencies(ctx context.Context, country string) ([]domain.Currency, error) {
	const q = `
		select id, country, indicator, frequency, scale
		from currencies
		where lower(country) = lower($1)
		order by indicator;
	`

	rows, err := conn(ctx, r.pool).Query(ctx, q, strings.TrimSpace(country))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query currencies of %q: %w", domain.ErrRepository, country, err)
	}
	defer rows.Close()

	currencies := make([]domain.Currency, 0, 8)
	for rows.Next() {
		c, scanErr := scanCurrency(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%w: failed to scan currency: %w", domain.ErrRepository, scanErr)
		}
		currencies = append(currencies, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating currencies: %w", domain.ErrRepository, err)
	}
	return currencies, nil
}

func scanCurrency(row pgx.Row) (domain.Currency, error) {
	var c domain.Currency
	err := row.Scan(&c.ID, &c.Country, &c.Indicator, &c.Frequency, &c.Scale)
	return c, err
}

func NewCurrencyRepository(pool *pgxpool.Pool) *CurrencyRepository {
	return &CurrencyRepository{pool: pool}
}
