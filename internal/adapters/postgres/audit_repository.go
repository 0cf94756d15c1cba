package postgres

import (
	"context"
	"fmt"

	"fxconvert/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AuditRepository struct {
	pool *pgxpool.Pool
}

func (r *AuditRepository) AppendAudit(ctx context.Context, audit domain.RateAudit) (domain.RateAudit, error) {
	const q = `
		insert into rate_audits (currency_id, currency_country, currency_indicator, year, month,
		                         old_rate, new_rate, change_percentage, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		returning id;
	`

	err := conn(ctx, r.pool).QueryRow(ctx, q,
		audit.CurrencyID,
		audit.CurrencyCountry,
		audit.CurrencyIndicator,
		audit.Year,
		audit.Month,
		audit.OldRate,
		audit.NewRate,
		audit.ChangePercentage,
		audit.UpdatedAt,
	).Scan(&audit.ID)
	if err != nil {
		return domain.RateAudit{}, fmt.Errorf("%w: failed to insert audit for currency %d: %w", domain.ErrRepository, audit.CurrencyID, err)
	}
	return audit, nil
}

func (r *AuditRepository) ListAudits(ctx context.Context, filter domain.AuditFilter, limit int) ([]domain.RateAudit, error) {
	const q = `
		select id, currency_id, currency_country, currency_indicator, year, month,
		       old_rate, new_rate, change_percentage, updated_at
		from rate_audits
		where ($1::bigint is null or currency_id = $1)
		order by updated_at desc, id desc
		limit $2;
	`

	rows, err := conn(ctx, r.pool).Query(ctx, q, filter.CurrencyID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query audits: %w", domain.ErrRepository, err)
	}
	defer rows.Close()

	audits := make([]domain.RateAudit, 0, max(limit, 0))
	for rows.Next() {
		var a domain.RateAudit
		if err = rows.Scan(
			&a.ID,
			&a.CurrencyID,
			&a.CurrencyCountry,
			&a.CurrencyIndicator,
			&a.Year,
			&a.Month,
			&a.OldRate,
			&a.NewRate,
			&a.ChangePercentage,
			&a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: failed to scan audit: %w", domain.ErrRepository, err)
		}
		audits = append(audits, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating audits: %w", domain.ErrRepository, err)
	}
	return audits, nil
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}
