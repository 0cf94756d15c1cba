package adapters

import (
	"context"

	"fxconvert/internal/domain"
)

type CurrencyRepository interface {
	FindCurrency(ctx context.Context, country string, indicator string) (domain.Currency, error)
	GetCurrency(ctx context.Context, id int64) (domain.Currency, error)
	ListCountries(ctx context.Context) ([]string, error)
	ListCurrencies(ctx context.Context, country string) ([]domain.Currency, error)
}

type RateRepository interface {
	GetRate(ctx context.Context, currencyID int64, year int, month int) (float64, error)
	ListRates(ctx context.Context, currencyID int64, year int) ([]domain.MonthlyRate, error)
	ListRatesAboveThreshold(ctx context.Context, currencyID int64, year int, threshold float64) ([]domain.MonthlyRate, error)
	// UpsertRate writes the rate for the key and returns the value it replaced, read atomically with the write.
	UpsertRate(ctx context.Context, key domain.RateKey, rate float64) (domain.UpsertResult, error)
}

type AuditRepository interface {
	AppendAudit(ctx context.Context, audit domain.RateAudit) (domain.RateAudit, error)
	ListAudits(ctx context.Context, filter domain.AuditFilter, limit int) ([]domain.RateAudit, error)
}

type PivotRepository interface {
	ListPivotRates(ctx context.Context) (map[string]float64, error)
}

// Transactor runs fn in a single transaction. Repositories called with the
// ctx passed to fn take part in that transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker serializes work on a key, possibly across processes.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(context.Context) error, err error)
}

// SeedRepository backs bulk ingestion.
type SeedRepository interface {
	ResetAll(ctx context.Context) error
	EnsureCurrency(ctx context.Context, currency domain.Currency) (domain.Currency, bool, error)
	InsertRates(ctx context.Context, rates []domain.MonthlyRate) (int64, error)
}
