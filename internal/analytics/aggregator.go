package analytics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"fxconvert/internal/adapters"
	"fxconvert/internal/domain"

	"github.com/sirupsen/logrus"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"

	StatusSuccess = "success"

	DefaultAuditLimit = 10
)

type Average struct {
	Currency domain.Currency
	Year     int
	Average  float64
	Samples  int
}

type UpdateResult struct {
	Status       string
	Action       string
	Currency     domain.Currency
	Year         int
	Month        int
	Rate         float64
	PreviousRate *float64
	Audit        *domain.RateAudit
}

type Aggregator struct {
	currencies    adapters.CurrencyRepository
	rates         adapters.RateRepository
	audits        adapters.AuditRepository
	tx            adapters.Transactor
	locker        adapters.Locker
	maxAuditLimit int
	now           func() time.Time
}

// Average returns the mean rate of the currency over the year. A year
// without rows averages to 0.
func (a *Aggregator) Average(ctx context.Context, currencyID int64, year int) (Average, error) {
	c, err := a.currencies.GetCurrency(ctx, currencyID)
	if err != nil {
		return Average{}, err
	}
	rates, err := a.rates.ListRates(ctx, currencyID, year)
	if err != nil {
		return Average{}, err
	}
	return Average{Currency: c, Year: year, Average: Mean(rates), Samples: len(rates)}, nil
}

// AboveAverage lists, for every currency of the country, the months of the
// year whose rate is strictly greater than that currency's yearly average.
func (a *Aggregator) AboveAverage(ctx context.Context, country string, year int) ([]Deviation, error) {
	currencies, err := a.currencies.ListCurrencies(ctx, country)
	if err != nil {
		return nil, err
	}

	deviations := make([]Deviation, 0)
	for _, c := range currencies {
		rates, listErr := a.rates.ListRates(ctx, c.ID, year)
		if listErr != nil {
			return nil, listErr
		}
		if len(rates) == 0 {
			continue
		}
		avg := Mean(rates)

		above, listErr := a.rates.ListRatesAboveThreshold(ctx, c.ID, year, avg)
		if listErr != nil {
			return nil, listErr
		}
		for _, r := range above {
			deviations = append(deviations, NewDeviation(c, r, avg))
		}
	}
	return deviations, nil
}

// UpdateRate writes the rate for (currency, year, month). Overwriting a
// different value appends exactly one audit in the same transaction; first
// inserts and same-value writes append none.
func (a *Aggregator) UpdateRate(ctx context.Context, currencyID int64, year int, month int, rate float64) (UpdateResult, error) {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return UpdateResult{}, fmt.Errorf("%w: rate must be positive", domain.ErrValidation)
	}
	if month < 1 || month > 12 {
		return UpdateResult{}, fmt.Errorf("%w: month out of range", domain.ErrValidation)
	}

	c, err := a.currencies.GetCurrency(ctx, currencyID)
	if err != nil {
		if errors.Is(err, domain.ErrCurrencyNotFound) {
			return UpdateResult{}, fmt.Errorf("%w: currency not found", domain.ErrValidation)
		}
		return UpdateResult{}, err
	}

	key := domain.RateKey{CurrencyID: currencyID, Year: year, Month: month}
	unlock, err := a.locker.Lock(ctx, key.String())
	if err != nil {
		return UpdateResult{}, fmt.Errorf("failed to lock rate %s: %w", key, err)
	}
	defer func() {
		if unlockErr := unlock(context.WithoutCancel(ctx)); unlockErr != nil {
			logrus.WithError(unlockErr).Warnf("Failed to release lock for rate %s", key)
		}
	}()

	result := UpdateResult{
		Status:   StatusSuccess,
		Action:   ActionCreated,
		Currency: c,
		Year:     year,
		Month:    month,
		Rate:     rate,
	}

	err = a.tx.WithinTx(ctx, func(ctx context.Context) error {
		upserted, upsertErr := a.rates.UpsertRate(ctx, key, rate)
		if upsertErr != nil {
			return upsertErr
		}
		if upserted.Created() {
			return nil
		}

		result.Action = ActionUpdated
		result.PreviousRate = upserted.Previous
		if *upserted.Previous == rate {
			return nil
		}

		updatedAt := upserted.Rate.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = a.now()
		}
		audit, auditErr := a.audits.AppendAudit(ctx, domain.RateAudit{
			CurrencyID:        c.ID,
			CurrencyCountry:   c.Country,
			CurrencyIndicator: c.Indicator,
			Year:              year,
			Month:             month,
			OldRate:           *upserted.Previous,
			NewRate:           rate,
			ChangePercentage:  ChangePercentage(*upserted.Previous, rate),
			UpdatedAt:         updatedAt,
		})
		if auditErr != nil {
			return auditErr
		}
		result.Audit = &audit
		return nil
	})
	if err != nil {
		return UpdateResult{}, err
	}
	return result, nil
}

// AuditLogs returns the newest audits first. A non-positive limit falls
// back to DefaultAuditLimit and limits above the configured maximum are
// capped.
func (a *Aggregator) AuditLogs(ctx context.Context, currencyID *int64, limit int) ([]domain.RateAudit, error) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	if a.maxAuditLimit > 0 && limit > a.maxAuditLimit {
		limit = a.maxAuditLimit
	}
	return a.audits.ListAudits(ctx, domain.AuditFilter{CurrencyID: currencyID}, limit)
}

func NewAggregator(
	currencies adapters.CurrencyRepository,
	rates adapters.RateRepository,
	audits adapters.AuditRepository,
	tx adapters.Transactor,
	locker adapters.Locker,
	maxAuditLimit int,
) *Aggregator {
	return &Aggregator{
		currencies:    currencies,
		rates:         rates,
		audits:        audits,
		tx:            tx,
		locker:        locker,
		maxAuditLimit: maxAuditLimit,
		now:           time.Now,
	}
}
