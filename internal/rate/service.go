package rate

import (
	"context"
	"errors"
	"fmt"

	"fxconvert/internal/adapters"
	"fxconvert/internal/conversion"
	"fxconvert/internal/domain"
)

// ConvertQuery is a fully defaulted conversion request.
type ConvertQuery struct {
	Amount        float64
	FromCountry   string
	FromIndicator string
	ToCountry     string
	ToIndicator   string
	Year          int
	Month         int
}

type Conversion struct {
	conversion.Result
	Year  int
	Month int
}

type Service struct {
	validator  *QueryValidator
	currencies adapters.CurrencyRepository
	rates      adapters.RateRepository
	engine     *conversion.Engine
}

// Convert resolves both currencies and their rates for the period and
// prices the amount through the engine.
func (s *Service) Convert(ctx context.Context, q ConvertQuery) (Conversion, error) {
	if err := s.validator.Validate(q); err != nil {
		return Conversion{}, err
	}

	from, err := s.currencies.FindCurrency(ctx, q.FromCountry, q.FromIndicator)
	if err != nil {
		return Conversion{}, err
	}
	to, err := s.currencies.FindCurrency(ctx, q.ToCountry, q.ToIndicator)
	if err != nil {
		return Conversion{}, err
	}

	fromRate, err := s.rateAt(ctx, from, q.Year, q.Month)
	if err != nil {
		return Conversion{}, err
	}
	toRate, err := s.rateAt(ctx, to, q.Year, q.Month)
	if err != nil {
		return Conversion{}, err
	}

	res, err := s.engine.Convert(q.Amount,
		conversion.Side{Currency: from, Rate: fromRate},
		conversion.Side{Currency: to, Rate: toRate},
	)
	if err != nil {
		return Conversion{}, err
	}
	return Conversion{Result: res, Year: q.Year, Month: q.Month}, nil
}

func (s *Service) rateAt(ctx context.Context, c domain.Currency, year, month int) (float64, error) {
	rate, err := s.rates.GetRate(ctx, c.ID, year, month)
	if err != nil {
		if errors.Is(err, domain.ErrRateNotFound) {
			return 0, fmt.Errorf("%w: %s %d-%d", domain.ErrRateNotFound, c.Country, year, month)
		}
		return 0, err
	}
	return rate, nil
}

func (s *Service) Countries(ctx context.Context) ([]string, error) {
	return s.currencies.ListCountries(ctx)
}

func (s *Service) Currencies(ctx context.Context, country string) ([]domain.Currency, error) {
	return s.currencies.ListCurrencies(ctx, country)
}

func NewService(validator *QueryValidator, currencies adapters.CurrencyRepository, rates adapters.RateRepository, engine *conversion.Engine) *Service {
	return &Service{validator: validator, currencies: currencies, rates: rates, engine: engine}
}
