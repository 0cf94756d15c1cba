package ws

import (
	"time"

	"fxconvert/internal/analytics"
	"fxconvert/internal/domain"
	"fxconvert/internal/rate"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const percentPlaces = 4

type currencyView struct {
	ID        int64  `json:"id"`
	Country   string `json:"country"`
	Indicator string `json:"indicator"`
}

func toCurrencyView(c domain.Currency) currencyView {
	return currencyView{ID: c.ID, Country: c.Country, Indicator: c.Indicator}
}

type conversionView struct {
	OriginalAmount  float64      `json:"original_amount"`
	ConvertedAmount float64      `json:"converted_amount"`
	FromCurrency    currencyView `json:"from_currency"`
	ToCurrency      currencyView `json:"to_currency"`
	FromRate        float64      `json:"from_rate"`
	ToRate          float64      `json:"to_rate"`
	FromUSD         float64      `json:"from_usd"`
	ToUSD           float64      `json:"to_usd"`
	ExchangeRate    float64      `json:"exchange_rate"`
	Formula         string       `json:"formula"`
	Year            int          `json:"year"`
	Month           int          `json:"month"`
}

func toConversionView(c rate.Conversion) conversionView {
	return conversionView{
		OriginalAmount:  c.Amount,
		ConvertedAmount: c.ConvertedAmount,
		FromCurrency:    toCurrencyView(c.From),
		ToCurrency:      toCurrencyView(c.To),
		FromRate:        c.FromRate,
		ToRate:          c.ToRate,
		FromUSD:         c.FromUSD,
		ToUSD:           c.ToUSD,
		ExchangeRate:    c.DirectRate,
		Formula:         c.Formula,
		Year:            c.Year,
		Month:           c.Month,
	}
}

type currenciesView struct {
	Country    string         `json:"country"`
	Currencies []currencyView `json:"currencies"`
	Count      int            `json:"count"`
}

type countriesView struct {
	Countries []string `json:"countries"`
	Count     int      `json:"count"`
}

type deviationView struct {
	CurrencyID        int64   `json:"currency_id"`
	Country           string  `json:"country"`
	Indicator         string  `json:"indicator"`
	Year              int     `json:"year"`
	Month             int     `json:"month"`
	Rate              float64 `json:"rate"`
	Average           float64 `json:"average"`
	Difference        float64 `json:"difference"`
	DifferencePercent float64 `json:"difference_percent"`
}

type aboveAverageView struct {
	Country string          `json:"country"`
	Year    int             `json:"year"`
	Rates   []deviationView `json:"rates"`
	Count   int             `json:"count"`
}

func toAboveAverageView(country string, year int, devs []analytics.Deviation) aboveAverageView {
	rates := lo.Map(devs, func(d analytics.Deviation, _ int) deviationView {
		return deviationView{
			CurrencyID:        d.Currency.ID,
			Country:           d.Currency.Country,
			Indicator:         d.Currency.Indicator,
			Year:              d.Year,
			Month:             d.Month,
			Rate:              d.Rate,
			Average:           d.Average,
			Difference:        d.Difference,
			DifferencePercent: roundPercent(d.DifferencePercent),
		}
	})
	return aboveAverageView{Country: country, Year: year, Rates: rates, Count: len(rates)}
}

type averageView struct {
	Currency currencyView `json:"currency"`
	Year     int          `json:"year"`
	Average  float64      `json:"average"`
	Samples  int          `json:"samples"`
}

type rateUpdateView struct {
	Status           string       `json:"status"`
	Action           string       `json:"action"`
	Currency         currencyView `json:"currency"`
	Year             int          `json:"year"`
	Month            int          `json:"month"`
	Rate             float64      `json:"rate"`
	PreviousRate     *float64     `json:"previous_rate,omitempty"`
	ChangePercentage *float64     `json:"change_percentage,omitempty"`
}

func toRateUpdateView(r analytics.UpdateResult) rateUpdateView {
	v := rateUpdateView{
		Status:       r.Status,
		Action:       r.Action,
		Currency:     toCurrencyView(r.Currency),
		Year:         r.Year,
		Month:        r.Month,
		Rate:         r.Rate,
		PreviousRate: r.PreviousRate,
	}
	if r.Audit != nil {
		v.ChangePercentage = lo.ToPtr(roundPercent(r.Audit.ChangePercentage))
	}
	return v
}

type auditView struct {
	ID                int64     `json:"id"`
	CurrencyID        int64     `json:"currency_id"`
	CurrencyCountry   string    `json:"currency_country"`
	CurrencyIndicator string    `json:"currency_indicator"`
	Year              int       `json:"year"`
	Month             int       `json:"month"`
	OldRate           float64   `json:"old_rate"`
	NewRate           float64   `json:"new_rate"`
	ChangePercentage  float64   `json:"change_percentage"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type auditLogsView struct {
	Logs  []auditView `json:"logs"`
	Count int         `json:"count"`
}

func toAuditLogsView(audits []domain.RateAudit) auditLogsView {
	logs := lo.Map(audits, func(a domain.RateAudit, _ int) auditView {
		return auditView{
			ID:                a.ID,
			CurrencyID:        a.CurrencyID,
			CurrencyCountry:   a.CurrencyCountry,
			CurrencyIndicator: a.CurrencyIndicator,
			Year:              a.Year,
			Month:             a.Month,
			OldRate:           a.OldRate,
			NewRate:           a.NewRate,
			ChangePercentage:  roundPercent(a.ChangePercentage),
			UpdatedAt:         a.UpdatedAt,
		}
	})
	return auditLogsView{Logs: logs, Count: len(logs)}
}

func roundPercent(v float64) float64 {
	return decimal.NewFromFloat(v).Round(percentPlaces).InexactFloat64()
}
