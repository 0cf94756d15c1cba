package conversion

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"fxconvert/internal/domain"

	"github.com/shopspring/decimal"
)

// Side is one leg of a conversion: a currency and its raw rate for the period.
type Side struct {
	Currency domain.Currency
	Rate     float64
}

type Result struct {
	Amount          float64
	ConvertedAmount float64
	From            domain.Currency
	To              domain.Currency
	FromRate        float64
	ToRate          float64
	FromUSD         float64
	ToUSD           float64
	DirectRate      float64
	Formula         string
}

type Engine struct {
	normalizer *Normalizer
}

// Convert prices amount units of from in units of to, pivoting through USD.
func (e *Engine) Convert(amount float64, from, to Side) (Result, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Result{}, fmt.Errorf("%w: %v", domain.ErrInvalidAmount, amount)
	}

	fromUSD, err := e.normalizer.ToUSD(from.Rate, from.Currency.Indicator)
	if err != nil {
		return Result{}, err
	}
	toUSD, err := e.normalizer.ToUSD(to.Rate, to.Currency.Indicator)
	if err != nil {
		return Result{}, err
	}
	if toUSD == 0 {
		return Result{}, fmt.Errorf("%w: %s has no USD value", domain.ErrDivisionByZero, to.Currency.Country)
	}

	directRate := fromUSD / toUSD
	converted := amount * directRate
	if math.IsNaN(converted) || math.IsInf(converted, 0) {
		return Result{}, fmt.Errorf("%w: %v overflows on conversion", domain.ErrInvalidAmount, amount)
	}

	return Result{
		Amount:          amount,
		ConvertedAmount: converted,
		From:            from.Currency,
		To:              to.Currency,
		FromRate:        from.Rate,
		ToRate:          to.Rate,
		FromUSD:         fromUSD,
		ToUSD:           toUSD,
		DirectRate:      directRate,
		Formula:         Formula(amount, converted, from.Currency.Country, to.Currency.Country),
	}, nil
}

// Formula renders "{amount} {from} currency = {converted:.6f} {to} currency".
// The converted amount is rounded from its binary value, like %.6f.
func Formula(amount, converted float64, fromCountry, toCountry string) string {
	return fmt.Sprintf("%s %s = %s %s",
		decimal.NewFromFloat(amount).String(),
		Label(fromCountry),
		strconv.FormatFloat(converted, 'f', 6, 64),
		Label(toCountry),
	)
}

// Label strips qualifiers such as "Korea, Rep. of" or "Bolivia (Plurinational State of)"
// from a country name.
func Label(country string) string {
	name := country
	if i := strings.IndexAny(name, "(,"); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.TrimSpace(country)
	}
	return name + " currency"
}

func NewEngine(normalizer *Normalizer) *Engine {
	return &Engine{normalizer: normalizer}
}
