package domain

import "strings"

// Currency is a rate series published for a country under one indicator,
// e.g. "Vietnam" / "Domestic currency per US Dollar".
type Currency struct {
	ID        int64
	Country   string
	Indicator string
	Frequency string
	Scale     string
}

// CurrencyKey identifies a currency by its (country, indicator) pair.
// Lookups compare both fields case-insensitively.
type CurrencyKey struct {
	Country   string
	Indicator string
}

func (k CurrencyKey) Normalized() CurrencyKey {
	return CurrencyKey{
		Country:   strings.ToLower(strings.TrimSpace(k.Country)),
		Indicator: strings.ToLower(strings.TrimSpace(k.Indicator)),
	}
}

func (c Currency) Key() CurrencyKey {
	return CurrencyKey{Country: c.Country, Indicator: c.Indicator}
}
