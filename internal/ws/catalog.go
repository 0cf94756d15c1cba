package ws

import (
	"context"

	"fxconvert/internal/domain"

	"github.com/samber/lo"
)

func (r *Router) handleCurrencies(ctx context.Context, raw []byte) (Outbound, error) {
	var req currenciesRequest
	if err := decodePayload(raw, &req); err != nil {
		return Outbound{}, err
	}
	if err := validateStruct(r.validate, req); err != nil {
		return Outbound{}, err
	}

	country := lo.FromPtrOr(req.Country, r.defaults.Country)
	currencies, err := r.service.Currencies(ctx, country)
	if err != nil {
		return Outbound{}, err
	}

	views := lo.Map(currencies, func(c domain.Currency, _ int) currencyView { return toCurrencyView(c) })
	return Outbound{
		Type: TypeCurrenciesList,
		Data: currenciesView{Country: country, Currencies: views, Count: len(views)},
	}, nil
}

func (r *Router) handleCountries(ctx context.Context, _ []byte) (Outbound, error) {
	countries, err := r.service.Countries(ctx)
	if err != nil {
		return Outbound{}, err
	}
	if countries == nil {
		countries = []string{}
	}
	return Outbound{
		Type: TypeCountriesList,
		Data: countriesView{Countries: countries, Count: len(countries)},
	}, nil
}
