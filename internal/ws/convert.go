package ws

import (
	"context"

	"fxconvert/internal/rate"

	"github.com/samber/lo"
)

func (r *Router) handleConvert(ctx context.Context, raw []byte) (Outbound, error) {
	var req convertRequest
	if err := decodePayload(raw, &req); err != nil {
		return Outbound{}, err
	}
	if err := validateStruct(r.validate, req); err != nil {
		return Outbound{}, err
	}

	year, month := r.currentPeriod()
	q := rate.ConvertQuery{
		Amount:        r.defaults.Amount,
		FromCountry:   lo.FromPtrOr(req.FromCountry, r.defaults.Country),
		FromIndicator: lo.FromPtrOr(req.FromIndicator, r.defaults.FromIndicator),
		ToCountry:     lo.FromPtrOr(req.ToCountry, r.defaults.Country),
		ToIndicator:   lo.FromPtrOr(req.ToIndicator, r.defaults.ToIndicator),
		Year:          lo.FromPtrOr(req.Year, year),
		Month:         lo.FromPtrOr(req.Month, month),
	}
	if req.Amount != nil {
		q.Amount = float64(*req.Amount)
	}

	res, err := r.service.Convert(ctx, q)
	if err != nil {
		return Outbound{}, withPeriod(err, q.Year, q.Month)
	}
	return Outbound{Type: TypeConversionResult, Data: toConversionView(res)}, nil
}
