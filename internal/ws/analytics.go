package ws

import (
	"context"

	"github.com/samber/lo"
)

func (r *Router) handleAboveAverage(ctx context.Context, raw []byte) (Outbound, error) {
	var req aboveAverageRequest
	if err := decodePayload(raw, &req); err != nil {
		return Outbound{}, err
	}
	if err := validateStruct(r.validate, req); err != nil {
		return Outbound{}, err
	}

	currentYear, _ := r.currentPeriod()
	country := lo.FromPtrOr(req.Country, r.defaults.Country)
	year := lo.FromPtrOr(req.Year, currentYear)

	devs, err := r.analytics.AboveAverage(ctx, country, year)
	if err != nil {
		return Outbound{}, err
	}
	return Outbound{Type: TypeRatesAboveAverageList, Data: toAboveAverageView(country, year, devs)}, nil
}

func (r *Router) handleAverage(ctx context.Context, raw []byte) (Outbound, error) {
	var req averageRequest
	if err := decodePayload(raw, &req); err != nil {
		return Outbound{}, err
	}
	if err := validateStruct(r.validate, req); err != nil {
		return Outbound{}, err
	}

	currentYear, _ := r.currentPeriod()
	avg, err := r.analytics.Average(ctx, *req.CurrencyID, lo.FromPtrOr(req.Year, currentYear))
	if err != nil {
		return Outbound{}, err
	}
	return Outbound{
		Type: TypeAverageRateResult,
		Data: averageView{
			Currency: toCurrencyView(avg.Currency),
			Year:     avg.Year,
			Average:  avg.Average,
			Samples:  avg.Samples,
		},
	}, nil
}

func (r *Router) handleUpdateRate(ctx context.Context, raw []byte) (Outbound, error) {
	var req updateRateRequest
	if err := decodePayload(raw, &req); err != nil {
		return Outbound{}, err
	}
	if err := validateStruct(r.validate, req); err != nil {
		return Outbound{}, err
	}

	res, err := r.analytics.UpdateRate(ctx, *req.CurrencyID, *req.Year, *req.Month, *req.Rate)
	if err != nil {
		return Outbound{}, err
	}
	return Outbound{Type: TypeRateUpdateResult, Data: toRateUpdateView(res)}, nil
}

func (r *Router) handleAuditLogs(ctx context.Context, raw []byte) (Outbound, error) {
	var req auditLogsRequest
	if err := decodePayload(raw, &req); err != nil {
		return Outbound{}, err
	}
	if err := validateStruct(r.validate, req); err != nil {
		return Outbound{}, err
	}

	audits, err := r.analytics.AuditLogs(ctx, req.CurrencyID, lo.FromPtrOr(req.Limit, r.defaults.AuditLimit))
	if err != nil {
		return Outbound{}, err
	}
	return Outbound{Type: TypeAuditLogs, Data: toAuditLogsView(audits)}, nil
}
