package ws

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"fxconvert/internal/analytics"
	"fxconvert/internal/config"
	"fxconvert/internal/domain"
	"fxconvert/internal/rate"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type RateService interface {
	Convert(ctx context.Context, q rate.ConvertQuery) (rate.Conversion, error)
	Countries(ctx context.Context) ([]string, error)
	Currencies(ctx context.Context, country string) ([]domain.Currency, error)
}

type Analytics interface {
	Average(ctx context.Context, currencyID int64, year int) (analytics.Average, error)
	AboveAverage(ctx context.Context, country string, year int) ([]analytics.Deviation, error)
	UpdateRate(ctx context.Context, currencyID int64, year int, month int, rate float64) (analytics.UpdateResult, error)
	AuditLogs(ctx context.Context, currencyID *int64, limit int) ([]domain.RateAudit, error)
}

type handlerFunc func(ctx context.Context, raw []byte) (Outbound, error)

// Router turns one raw inbound message into exactly one Outbound.
type Router struct {
	service   RateService
	analytics Analytics
	defaults  config.Defaults
	validate  *validator.Validate
	now       func() time.Time
	handlers  map[string]handlerFunc
}

func (r *Router) Dispatch(ctx context.Context, raw []byte) (out Outbound) {
	msgType := ""
	defer func() {
		if rec := recover(); rec != nil {
			logrus.WithFields(logrus.Fields{
				"handler": msgType,
				"conn_id": connID(ctx),
				"panic":   rec,
			}).Errorf("Recovered from handler panic\n%s", debug.Stack())
			out = errorOutbound("Internal error")
		}
	}()

	msgType, err := parseEnvelope(raw)
	if err != nil {
		return r.failure(ctx, msgType, err)
	}

	handle, ok := r.handlers[msgType]
	if !ok {
		return errorOutbound(fmt.Sprintf("Unknown type: %s", msgType))
	}

	out, err = handle(ctx, raw)
	if err != nil {
		return r.failure(ctx, msgType, err)
	}
	return out
}

func (r *Router) failure(ctx context.Context, msgType string, err error) Outbound {
	msg, internal := errorMessage(err)
	entry := logrus.WithError(err).WithFields(logrus.Fields{"handler": msgType, "conn_id": connID(ctx)})
	if internal {
		entry.Error(msg)
	} else {
		entry.Debug("Request rejected")
	}
	return errorOutbound(msg)
}

func (r *Router) timestamp() string {
	return r.now().Format(time.RFC3339Nano)
}

// currentPeriod returns the year and month used when a request omits them.
func (r *Router) currentPeriod() (int, int) {
	now := r.now()
	return now.Year(), int(now.Month())
}

func NewRouter(service RateService, analytics Analytics, defaults config.Defaults) *Router {
	r := &Router{
		service:   service,
		analytics: analytics,
		defaults:  defaults,
		validate:  newValidate(),
		now:       time.Now,
	}
	r.handlers = map[string]handlerFunc{
		TypeConvert:           r.handleConvert,
		TypeGetCurrencies:     r.handleCurrencies,
		TypeGetCountries:      r.handleCountries,
		TypeRatesAboveAverage: r.handleAboveAverage,
		TypeGetAverageRate:    r.handleAverage,
		TypeUpdateRate:        r.handleUpdateRate,
		TypeGetAuditLogs:      r.handleAuditLogs,
		TypeEcho:              r.handleEcho,
	}
	return r
}
