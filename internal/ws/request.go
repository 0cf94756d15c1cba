package ws

type convertRequest struct {
	Amount        *Number `json:"amount"`
	FromCountry   *string `json:"from_country" validate:"omitempty,max=100"`
	FromIndicator *string `json:"from_indicator" validate:"omitempty,max=200"`
	ToCountry     *string `json:"to_country" validate:"omitempty,max=100"`
	ToIndicator   *string `json:"to_indicator" validate:"omitempty,max=200"`
	Year          *int    `json:"year" validate:"omitempty,min=1,max=9999"`
	Month         *int    `json:"month" validate:"omitempty,min=1,max=12"`
}

type currenciesRequest struct {
	Country *string `json:"country" validate:"omitempty,max=100"`
}

type aboveAverageRequest struct {
	Country *string `json:"country" validate:"omitempty,max=100"`
	Year    *int    `json:"year" validate:"omitempty,min=1,max=9999"`
}

type averageRequest struct {
	CurrencyID *int64 `json:"currency_id" validate:"required,gt=0"`
	Year       *int   `json:"year" validate:"omitempty,min=1,max=9999"`
}

type updateRateRequest struct {
	CurrencyID *int64   `json:"currency_id" validate:"required"`
	Year       *int     `json:"year" validate:"required,min=1,max=9999"`
	Month      *int     `json:"month" validate:"required"`
	Rate       *float64 `json:"rate" validate:"required"`
}

type auditLogsRequest struct {
	CurrencyID *int64 `json:"currency_id" validate:"omitempty,gt=0"`
	Limit      *int   `json:"limit"`
}
