package domain

import "time"

type RateAudit struct {
	ID                int64
	CurrencyID        int64
	CurrencyCountry   string
	CurrencyIndicator string
	Year              int
	Month             int
	OldRate           float64
	NewRate           float64
	ChangePercentage  float64
	UpdatedAt         time.Time
}

// AuditFilter narrows audit queries. A nil CurrencyID selects every currency.
type AuditFilter struct {
	CurrencyID *int64
}
