package domain

import (
	"fmt"
	"time"
)

type MonthlyRate struct {
	ID         int64
	CurrencyID int64
	Year       int
	Month      int
	Rate       float64
	UpdatedAt  time.Time
}

// RateKey addresses a single monthly rate row.
type RateKey struct {
	CurrencyID int64
	Year       int
	Month      int
}

func (k RateKey) String() string {
	return fmt.Sprintf("%d:%d-%02d", k.CurrencyID, k.Year, k.Month)
}

// UpsertResult is returned by a keyed upsert. Previous is nil when the row
// did not exist before the write.
type UpsertResult struct {
	Rate     MonthlyRate
	Previous *float64
}

func (r UpsertResult) Created() bool {
	return r.Previous == nil
}
