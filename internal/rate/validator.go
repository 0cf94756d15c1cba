package rate

import (
	"fmt"
	"math"
	"strings"

	"fxconvert/internal/domain"
)

type QueryValidator struct {
	minYear int
	maxYear int
}

// Validate checks a defaulted query before any lookup runs.
func (v *QueryValidator) Validate(q ConvertQuery) error {
	if math.IsNaN(q.Amount) || math.IsInf(q.Amount, 0) {
		return fmt.Errorf("%w: amount must be a finite number", domain.ErrInvalidAmount)
	}
	if strings.TrimSpace(q.FromCountry) == "" || strings.TrimSpace(q.FromIndicator) == "" {
		return fmt.Errorf("%w: source currency is required", domain.ErrValidation)
	}
	if strings.TrimSpace(q.ToCountry) == "" || strings.TrimSpace(q.ToIndicator) == "" {
		return fmt.Errorf("%w: target currency is required", domain.ErrValidation)
	}
	if q.Month < 1 || q.Month > 12 {
		return fmt.Errorf("%w: month out of range", domain.ErrValidation)
	}
	if q.Year < v.minYear || q.Year > v.maxYear {
		return fmt.Errorf("%w: year out of range", domain.ErrValidation)
	}
	return nil
}

func NewQueryValidator(minYear, maxYear int) *QueryValidator {
	if minYear <= 0 {
		minYear = 1900
	}
	if maxYear < minYear {
		maxYear = 9999
	}
	return &QueryValidator{minYear: minYear, maxYear: maxYear}
}
