package analytics

import "fxconvert/internal/domain"

// Mean returns the arithmetic mean of the rates, or 0 for an empty set.
func Mean(rates []domain.MonthlyRate) float64 {
	if len(rates) == 0 {
		return 0
	}
	var sum float64
	for _, r := range rates {
		sum += r.Rate
	}
	return sum / float64(len(rates))
}

// ChangePercentage is (newRate-oldRate)/oldRate*100, or 0 when oldRate is 0.
func ChangePercentage(oldRate, newRate float64) float64 {
	if oldRate == 0 {
		return 0
	}
	return (newRate - oldRate) / oldRate * 100
}

// Deviation describes one month whose rate is above the yearly average.
type Deviation struct {
	Currency          domain.Currency
	Year              int
	Month             int
	Rate              float64
	Average           float64
	Difference        float64
	DifferencePercent float64
}

func NewDeviation(c domain.Currency, r domain.MonthlyRate, average float64) Deviation {
	d := Deviation{
		Currency:   c,
		Year:       r.Year,
		Month:      r.Month,
		Rate:       r.Rate,
		Average:    average,
		Difference: r.Rate - average,
	}
	if average != 0 {
		d.DifferencePercent = d.Difference / average * 100
	}
	return d
}
