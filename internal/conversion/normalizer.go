package conversion

import (
	"fmt"
	"math"
	"sync/atomic"

	"fxconvert/internal/domain"
)

const (
	DefaultEURToUSD = 1.1
	DefaultSDRToUSD = 1.35
)

// Pivots holds the USD value of one Euro and one SDR.
type Pivots struct {
	EURToUSD float64
	SDRToUSD float64
}

func DefaultPivots() Pivots {
	return Pivots{EURToUSD: DefaultEURToUSD, SDRToUSD: DefaultSDRToUSD}
}

// Valid reports whether both pivot values are usable as multipliers.
func (p Pivots) Valid() bool {
	return validPositive(p.EURToUSD) && validPositive(p.SDRToUSD)
}

// ToUSD returns the value of one domestic unit in USD for a rate quoted
// under the given indicator.
func ToUSD(rate float64, indicator string, pivots Pivots) (float64, error) {
	if rate == 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, fmt.Errorf("%w: %v for indicator %q", domain.ErrInvalidRate, rate, indicator)
	}

	switch Classify(indicator) {
	case USDPerDomestic:
		return rate, nil
	case DomesticPerEUR:
		return (1 / rate) * pivots.EURToUSD, nil
	case EURPerDomestic:
		return rate * pivots.EURToUSD, nil
	case DomesticPerSDR:
		return (1 / rate) * pivots.SDRToUSD, nil
	case SDRPerDomestic:
		return rate * pivots.SDRToUSD, nil
	default: // DomesticPerUSD and Unknown
		return 1 / rate, nil
	}
}

// Normalizer applies ToUSD with pivots that may be swapped at runtime.
type Normalizer struct {
	pivots atomic.Pointer[Pivots]
}

func (n *Normalizer) ToUSD(rate float64, indicator string) (float64, error) {
	return ToUSD(rate, indicator, n.Pivots())
}

func (n *Normalizer) Pivots() Pivots {
	return *n.pivots.Load()
}

// SetPivots replaces the pivots used by subsequent calls. Invalid values
// are rejected and the current pivots stay in place.
func (n *Normalizer) SetPivots(p Pivots) error {
	if !p.Valid() {
		return fmt.Errorf("%w: pivots must be positive, got EUR=%v SDR=%v", domain.ErrInvalidRate, p.EURToUSD, p.SDRToUSD)
	}
	n.pivots.Store(&p)
	return nil
}

func NewNormalizer(p Pivots) *Normalizer {
	if !p.Valid() {
		p = DefaultPivots()
	}
	n := &Normalizer{}
	n.pivots.Store(&p)
	return n
}

func validPositive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
