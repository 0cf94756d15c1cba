package rate

import (
	"context"
	"fmt"

	"fxconvert/internal/adapters"
	"fxconvert/internal/conversion"

	"github.com/sirupsen/logrus"
)

const (
	pivotEUR = "EUR"
	pivotSDR = "SDR"
)

// RefreshPivots loads EUR and SDR USD values from the repository and swaps
// them into the normalizer. Missing or non-positive rows keep the value the
// normalizer already holds.
func RefreshPivots(ctx context.Context, execID string, repo adapters.PivotRepository, normalizer *conversion.Normalizer) error {
	stored, err := repo.ListPivotRates(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pivot rates: %w", err)
	}

	current := normalizer.Pivots()
	next := current
	if v, ok := stored[pivotEUR]; ok && v > 0 {
		next.EURToUSD = v
	}
	if v, ok := stored[pivotSDR]; ok && v > 0 {
		next.SDRToUSD = v
	}

	if next == current {
		logrus.Debugf("Pivot rates unchanged; execID: %s", execID)
		return nil
	}
	if err = normalizer.SetPivots(next); err != nil {
		return fmt.Errorf("failed to apply pivot rates: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"eur_to_usd": next.EURToUSD,
		"sdr_to_usd": next.SDRToUSD,
	}).Infof("Pivot rates refreshed; execID: %s", execID)
	return nil
}
