package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"fxconvert/internal/adapters"
	"fxconvert/internal/domain"

	log "github.com/sirupsen/logrus"
)

const DefaultBatchSize = 1000

type Options struct {
	Reset      bool
	BatchSize  int
	SkipErrors bool
}

// Summary counts what a load run did.
type Summary struct {
	RowsProcessed      int
	RowsWithErrors     int
	CurrenciesCreated  int
	CurrenciesExisting int
	RatesParsed        int
	RatesInserted      int64
}

func (s Summary) String() string {
	return fmt.Sprintf(
		"rows processed: %d, rows with errors: %d, currencies created: %d, currencies existing: %d, rates parsed: %d, rates inserted: %d",
		s.RowsProcessed, s.RowsWithErrors, s.CurrenciesCreated, s.CurrenciesExisting, s.RatesParsed, s.RatesInserted,
	)
}

type Loader struct {
	repo adapters.SeedRepository
}

func NewLoader(repo adapters.SeedRepository) *Loader {
	return &Loader{repo: repo}
}

// Load reads the header row and every data row from src. Rates are written
// in batches of opts.BatchSize, ignoring rows that already exist. A row that
// fails to parse or store aborts the run unless opts.SkipErrors is set; rates
// parsed before the failing row are still written.
func (l *Loader) Load(ctx context.Context, src RowReader, opts Options) (Summary, error) {
	var sum Summary
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	if opts.Reset {
		if err := l.repo.ResetAll(ctx); err != nil {
			return sum, err
		}
		log.Info("ingest: existing data removed")
	}

	first, err := src.Next()
	if errors.Is(err, io.EOF) {
		return sum, fmt.Errorf("%w: empty input", ErrMissingColumn)
	}
	if err != nil {
		return sum, fmt.Errorf("failed to read header: %w", err)
	}
	header, err := ParseHeader(first)
	if err != nil {
		return sum, err
	}
	log.WithField("periods", header.Periods()).Info("ingest: header parsed")

	batch := make([]domain.MonthlyRate, 0, opts.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		// A failed batch is dropped, never retried by later rows.
		n, err := l.repo.InsertRates(ctx, batch)
		batch = batch[:0]
		if err != nil {
			return err
		}
		sum.RatesInserted += n
		return nil
	}

	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sum, fmt.Errorf("failed to read line %d: %w", line, err)
		}
		if blank(row) {
			continue
		}
		sum.RowsProcessed++

		if err := l.loadRow(ctx, header, row, &sum, &batch, opts.BatchSize, flush); err != nil {
			sum.RowsWithErrors++
			if !opts.SkipErrors {
				rowErr := fmt.Errorf("line %d: %w", line, err)
				return sum, errors.Join(rowErr, flush())
			}
			log.WithError(err).WithField("line", line).Warn("ingest: row skipped")
		}
	}

	if err := flush(); err != nil {
		return sum, err
	}
	return sum, nil
}

func (l *Loader) loadRow(
	ctx context.Context,
	header Header,
	row []string,
	sum *Summary,
	batch *[]domain.MonthlyRate,
	batchSize int,
	flush func() error,
) error {
	rec, err := header.ParseRecord(row)
	if err != nil {
		return err
	}

	cur, created, err := l.repo.EnsureCurrency(ctx, rec.Currency)
	if err != nil {
		return err
	}
	if created {
		sum.CurrenciesCreated++
	} else {
		sum.CurrenciesExisting++
	}

	for _, p := range rec.Points {
		*batch = append(*batch, domain.MonthlyRate{
			CurrencyID: cur.ID,
			Year:       p.Year,
			Month:      p.Month,
			Rate:       p.Rate,
		})
		sum.RatesParsed++
		if len(*batch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
