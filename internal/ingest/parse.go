package ingest

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"fxconvert/internal/domain"
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrMissingKey    = errors.New("missing country or indicator")
)

var periodColumn = regexp.MustCompile(`^(\d{4})-M(\d{1,2})$`)

const (
	defaultFrequency = "Annual"
	defaultScale     = "Units"
)

type period struct {
	index int
	year  int
	month int
}

// Header maps column names of the wide layout
// (COUNTRY, INDICATOR, FREQUENCY, SCALE, 2000-M01, 2000-M02, ...) to indices.
type Header struct {
	country   int
	indicator int
	frequency int
	scale     int
	periods   []period
}

func ParseHeader(record []string) (Header, error) {
	h := Header{country: -1, indicator: -1, frequency: -1, scale: -1}
	for i, raw := range record {
		name := strings.TrimSpace(strings.TrimPrefix(raw, "\uFEFF"))
		switch strings.ToUpper(name) {
		case "COUNTRY":
			h.country = i
		case "INDICATOR":
			h.indicator = i
		case "FREQUENCY":
			h.frequency = i
		case "SCALE":
			h.scale = i
		default:
			m := periodColumn.FindStringSubmatch(strings.ToUpper(name))
			if m == nil {
				continue
			}
			year, _ := strconv.Atoi(m[1])
			month, _ := strconv.Atoi(m[2])
			if month < 1 || month > 12 {
				continue
			}
			h.periods = append(h.periods, period{index: i, year: year, month: month})
		}
	}

	if h.country < 0 {
		return Header{}, fmt.Errorf("%w: COUNTRY", ErrMissingColumn)
	}
	if h.indicator < 0 {
		return Header{}, fmt.Errorf("%w: INDICATOR", ErrMissingColumn)
	}
	return h, nil
}

// Periods reports how many monthly columns the header carries.
func (h Header) Periods() int { return len(h.periods) }

// Point is one parsed monthly value.
type Point struct {
	Year  int
	Month int
	Rate  float64
}

type Record struct {
	Currency domain.Currency
	Points   []Point
}

// ParseRecord reads one data row. Blank, placeholder, unparsable and
// non-positive values are skipped.
func (h Header) ParseRecord(row []string) (Record, error) {
	country := cell(row, h.country)
	indicator := cell(row, h.indicator)
	if country == "" || indicator == "" {
		return Record{}, fmt.Errorf("%w: %q, %q", ErrMissingKey, country, indicator)
	}

	rec := Record{
		Currency: domain.Currency{
			Country:   country,
			Indicator: indicator,
			Frequency: orDefault(cell(row, h.frequency), defaultFrequency),
			Scale:     orDefault(cell(row, h.scale), defaultScale),
		},
		Points: make([]Point, 0, len(h.periods)),
	}

	for _, p := range h.periods {
		v, ok := parseValue(cell(row, p.index))
		if !ok {
			continue
		}
		rec.Points = append(rec.Points, Point{Year: p.year, Month: p.month, Rate: v})
	}
	return rec, nil
}

func parseValue(raw string) (float64, bool) {
	switch strings.ToLower(raw) {
	case "", "units", "nan", "null", "none":
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
