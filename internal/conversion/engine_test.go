package conversion

import (
	"math"
	"testing"

	"fxconvert/internal/domain"

	"github.com/stretchr/testify/require"
)

var (
	vnd = domain.Currency{ID: 1, Country: "Vietnam", Indicator: indDomesticPerUSD}
	usd = domain.Currency{ID: 2, Country: "United States", Indicator: indUSDPerDomestic}
	eur = domain.Currency{ID: 3, Country: "Germany", Indicator: indEURPerDomestic}
	kor = domain.Currency{ID: 4, Country: "Korea, Rep. of", Indicator: indDomesticPerSDR}
)

func newTestEngine() *Engine {
	return NewEngine(NewNormalizer(DefaultPivots()))
}

func TestEngine_Convert_VietnamToUnitedStates(t *testing.T) {
	res, err := newTestEngine().Convert(100, Side{Currency: vnd, Rate: 23000}, Side{Currency: usd, Rate: 1})

	require.NoError(t, err)
	require.InDelta(t, 0.00004348, res.FromUSD, 1e-8)
	require.InDelta(t, 1.0, res.ToUSD, 1e-12)
	require.InDelta(t, 0.00004348, res.DirectRate, 1e-8)
	require.InDelta(t, 0.004348, res.ConvertedAmount, 1e-6)
	require.Equal(t, 100.0, res.Amount)
	require.Equal(t, 23000.0, res.FromRate)
	require.Equal(t, 1.0, res.ToRate)
	require.Equal(t, vnd, res.From)
	require.Equal(t, usd, res.To)
	require.Equal(t, "100 Vietnam currency = 0.004348 United States currency", res.Formula)
}

func TestEngine_Convert_RoundTrip(t *testing.T) {
	e := newTestEngine()
	pairs := []struct {
		x, y Side
	}{
		{x: Side{Currency: vnd, Rate: 23000}, y: Side{Currency: usd, Rate: 1}},
		{x: Side{Currency: eur, Rate: 0.93}, y: Side{Currency: kor, Rate: 1780.5}},
		{x: Side{Currency: kor, Rate: 1780.5}, y: Side{Currency: vnd, Rate: 24500}},
	}

	for _, p := range pairs {
		for _, amount := range []float64{1, 100, 12345.678} {
			there, err := e.Convert(amount, p.x, p.y)
			require.NoError(t, err)
			back, err := e.Convert(there.ConvertedAmount, p.y, p.x)
			require.NoError(t, err)
			require.InEpsilon(t, amount, back.ConvertedAmount, 1e-9)
		}
	}
}

func TestEngine_Convert_ZeroRate(t *testing.T) {
	e := newTestEngine()

	_, err := e.Convert(100, Side{Currency: vnd, Rate: 0}, Side{Currency: usd, Rate: 1})
	require.ErrorIs(t, err, domain.ErrInvalidRate)

	_, err = e.Convert(100, Side{Currency: vnd, Rate: 23000}, Side{Currency: usd, Rate: 0})
	require.ErrorIs(t, err, domain.ErrInvalidRate)
}

func TestEngine_Convert_InvalidAmount(t *testing.T) {
	e := newTestEngine()

	_, err := e.Convert(math.NaN(), Side{Currency: vnd, Rate: 1}, Side{Currency: usd, Rate: 1})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = e.Convert(math.MaxFloat64, Side{Currency: usd, Rate: 1}, Side{Currency: vnd, Rate: 23000})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestEngine_Convert_ZeroAmount(t *testing.T) {
	res, err := newTestEngine().Convert(0, Side{Currency: vnd, Rate: 23000}, Side{Currency: usd, Rate: 1})
	require.NoError(t, err)
	require.Equal(t, 0.0, res.ConvertedAmount)
	require.InDelta(t, 1.0/23000, res.DirectRate, 1e-15)
}

func TestFormula_RoundsBinaryValue(t *testing.T) {
	// 0.0000005 is stored just below the midpoint, so it rounds down.
	require.Equal(t, "2.5 A currency = 0.000000 B currency", Formula(2.5, 0.0000005, "A", "B"))
	require.Equal(t, "100 Vietnam currency = 0.004348 United States currency", Formula(100, 100.0/23000, "Vietnam", "United States"))
}

func TestLabel(t *testing.T) {
	cases := map[string]string{
		"Vietnam":                           "Vietnam currency",
		"Korea, Rep. of":                    "Korea currency",
		"Bolivia (Plurinational State of)":  "Bolivia currency",
		"China, P.R.: Hong Kong":            "China currency",
		"  Euro Area  ":                     "Euro Area currency",
		"(unnamed)":                         "(unnamed) currency",
	}
	for in, want := range cases {
		require.Equal(t, want, Label(in), in)
	}
}

func TestFormula_RendersSixDecimals(t *testing.T) {
	require.Equal(t, "2.5 Japan currency = 1.000000 Korea currency", Formula(2.5, 1, "Japan", "Korea, Rep. of"))
}
