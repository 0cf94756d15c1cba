package conversion

import "strings"

// Convention is the directional meaning of a stored rate.
type Convention int

const (
	Unknown Convention = iota
	DomesticPerUSD
	USDPerDomestic
	DomesticPerEUR
	EURPerDomestic
	DomesticPerSDR
	SDRPerDomestic
)

var conventionNames = map[Convention]string{
	Unknown:        "UNKNOWN",
	DomesticPerUSD: "DOMESTIC_PER_USD",
	USDPerDomestic: "USD_PER_DOMESTIC",
	DomesticPerEUR: "DOMESTIC_PER_EUR",
	EURPerDomestic: "EUR_PER_DOMESTIC",
	DomesticPerSDR: "DOMESTIC_PER_SDR",
	SDRPerDomestic: "SDR_PER_DOMESTIC",
}

func (c Convention) String() string {
	if name, ok := conventionNames[c]; ok {
		return name
	}
	return conventionNames[Unknown]
}

type conventionPattern struct {
	pattern    string
	convention Convention
}

// conventionTable is evaluated top to bottom, first match wins.
// Matching is case-sensitive.
var conventionTable = []conventionPattern{
	{pattern: "Domestic currency per US Dollar", convention: DomesticPerUSD},
	{pattern: "US Dollar per domestic currency", convention: USDPerDomestic},
	{pattern: "Domestic currency per Euro", convention: DomesticPerEUR},
	{pattern: "Euros per domestic currency", convention: EURPerDomestic},
	{pattern: "Domestic currency per SDR", convention: DomesticPerSDR},
	{pattern: "SDR per domestic currency", convention: SDRPerDomestic},
}

// Classify maps indicator text to its convention.
func Classify(indicator string) Convention {
	for _, p := range conventionTable {
		if strings.Contains(indicator, p.pattern) {
			return p.convention
		}
	}
	return Unknown
}
