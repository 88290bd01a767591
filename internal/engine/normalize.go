package engine

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"plantmap/internal/models"
)

// Unknown replaces missing categorical values.
const Unknown = "Unknown"

// naTokens are cell texts the spreadsheet reader treats as missing.
var naTokens = map[string]struct{}{
	"":         {},
	"#N/A N/A": {},
	"#N/A":     {},
	"#NA":      {},
	"N/A":      {},
	"NA":       {},
	"n/a":      {},
	"NULL":     {},
	"null":     {},
	"NaN":      {},
	"nan":      {},
	"-NaN":     {},
	"-nan":     {},
	"<NA>":     {},
	"None":     {},
	"-1.#IND":  {},
	"1.#IND":   {},
	"-1.#QNAN": {},
	"1.#QNAN":  {},
}

var chpValues = map[string]string{
	"yes":       "Yes",
	"y":         "Yes",
	"no":        "No",
	"n":         "No",
	"not found": "Not found",
}

// IsMissing reports whether a raw cell text denotes a missing value.
func IsMissing(s string) bool {
	_, ok := naTokens[s]
	return ok
}

// NormalizeCHP maps a raw CHP cell onto Yes, No, Not found or Unknown.
func NormalizeCHP(raw string) string {
	if v, ok := chpValues[cases.Fold().String(strings.TrimSpace(raw))]; ok {
		return v
	}
	return Unknown
}

// ParseNumber coerces a raw cell to a number. Unparsable and non-finite
// input yields nil.
func ParseNumber(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if IsMissing(s) {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Normalize applies the load-time cleaning rules to units in place.
func Normalize(units []models.PlantUnit) {
	for i := range units {
		u := &units[i]
		for _, col := range models.TextColumns {
			if IsMissing(u.Text(col)) {
				u.SetText(col, Unknown)
			}
		}
		u.CHP = NormalizeCHP(u.CHP)

		if u.Latitude != nil && (*u.Latitude < -90 || *u.Latitude > 90) {
			u.Latitude = nil
		}
		if u.Longitude != nil && (*u.Longitude < -180 || *u.Longitude > 180) {
			u.Longitude = nil
		}
		for _, col := range models.NumericColumns {
			if v := u.Number(col); v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
				u.SetNumber(col, nil)
			}
		}
	}
}
