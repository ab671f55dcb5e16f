// Package normalize folds free-form names (cities, technologies) into a
// canonical lookup form shared by the matching and geo packages.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases, trims and strips diacritics so "Orléans " and "orleans"
// compare equal.
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// CityKey builds the cache/table key for a city name + ISO country code.
func CityKey(name, countryCode string) string {
	return Fold(name) + "|" + strings.ToUpper(strings.TrimSpace(countryCode))
}
