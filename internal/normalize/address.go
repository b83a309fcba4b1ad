// Package normalize canonicalizes raw spreadsheet values into the records
// the matching engine compares: upper-cased fields with collapsed whitespace,
// abbreviated street suffixes, and secondary unit designator handling.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// Unit designators recognized inside addresses, e.g. "APT 4B", "SUITE 210",
// "# 12". The identifier after the keyword is required.
var reDesignator = regexp.MustCompile(`\s(APT|APARTMENT|UNIT|TRLR|TRAILER|LOT|BLDG|BUILDING|STE|SUITE|FLOOR|FL|RM|ROOM|SPACE|SPC|#)\s+([A-Z0-9]+)`)

var (
	reHouseNumber   = regexp.MustCompile(`^\d+`)
	reLeadingDigits = regexp.MustCompile(`^\d+\s*`)
)

// suffixRules rewrites spelled-out street suffixes to their postal
// abbreviations so "OAK ROAD" and "OAK RD" compare equal.
var suffixRules = []struct {
	re   *regexp.Regexp
	abbr string
}{
	{regexp.MustCompile(`\bSTREET\b`), "ST"},
	{regexp.MustCompile(`\bROAD\b`), "RD"},
	{regexp.MustCompile(`\bAVENUE\b`), "AVE"},
	{regexp.MustCompile(`\bLANE\b`), "LN"},
	{regexp.MustCompile(`\bDRIVE\b`), "DR"},
	{regexp.MustCompile(`\bCOURT\b`), "CT"},
	{regexp.MustCompile(`\bPLACE\b`), "PL"},
}

// Designator is a secondary unit found in an address.
type Designator struct {
	Type string
	ID   string
}

// ExtractDesignator returns the first unit designator in the address.
func ExtractDesignator(addr string) (Designator, bool) {
	m := reDesignator.FindStringSubmatch(strings.ToUpper(addr))
	if m == nil {
		return Designator{}, false
	}
	return Designator{Type: m[1], ID: m[2]}, true
}

// StripDesignators removes every unit designator from the address and
// collapses the whitespace left behind. The result is upper-cased.
func StripDesignators(addr string) string {
	s := reDesignator.ReplaceAllString(strings.ToUpper(addr), "")
	return CollapseSpaces(s)
}

// HouseNumber parses the house number an address starts with.
func HouseNumber(addr string) (int, bool) {
	m := reHouseNumber.FindString(strings.TrimSpace(addr))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// StreetName isolates the street portion of a full address: the text between
// the house number and the first comma, with suffixes abbreviated.
func StreetName(addr string) string {
	s := strings.ToUpper(strings.TrimSpace(addr))
	s = reLeadingDigits.ReplaceAllString(s, "")
	if i := strings.Index(s, ","); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(AbbreviateSuffixes(s))
}

// AbbreviateSuffixes applies the street suffix rules to upper-cased text.
func AbbreviateSuffixes(text string) string {
	for _, rule := range suffixRules {
		text = rule.re.ReplaceAllString(text, rule.abbr)
	}
	return text
}

// CollapseSpaces trims the string and squeezes runs of whitespace down to
// single spaces.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Clean upper-cases a raw cell value and collapses its whitespace.
func Clean(s string) string {
	return CollapseSpaces(strings.ToUpper(s))
}
