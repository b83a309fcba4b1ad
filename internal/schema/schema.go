// Package schema maps arbitrary spreadsheet headers onto the canonical
// contact fields the matching engine works with. Header recognition is by
// exact synonym after normalization; close-but-unknown headers are reported
// with suggestions rather than guessed at.
package schema

import (
	"fmt"
	"strings"
)

// CanonicalField is one of the contact fields the engine understands.
type CanonicalField string

const (
	FieldFirstName   CanonicalField = "First_Name"
	FieldLastName    CanonicalField = "Last_Name"
	FieldFullName    CanonicalField = "FullName"
	FieldAddress1    CanonicalField = "Address1"
	FieldAddress2    CanonicalField = "Address2"
	FieldCity        CanonicalField = "City"
	FieldState       CanonicalField = "State"
	FieldZip         CanonicalField = "Zip"
	FieldFullAddress CanonicalField = "FullAddress"
)

// Fields returns the canonical fields in detection order.
func Fields() []CanonicalField {
	return []CanonicalField{
		FieldFirstName,
		FieldLastName,
		FieldFullName,
		FieldAddress1,
		FieldAddress2,
		FieldCity,
		FieldState,
		FieldZip,
		FieldFullAddress,
	}
}

// Derivation kinds for fields that are built from other mapped fields
// instead of read from a source column.
const (
	DeriveConcat     = "concat"
	DeriveSplitFirst = "split-first"
	DeriveSplitLast  = "split-last"
)

// FieldMapping records where a canonical field's values come from: either a
// source header or a derivation from other fields.
type FieldMapping struct {
	Canonical  CanonicalField `json:"canonical"`
	Source     string         `json:"source,omitempty"`
	Derivation string         `json:"derivation,omitempty"`
}

// Mapping is the detected header mapping for one table.
type Mapping map[CanonicalField]FieldMapping

// Has reports whether the canonical field is available, directly or derived.
func (m Mapping) Has(f CanonicalField) bool {
	_, ok := m[f]
	return ok
}

// AmbiguousHeaderError is returned when two or more headers resolve to the
// same canonical field. Detection never picks one arbitrarily.
type AmbiguousHeaderError struct {
	Field   CanonicalField
	Headers []string
}

func (e *AmbiguousHeaderError) Error() string {
	return fmt.Sprintf("ambiguous headers for %s: %s", e.Field, strings.Join(e.Headers, ", "))
}

// headerSynonyms lists, per canonical field, the header spellings that map
// to it. Comparison happens on normalized forms, so punctuation, spacing,
// and case variants of these are all recognized.
var headerSynonyms = map[CanonicalField][]string{
	FieldFirstName:   {"First_Name", "FirstName", "First", "FName", "GivenName"},
	FieldLastName:    {"Last_Name", "LastName", "Last", "LName", "Surname", "FamilyName"},
	FieldFullName:    {"Full_Name", "FullName", "Name", "CustomerName", "ClientName", "ContactName"},
	FieldAddress1:    {"Address1", "Address", "Addr1", "StreetAddress", "Street", "Address Line 1", "AddressLine1"},
	FieldAddress2:    {"Address2", "Addr2", "Address Line 2", "AddressLine2"},
	FieldCity:        {"City", "Town", "Municipality", "Locality"},
	FieldState:       {"State", "St", "Province", "Region"},
	FieldZip:         {"Zip", "Zip5", "ZipCode", "PostalCode", "Postcode"},
	FieldFullAddress: {"FullAddress", "MailingAddress", "Full Address"},
}

// synonymIndex maps normalized synonym -> canonical field.
var synonymIndex = buildSynonymIndex()

func buildSynonymIndex() map[string]CanonicalField {
	index := make(map[string]CanonicalField)
	for _, f := range Fields() {
		for _, syn := range headerSynonyms[f] {
			index[NormalizeHeader(syn)] = f
		}
	}
	return index
}

// NormalizeHeader lowercases a header and strips every character that is not
// a letter or digit, so "  First-Name " and "firstname" compare equal.
func NormalizeHeader(header string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(header)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Detect resolves the given headers to a canonical field mapping. Exactly one
// header may claim each canonical field; duplicates fail with
// AmbiguousHeaderError. After direct matches, derivable fields are filled in:
// FullName from First+Last, First/Last by splitting FullName, and FullAddress
// from Address1+City+State+Zip.
func Detect(headers []string) (Mapping, error) {
	matched := make(map[CanonicalField][]string)
	for _, h := range headers {
		if f, ok := synonymIndex[NormalizeHeader(h)]; ok {
			matched[f] = append(matched[f], h)
		}
	}

	mapping := make(Mapping)
	for _, f := range Fields() {
		sources := matched[f]
		if len(sources) > 1 {
			return nil, &AmbiguousHeaderError{Field: f, Headers: sources}
		}
		if len(sources) == 1 {
			mapping[f] = FieldMapping{Canonical: f, Source: sources[0]}
		}
	}

	if !mapping.Has(FieldFullName) && mapping.Has(FieldFirstName) && mapping.Has(FieldLastName) {
		mapping[FieldFullName] = FieldMapping{Canonical: FieldFullName, Derivation: DeriveConcat}
	}
	if fm, ok := mapping[FieldFullName]; ok && fm.Source != "" {
		if !mapping.Has(FieldFirstName) {
			mapping[FieldFirstName] = FieldMapping{Canonical: FieldFirstName, Derivation: DeriveSplitFirst}
		}
		if !mapping.Has(FieldLastName) {
			mapping[FieldLastName] = FieldMapping{Canonical: FieldLastName, Derivation: DeriveSplitLast}
		}
	}
	if !mapping.Has(FieldFullAddress) &&
		mapping.Has(FieldAddress1) && mapping.Has(FieldCity) && mapping.Has(FieldState) && mapping.Has(FieldZip) {
		mapping[FieldFullAddress] = FieldMapping{Canonical: FieldFullAddress, Derivation: DeriveConcat}
	}

	return mapping, nil
}
