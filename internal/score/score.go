// Package score computes pairwise field scores between normalized records.
// Name scores are plain token-set comparisons; address scores layer house
// number, unit designator, and street checks on top so that near-identical
// strings describing different buildings stop scoring as matches.
package score

import (
	"math"

	"github.com/listmatch/internal/normalize"
	"github.com/listmatch/internal/similarity"
)

// Params holds the tunable constants of the address score. Values come from
// calibration against hand-labeled pairs; DefaultParams returns the tuned
// set.
type Params struct {
	// StreetGate is the street-name similarity below which two same-number
	// addresses are treated as different streets.
	StreetGate float64
	// StreetCapFactor and StreetCapMax damp the full-string score when the
	// street gate fails.
	StreetCapFactor float64
	StreetCapMax    float64

	// NearDiff is the largest house number difference treated as adjacent;
	// MidDiff the largest treated as same-block.
	NearDiff int
	MidDiff  int

	// Factor/Max pairs damp the token-set score per house number tier.
	NearFactor float64
	NearMax    float64
	MidFactor  float64
	MidMax     float64
	FarFactor  float64
	FarMax     float64
}

// DefaultParams returns the calibrated score constants.
func DefaultParams() Params {
	return Params{
		StreetGate:      78,
		StreetCapFactor: 0.7,
		StreetCapMax:    65,
		NearDiff:        2,
		MidDiff:         10,
		NearFactor:      0.8,
		NearMax:         85,
		MidFactor:       0.5,
		MidMax:          60,
		FarFactor:       0.2,
		FarMax:          30,
	}
}

// Components carries the per-field scores a strategy combines into one
// match score.
type Components struct {
	FirstName float64
	LastName  float64
	Address   float64
}

// Name scores two name fields by token-set similarity.
func Name(a, b string) float64 {
	return similarity.TokenSetRatio(a, b)
}

// MeanNonZero averages two component scores, except that a zero component
// zeroes the whole result. A record missing a field never half-matches on
// the strength of the other field alone.
func MeanNonZero(x, y float64) float64 {
	if x == 0 || y == 0 {
		return 0
	}
	return (x + y) / 2
}

// Address scores two full addresses.
//
// Without a house number on both sides it falls back to a token-set
// comparison. With equal house numbers, unit designators must agree exactly
// and the street names must clear the gate before the full-string score is
// trusted. Different house numbers damp the score by how far apart they are:
// neighbors may still review well, different blocks should not.
func Address(a, b string, p Params) float64 {
	numA, okA := normalize.HouseNumber(a)
	numB, okB := normalize.HouseNumber(b)
	if !okA || !okB {
		return similarity.TokenSetRatio(a, b)
	}

	diff := numA - numB
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff == 0:
		return sameNumberScore(a, b, p)
	case diff <= p.NearDiff:
		return capped(similarity.TokenSetRatio(a, b), p.NearFactor, p.NearMax)
	case diff <= p.MidDiff:
		return capped(similarity.TokenSetRatio(a, b), p.MidFactor, p.MidMax)
	default:
		return capped(similarity.TokenSetRatio(a, b), p.FarFactor, p.FarMax)
	}
}

// sameNumberScore handles addresses whose house numbers agree.
func sameNumberScore(a, b string, p Params) float64 {
	desA, hasA := normalize.ExtractDesignator(a)
	desB, hasB := normalize.ExtractDesignator(b)
	if hasA != hasB {
		return 0
	}
	// Designators compare literally: APT 5 and APT 6 are different homes,
	// and STE is not assumed to mean SUITE.
	if hasA && (desA.Type != desB.Type || desA.ID != desB.ID) {
		return 0
	}

	gate := similarity.TokenSetRatio(normalize.StreetName(a), normalize.StreetName(b))
	full := similarity.Ratio(a, b)
	if gate < p.StreetGate {
		return math.Min(full*p.StreetCapFactor, p.StreetCapMax)
	}
	return full
}

func capped(score, factor, max float64) float64 {
	return math.Min(score*factor, max)
}
