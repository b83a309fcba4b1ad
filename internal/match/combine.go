package match

import "github.com/listmatch/internal/score"

// combine folds per-field component scores into the strategy's single match
// score. FullName and LastNameAddress average their two components with the
// zero rule (a zero component zeroes the result); FullAddress is the address
// score alone.
func combine(c score.Components, strategy Strategy) float64 {
	switch strategy {
	case FullName:
		return score.MeanNonZero(c.FirstName, c.LastName)
	case LastNameAddress:
		return score.MeanNonZero(c.LastName, c.Address)
	case FullAddress:
		return c.Address
	}
	return 0
}
