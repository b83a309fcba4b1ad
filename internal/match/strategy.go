// Package match runs input records against a master list and reports, per
// strategy, each input row's best master row at or above the strategy's
// threshold.
package match

import "fmt"

// Strategy selects which record fields drive a matching run.
type Strategy string

const (
	// FullName matches on first and last name.
	FullName Strategy = "FullName"
	// LastNameAddress matches on last name plus the address with unit
	// designators stripped.
	LastNameAddress Strategy = "LastNameAddress"
	// FullAddress matches on the full address alone.
	FullAddress Strategy = "FullAddress"
)

// Strategies returns all strategies in canonical run order.
func Strategies() []Strategy {
	return []Strategy{FullName, LastNameAddress, FullAddress}
}

func (s Strategy) String() string {
	return string(s)
}

// RequiresAddress reports whether the strategy skips records that have no
// full address.
func (s Strategy) RequiresAddress() bool {
	return s != FullName
}

// DefaultThresholds returns the calibrated accept threshold per strategy.
// A candidate must score at or above the threshold to be reported.
func DefaultThresholds() map[Strategy]float64 {
	return map[Strategy]float64{
		FullName:        85,
		LastNameAddress: 75,
		FullAddress:     80,
	}
}

// ParseStrategy converts a strategy name into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch s := Strategy(name); s {
	case FullName, LastNameAddress, FullAddress:
		return s, nil
	}
	return "", &UnknownStrategyError{Name: name}
}

// UnknownStrategyError reports a strategy name outside the known set.
type UnknownStrategyError struct {
	Name string
}

func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown match strategy %q", e.Name)
}
