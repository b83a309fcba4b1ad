package schema

// StrategyEligibility says whether one match strategy can run against a
// detected mapping, and if not, why.
type StrategyEligibility struct {
	Enabled  bool     `json:"enabled"`
	Reason   string   `json:"reason,omitempty"`
	Requires []string `json:"requires"`
}

// Report holds the eligibility of every match strategy for one table.
type Report struct {
	FullName        StrategyEligibility `json:"FullName"`
	LastNameAddress StrategyEligibility `json:"LastNameAddress"`
	FullAddress     StrategyEligibility `json:"FullAddress"`
}

// For looks an eligibility up by strategy name.
func (r Report) For(strategy string) (StrategyEligibility, bool) {
	switch strategy {
	case "FullName":
		return r.FullName, true
	case "LastNameAddress":
		return r.LastNameAddress, true
	case "FullAddress":
		return r.FullAddress, true
	}
	return StrategyEligibility{}, false
}

// EvaluateMatchTypes reports which strategies the mapping supports. Derived
// fields count: a table with only FullName supports FullName matching because
// First and Last split out of it, and Address1+City+State+Zip satisfy
// FullAddress requirements through concatenation.
func EvaluateMatchTypes(m Mapping) Report {
	var r Report

	r.FullName = StrategyEligibility{
		Enabled:  m.Has(FieldFirstName) && m.Has(FieldLastName),
		Requires: []string{"First_Name & Last_Name"},
	}
	if !r.FullName.Enabled {
		r.FullName.Reason = "Missing First/Last and FullName"
	}

	r.LastNameAddress = StrategyEligibility{
		Enabled:  m.Has(FieldLastName) && m.Has(FieldFullAddress),
		Requires: []string{"Last_Name", "FullAddress or Address1+City+State+Zip"},
	}
	if !r.LastNameAddress.Enabled {
		r.LastNameAddress.Reason = "Missing Last_Name or FullAddress/parts"
	}

	r.FullAddress = StrategyEligibility{
		Enabled:  m.Has(FieldFullAddress),
		Requires: []string{"FullAddress or Address1+City+State+Zip"},
	}
	if !r.FullAddress.Enabled {
		r.FullAddress.Reason = "Missing FullAddress/parts"
	}

	return r
}
