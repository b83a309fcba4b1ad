package match

import (
	"fmt"

	"github.com/listmatch/internal/normalize"
	"github.com/listmatch/internal/schema"
)

// Runner wires schema detection, normalization, and the engine into the
// table-to-table pipeline.
type Runner struct {
	opts Options
}

// NewRunner returns a runner with the given engine options.
func NewRunner(opts Options) *Runner {
	return &Runner{opts: opts}
}

// RunResult is the output of one full matching run.
type RunResult struct {
	InputMapping  schema.Mapping
	MasterMapping schema.Mapping
	Report        schema.Report
	Inputs        []normalize.Record
	Masters       []normalize.Record
	OpensMissing  bool
	Matched       map[Strategy][]Record
	Skipped       map[Strategy]string
}

// Run matches the input table against the master table under the given
// strategies, or all three when none are named. Strategies the input table's
// schema cannot support are recorded in Skipped with the reason rather than
// failing the run; schema ambiguity fails immediately.
func (r *Runner) Run(input, master TableData, strategies []Strategy) (*RunResult, error) {
	if len(strategies) == 0 {
		strategies = Strategies()
	}

	inputMapping, err := schema.Detect(input.Headers)
	if err != nil {
		return nil, fmt.Errorf("detect schema of %s: %w", tableLabel(input, "input"), err)
	}
	masterMapping, err := schema.Detect(master.Headers)
	if err != nil {
		return nil, fmt.Errorf("detect schema of %s: %w", tableLabel(master, "master"), err)
	}

	res := &RunResult{
		InputMapping:  inputMapping,
		MasterMapping: masterMapping,
		Report:        schema.EvaluateMatchTypes(inputMapping),
		Matched:       make(map[Strategy][]Record),
		Skipped:       make(map[Strategy]string),
	}
	res.Inputs = normalize.NormalizeInput(input.Rows, inputMapping)
	res.Masters, res.OpensMissing = normalize.NormalizeMaster(master.Rows, master.Headers, masterMapping)

	engine := NewEngine(res.Masters, r.opts)
	for _, s := range strategies {
		elig, ok := res.Report.For(string(s))
		if !ok {
			return nil, &UnknownStrategyError{Name: string(s)}
		}
		if !elig.Enabled {
			res.Skipped[s] = elig.Reason
			continue
		}
		matched, err := engine.RunStrategy(res.Inputs, s)
		if err != nil {
			return nil, err
		}
		res.Matched[s] = matched
	}
	return res, nil
}

// Unmatched returns the zero-based input rows no strategy matched, in row
// order.
func (rr *RunResult) Unmatched() []int {
	matched := make(map[int]struct{})
	for _, recs := range rr.Matched {
		for _, rec := range recs {
			matched[rec.InputIndex] = struct{}{}
		}
	}
	var rows []int
	for i := range rr.Inputs {
		if _, ok := matched[i]; !ok {
			rows = append(rows, i)
		}
	}
	return rows
}

func tableLabel(t TableData, role string) string {
	if t.Name != "" {
		return fmt.Sprintf("%s table %s", role, t.Name)
	}
	return role + " table"
}
