package match

import (
	"runtime"
	"sort"
	"sync"

	"github.com/listmatch/internal/normalize"
	"github.com/listmatch/internal/score"
)

// Engine matches input records against a fixed master list. Per-strategy
// indexes build lazily on first use and are shared by later runs, so one
// engine serves several strategies over the same master table.
type Engine struct {
	masters []normalize.Record
	opts    Options

	mu      sync.Mutex
	indexes map[Strategy]*masterIndex
}

// NewEngine builds an engine over the master records.
func NewEngine(masters []normalize.Record, opts Options) *Engine {
	def := DefaultOptions()
	if opts.ShortlistK <= 0 {
		opts.ShortlistK = def.ShortlistK
	}
	if opts.PruneRatio <= 0 {
		opts.PruneRatio = def.PruneRatio
	}
	return &Engine{
		masters: masters,
		opts:    opts,
		indexes: make(map[Strategy]*masterIndex),
	}
}

// Threshold returns the accept threshold in effect for the strategy.
func (e *Engine) Threshold(s Strategy) float64 {
	if t, ok := e.opts.Thresholds[s]; ok {
		return t
	}
	return DefaultThresholds()[s]
}

// RunStrategy matches every input record under one strategy. Each input row
// yields at most one match: its best-scoring master row at or above the
// threshold, with score ties going to the earlier master row. Results come
// back ordered by input row regardless of worker count.
func (e *Engine) RunStrategy(inputs []normalize.Record, strategy Strategy) ([]Record, error) {
	if _, err := ParseStrategy(string(strategy)); err != nil {
		return nil, err
	}

	ix := e.indexFor(strategy)
	threshold := e.Threshold(strategy)
	total := len(inputs)

	jobs := make(chan int, total)
	for i := range inputs {
		jobs <- i
	}
	close(jobs)

	results := make(chan *Record, total)
	workers := e.opts.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results <- e.matchOne(ix, inputs[i], strategy, threshold)
			}
		}()
	}

	var matched []Record
	for done := 1; done <= total; done++ {
		if rec := <-results; rec != nil {
			matched = append(matched, *rec)
		}
		if e.opts.Progress != nil {
			e.opts.Progress(done, total)
		}
	}
	wg.Wait()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].InputIndex < matched[j].InputIndex
	})
	return matched, nil
}

func (e *Engine) indexFor(strategy Strategy) *masterIndex {
	e.mu.Lock()
	defer e.mu.Unlock()
	ix, ok := e.indexes[strategy]
	if !ok {
		ix = newMasterIndex(e.masters, strategy, e.opts.ShortlistK, e.opts.CacheSize)
		e.indexes[strategy] = ix
	}
	return ix
}

// matchOne finds the best master for one input record, or nil when nothing
// reaches the threshold.
func (e *Engine) matchOne(ix *masterIndex, in normalize.Record, strategy Strategy, threshold float64) *Record {
	if strategy.RequiresAddress() && in.FullAddress == "" {
		return nil
	}

	stripped := ""
	if strategy == LastNameAddress {
		stripped = normalize.StripDesignators(in.FullAddress)
	}
	search := searchString(in, strategy, stripped)

	prune := threshold * e.opts.PruneRatio
	best := -1.0
	bestMaster := -1
	for _, c := range ix.shortlist(search) {
		if c.approx < prune {
			break
		}
		if s := e.rescore(ix, in, stripped, c.master, strategy); s > best {
			best = s
			bestMaster = c.master
		}
	}
	if bestMaster < 0 || best < threshold {
		return nil
	}

	m := e.masters[bestMaster]
	return &Record{
		InputIndex:    in.Index,
		MasterIndex:   m.Index,
		Score:         best,
		InputName:     in.Name(),
		MasterName:    m.Name(),
		InputAddress:  in.FullAddress,
		MasterAddress: m.FullAddress,
	}
}

// rescore computes the exact per-field components between the input record
// and one master row, then combines them under the strategy's rule.
func (e *Engine) rescore(ix *masterIndex, in normalize.Record, inStripped string, master int, strategy Strategy) float64 {
	m := e.masters[master]
	var c score.Components
	switch strategy {
	case FullName:
		c.FirstName = score.Name(in.FirstName, m.FirstName)
		c.LastName = score.Name(in.LastName, m.LastName)
	case LastNameAddress:
		c.LastName = score.Name(in.LastName, m.LastName)
		c.Address = score.Address(inStripped, ix.stripped[master], e.opts.Params)
	case FullAddress:
		c.Address = score.Address(in.FullAddress, m.FullAddress, e.opts.Params)
	}
	return combine(c, strategy)
}
