package match

import "github.com/listmatch/internal/score"

// Record is one accepted match between an input row and a master row.
// Indexes are zero-based row positions in the normalized tables.
type Record struct {
	InputIndex    int     `json:"input_index"`
	MasterIndex   int     `json:"master_index"`
	Score         float64 `json:"score"`
	InputName     string  `json:"input_name"`
	MasterName    string  `json:"master_name"`
	InputAddress  string  `json:"input_address"`
	MasterAddress string  `json:"master_address"`
}

// TableData is one table's raw headers and rows, already read from storage.
type TableData struct {
	Name    string
	Headers []string
	Rows    []map[string]string
}

// Options tunes an engine run. Start from DefaultOptions.
type Options struct {
	// Thresholds overrides the per-strategy accept thresholds. Strategies
	// absent from the map use their default.
	Thresholds map[Strategy]float64

	// Params are the address score constants.
	Params score.Params

	// ShortlistK is how many approximate candidates are rescored per
	// input record.
	ShortlistK int

	// PruneRatio stops rescoring a shortlist once approximate scores fall
	// below PruneRatio times the threshold.
	PruneRatio float64

	// Workers is the number of concurrent matching goroutines. Values
	// below 1 select one per CPU.
	Workers int

	// CacheSize bounds the per-strategy shortlist cache. Zero disables
	// caching.
	CacheSize int

	// Progress, when set, is called after each input record completes.
	// Calls are serialized.
	Progress func(done, total int)
}

// DefaultOptions returns the tuned engine settings.
func DefaultOptions() Options {
	return Options{
		Thresholds: DefaultThresholds(),
		Params:     score.DefaultParams(),
		ShortlistK: 10,
		PruneRatio: 0.8,
		CacheSize:  4096,
	}
}
