package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/listmatch/internal/ingest"
	"github.com/listmatch/internal/match"
	"github.com/listmatch/internal/schema"
	"github.com/listmatch/internal/store"
)

// MatchHandler runs matching jobs over tables posted as JSON.
type MatchHandler struct {
	Opts   match.Options
	Store  *store.Store
	Logger *zap.Logger
}

// TablePayload is one table in a match request.
type TablePayload struct {
	Name    string     `json:"name"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// MatchRequest is the body of POST /api/v1/match. Strategies defaults to all
// three; Thresholds overrides the configured cutoffs per strategy. AutoRoles
// reassigns input and master by table size the way the CLI does.
type MatchRequest struct {
	Input      TablePayload       `json:"input"`
	Master     TablePayload       `json:"master"`
	Strategies []string           `json:"strategies,omitempty"`
	Thresholds map[string]float64 `json:"thresholds,omitempty"`
	AutoRoles  bool               `json:"auto_roles,omitempty"`
	Save       bool               `json:"save,omitempty"`
}

// StrategyResult is one strategy's outcome in a match response. Matches is
// set when the strategy ran, SkipReason when the schema could not support it.
type StrategyResult struct {
	Threshold  float64        `json:"threshold"`
	Matches    []match.Record `json:"matches"`
	SkipReason string         `json:"skip_reason,omitempty"`
}

// MatchResponse is the body of a successful match call.
type MatchResponse struct {
	Report       schema.Report             `json:"report"`
	OpensMissing bool                      `json:"opens_missing"`
	InputRows    int                       `json:"input_rows"`
	MasterRows   int                       `json:"master_rows"`
	Results      map[string]StrategyResult `json:"results"`
	RunIDs       map[string]string         `json:"run_ids,omitempty"`
}

// Run matches the posted input table against the master table.
func (h *MatchHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Input.Headers) == 0 || len(req.Master.Headers) == 0 {
		WriteError(w, http.StatusBadRequest, "input and master tables need headers")
		return
	}
	if req.Save && h.Store == nil {
		WriteError(w, http.StatusServiceUnavailable, "run persistence is not configured")
		return
	}

	strategies := make([]match.Strategy, 0, len(req.Strategies))
	for _, name := range req.Strategies {
		s, err := match.ParseStrategy(name)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		strategies = append(strategies, s)
	}

	opts := h.Opts
	if len(req.Thresholds) > 0 {
		merged := make(map[match.Strategy]float64, len(opts.Thresholds)+len(req.Thresholds))
		for s, t := range opts.Thresholds {
			merged[s] = t
		}
		for name, t := range req.Thresholds {
			s, err := match.ParseStrategy(name)
			if err != nil {
				WriteError(w, http.StatusBadRequest, err.Error())
				return
			}
			merged[s] = t
		}
		opts.Thresholds = merged
	}

	inputTable := tableFromPayload(req.Input)
	masterTable := tableFromPayload(req.Master)
	if req.AutoRoles {
		inputTable, masterTable = ingest.AssignRoles(inputTable, masterTable)
	}
	input := inputTable.Data()
	master := masterTable.Data()

	res, err := match.NewRunner(opts).Run(input, master, strategies)
	if err != nil {
		var amb *schema.AmbiguousHeaderError
		if errors.As(err, &amb) {
			WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":   err.Error(),
				"field":   amb.Field,
				"headers": amb.Headers,
			})
			return
		}
		var unknown *match.UnknownStrategyError
		if errors.As(err, &unknown) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Error("match run failed", zap.Error(err))
		WriteError(w, http.StatusInternalServerError, "match run failed")
		return
	}

	ran := strategies
	if len(ran) == 0 {
		ran = match.Strategies()
	}

	resp := MatchResponse{
		Report:       res.Report,
		OpensMissing: res.OpensMissing,
		InputRows:    len(res.Inputs),
		MasterRows:   len(res.Masters),
		Results:      make(map[string]StrategyResult, len(ran)),
	}
	for _, s := range ran {
		sr := StrategyResult{Threshold: thresholdFor(opts, s)}
		if reason, ok := res.Skipped[s]; ok {
			sr.SkipReason = reason
		} else {
			sr.Matches = res.Matched[s]
		}
		resp.Results[string(s)] = sr
	}

	if req.Save {
		resp.RunIDs = make(map[string]string)
		for _, s := range ran {
			recs, ok := res.Matched[s]
			if !ok {
				continue
			}
			id, err := h.Store.SaveRun(r.Context(), store.RunInfo{
				InputName:  input.Name,
				MasterName: master.Name,
				InputRows:  len(res.Inputs),
				MasterRows: len(res.Masters),
				Strategy:   s,
				Threshold:  thresholdFor(opts, s),
			}, recs)
			if err != nil {
				h.Logger.Error("failed to save run", zap.String("strategy", string(s)), zap.Error(err))
				WriteError(w, http.StatusInternalServerError, "failed to save run")
				return
			}
			resp.RunIDs[string(s)] = id
		}
	}

	WriteJSON(w, http.StatusOK, resp)
}

func tableFromPayload(p TablePayload) *ingest.Table {
	return &ingest.Table{Name: p.Name, Headers: p.Headers, Rows: p.Rows}
}

func thresholdFor(opts match.Options, s match.Strategy) float64 {
	if t, ok := opts.Thresholds[s]; ok {
		return t
	}
	return match.DefaultThresholds()[s]
}
