package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/listmatch/internal/store"
)

// RunsHandler lists saved runs.
type RunsHandler struct {
	Store  *store.Store
	Logger *zap.Logger
}

// List returns recent runs, newest first. ?limit= bounds the count.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		WriteError(w, http.StatusServiceUnavailable, "run persistence is not configured")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := h.Store.RecentRuns(r.Context(), limit)
	if err != nil {
		h.Logger.Error("failed to list runs", zap.Error(err))
		WriteError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}
