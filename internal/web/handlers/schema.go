package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/listmatch/internal/schema"
)

// SchemaHandler serves header detection.
type SchemaHandler struct {
	Logger *zap.Logger
}

// DetectRequest is the body of POST /api/v1/schema/detect.
type DetectRequest struct {
	Headers []string `json:"headers"`
}

// DetectResponse reports the detected mapping, the strategies it supports,
// and any headers that could not be placed.
type DetectResponse struct {
	Mapping  schema.Mapping          `json:"mapping"`
	Report   schema.Report           `json:"report"`
	Unmapped []schema.UnmappedHeader `json:"unmapped,omitempty"`
}

// Detect resolves raw headers to canonical fields.
func (h *SchemaHandler) Detect(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Headers) == 0 {
		WriteError(w, http.StatusBadRequest, "headers are required")
		return
	}

	mapping, err := schema.Detect(req.Headers)
	if err != nil {
		var amb *schema.AmbiguousHeaderError
		if errors.As(err, &amb) {
			WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":   amb.Error(),
				"field":   amb.Field,
				"headers": amb.Headers,
			})
			return
		}
		h.Logger.Error("schema detection failed", zap.Error(err))
		WriteError(w, http.StatusInternalServerError, "schema detection failed")
		return
	}

	WriteJSON(w, http.StatusOK, DetectResponse{
		Mapping:  mapping,
		Report:   schema.EvaluateMatchTypes(mapping),
		Unmapped: schema.Unmapped(req.Headers, mapping),
	})
}
