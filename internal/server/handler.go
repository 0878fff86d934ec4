package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/tenantops/appset-keyspaces-plugin/internal/generator"
	"github.com/tenantops/appset-keyspaces-plugin/internal/tenant"
)

// pluginRequest is the getparams.execute body. The parameter bag is open
// ended; unknown keys must decode without error and pass through ignored.
type pluginRequest struct {
	ApplicationSetName string `json:"applicationSetName"`
	Input              struct {
		Parameters map[string]any `json:"parameters"`
	} `json:"input"`
}

// PluginHandler serves the generator endpoint. It holds the injected tenant
// store and builds all per-request state from scratch on every call.
type PluginHandler struct {
	store  tenant.Store
	logger *slog.Logger
}

func NewPluginHandler(store tenant.Store, logger *slog.Logger) *PluginHandler {
	return &PluginHandler{store: store, logger: logger}
}

// GetParams handles POST /api/v1/getparams.execute. An empty body is
// treated as a request with no parameters.
func (h *PluginHandler) GetParams(w http.ResponseWriter, r *http.Request) {
	var req pluginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	records, err := h.store.ListEnabled(r.Context())
	if err != nil {
		h.logger.Error("tenant config query failed",
			slog.String("request_id", GetRequestID(r.Context())),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	filter := generator.FilterFromParams(req.Input.Parameters)
	resp := generator.Assemble(generator.Project(records, filter))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("write response",
			slog.String("request_id", GetRequestID(r.Context())),
			slog.String("error", err.Error()),
		)
	}
}
