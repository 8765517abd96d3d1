package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Project-Sylos/Canopy/internal/auth"
	"github.com/Project-Sylos/Canopy/internal/types"
)

// StatsSource reports counters about the stored categories
type StatsSource interface {
	Stats(ctx context.Context) (types.Stats, error)
}

// SystemHandler handles system-related endpoints
type SystemHandler struct {
	BaseHandler
	stats  StatsSource
	config *types.Config
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(stats StatsSource, config *types.Config, logger *slog.Logger) *SystemHandler {
	return &SystemHandler{
		BaseHandler: BaseHandler{logger: logger},
		stats:       stats,
		config:      config,
	}
}

// GetStats handles the get stats endpoint
func (h *SystemHandler) GetStats(w http.ResponseWriter, req *http.Request) {
	stats, err := h.stats.Stats(req.Context())
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get stats: %v", err))
		return
	}

	h.sendSuccess(w, "Stats retrieved successfully", stats)
}

// GetConfig handles the get config endpoint. The resolved configuration
// names store paths, so only administrators may read it. API keys are never
// serialized.
func (h *SystemHandler) GetConfig(w http.ResponseWriter, req *http.Request) {
	if !auth.FromContext(req.Context()).IsAdministrator() {
		h.sendError(w, http.StatusForbidden, "Administrator API key required")
		return
	}
	h.sendSuccess(w, "Config retrieved successfully", h.config)
}
