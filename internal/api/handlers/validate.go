package handlers

import (
	"log/slog"
	"net/http"

	"tvbridge/internal/remote"

	"github.com/gin-gonic/gin"
)

// ValidateHandler checks backend connectivity on demand
type ValidateHandler struct {
	registry *remote.Registry
	logger   *slog.Logger
}

// NewValidateHandler creates a new validate handler
func NewValidateHandler(registry *remote.Registry, logger *slog.Logger) *ValidateHandler {
	return &ValidateHandler{
		registry: registry,
		logger:   logger,
	}
}

// Validate probes every registered backend and reports reachability
// POST /validate
func (h *ValidateHandler) Validate(c *gin.Context) {
	results := gin.H{}
	for _, name := range h.registry.List() {
		client, err := h.registry.Get(name)
		if err != nil {
			continue
		}
		ok := client.Validate(c.Request.Context())
		results[name] = ok
		if !ok {
			h.logger.Warn("Backend validation failed",
				"component", "api",
				"backend", name,
			)
		}
	}

	c.JSON(http.StatusOK, gin.H{"backends": results})
}
