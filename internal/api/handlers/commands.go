package handlers

import (
	"log/slog"
	"net/http"

	"tvbridge/internal/remote"
	"tvbridge/internal/smartthings"

	"github.com/gin-gonic/gin"
)

// CommandsHandler dispatches remote-control commands to a backend
type CommandsHandler struct {
	registry *remote.Registry
	logger   *slog.Logger
}

// NewCommandsHandler creates a new commands handler
func NewCommandsHandler(registry *remote.Registry, logger *slog.Logger) *CommandsHandler {
	return &CommandsHandler{
		registry: registry,
		logger:   logger,
	}
}

// SendCommandRequest is the body of a command dispatch
type SendCommandRequest struct {
	Command string `json:"command" binding:"required"`
	// Backend selects the control path; defaults to smartthings.
	Backend string `json:"backend"`
}

// SendCommand dispatches a single remote command to a device
// POST /devices/:id/commands
func (h *CommandsHandler) SendCommand(c *gin.Context) {
	deviceID := c.Param("id")

	var req SendCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body: " + err.Error(),
			"code":  "INVALID_REQUEST",
		})
		return
	}

	backend := req.Backend
	if backend == "" {
		backend = "smartthings"
	}

	client, err := h.registry.Get(backend)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Unknown backend: " + backend,
			"code":  "BACKEND_NOT_FOUND",
		})
		return
	}

	// The cloud path only accepts a subset of the key map; the local Tizen
	// path takes any known key.
	supported := smartthings.IsKnown(req.Command)
	if client.Name() == "smartthings" {
		supported = smartthings.IsSupported(req.Command)
	}
	if !supported {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Unsupported command: " + req.Command,
			"code":    "UNSUPPORTED_COMMAND",
			"command": req.Command,
		})
		return
	}

	sent := client.SendCommand(c.Request.Context(), deviceID, req.Command)
	if !sent {
		h.logger.Warn("Command dispatch failed",
			"component", "api",
			"device_id", deviceID,
			"command", req.Command,
			"backend", backend,
		)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Command was not delivered",
			"code":    "DISPATCH_FAILED",
			"command": req.Command,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"device_id": deviceID,
		"command":   req.Command,
		"backend":   backend,
		"sent":      true,
	})
}

// ListCommands returns the commands accepted by the command endpoint
// GET /commands
func (h *CommandsHandler) ListCommands(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"commands": smartthings.SupportedCommands(),
	})
}
