package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"tvbridge/internal/smartthings"

	"github.com/gin-gonic/gin"
)

// DeviceDirectory is the read path into the SmartThings device listing.
type DeviceDirectory interface {
	ListDevices(ctx context.Context) ([]smartthings.Device, error)
	GetStatus(ctx context.Context, deviceID string) (map[string]any, error)
	DeviceCapabilities(deviceID string) ([]string, bool)
}

// DevicesHandler handles device-related requests
type DevicesHandler struct {
	directory DeviceDirectory
	logger    *slog.Logger
}

// NewDevicesHandler creates a new devices handler
func NewDevicesHandler(directory DeviceDirectory, logger *slog.Logger) *DevicesHandler {
	return &DevicesHandler{
		directory: directory,
		logger:    logger,
	}
}

// ListDevices returns the televisions visible to the SmartThings account
// GET /devices
func (h *DevicesHandler) ListDevices(c *gin.Context) {
	devices, err := h.directory.ListDevices(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list devices",
			"component", "api",
			"error", err,
		)
		c.JSON(statusForError(err), gin.H{
			"error": "Failed to list devices",
			"code":  codeForError(err),
		})
		return
	}

	response := make([]gin.H, 0, len(devices))
	for _, device := range devices {
		response = append(response, gin.H{
			"id":           device.ID,
			"label":        device.Label,
			"type":         device.Type,
			"capabilities": device.Capabilities,
		})
	}

	c.JSON(http.StatusOK, gin.H{"devices": response})
}

// GetStatus returns the raw status document for a device
// GET /devices/:id/status
func (h *DevicesHandler) GetStatus(c *gin.Context) {
	deviceID := c.Param("id")

	status, err := h.directory.GetStatus(c.Request.Context(), deviceID)
	if err != nil {
		h.logger.Error("Failed to get device status",
			"component", "api",
			"device_id", deviceID,
			"error", err,
		)
		c.JSON(statusForError(err), gin.H{
			"error": "Failed to get device status",
			"code":  codeForError(err),
		})
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetCapabilities returns the cached capability IDs for a device
// GET /devices/:id/capabilities
func (h *DevicesHandler) GetCapabilities(c *gin.Context) {
	deviceID := c.Param("id")

	capabilities, ok := h.directory.DeviceCapabilities(deviceID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Device not found in cache, list devices first",
			"code":  "NOT_FOUND",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"device_id":    deviceID,
		"capabilities": capabilities,
	})
}

// statusForError maps upstream failures onto HTTP statuses for API callers.
func statusForError(err error) int {
	switch {
	case errors.Is(err, smartthings.ErrAuthentication),
		errors.Is(err, smartthings.ErrReauthRequired),
		errors.Is(err, smartthings.ErrNoToken):
		return http.StatusUnauthorized
	case errors.Is(err, smartthings.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, smartthings.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, smartthings.ErrRequestTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func codeForError(err error) string {
	switch {
	case errors.Is(err, smartthings.ErrAuthentication),
		errors.Is(err, smartthings.ErrNoToken):
		return "AUTHENTICATION_FAILED"
	case errors.Is(err, smartthings.ErrReauthRequired):
		return "REAUTH_REQUIRED"
	case errors.Is(err, smartthings.ErrForbidden):
		return "PERMISSION_DENIED"
	case errors.Is(err, smartthings.ErrRateLimited):
		return "RATE_LIMITED"
	case errors.Is(err, smartthings.ErrRequestTimeout):
		return "UPSTREAM_TIMEOUT"
	default:
		return "UPSTREAM_ERROR"
	}
}
