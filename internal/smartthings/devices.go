package smartthings

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"tvbridge/internal/remote"
)

// tvCapabilities are the capability IDs whose presence classifies a device
// as a television regardless of its declared type string.
var tvCapabilities = map[string]struct{}{
	"samsungvd.remoteControl":    {},
	"samsungvd.mediaInputSource": {},
	"samsungvd.ambientContent":   {},
	"mediaPlayback":              {},
	"tvChannel":                  {},
	"audioVolume":                {},
}

// Device is a read-only snapshot of a SmartThings device.
type Device struct {
	ID           string
	Label        string
	Type         string
	Capabilities []string
}

// deviceJSON mirrors the wire shape of a device listing entry. Capability
// IDs live in a nested per-component structure.
type deviceJSON struct {
	DeviceID       string `json:"deviceId"`
	Label          string `json:"label"`
	DeviceTypeName string `json:"deviceTypeName"`
	DeviceType     string `json:"deviceType"`
	Components     []struct {
		Capabilities []struct {
			ID string `json:"id"`
		} `json:"capabilities"`
	} `json:"components"`
}

func (d deviceJSON) capabilities() []string {
	var capabilities []string
	for _, component := range d.Components {
		for _, capability := range component.Capabilities {
			if capability.ID != "" {
				capabilities = append(capabilities, capability.ID)
			}
		}
	}
	return capabilities
}

// isTV classifies a device as a television when its declared type mentions
// TV or its capability set intersects the known TV capabilities.
func (d deviceJSON) isTV() bool {
	if strings.Contains(strings.ToLower(d.DeviceTypeName), "tv") {
		return true
	}
	if strings.Contains(strings.ToLower(d.DeviceType), "tv") {
		return true
	}
	for _, capability := range d.capabilities() {
		if _, ok := tvCapabilities[capability]; ok {
			return true
		}
	}
	return false
}

// ListDevices fetches the device list and returns the television subset in
// the order the API returned them. Every fetched device, TV or not, is
// cached by ID for later capability lookups.
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	body, err := c.request(ctx, http.MethodGet, "/devices", nil)
	if err != nil {
		return nil, err
	}

	var listing struct {
		Items []deviceJSON `json:"items"`
	}
	if err := decodeJSON(body, &listing); err != nil {
		return nil, fmt.Errorf("failed to parse device listing: %w", err)
	}

	var tvs []Device
	c.cacheMu.Lock()
	for _, item := range listing.Items {
		device := Device{
			ID:           item.DeviceID,
			Label:        item.Label,
			Type:         item.DeviceTypeName,
			Capabilities: item.capabilities(),
		}
		c.deviceCache[device.ID] = device
		if item.isTV() {
			tvs = append(tvs, device)
		}
	}
	c.cacheMu.Unlock()

	c.logger.Info("Fetched device list",
		"total", len(listing.Items),
		"tvs", len(tvs),
	)
	return tvs, nil
}

// Devices adapts the television listing to the backend-neutral shape.
func (c *Client) Devices(ctx context.Context) ([]remote.DeviceInfo, error) {
	tvs, err := c.ListDevices(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]remote.DeviceInfo, 0, len(tvs))
	for _, tv := range tvs {
		infos = append(infos, remote.DeviceInfo{
			ID:           tv.ID,
			Label:        tv.Label,
			Type:         tv.Type,
			Capabilities: tv.Capabilities,
		})
	}
	return infos, nil
}

// CachedDevice returns a device previously seen by ListDevices.
func (c *Client) CachedDevice(deviceID string) (Device, bool) {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	device, ok := c.deviceCache[deviceID]
	return device, ok
}

// DeviceCapabilities returns the cached capability IDs for a device.
func (c *Client) DeviceCapabilities(deviceID string) ([]string, bool) {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	device, ok := c.deviceCache[deviceID]
	if !ok {
		return nil, false
	}
	return device.Capabilities, true
}

// GetStatus fetches the raw status document for a device. Failures
// propagate unchanged from the request engine.
func (c *Client) GetStatus(ctx context.Context, deviceID string) (map[string]any, error) {
	body, err := c.request(ctx, http.MethodGet, "/devices/"+deviceID+"/status", nil)
	if err != nil {
		return nil, err
	}

	status := make(map[string]any)
	if err := decodeJSON(body, &status); err != nil {
		return nil, fmt.Errorf("failed to parse device status: %w", err)
	}
	return status, nil
}
