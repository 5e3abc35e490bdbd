package smartthings

import (
	"context"
	"net/http"
	"time"
)

// commandPayload is the SmartThings command envelope for the Samsung
// remoteControl capability.
type commandPayload struct {
	Commands []commandEntry `json:"commands"`
}

type commandEntry struct {
	Component  string   `json:"component"`
	Capability string   `json:"capability"`
	Command    string   `json:"command"`
	Arguments  []string `json:"arguments"`
}

// SendCommand sends a remote-control key press to a device.
//
// Sends are serialized through the throttle mutex and separated by at
// least the configured minimum interval, so rapid button presses cannot
// flood the TV. Commands the SmartThings API does not support are rejected
// locally without a network call.
//
// The result is a plain success flag: a failed button press is logged and
// reported, never raised, so the caller's UI loop keeps running.
func (c *Client) SendCommand(ctx context.Context, deviceID, command string) bool {
	c.throttleMu.Lock()
	defer c.throttleMu.Unlock()

	if !c.waitForSlot(ctx) {
		return false
	}

	if !IsSupported(command) {
		c.logger.Warn("Command not supported by SmartThings API",
			"command", command,
			"hint", "this command only works over the local Tizen path",
		)
		return false
	}
	key := TranslateKey(command)

	payload := commandPayload{
		Commands: []commandEntry{
			{
				Component:  "main",
				Capability: "samsungvd.remoteControl",
				Command:    "send",
				Arguments:  []string{key},
			},
		},
	}

	c.logger.Debug("Sending command",
		"device_id", deviceID,
		"command", command,
		"key", key,
	)

	_, err := c.request(ctx, http.MethodPost, "/devices/"+deviceID+"/commands", payload)

	// The send timestamp advances on failure too, so a burst of failing
	// presses still respects the interval.
	c.lastCommand = time.Now()

	if err != nil {
		c.logger.Error("Failed to send command",
			"device_id", deviceID,
			"command", command,
			"key", key,
			"error", err,
		)
		return false
	}
	return true
}

// waitForSlot sleeps off the remainder of the minimum inter-command
// interval. Returns false when the caller's context was canceled while
// waiting. Must be called with the throttle mutex held.
func (c *Client) waitForSlot(ctx context.Context) bool {
	elapsed := time.Since(c.lastCommand)
	if elapsed >= c.minCommandInterval {
		return true
	}

	remaining := c.minCommandInterval - elapsed
	c.logger.Debug("Throttling command",
		"wait", remaining.String(),
	)

	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
