package remote

import "context"

// Remote defines the interface every TV control backend must implement.
type Remote interface {
	// Name returns the unique backend name (e.g., "smartthings", "tizen")
	Name() string

	// SendCommand dispatches a symbolic remote-control command to a device.
	// A failed press reports false and is logged by the backend; it never
	// panics, so UI callers can fire-and-check freely.
	SendCommand(ctx context.Context, deviceID, command string) bool

	// Validate performs a lightweight reachability/auth check
	Validate(ctx context.Context) bool

	// Close releases the backend's network resources
	Close() error
}

// DeviceInfo describes a controllable television.
type DeviceInfo struct {
	ID           string
	Label        string
	Type         string
	Capabilities []string
}

// DeviceLister is an optional interface for backends that can enumerate
// devices. The local Tizen backend is bound to a single TV and does not
// implement it.
type DeviceLister interface {
	Remote
	Devices(ctx context.Context) ([]DeviceInfo, error)
}
