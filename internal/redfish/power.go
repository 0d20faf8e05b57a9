package redfish

import (
	"context"
	"fmt"
)

// ResetType is a ComputerSystem.Reset action argument.
type ResetType string

const (
	ResetOn               ResetType = "On"
	ResetGracefulShutdown ResetType = "GracefulShutdown"
	ResetGracefulRestart  ResetType = "GracefulRestart"
	ResetForceRestart     ResetType = "ForceRestart"
	ResetForceOff         ResetType = "ForceOff"
)

// ValidResetTypes maps user-facing action names to reset types.
var ValidResetTypes = map[string]ResetType{
	"on":       ResetOn,
	"off":      ResetGracefulShutdown,
	"shutdown": ResetGracefulShutdown,
	"restart":  ResetGracefulRestart,
	"cycle":    ResetForceRestart,
	"reset":    ResetForceRestart,
	"forceoff": ResetForceOff,
}

const resetAction = systemPath + "/Actions/ComputerSystem.Reset"

// PowerStatus holds the reported power state of a system.
type PowerStatus struct {
	State string `json:"powerState"`
}

// GetPowerState returns the current system power state ("On", "Off", ...).
func (c *Client) GetPowerState(ctx context.Context) (*PowerStatus, error) {
	resp, err := c.Get(ctx, systemPath)
	if err != nil {
		return nil, fmt.Errorf("getting power state: %w", err)
	}

	var sys struct {
		PowerState string `json:"PowerState"`
	}
	if err := resp.Decode(&sys); err != nil {
		return nil, fmt.Errorf("parsing power state: %w", err)
	}

	return &PowerStatus{State: sys.PowerState}, nil
}

// Reset issues a ComputerSystem.Reset action.
func (c *Client) Reset(ctx context.Context, t ResetType) error {
	body := map[string]ResetType{"ResetType": t}
	if _, err := c.Post(ctx, resetAction, body); err != nil {
		return fmt.Errorf("resetting system (%s): %w", t, err)
	}
	return nil
}

// ResetByName issues a reset action by its user-facing name.
func (c *Client) ResetByName(ctx context.Context, name string) error {
	t, ok := ValidResetTypes[name]
	if !ok {
		return fmt.Errorf("unknown power action: %q (valid: on, off, shutdown, restart, cycle, reset, forceoff)", name)
	}
	return c.Reset(ctx, t)
}
