// Package ipmi drives the legacy IPMI-over-LAN interface of a BMC using
// bougou/go-ipmi: chassis power control, System Event Log retrieval, and the
// raw boot-parameter writes that predate the Redfish boot override.
package ipmi

import (
	"context"
	"fmt"
	"time"

	goipmi "github.com/bougou/go-ipmi"
)

// System Boot Options wire bytes: chassis netfn, Set/Get System Boot
// Options commands, boot flags parameter.
const (
	netFnChassis      goipmi.NetFn = 0x00
	setBootOptionsCmd uint8        = 0x08
	getBootOptionsCmd uint8        = 0x09
	bootFlagsParam    byte         = 0x05
)

// Client wraps go-ipmi for one BMC.
type Client struct {
	host     string
	port     int
	username string
	password string
}

// NewClient creates a new IPMI client.
func NewClient(host string, port int, username, password string) *Client {
	if port == 0 {
		port = 623
	}
	return &Client{
		host:     host,
		port:     port,
		username: username,
		password: password,
	}
}

func (c *Client) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// connect creates an authenticated IPMI connection.
func (c *Client) connect() (*goipmi.Client, error) {
	client, err := goipmi.NewClient(c.host, c.port, c.username, c.password)
	if err != nil {
		return nil, fmt.Errorf("creating IPMI client: %w", err)
	}

	client.WithInterface(goipmi.InterfaceLanplus)

	ctx, cancel := c.ctx()
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("IPMI connect to %s:%d: %w", c.host, c.port, err)
	}

	return client, nil
}

// GetPowerStatus returns the chassis power status via IPMI.
func (c *Client) GetPowerStatus() (bool, error) {
	client, err := c.connect()
	if err != nil {
		return false, err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	defer client.Close(ctx) //nolint:errcheck

	status, err := client.GetChassisStatus(ctx)
	if err != nil {
		return false, fmt.Errorf("IPMI chassis status: %w", err)
	}

	return status.PowerIsOn, nil
}

// PowerOn turns on the chassis.
func (c *Client) PowerOn() error {
	return c.chassisControl(goipmi.ChassisControlPowerUp)
}

// PowerOff turns off the chassis.
func (c *Client) PowerOff() error {
	return c.chassisControl(goipmi.ChassisControlPowerDown)
}

// PowerCycle power cycles the chassis.
func (c *Client) PowerCycle() error {
	return c.chassisControl(goipmi.ChassisControlPowerCycle)
}

// HardReset hard resets the chassis.
func (c *Client) HardReset() error {
	return c.chassisControl(goipmi.ChassisControlHardReset)
}

func (c *Client) chassisControl(control goipmi.ChassisControl) error {
	client, err := c.connect()
	if err != nil {
		return err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	defer client.Close(ctx) //nolint:errcheck

	if _, err := client.ChassisControl(ctx, control); err != nil {
		return fmt.Errorf("IPMI chassis control: %w", err)
	}
	return nil
}

// SetBootDevice writes a boot override for the given symbolic device. The
// wire format is parameter 5, the two encoded flag bytes, and three reserved
// zero bytes.
func (c *Client) SetBootDevice(device string, persistent, uefi bool) error {
	flags, err := EncodeBootDevice(device, persistent, uefi)
	if err != nil {
		return err
	}
	return c.writeBootFlags(flags)
}

// ClearBootDevice clears any pending boot override.
func (c *Client) ClearBootDevice() error {
	return c.writeBootFlags(ClearBootFlags())
}

func (c *Client) writeBootFlags(flags [2]byte) error {
	client, err := c.connect()
	if err != nil {
		return err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	defer client.Close(ctx) //nolint:errcheck

	data := []byte{bootFlagsParam, flags[0], flags[1], 0x00, 0x00, 0x00}
	if _, err := client.RawCommand(ctx, netFnChassis, setBootOptionsCmd, data, "Set System Boot Options"); err != nil {
		return fmt.Errorf("IPMI set boot options: %w", err)
	}
	return nil
}

// GetBootFlags reads back the boot-parameter state and returns it verbatim.
// Interactive paths report this instead of trusting the preceding write.
func (c *Client) GetBootFlags() (string, error) {
	client, err := c.connect()
	if err != nil {
		return "", err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	defer client.Close(ctx) //nolint:errcheck

	// parameter selector, set selector, block selector
	data := []byte{bootFlagsParam, 0x00, 0x00}
	resp, err := client.RawCommand(ctx, netFnChassis, getBootOptionsCmd, data, "Get System Boot Options")
	if err != nil {
		return "", fmt.Errorf("IPMI get boot options: %w", err)
	}
	return resp.Format(), nil
}

// SELEntry represents an IPMI SEL entry.
type SELEntry struct {
	ID         string `json:"id"`
	Timestamp  string `json:"timestamp,omitempty"`
	SensorType string `json:"sensorType,omitempty"`
}

// GetSEL returns the System Event Log entries via IPMI.
func (c *Client) GetSEL() ([]SELEntry, error) {
	client, err := c.connect()
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	defer client.Close(ctx) //nolint:errcheck

	entries, err := client.GetSELEntries(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("IPMI SEL entries: %w", err)
	}

	var result []SELEntry
	for _, e := range entries {
		entry := SELEntry{
			ID: fmt.Sprintf("%d", e.RecordID),
		}
		if e.Standard != nil {
			entry.Timestamp = e.Standard.Timestamp.Format(time.RFC3339)
			entry.SensorType = e.Standard.SensorType.String()
		}
		result = append(result, entry)
	}

	return result, nil
}
