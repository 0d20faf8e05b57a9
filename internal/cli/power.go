package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rackctl/rackctl/internal/config"
	"github.com/rackctl/rackctl/internal/ipmi"
)

var powerCmd = &cobra.Command{
	Use:   "power",
	Short: "Power state and control",
}

var powerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report each node's power state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFleet(func(ctx context.Context, node config.Node) (any, error) {
			c, err := bmcClient(node)
			if err != nil {
				return nil, err
			}
			status, err := c.GetPowerState(ctx)
			if err != nil {
				return nil, err
			}
			return status.State, nil
		})
	},
}

var flagPowerIPMI bool

func powerActionCmd(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFleet(func(ctx context.Context, node config.Node) (any, error) {
				if flagPowerIPMI {
					return name, ipmiPowerAction(node, name)
				}
				c, err := bmcClient(node)
				if err != nil {
					return nil, err
				}
				return name, c.ResetByName(ctx, name)
			})
		},
	}
}

// ipmiPowerAction is the legacy-protocol fallback for BMCs whose Redfish
// reset action is broken.
func ipmiPowerAction(node config.Node, name string) error {
	c := ipmi.NewClient(node.BMCIP, 0, credential.Username, credential.Password)
	switch name {
	case "on":
		return c.PowerOn()
	case "off", "shutdown":
		return c.PowerOff()
	case "cycle":
		return c.PowerCycle()
	case "reset", "restart":
		return c.HardReset()
	default:
		return fmt.Errorf("power action %q has no IPMI equivalent", name)
	}
}

func init() {
	powerCmd.AddCommand(powerStatusCmd)
	for name, short := range map[string]string{
		"on":      "Power nodes on",
		"off":     "Gracefully shut nodes down",
		"restart": "Gracefully restart nodes",
		"cycle":   "Force-restart nodes",
	} {
		powerCmd.AddCommand(powerActionCmd(name, short))
	}
	powerCmd.PersistentFlags().BoolVar(&flagPowerIPMI, "ipmi", false, "use IPMI instead of Redfish")
	rootCmd.AddCommand(powerCmd)
}
