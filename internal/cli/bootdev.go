package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rackctl/rackctl/internal/config"
	"github.com/rackctl/rackctl/internal/ipmi"
)

var (
	flagBootPersistent bool
	flagBootUEFI       bool
)

var bootdevCmd = &cobra.Command{
	Use:   "bootdev",
	Short: "Legacy boot-device override via IPMI",
}

var bootdevSetCmd = &cobra.Command{
	Use:       "set {none|pxe|hdd|cd|bios|usb}",
	Short:     "Set the boot-device override",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"none", "pxe", "hdd", "cd", "bios", "usb"},
	RunE: func(cmd *cobra.Command, args []string) error {
		device := args[0]
		// reject a bad device before touching any node
		if _, err := ipmi.EncodeBootDevice(device, flagBootPersistent, flagBootUEFI); err != nil {
			return err
		}
		return runFleet(func(ctx context.Context, node config.Node) (any, error) {
			c := ipmi.NewClient(node.BMCIP, 0, credential.Username, credential.Password)
			if err := c.SetBootDevice(device, flagBootPersistent, flagBootUEFI); err != nil {
				return nil, err
			}
			// report the BMC's view of the flags, not our write
			flags, err := c.GetBootFlags()
			if err != nil {
				return nil, fmt.Errorf("override written but readback failed: %w", err)
			}
			return flags, nil
		})
	},
}

var bootdevClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear any pending boot-device override",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFleet(func(ctx context.Context, node config.Node) (any, error) {
			c := ipmi.NewClient(node.BMCIP, 0, credential.Username, credential.Password)
			return "cleared", c.ClearBootDevice()
		})
	},
}

var bootdevShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current boot-parameter state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFleet(func(ctx context.Context, node config.Node) (any, error) {
			c := ipmi.NewClient(node.BMCIP, 0, credential.Username, credential.Password)
			return c.GetBootFlags()
		})
	},
}

func init() {
	bootdevSetCmd.Flags().BoolVar(&flagBootPersistent, "persistent", false, "apply to all future boots, not just the next")
	bootdevSetCmd.Flags().BoolVar(&flagBootUEFI, "uefi", false, "request UEFI boot")

	bootdevCmd.AddCommand(bootdevSetCmd, bootdevClearCmd, bootdevShowCmd)
	rootCmd.AddCommand(bootdevCmd)
}
