package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rackctl/rackctl/internal/config"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "System identity, firmware, and health summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFleet(func(ctx context.Context, node config.Node) (any, error) {
			c, err := bmcClient(node)
			if err != nil {
				return nil, err
			}
			return c.GetSystemInfo(ctx)
		})
	},
}

var sensorsCmd = &cobra.Command{
	Use:   "sensors",
	Short: "Thermal and power telemetry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFleet(func(ctx context.Context, node config.Node) (any, error) {
			c, err := bmcClient(node)
			if err != nil {
				return nil, err
			}
			return c.GetSensors(ctx)
		})
	},
}

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Storage controllers and drives",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFleet(func(ctx context.Context, node config.Node) (any, error) {
			c, err := bmcClient(node)
			if err != nil {
				return nil, err
			}
			return c.GetStorage(ctx)
		})
	},
}

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Installed memory modules",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFleet(func(ctx context.Context, node config.Node) (any, error) {
			c, err := bmcClient(node)
			if err != nil {
				return nil, err
			}
			return c.GetMemory(ctx)
		})
	},
}

var firmwareCmd = &cobra.Command{
	Use:   "firmware",
	Short: "Firmware inventory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFleet(func(ctx context.Context, node config.Node) (any, error) {
			c, err := bmcClient(node)
			if err != nil {
				return nil, err
			}
			return c.GetFirmwareInventory(ctx)
		})
	},
}

var netcfgCmd = &cobra.Command{
	Use:   "netcfg",
	Short: "BMC network configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFleet(func(ctx context.Context, node config.Node) (any, error) {
			c, err := bmcClient(node)
			if err != nil {
				return nil, err
			}
			return c.GetBMCNetInfo(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(infoCmd, sensorsCmd, storageCmd, memoryCmd, firmwareCmd, netcfgCmd)
}
