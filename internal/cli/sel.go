package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rackctl/rackctl/internal/config"
	"github.com/rackctl/rackctl/internal/ipmi"
)

var selCmd = &cobra.Command{
	Use:   "sel",
	Short: "System Event Log via IPMI",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFleet(func(ctx context.Context, node config.Node) (any, error) {
			c := ipmi.NewClient(node.BMCIP, 0, credential.Username, credential.Password)
			entries, err := c.GetSEL()
			if err != nil {
				return nil, err
			}
			return entries, nil
		})
	},
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Console service capabilities of one node's BMC",
	RunE: func(cmd *cobra.Command, args []string) error {
		nodes, err := targets()
		if err != nil {
			return err
		}
		if len(nodes) != 1 {
			return fmt.Errorf("console is a single-node operation; got %d nodes", len(nodes))
		}
		return runFleet(func(ctx context.Context, node config.Node) (any, error) {
			c, err := bmcClient(node)
			if err != nil {
				return nil, err
			}
			return c.GetConsoleInfo(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(selCmd, consoleCmd)
}
