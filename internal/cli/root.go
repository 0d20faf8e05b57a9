// Package cli implements the rackctl command tree. Commands stay thin:
// resolve the target nodes, fan the operation out, render the per-node
// results, and exit non-zero when any node failed.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rackctl/rackctl/internal/config"
	"github.com/rackctl/rackctl/internal/fleet"
	"github.com/rackctl/rackctl/internal/redfish"
)

var (
	flagInventory string
	flagUser      string
	flagPass      string
	flagNodes     []string
	flagJSON      bool
	flagVerbose   bool
	flagTimeout   time.Duration
	flagRetries   int

	inventory  *config.Inventory
	credential config.Credential
)

var rootCmd = &cobra.Command{
	Use:           "rackctl",
	Short:         "Out-of-band management for the cluster's BMCs",
	Long:          "rackctl drives the Board Management Controllers of the cluster nodes over Redfish and IPMI: power control, sensors, boot configuration, virtual media, and configuration comparison.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		if flagVerbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}

		if flagRetries < 0 {
			return fmt.Errorf("--retries must be zero or more, got %d", flagRetries)
		}

		var err error
		credential, err = config.LoadCredential(flagUser, flagPass)
		if err != nil {
			return err
		}

		if _, statErr := os.Stat(flagInventory); statErr != nil && !cmd.Flags().Changed("inventory") {
			// no inventory file; bare IPs still resolve
			inventory = &config.Inventory{}
			return nil
		}
		inventory, err = config.LoadInventory(flagInventory)
		return err
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagInventory, "inventory", "inventory.yaml", "node inventory file")
	pf.StringVarP(&flagUser, "user", "u", "", "BMC username (or RACKCTL_USER)")
	pf.StringVarP(&flagPass, "pass", "p", "", "BMC password (or RACKCTL_PASS)")
	pf.StringSliceVarP(&flagNodes, "nodes", "n", nil, "target nodes (names or IPs; default: all inventory nodes)")
	pf.BoolVar(&flagJSON, "json", false, "emit raw JSON instead of tables")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	pf.DurationVar(&flagTimeout, "timeout", 10*time.Second, "per-request timeout")
	pf.IntVar(&flagRetries, "retries", redfish.DefaultMaxRetries, "extra attempts for transient BMC failures")
}

// Execute runs the command tree.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		return err
	}
	return nil
}

// targets resolves the --nodes selection against the inventory.
func targets() ([]config.Node, error) {
	nodes, err := fleet.Resolve(inventory, flagNodes)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("no nodes selected: pass --nodes or provide an inventory")
	}
	return nodes, nil
}

// bmcClient builds the Redfish client for one node's management address.
func bmcClient(node config.Node) (*redfish.Client, error) {
	if node.BMCIP == "" {
		return nil, fmt.Errorf("node %s has no BMC address", node.Name)
	}
	return redfish.NewClient(redfish.Config{
		Host:       node.BMCIP,
		Username:   credential.Username,
		Password:   credential.Password,
		Timeout:    flagTimeout,
		MaxRetries: flagRetries,
	}), nil
}

// runFleet fans op out over the selected nodes, renders the outcome, and
// reports failure if any node failed.
func runFleet(op fleet.Op) error {
	nodes, err := targets()
	if err != nil {
		return err
	}

	results, ok := fleet.Run(context.Background(), nodes, op)
	if err := render(results); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%d of %d nodes failed", countFailed(results), len(results))
	}
	return nil
}

func countFailed(results []fleet.Result) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}
