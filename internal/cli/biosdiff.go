package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rackctl/rackctl/internal/biosdiff"
	"github.com/rackctl/rackctl/internal/config"
	"github.com/rackctl/rackctl/internal/fleet"
	"github.com/rackctl/rackctl/internal/vendorcfg"
)

var (
	flagDiffReference string
	flagDiffTool      string
	flagDiffNetwork   bool
	flagDiffBMC       bool
)

var biosdiffCmd = &cobra.Command{
	Use:   "biosdiff",
	Short: "Compare BIOS/BMC configuration across nodes",
	Long: `Exports each node's configuration through the vendor utility, normalizes
the export, and reports every setting that differs from the reference node.
Node-unique fields (serials, UUIDs, passwords, addresses) are excluded unless
--network re-enables address comparison.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		nodes, err := targets()
		if err != nil {
			return err
		}

		refNodes, err := fleet.Resolve(inventory, []string{flagDiffReference})
		if err != nil {
			return err
		}
		ref := refNodes[0]

		tool := vendorcfg.New(flagDiffTool)
		ctx := context.Background()

		refSettings, err := exportSettings(ctx, tool, ref)
		if err != nil {
			return fmt.Errorf("reference node %s: %w", ref.Name, err)
		}

		results, ok := fleet.Run(ctx, nodes, func(ctx context.Context, node config.Node) (any, error) {
			if node.BMCIP == ref.BMCIP {
				return []biosdiff.Delta{}, nil
			}
			settings, err := exportSettings(ctx, tool, node)
			if err != nil {
				return nil, err
			}
			return biosdiff.Diff(refSettings, settings, flagDiffNetwork), nil
		})
		if err := render(results); err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%d of %d nodes failed", countFailed(results), len(results))
		}
		return nil
	},
}

func exportSettings(ctx context.Context, tool *vendorcfg.Tool, node config.Node) (map[string]string, error) {
	export := tool.ExportBIOSConfig
	if flagDiffBMC {
		export = tool.ExportBMCConfig
	}
	out, err := export(ctx, node.BMCIP, credential.Username, credential.Password)
	if err != nil {
		return nil, err
	}
	return biosdiff.Parse([]byte(out))
}

func init() {
	biosdiffCmd.Flags().StringVar(&flagDiffReference, "reference", "", "node every other node is compared against")
	biosdiffCmd.Flags().StringVar(&flagDiffTool, "tool", "sum", "vendor configuration utility binary")
	biosdiffCmd.Flags().BoolVar(&flagDiffNetwork, "network", false, "compare network-identifying fields too")
	biosdiffCmd.Flags().BoolVar(&flagDiffBMC, "bmc", false, "compare BMC configuration instead of BIOS")
	_ = biosdiffCmd.MarkFlagRequired("reference")

	rootCmd.AddCommand(biosdiffCmd)
}
