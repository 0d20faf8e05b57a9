package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rackctl/rackctl/internal/config"
)

var (
	flagImageURL  string
	flagBootAfter bool
)

var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Virtual media mounting",
}

var mediaMountCmd = &cobra.Command{
	Use:   "mount",
	Short: "Mount an ISO image over virtual media",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFleet(func(ctx context.Context, node config.Node) (any, error) {
			c, err := bmcClient(node)
			if err != nil {
				return nil, err
			}
			h, err := c.DiscoverVirtualMedia(ctx)
			if err != nil {
				return nil, err
			}
			if err := c.MountISO(ctx, h, flagImageURL); err != nil {
				return nil, err
			}
			if !flagBootAfter {
				return fmt.Sprintf("mounted (%s variant)", h.Variant), nil
			}
			// A failed override must not read as a failed mount.
			if err := c.BootToCD(ctx); err != nil {
				return nil, fmt.Errorf("image mounted, but CD boot failed: %w", err)
			}
			return fmt.Sprintf("mounted (%s variant), booting from CD", h.Variant), nil
		})
	},
}

var mediaUnmountCmd = &cobra.Command{
	Use:   "unmount",
	Short: "Detach the mounted virtual media image",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFleet(func(ctx context.Context, node config.Node) (any, error) {
			c, err := bmcClient(node)
			if err != nil {
				return nil, err
			}
			h, err := c.DiscoverVirtualMedia(ctx)
			if err != nil {
				return nil, err
			}
			if err := c.UnmountISO(ctx, h); err != nil {
				return nil, err
			}
			return "unmounted", nil
		})
	},
}

func init() {
	mediaMountCmd.Flags().StringVar(&flagImageURL, "image", "", "HTTP URL of the ISO image")
	mediaMountCmd.Flags().BoolVar(&flagBootAfter, "boot", false, "set one-time CD boot override and restart after mounting")
	_ = mediaMountCmd.MarkFlagRequired("image")

	mediaCmd.AddCommand(mediaMountCmd, mediaUnmountCmd)
	rootCmd.AddCommand(mediaCmd)
}
