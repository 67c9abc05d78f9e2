package cmd

import (
	"fmt"
	"strings"

	"github.com/metarepo/metactl/internal/peersync"
	"github.com/spf13/cobra"
)

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "Manage sync peers and their capabilities",
	Long: `Manage the peers this machine syncs content layers with. Each peer
declares a capability tier (full, lite, or thin) plus optional per-capability
overrides, and the tier decides which layers are shipped to it.`,
}

var peersAddCmd = &cobra.Command{
	Use:   "add <peer-id>",
	Short: "Add or update a peer",
	Args:  cobra.ExactArgs(1),
	RunE:  runPeersAdd,
}

var peersRemoveCmd = &cobra.Command{
	Use:   "remove <peer-id>",
	Short: "Remove a peer",
	Args:  cobra.ExactArgs(1),
	RunE:  runPeersRemove,
}

var peersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered peers",
	RunE:  runPeersList,
}

var (
	peersTier    string
	peersEnable  []string
	peersDisable []string
)

func init() {
	rootCmd.AddCommand(peersCmd)
	peersCmd.AddCommand(peersAddCmd)
	peersCmd.AddCommand(peersRemoveCmd)
	peersCmd.AddCommand(peersListCmd)

	peersAddCmd.Flags().StringVarP(&peersTier, "tier", "t", "lite", "Capability tier: full, lite, or thin")
	peersAddCmd.Flags().StringSliceVar(&peersEnable, "enable", nil, "Capabilities to enable beyond the tier")
	peersAddCmd.Flags().StringSliceVar(&peersDisable, "disable", nil, "Capabilities to disable despite the tier")
}

func runPeersAdd(cmd *cobra.Command, args []string) error {
	tier, err := peersync.ParseTier(peersTier)
	if err != nil {
		return err
	}

	peer := peersync.NewPeerCapability(args[0], tier)
	for _, name := range peersEnable {
		peer = peer.WithOverride(peersync.Capability(name), true)
	}
	for _, name := range peersDisable {
		peer = peer.WithOverride(peersync.Capability(name), false)
	}

	registry, err := peersync.OpenRegistry()
	if err != nil {
		return err
	}
	if err := registry.Add(peer); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Registered peer %s (%s)\n", styleOK.Render(peer.PeerID), tier)
	return nil
}

func runPeersRemove(cmd *cobra.Command, args []string) error {
	registry, err := peersync.OpenRegistry()
	if err != nil {
		return err
	}
	if err := registry.Remove(args[0]); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed peer %s\n", args[0])
	return nil
}

func runPeersList(cmd *cobra.Command, args []string) error {
	registry, err := peersync.OpenRegistry()
	if err != nil {
		return err
	}
	peers, err := registry.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(peers) == 0 {
		fmt.Fprintln(out, "No peers registered.")
		return nil
	}

	for _, peer := range peers {
		line := styleProject.Render(peer.PeerID) + " " + styleTag.Render(string(peer.Tier))
		if len(peer.Overrides) > 0 {
			var parts []string
			for _, o := range peer.Overrides {
				sign := "+"
				if !o.Enabled {
					sign = "-"
				}
				parts = append(parts, sign+string(o.Capability))
			}
			line += " " + styleTag.Render("["+strings.Join(parts, " ")+"]")
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
