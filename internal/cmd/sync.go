package cmd

import (
	"fmt"
	"strings"

	"github.com/metarepo/metactl/internal/peersync"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Plan content syncs between peers",
}

var syncPlanCmd = &cobra.Command{
	Use:   "plan <source-peer> <target-peer>",
	Short: "Show which layers a sync would ship",
	Long: `Negotiate capabilities between two registered peers and print the
resulting plan: the layers the source would ship and the layers the
target is expected to generate on its own.

Example:
  metactl sync plan workstation laptop`,
	Args: cobra.ExactArgs(2),
	RunE: runSyncPlan,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncPlanCmd)
}

func runSyncPlan(cmd *cobra.Command, args []string) error {
	registry, err := peersync.OpenRegistry()
	if err != nil {
		return err
	}

	source, err := registry.Get(args[0])
	if err != nil {
		return err
	}
	target, err := registry.Get(args[1])
	if err != nil {
		return err
	}

	plan := peersync.Negotiate(source, target)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s -> %s (target tier: %s)\n\n",
		styleProject.Render(source.PeerID),
		styleProject.Render(target.PeerID),
		styleTag.Render(string(target.Tier)))

	fmt.Fprintln(out, styleHeader.Render("Ship"))
	fmt.Fprintln(out, "  "+joinKinds(plan.ShipLayers))

	fmt.Fprintln(out, styleHeader.Render("Target generates"))
	if len(plan.GenerateLayers) == 0 {
		fmt.Fprintln(out, "  "+styleTag.Render("nothing"))
	} else {
		fmt.Fprintln(out, "  "+joinKinds(plan.GenerateLayers))
	}

	return nil
}

func joinKinds(kinds []peersync.LayerKind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}
