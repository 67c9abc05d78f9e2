package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/metarepo/metactl/internal/datadir"
	"github.com/metarepo/metactl/internal/lock"
	"github.com/spf13/cobra"
)

var locksCmd = &cobra.Command{
	Use:   "locks",
	Short: "Inspect and clean coordination locks",
	Long: `Inspect the lock files metactl uses to coordinate concurrent
invocations, and remove locks left behind by dead processes.

Locks live in the metactl data directory, one file per namespace.`,
}

var locksStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List lock files and their holders",
	RunE:  runLocksStatus,
}

var locksCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove locks whose holders are no longer running",
	RunE:  runLocksClean,
}

var locksCleanDryRun bool

func init() {
	rootCmd.AddCommand(locksCmd)
	locksCmd.AddCommand(locksStatusCmd)
	locksCmd.AddCommand(locksCleanCmd)

	locksCleanCmd.Flags().BoolVar(&locksCleanDryRun, "dry-run", false, "Show what would be removed without removing it")
}

// lockFiles returns the lock files currently present in the data directory.
func lockFiles() ([]string, error) {
	dir, err := datadir.Dir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".lock") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}

// holderPID reads the PID recorded in a lock file. Zero means unreadable
// or malformed.
func holderPID(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0
	}
	return pid
}

func runLocksStatus(cmd *cobra.Command, args []string) error {
	paths, err := lockFiles()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(paths) == 0 {
		fmt.Fprintln(out, "No locks held.")
		return nil
	}

	fmt.Fprintln(out, styleHeader.Render("NAMESPACE")+"\t"+styleHeader.Render("PID")+"\t"+styleHeader.Render("STATE"))
	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".lock")
		pid := holderPID(path)

		var state, pidText string
		if pid == 0 {
			pidText = "?"
		} else {
			pidText = strconv.Itoa(pid)
		}
		if lock.IsStale(path) {
			state = styleWarning.Render("stale")
		} else {
			state = styleOK.Render("held")
		}

		fmt.Fprintf(out, "%s\t%s\t%s\n", name, pidText, state)
	}
	return nil
}

func runLocksClean(cmd *cobra.Command, args []string) error {
	paths, err := lockFiles()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	removed := 0
	for _, path := range paths {
		if !lock.IsStale(path) {
			continue
		}

		if locksCleanDryRun {
			fmt.Fprintf(out, "would remove %s\n", path)
			removed++
			continue
		}

		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			fmt.Fprintln(out, styleError.Render(fmt.Sprintf("failed to remove %s: %v", path, err)))
			continue
		}
		fmt.Fprintf(out, "removed %s\n", path)
		removed++
	}

	if removed == 0 {
		fmt.Fprintln(out, "Nothing to clean.")
	}
	return nil
}
