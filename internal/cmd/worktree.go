package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/metarepo/metactl/internal/worktree"
	"github.com/spf13/cobra"
)

var worktreeCmd = &cobra.Command{
	Use:   "worktree",
	Short: "Track worktrees in the shared registry",
	Long: `Track the worktrees checked out across the meta repo. The registry is
shared by all metactl processes, so entries added from one terminal are
immediately visible in another.`,
}

var worktreeAddCmd = &cobra.Command{
	Use:   "add <name> <path>",
	Short: "Register a worktree",
	Args:  cobra.ExactArgs(2),
	RunE:  runWorktreeAdd,
}

var worktreeRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a worktree registration",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorktreeRemove,
}

var worktreeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered worktrees",
	RunE:  runWorktreeList,
}

var (
	worktreeBranch  string
	worktreeProject string
)

func init() {
	rootCmd.AddCommand(worktreeCmd)
	worktreeCmd.AddCommand(worktreeAddCmd)
	worktreeCmd.AddCommand(worktreeRemoveCmd)
	worktreeCmd.AddCommand(worktreeListCmd)

	worktreeAddCmd.Flags().StringVarP(&worktreeBranch, "branch", "b", "", "Branch checked out in the worktree")
	worktreeAddCmd.Flags().StringVarP(&worktreeProject, "project", "p", "", "Meta-repo project the worktree belongs to")
}

func runWorktreeAdd(cmd *cobra.Command, args []string) error {
	registry, err := worktree.OpenRegistry()
	if err != nil {
		return err
	}

	path, err := filepath.Abs(args[1])
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	info := worktree.Info{
		Name:    args[0],
		Path:    path,
		Branch:  worktreeBranch,
		Project: worktreeProject,
	}
	if err := registry.Add(info); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Registered worktree %s at %s\n", styleOK.Render(info.Name), path)
	return nil
}

func runWorktreeRemove(cmd *cobra.Command, args []string) error {
	registry, err := worktree.OpenRegistry()
	if err != nil {
		return err
	}
	if err := registry.Remove(args[0]); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed worktree %s\n", args[0])
	return nil
}

func runWorktreeList(cmd *cobra.Command, args []string) error {
	registry, err := worktree.OpenRegistry()
	if err != nil {
		return err
	}
	infos, err := registry.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No worktrees registered.")
		return nil
	}

	for _, info := range infos {
		line := styleProject.Render(info.Name)
		if info.Branch != "" {
			line += " " + styleBranch.Render(info.Branch)
		}
		if info.Project != "" {
			line += " " + styleTag.Render("("+info.Project+")")
		}
		line += " " + styleTag.Render(info.Path)
		fmt.Fprintln(out, line)
	}
	return nil
}
