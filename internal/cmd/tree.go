package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/metarepo/metactl/internal/meta"
	"github.com/metarepo/metactl/internal/util"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the project tree of the surrounding meta repo",
	Long: `Walk the meta repo containing the current (or given) directory and
print its projects. Projects that are themselves meta repos are expanded
recursively.

Examples:
  # Tree of the meta repo containing the working directory
  metactl tree

  # Limit nesting to one level of children
  metactl tree --depth 1

  # Flat slash-joined paths, one per line (script friendly)
  metactl tree --flat`,
	RunE: runTree,
}

var (
	treeDir   string
	treeDepth int
	treeFlat  bool
)

func init() {
	rootCmd.AddCommand(treeCmd)

	treeCmd.Flags().StringVarP(&treeDir, "dir", "d", "", "Directory to start from (default: working directory)")
	treeCmd.Flags().IntVar(&treeDepth, "depth", -1, "Maximum nesting depth (-1 for unlimited, 0 for top level only)")
	treeCmd.Flags().BoolVar(&treeFlat, "flat", false, "Print flat slash-joined paths instead of a tree")
}

func runTree(cmd *cobra.Command, args []string) error {
	dir := treeDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = cwd
	}

	nodes, err := meta.WalkTree(dir, treeDepth)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if treeFlat {
		for _, path := range meta.Flatten(nodes) {
			fmt.Fprintln(out, path)
		}
		return nil
	}

	configPath, _, _ := meta.FindConfig(dir, "")
	metaDir := filepath.Dir(configPath)
	fmt.Fprintln(out, styleMetaRepo.Render(metaDir))
	renderTree(out, nodes, "")

	if warning := meta.CheckOrphan(metaDir); warning != nil {
		fmt.Fprintln(out)
		fmt.Fprintln(out, styleWarning.Render(formatOrphanWarning(warning)))
	}

	return nil
}

// renderTree prints nodes with box-drawing connectors, one branch per
// project.
func renderTree(out io.Writer, nodes []*meta.TreeNode, prefix string) {
	for i, node := range nodes {
		connector, childPrefix := "├── ", prefix+"│   "
		if i == len(nodes)-1 {
			connector, childPrefix = "└── ", prefix+"    "
		}

		fmt.Fprintf(out, "%s%s%s\n", prefix, connector, renderNodeLabel(node))
		renderTree(out, node.Children, childPrefix)
	}
}

func renderNodeLabel(node *meta.TreeNode) string {
	var sb strings.Builder

	if node.IsMeta {
		sb.WriteString(styleMetaRepo.Render(node.Info.Name))
	} else {
		sb.WriteString(styleProject.Render(node.Info.Name))
	}

	if node.Info.Path != node.Info.Name {
		sb.WriteString(" ")
		sb.WriteString(styleTag.Render("(" + node.Info.Path + ")"))
	}
	if len(node.Info.Tags) > 0 {
		sb.WriteString(" ")
		sb.WriteString(styleTag.Render("[" + strings.Join(node.Info.Tags, ", ") + "]"))
	}
	if node.Info.HasRepo() {
		sb.WriteString(" ")
		sb.WriteString(styleBranch.Render(util.TruncateANSI(node.Info.Repo, 60)))
	}

	return sb.String()
}

func formatOrphanWarning(w *meta.OrphanWarning) string {
	var sb strings.Builder
	sb.WriteString("warning: this meta repo is not tracked by its parent\n")
	sb.WriteString(fmt.Sprintf("  parent: %s\n", w.Parent))

	switch w.ParentFormat {
	case meta.FormatYAML:
		sb.WriteString(fmt.Sprintf("  add to the parent config:\n    projects:\n      %s: <repo-url>", w.SuggestedKey))
	default:
		sb.WriteString(fmt.Sprintf("  add to the parent config:\n    \"projects\": { %q: \"<repo-url>\" }", w.SuggestedKey))
	}
	return sb.String()
}
