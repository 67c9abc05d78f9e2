package meta

import (
	"os"
	"path/filepath"
	"sort"
)

// TreeNode is a project in the meta tree together with its nested
// children, if the project is itself a meta repo.
type TreeNode struct {
	Info     Project     `json:"info"`
	IsMeta   bool        `json:"is_meta"`
	Children []*TreeNode `json:"children,omitempty"`
}

// MapEntry is the resolved location and metadata of a project in the tree.
type MapEntry struct {
	Dir  string
	Info Project
}

// WalkTree discovers the project tree of the meta repo containing
// startDir. For each project it checks whether the project directory has
// its own .meta config and recursively expands those children up to
// maxDepth levels. A negative maxDepth means unlimited recursion; zero
// yields only the top-level projects.
//
// Symlink loops between nested meta repos are broken with a visited set
// of canonicalized directories.
func WalkTree(startDir string, maxDepth int) ([]*TreeNode, error) {
	configPath, _, ok := FindConfig(startDir, "")
	if !ok {
		return nil, configDirError(startDir)
	}

	projects, _, err := ParseConfig(configPath)
	if err != nil {
		return nil, err
	}

	metaDir := filepath.Dir(configPath)
	visited := map[string]bool{canonicalize(metaDir): true}

	if maxDepth < 0 {
		maxDepth = int(^uint(0) >> 1)
	}
	return walkInner(metaDir, projects, maxDepth, 0, visited), nil
}

func walkInner(baseDir string, projects []Project, maxDepth, depth int, visited map[string]bool) []*TreeNode {
	nodes := make([]*TreeNode, 0, len(projects))

	for _, project := range projects {
		projectDir := filepath.Join(baseDir, project.Path)
		hasMeta := isDir(projectDir) && hasOwnConfig(projectDir)

		var children []*TreeNode
		if hasMeta && depth < maxDepth {
			canonical := canonicalize(projectDir)
			if !visited[canonical] {
				visited[canonical] = true
				if nestedConfig, _, ok := FindConfigIn(projectDir); ok {
					// A malformed nested config skips its subtree rather
					// than failing the whole walk.
					if nestedProjects, _, err := ParseConfig(nestedConfig); err == nil {
						children = walkInner(projectDir, nestedProjects, maxDepth, depth+1, visited)
					}
				}
			}
		}

		nodes = append(nodes, &TreeNode{
			Info:     project,
			IsMeta:   hasMeta,
			Children: children,
		})
	}

	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Info.Name < nodes[j].Info.Name
	})
	return nodes
}

// Flatten returns the fully qualified slash-joined paths of every project
// in the tree, depth first. A child with path "grandchild" under parent
// "child" becomes "child/grandchild".
func Flatten(nodes []*TreeNode) []string {
	var paths []string
	flattenInner(nodes, "", &paths)
	return paths
}

func flattenInner(nodes []*TreeNode, prefix string, paths *[]string) {
	for _, node := range nodes {
		full := node.Info.Path
		if prefix != "" {
			full = prefix + "/" + node.Info.Path
		}
		*paths = append(*paths, full)
		flattenInner(node.Children, full, paths)
	}
}

// BuildProjectMap maps fully qualified project paths to their resolved
// filesystem location and project info, for nested lookups like
// "vendor/nested-lib".
func BuildProjectMap(nodes []*TreeNode, baseDir, prefix string) map[string]MapEntry {
	result := make(map[string]MapEntry)
	for _, node := range nodes {
		full := node.Info.Path
		if prefix != "" {
			full = prefix + "/" + node.Info.Path
		}
		result[full] = MapEntry{
			Dir:  filepath.Join(baseDir, filepath.FromSlash(full)),
			Info: node.Info,
		}
		for k, v := range BuildProjectMap(node.Children, baseDir, full) {
			result[k] = v
		}
	}
	return result
}

// hasOwnConfig reports whether dir itself contains a meta config,
// ignoring configs in ancestor directories.
func hasOwnConfig(dir string) bool {
	_, _, ok := FindConfigIn(dir)
	return ok
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// canonicalize resolves symlinks so cycles through links are detected.
// Falls back to the absolute path when resolution fails.
func canonicalize(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
