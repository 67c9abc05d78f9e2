package meta

import (
	"path/filepath"
	"strings"
)

// OrphanWarning describes a nested meta repo that no ancestor config
// tracks. Orphans still work standalone but are invisible to commands run
// from the parent.
type OrphanWarning struct {
	// Current is the orphaned meta directory.
	Current string
	// Parent is the meta directory whose config should track it.
	Parent string
	// SuggestedKey is the project key to add to the parent config.
	SuggestedKey string
	// ParentFormat selects the syntax to show in the suggestion.
	ParentFormat Format
}

// FindParentConfig locates a meta config in the ancestors of metaDir,
// starting from its parent directory. Returns false for the root meta
// repo.
func FindParentConfig(metaDir string) (string, Format, bool) {
	parent := filepath.Dir(metaDir)
	if parent == metaDir {
		return "", FormatJSON, false
	}
	return FindConfig(parent, "")
}

// CheckOrphan reports whether the meta repo at metaDir is tracked by its
// parent meta config, directly or transitively. It returns nil when the
// repo is tracked or has no parent.
func CheckOrphan(metaDir string) *OrphanWarning {
	parentConfig, parentFormat, ok := FindParentConfig(metaDir)
	if !ok {
		return nil
	}
	parentDir := filepath.Dir(parentConfig)

	tree, err := WalkTree(parentDir, -1)
	if err != nil {
		return nil
	}
	tracked := Flatten(tree)

	rel, err := filepath.Rel(parentDir, metaDir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return nil
	}
	relSlash := filepath.ToSlash(rel)

	for _, p := range tracked {
		if p == relSlash {
			return nil
		}
	}

	suggested := relSlash
	if i := strings.Index(relSlash, "/"); i >= 0 {
		suggested = relSlash[:i]
	}

	return &OrphanWarning{
		Current:      metaDir,
		Parent:       parentDir,
		SuggestedKey: suggested,
		ParentFormat: parentFormat,
	}
}
