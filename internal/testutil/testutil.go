// Package testutil provides testing utilities for metactl tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// WriteMetaConfig writes a JSON .meta config mapping project names to
// repo URLs into dir.
func WriteMetaConfig(t *testing.T, dir string, projects map[string]string) {
	t.Helper()

	doc := map[string]any{"projects": projects}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("failed to serialize .meta config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".meta"), data, 0644); err != nil {
		t.Fatalf("failed to write .meta config: %v", err)
	}
}

// SetupMetaRepo creates a temporary meta repo with the given projects.
// Each project gets an empty directory next to the config. Returns the
// meta repo root; cleanup happens with the test's temp dir.
func SetupMetaRepo(t *testing.T, projects map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	WriteMetaConfig(t, dir, projects)
	for name := range projects {
		if err := os.MkdirAll(filepath.Join(dir, name), 0755); err != nil {
			t.Fatalf("failed to create project dir %s: %v", name, err)
		}
	}
	return dir
}

// SetupNestedMetaRepo creates a meta repo whose child project is itself a
// meta repo with its own projects. Returns the root and the nested meta
// directory.
func SetupNestedMetaRepo(t *testing.T, child string, childProjects map[string]string) (root, nested string) {
	t.Helper()

	root = SetupMetaRepo(t, map[string]string{child: "git@example.com:org/" + child + ".git"})
	nested = filepath.Join(root, child)
	WriteMetaConfig(t, nested, childProjects)
	for name := range childProjects {
		if err := os.MkdirAll(filepath.Join(nested, name), 0755); err != nil {
			t.Fatalf("failed to create nested project dir %s: %v", name, err)
		}
	}
	return root, nested
}

// WriteFile writes content to a path under dir, creating parents.
func WriteFile(t *testing.T, dir, path, content string) string {
	t.Helper()

	fullPath := filepath.Join(dir, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return fullPath
}
