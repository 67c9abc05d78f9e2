package meta

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/metarepo/metactl/internal/errors"
)

func mkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
}

func TestWalkTree(t *testing.T) {
	t.Run("no config", func(t *testing.T) {
		_, err := WalkTree(t.TempDir(), -1)
		if err == nil {
			t.Fatal("WalkTree succeeded without a config")
		}
		if !errors.Is(err, errors.ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("empty projects", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, ".meta", `{"projects": {}}`)

		tree, err := WalkTree(dir, -1)
		if err != nil {
			t.Fatalf("WalkTree failed: %v", err)
		}
		if len(tree) != 0 {
			t.Errorf("len(tree) = %d, want 0", len(tree))
		}
	})

	t.Run("projects sorted by name", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"zebra", "alpha", "middle"} {
			mkdir(t, filepath.Join(dir, name))
		}
		writeConfig(t, dir, ".meta", `{"projects": {
			"zebra": "git@github.com:org/zebra.git",
			"alpha": "git@github.com:org/alpha.git",
			"middle": "git@github.com:org/middle.git"
		}}`)

		tree, err := WalkTree(dir, -1)
		if err != nil {
			t.Fatalf("WalkTree failed: %v", err)
		}
		if len(tree) != 3 {
			t.Fatalf("len(tree) = %d, want 3", len(tree))
		}
		for i, want := range []string{"alpha", "middle", "zebra"} {
			if tree[i].Info.Name != want {
				t.Errorf("tree[%d] = %s, want %s", i, tree[i].Info.Name, want)
			}
		}
	})

	t.Run("is_meta flag", func(t *testing.T) {
		dir := t.TempDir()
		hasMeta := filepath.Join(dir, "has_meta")
		noMeta := filepath.Join(dir, "no_meta")
		mkdir(t, hasMeta)
		mkdir(t, noMeta)
		writeConfig(t, hasMeta, ".meta", `{"projects": {}}`)
		writeConfig(t, dir, ".meta", `{"projects": {
			"has_meta": "git@github.com:org/has_meta.git",
			"no_meta": "git@github.com:org/no_meta.git"
		}}`)

		tree, err := WalkTree(dir, -1)
		if err != nil {
			t.Fatalf("WalkTree failed: %v", err)
		}
		byName := map[string]*TreeNode{}
		for _, n := range tree {
			byName[n.Info.Name] = n
		}
		if !byName["has_meta"].IsMeta {
			t.Error("has_meta.IsMeta = false, want true")
		}
		if byName["no_meta"].IsMeta {
			t.Error("no_meta.IsMeta = true, want false")
		}
	})

	t.Run("depth zero disables recursion", func(t *testing.T) {
		dir := t.TempDir()
		child := filepath.Join(dir, "child")
		mkdir(t, filepath.Join(child, "grandchild"))
		writeConfig(t, dir, ".meta", `{"projects": {"child": "git@github.com:org/child.git"}}`)
		writeConfig(t, child, ".meta", `{"projects": {"grandchild": "git@github.com:org/grandchild.git"}}`)

		tree, err := WalkTree(dir, 0)
		if err != nil {
			t.Fatalf("WalkTree failed: %v", err)
		}
		if len(tree) != 1 {
			t.Fatalf("len(tree) = %d, want 1", len(tree))
		}
		if !tree[0].IsMeta {
			t.Error("child.IsMeta = false, want true")
		}
		if len(tree[0].Children) != 0 {
			t.Errorf("children = %d, want 0 at depth 0", len(tree[0].Children))
		}
	})

	t.Run("nested meta with children", func(t *testing.T) {
		dir := t.TempDir()
		vendor := filepath.Join(dir, "vendor")
		mkdir(t, filepath.Join(vendor, "tree-sitter-markdown"))
		writeConfig(t, dir, ".meta",
			`{"projects": {"vendor": {"repo": "git@github.com:org/vendor.git", "meta": true}}}`)
		writeConfig(t, vendor, ".meta",
			`{"projects": {"tree-sitter-markdown": "git@github.com:org/tsm.git"}}`)

		tree, err := WalkTree(dir, -1)
		if err != nil {
			t.Fatalf("WalkTree failed: %v", err)
		}
		if len(tree) != 1 || !tree[0].IsMeta {
			t.Fatalf("unexpected tree shape: %+v", tree)
		}
		if len(tree[0].Children) != 1 {
			t.Fatalf("children = %d, want 1", len(tree[0].Children))
		}
		if tree[0].Children[0].Info.Name != "tree-sitter-markdown" {
			t.Errorf("child = %s", tree[0].Children[0].Info.Name)
		}
	})

	t.Run("missing project directory", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, ".meta", `{"projects": {"missing": "git@github.com:org/missing.git"}}`)

		tree, err := WalkTree(dir, -1)
		if err != nil {
			t.Fatalf("WalkTree failed: %v", err)
		}
		if len(tree) != 1 || tree[0].IsMeta || len(tree[0].Children) != 0 {
			t.Errorf("unexpected node for missing dir: %+v", tree[0])
		}
	})

	t.Run("malformed nested config skips subtree", func(t *testing.T) {
		dir := t.TempDir()
		vendor := filepath.Join(dir, "vendor")
		mkdir(t, vendor)
		writeConfig(t, dir, ".meta",
			`{"projects": {"vendor": {"repo": "git@github.com:org/vendor.git", "meta": true}}}`)
		writeConfig(t, vendor, ".meta", `{"projects": {this is not valid json}`)

		tree, err := WalkTree(dir, -1)
		if err != nil {
			t.Fatalf("WalkTree failed: %v", err)
		}
		if len(tree) != 1 {
			t.Fatalf("len(tree) = %d, want 1", len(tree))
		}
		if len(tree[0].Children) != 0 {
			t.Errorf("children = %d, want 0 for malformed nested config", len(tree[0].Children))
		}
	})

	t.Run("symlink cycle detection", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("symlinks not reliable on windows")
		}
		dir := t.TempDir()
		child := filepath.Join(dir, "child")
		mkdir(t, child)
		if err := os.Symlink(dir, filepath.Join(child, "loop")); err != nil {
			t.Fatalf("failed to create symlink: %v", err)
		}
		writeConfig(t, dir, ".meta", `{"projects": {"child": "git@github.com:org/child.git"}}`)
		writeConfig(t, child, ".meta", `{"projects": {"loop": "git@github.com:org/loop.git"}}`)

		// Must terminate; the cycle node appears but has no children.
		tree, err := WalkTree(dir, -1)
		if err != nil {
			t.Fatalf("WalkTree failed: %v", err)
		}
		paths := Flatten(tree)
		if len(paths) != 2 || paths[0] != "child" || paths[1] != "child/loop" {
			t.Errorf("paths = %v", paths)
		}
		if len(tree[0].Children[0].Children) != 0 {
			t.Error("cycle node has children, want none")
		}
	})
}

func TestFlatten(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if paths := Flatten(nil); len(paths) != 0 {
			t.Errorf("Flatten(nil) = %v", paths)
		}
	})

	t.Run("deeply nested", func(t *testing.T) {
		dir := t.TempDir()
		l1 := filepath.Join(dir, "l1")
		l2 := filepath.Join(l1, "l2")
		mkdir(t, filepath.Join(l2, "l3"))
		writeConfig(t, dir, ".meta", `{"projects": {"l1": "git@github.com:org/l1.git"}}`)
		writeConfig(t, l1, ".meta", `{"projects": {"l2": "git@github.com:org/l2.git"}}`)
		writeConfig(t, l2, ".meta", `{"projects": {"l3": "git@github.com:org/l3.git"}}`)

		tree, err := WalkTree(dir, -1)
		if err != nil {
			t.Fatalf("WalkTree failed: %v", err)
		}
		paths := Flatten(tree)
		want := []string{"l1", "l1/l2", "l1/l2/l3"}
		if len(paths) != len(want) {
			t.Fatalf("paths = %v, want %v", paths, want)
		}
		for i := range want {
			if paths[i] != want[i] {
				t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
			}
		}
	})
}

func TestBuildProjectMap(t *testing.T) {
	t.Run("empty tree", func(t *testing.T) {
		if m := BuildProjectMap(nil, t.TempDir(), ""); len(m) != 0 {
			t.Errorf("map = %v, want empty", m)
		}
	})

	t.Run("custom path keys", func(t *testing.T) {
		dir := t.TempDir()
		custom := filepath.Join(dir, "custom", "path", "to", "project")
		mkdir(t, custom)
		writeConfig(t, dir, ".meta",
			`{"projects": {"my-project": {"repo": "git@github.com:org/my-project.git", "path": "custom/path/to/project"}}}`)

		tree, err := WalkTree(dir, -1)
		if err != nil {
			t.Fatalf("WalkTree failed: %v", err)
		}
		m := BuildProjectMap(tree, dir, "")

		entry, ok := m["custom/path/to/project"]
		if !ok {
			t.Fatalf("map keys = %v, want custom/path/to/project", m)
		}
		if entry.Info.Name != "my-project" {
			t.Errorf("Name = %q", entry.Info.Name)
		}
		if entry.Dir != custom {
			t.Errorf("Dir = %q, want %q", entry.Dir, custom)
		}
	})

	t.Run("nested keys join parent paths", func(t *testing.T) {
		dir := t.TempDir()
		vendor := filepath.Join(dir, "vendor")
		mkdir(t, filepath.Join(vendor, "lib"))
		writeConfig(t, dir, ".meta",
			`{"projects": {"vendor": {"repo": "git@github.com:org/vendor.git", "meta": true}}}`)
		writeConfig(t, vendor, ".meta", `{"projects": {"lib": "git@github.com:org/lib.git"}}`)

		tree, err := WalkTree(dir, -1)
		if err != nil {
			t.Fatalf("WalkTree failed: %v", err)
		}
		m := BuildProjectMap(tree, dir, "")
		if _, ok := m["vendor"]; !ok {
			t.Error("missing key vendor")
		}
		if _, ok := m["vendor/lib"]; !ok {
			t.Error("missing key vendor/lib")
		}
	})
}
