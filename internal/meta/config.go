// Package meta finds and parses .meta configuration files and walks the
// project tree they describe.
//
// A meta repository lists its member projects in a .meta file at its root.
// Both JSON (.meta, .meta.json) and YAML (.meta.yaml, .meta.yml) formats
// are supported, and a project entry is either a bare git URL string or an
// extended object carrying path, tags, and dependency information.
package meta

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/metarepo/metactl/internal/errors"
)

// Format identifies the serialization format of a config file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// String returns the lowercase format name.
func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// configNames lists the recognized config file names in lookup order.
var configNames = []struct {
	name   string
	format Format
}{
	{".meta", FormatJSON},
	{".meta.json", FormatJSON},
	{".meta.yaml", FormatYAML},
	{".meta.yml", FormatYAML},
}

// Project is a normalized project entry from a .meta config.
type Project struct {
	Name string `json:"name"`
	Path string `json:"path"`
	// Git remote URL. Empty for placeholder projects that cannot be cloned.
	Repo      string   `json:"repo,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Provides  []string `json:"provides,omitempty"`
	DependsOn []string `json:"depends_on,omitempty"`
	// Meta marks a project that carries its own nested .meta config.
	Meta bool `json:"meta,omitempty"`
}

// HasRepo reports whether the project has a git URL and can be cloned.
func (p Project) HasRepo() bool {
	return p.Repo != ""
}

// Defaults holds the defaults section of a .meta config.
type Defaults struct {
	// Parallel controls whether commands run across projects concurrently.
	Parallel bool
}

// DefaultSettings returns the defaults applied when a config has no
// defaults section.
func DefaultSettings() Defaults {
	return Defaults{Parallel: true}
}

// entry is the raw on-disk form of a project: either a bare URL string or
// an extended object.
type entry struct {
	Repo      string
	Path      string
	Tags      []string
	Provides  []string
	DependsOn []string
	Meta      bool
}

type entryObject struct {
	Repo      string   `json:"repo" yaml:"repo"`
	Path      string   `json:"path" yaml:"path"`
	Tags      []string `json:"tags" yaml:"tags"`
	Provides  []string `json:"provides" yaml:"provides"`
	DependsOn []string `json:"depends_on" yaml:"depends_on"`
	Meta      bool     `json:"meta" yaml:"meta"`
}

func (e *entry) fromObject(obj entryObject) {
	e.Repo = obj.Repo
	e.Path = obj.Path
	e.Tags = obj.Tags
	e.Provides = obj.Provides
	e.DependsOn = obj.DependsOn
	e.Meta = obj.Meta
}

// UnmarshalJSON accepts either a git URL string or an extended object.
func (e *entry) UnmarshalJSON(data []byte) error {
	var url string
	if err := json.Unmarshal(data, &url); err == nil {
		e.Repo = url
		return nil
	}

	var obj entryObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	e.fromObject(obj)
	return nil
}

// UnmarshalYAML accepts either a git URL string or an extended object.
func (e *entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var url string
		if err := node.Decode(&url); err != nil {
			return err
		}
		e.Repo = url
		return nil
	}

	var obj entryObject
	if err := node.Decode(&obj); err != nil {
		return err
	}
	e.fromObject(obj)
	return nil
}

// configFile is the raw structure of a .meta file.
type configFile struct {
	Projects map[string]entry `json:"projects" yaml:"projects"`
	Ignore   []string         `json:"ignore" yaml:"ignore"`
	Defaults struct {
		Parallel *bool `json:"parallel" yaml:"parallel"`
	} `json:"defaults" yaml:"defaults"`
	// Custom directory for worktrees (overrides the default .worktrees/).
	WorktreesDir string `json:"worktrees_dir" yaml:"worktrees_dir"`
}

// FindConfigIn checks a single directory for a meta config file.
// Unlike FindConfig it does not walk up the directory tree.
func FindConfigIn(dir string) (string, Format, bool) {
	for _, c := range configNames {
		candidate := filepath.Join(dir, c.name)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, c.format, true
		}
	}
	return "", FormatJSON, false
}

// FindConfig locates a meta config file, walking up from startDir to the
// filesystem root. If configName is non-empty only that filename is
// considered, with the format inferred from its extension.
func FindConfig(startDir, configName string) (string, Format, bool) {
	type candidate struct {
		name   string
		format Format
	}

	var candidates []candidate
	if configName != "" {
		format := FormatJSON
		if strings.HasSuffix(configName, ".yaml") || strings.HasSuffix(configName, ".yml") {
			format = FormatYAML
		}
		candidates = []candidate{{configName, format}}
	} else {
		for _, c := range configNames {
			candidates = append(candidates, candidate{c.name, c.format})
		}
	}

	dir := startDir
	for {
		for _, c := range candidates {
			path := filepath.Join(dir, c.name)
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				return path, c.format, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", FormatJSON, false
		}
		dir = parent
	}
}

// ParseConfig reads and parses a meta config file, returning the
// normalized projects sorted by name and the ignore list.
func ParseConfig(path string) ([]Project, []string, error) {
	cfg, err := readConfigFile(path)
	if err != nil {
		return nil, nil, err
	}

	projects := make([]Project, 0, len(cfg.Projects))
	for name, e := range cfg.Projects {
		p := Project{
			Name:      name,
			Path:      e.Path,
			Repo:      e.Repo,
			Tags:      e.Tags,
			Provides:  e.Provides,
			DependsOn: e.DependsOn,
			Meta:      e.Meta,
		}
		if p.Path == "" {
			p.Path = name
		}
		projects = append(projects, p)
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].Name < projects[j].Name
	})

	return projects, cfg.Ignore, nil
}

// LoadDefaults reads the defaults section of the config in dir.
// Missing or unparseable configs yield the standard defaults; commands
// that only need defaults must not fail on a broken project list.
func LoadDefaults(dir string) Defaults {
	path, _, ok := FindConfigIn(dir)
	if !ok {
		return DefaultSettings()
	}

	cfg, err := readConfigFile(path)
	if err != nil {
		return DefaultSettings()
	}

	d := DefaultSettings()
	if cfg.Defaults.Parallel != nil {
		d.Parallel = *cfg.Defaults.Parallel
	}
	return d
}

// WorktreesDir returns the configured worktrees directory for the meta
// repo at dir, or the provided fallback when unset.
func WorktreesDir(dir, fallback string) string {
	path, _, ok := FindConfigIn(dir)
	if !ok {
		return fallback
	}
	cfg, err := readConfigFile(path)
	if err != nil || cfg.WorktreesDir == "" {
		return fallback
	}
	return cfg.WorktreesDir
}

func readConfigFile(path string) (*configFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("failed to read meta config", err).WithPath(path)
	}

	var cfg configFile
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.NewConfigError("failed to parse YAML meta config", err).WithPath(path)
		}
	} else {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, errors.NewConfigError("failed to parse JSON meta config", err).WithPath(path)
		}
	}
	return &cfg, nil
}

// configDirError builds the error for a missing config during tree walks.
func configDirError(dir string) error {
	return errors.NewConfigError(
		fmt.Sprintf("no .meta config found in %s", dir),
		errors.ErrConfigNotFound,
	).WithPath(dir)
}
