// Package worktree tracks the worktrees checked out across a meta
// repository in a shared registry.
//
// The registry lives in the metactl data directory and is mutated through
// the lock-protected store, so any number of concurrent metactl processes
// can register and remove worktrees without losing entries.
package worktree

import (
	"sort"
	"time"

	"github.com/metarepo/metactl/internal/datadir"
	"github.com/metarepo/metactl/internal/errors"
	"github.com/metarepo/metactl/internal/store"
)

// registryNamespace is the data-dir namespace holding worktree state.
const registryNamespace = "worktrees"

// Info describes one registered worktree.
type Info struct {
	// Name is the registry key, unique across all projects.
	Name string `json:"name"`
	// Path is the worktree's checkout location.
	Path string `json:"path"`
	// Branch checked out in the worktree.
	Branch string `json:"branch"`
	// Project is the meta-repo project the worktree belongs to.
	Project string `json:"project,omitempty"`
	// CreatedAt records when the worktree was registered.
	CreatedAt time.Time `json:"created_at"`
}

// registryDoc is the persisted shape of the registry.
type registryDoc struct {
	Worktrees map[string]Info `json:"worktrees,omitempty"`
}

// Registry persists worktree registrations in the data directory.
type Registry struct {
	dataPath string
	lockPath string
}

// OpenRegistry resolves the registry's data and lock paths inside the
// data directory.
func OpenRegistry() (*Registry, error) {
	dataPath, err := datadir.DataFile(registryNamespace)
	if err != nil {
		return nil, err
	}
	lockPath, err := datadir.LockFile(registryNamespace)
	if err != nil {
		return nil, err
	}
	return &Registry{dataPath: dataPath, lockPath: lockPath}, nil
}

// Add registers a new worktree. Registering a name that already exists is
// an error; existing entries are never silently overwritten.
func (r *Registry) Add(info Info) error {
	if info.Name == "" {
		return errors.NewValidationError("worktree name must not be empty").WithField("name")
	}
	if info.Path == "" {
		return errors.NewValidationError("worktree path must not be empty").WithField("path")
	}
	if info.CreatedAt.IsZero() {
		info.CreatedAt = time.Now().UTC()
	}

	var exists bool
	err := store.Update(r.dataPath, r.lockPath, func(doc *registryDoc) {
		if doc.Worktrees == nil {
			doc.Worktrees = make(map[string]Info)
		}
		if _, ok := doc.Worktrees[info.Name]; ok {
			exists = true
			return
		}
		doc.Worktrees[info.Name] = info
	})
	if err != nil {
		return err
	}
	if exists {
		return errors.NewAlreadyExistsError("worktree", info.Name).WithCause(errors.ErrWorktreeExists)
	}
	return nil
}

// Remove deletes a registration. Removing an unknown worktree is an error.
func (r *Registry) Remove(name string) error {
	var found bool
	err := store.Update(r.dataPath, r.lockPath, func(doc *registryDoc) {
		if _, ok := doc.Worktrees[name]; ok {
			found = true
			delete(doc.Worktrees, name)
		}
	})
	if err != nil {
		return err
	}
	if !found {
		return errors.NewNotFoundError("worktree", name).WithCause(errors.ErrWorktreeNotFound)
	}
	return nil
}

// Get returns a registered worktree.
func (r *Registry) Get(name string) (Info, error) {
	doc, err := store.Read[registryDoc](r.dataPath)
	if err != nil {
		return Info{}, err
	}
	info, ok := doc.Worktrees[name]
	if !ok {
		return Info{}, errors.NewNotFoundError("worktree", name).WithCause(errors.ErrWorktreeNotFound)
	}
	return info, nil
}

// List returns all registered worktrees sorted by name.
func (r *Registry) List() ([]Info, error) {
	doc, err := store.Read[registryDoc](r.dataPath)
	if err != nil {
		return nil, err
	}
	infos := make([]Info, 0, len(doc.Worktrees))
	for _, info := range doc.Worktrees {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos, nil
}
