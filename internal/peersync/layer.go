package peersync

import (
	"fmt"
	"sort"
)

// ProtocolVersion is the sync protocol version used for compatibility
// checking between peers.
const ProtocolVersion = "1.0.0-alpha"

// LayerKind identifies one layer of the sync data model.
type LayerKind string

const (
	// LayerCanonical is the source of truth: commits, documents, metadata.
	// It is always shipped.
	LayerCanonical LayerKind = "canonical"
	// LayerEmbedding holds pre-computed vectors per content chunk.
	LayerEmbedding LayerKind = "embedding"
	// LayerIndexMeta holds search index metadata.
	LayerIndexMeta LayerKind = "index-meta"
	// LayerIndexData holds the search index structures themselves.
	LayerIndexData LayerKind = "index-data"
)

// LayerKinds returns all layer kinds in their canonical order.
func LayerKinds() []LayerKind {
	return []LayerKind{LayerCanonical, LayerEmbedding, LayerIndexMeta, LayerIndexData}
}

// Valid reports whether the kind is one of the known layers.
func (k LayerKind) Valid() bool {
	switch k {
	case LayerCanonical, LayerEmbedding, LayerIndexMeta, LayerIndexData:
		return true
	}
	return false
}

// ParseLayerKind converts a string to a LayerKind.
func ParseLayerKind(s string) (LayerKind, error) {
	k := LayerKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown layer kind %q", s)
	}
	return k, nil
}

// Layer describes one layer's current content: its kind, content hash,
// and size in bytes.
type Layer struct {
	Kind LayerKind   `json:"kind"`
	Hash ContentHash `json:"hash"`
	Size uint64      `json:"size"`
}

// NewLayer constructs a Layer.
func NewLayer(kind LayerKind, hash ContentHash, size uint64) Layer {
	return Layer{Kind: kind, Hash: hash, Size: size}
}

// LayerSet holds at most one Layer per kind.
type LayerSet struct {
	layers map[LayerKind]Layer
}

// NewLayerSet returns an empty LayerSet.
func NewLayerSet() *LayerSet {
	return &LayerSet{layers: make(map[LayerKind]Layer)}
}

// Set inserts or replaces the layer for its kind.
func (s *LayerSet) Set(layer Layer) {
	s.layers[layer.Kind] = layer
}

// Get returns the layer for a kind, if present.
func (s *LayerSet) Get(kind LayerKind) (Layer, bool) {
	l, ok := s.layers[kind]
	return l, ok
}

// Len returns the number of layers in the set.
func (s *LayerSet) Len() int {
	return len(s.layers)
}

// Kinds returns the kinds present in the set, sorted in canonical order.
func (s *LayerSet) Kinds() []LayerKind {
	order := map[LayerKind]int{}
	for i, k := range LayerKinds() {
		order[k] = i
	}
	kinds := make([]LayerKind, 0, len(s.layers))
	for k := range s.layers {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		return order[kinds[i]] < order[kinds[j]]
	})
	return kinds
}

// TotalSize returns the combined size of all layers in bytes.
func (s *LayerSet) TotalSize() uint64 {
	var total uint64
	for _, l := range s.layers {
		total += l.Size
	}
	return total
}

// LayerDiff describes how a layer set changed relative to another.
type LayerDiff struct {
	// Added kinds exist in the new set but not the old.
	Added []LayerKind
	// Removed kinds exist in the old set but not the new.
	Removed []LayerKind
	// Changed kinds exist in both with different content hashes.
	Changed []LayerKind
}

// Empty reports whether the diff contains no changes.
func (d LayerDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Diff compares s (the new state) against old, reporting which layers
// were added, removed, or changed. Hash comparison is constant time.
func (s *LayerSet) Diff(old *LayerSet) LayerDiff {
	var diff LayerDiff
	for _, kind := range LayerKinds() {
		newLayer, inNew := s.Get(kind)
		oldLayer, inOld := old.Get(kind)
		switch {
		case inNew && !inOld:
			diff.Added = append(diff.Added, kind)
		case !inNew && inOld:
			diff.Removed = append(diff.Removed, kind)
		case inNew && inOld && !newLayer.Hash.Equal(oldLayer.Hash):
			diff.Changed = append(diff.Changed, kind)
		}
	}
	return diff
}
