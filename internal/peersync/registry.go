package peersync

import (
	"sort"

	"github.com/metarepo/metactl/internal/datadir"
	"github.com/metarepo/metactl/internal/errors"
	"github.com/metarepo/metactl/internal/store"
)

// registryNamespace is the data-dir namespace holding known peers.
const registryNamespace = "peers"

// registryDoc is the persisted shape of the peer registry.
type registryDoc struct {
	Peers map[string]PeerCapability `json:"peers,omitempty"`
}

// Registry persists the set of known peers in the metactl data directory,
// guarded by the namespace lock so concurrent metactl invocations never
// lose registrations.
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

// Add registers or replaces a peer.
func (r *Registry) Add(peer PeerCapability) error {
	if peer.PeerID == "" {
		return errors.NewValidationError("peer id must not be empty").WithField("peer_id")
	}
	return store.Update(r.dataPath, r.lockPath, func(doc *registryDoc) {
		if doc.Peers == nil {
			doc.Peers = make(map[string]PeerCapability)
		}
		doc.Peers[peer.PeerID] = peer
	})
}

// Remove deletes a peer. Removing an unknown peer is an error.
func (r *Registry) Remove(peerID string) error {
	var found bool
	err := store.Update(r.dataPath, r.lockPath, func(doc *registryDoc) {
		if _, ok := doc.Peers[peerID]; ok {
			found = true
			delete(doc.Peers, peerID)
		}
	})
	if err != nil {
		return err
	}
	if !found {
		return errors.NewNotFoundError("peer", peerID).WithCause(errors.ErrPeerNotFound)
	}
	return nil
}

// Get returns a registered peer.
func (r *Registry) Get(peerID string) (PeerCapability, error) {
	doc, err := store.Read[registryDoc](r.dataPath)
	if err != nil {
		return PeerCapability{}, err
	}
	peer, ok := doc.Peers[peerID]
	if !ok {
		return PeerCapability{}, errors.NewNotFoundError("peer", peerID).WithCause(errors.ErrPeerNotFound)
	}
	return peer, nil
}

// List returns all registered peers sorted by ID.
func (r *Registry) List() ([]PeerCapability, error) {
	doc, err := store.Read[registryDoc](r.dataPath)
	if err != nil {
		return nil, err
	}
	peers := make([]PeerCapability, 0, len(doc.Peers))
	for _, p := range doc.Peers {
		peers = append(peers, p)
	}
	sort.Slice(peers, func(i, j int) bool {
		return peers[i].PeerID < peers[j].PeerID
	})
	return peers, nil
}
