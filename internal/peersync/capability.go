package peersync

import "fmt"

// Capability is an individual operation a peer can perform.
type Capability string

const (
	// CapGenerateEmbeddings: can compute embeddings from content.
	CapGenerateEmbeddings Capability = "generate-embeddings"
	// CapBuildIndex: can build search indices from embeddings.
	CapBuildIndex Capability = "build-index"
	// CapShipEmbeddings: can ship embeddings to peers.
	CapShipEmbeddings Capability = "ship-embeddings"
	// CapShipIndex: can ship index data to peers.
	CapShipIndex Capability = "ship-index"
	// CapReceiveEmbeddings: can receive and use shipped embeddings.
	CapReceiveEmbeddings Capability = "receive-embeddings"
	// CapReceiveIndex: can receive and use shipped indices.
	CapReceiveIndex Capability = "receive-index"
	// CapSemanticSearch: can answer semantic search queries locally.
	CapSemanticSearch Capability = "semantic-search"
)

// Tier is a named bundle of capabilities for common peer configurations.
type Tier string

const (
	// TierFull peers generate, ship, and receive everything.
	TierFull Tier = "full"
	// TierLite peers receive and search but do not generate.
	TierLite Tier = "lite"
	// TierThin peers are receive-only with no local search.
	TierThin Tier = "thin"
)

// ParseTier converts a string to a Tier.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierFull, TierLite, TierThin:
		return Tier(s), nil
	}
	return "", fmt.Errorf("unknown capability tier %q (expected full, lite, or thin)", s)
}

// Capabilities returns the capabilities included in this tier.
func (t Tier) Capabilities() []Capability {
	switch t {
	case TierFull:
		return []Capability{
			CapGenerateEmbeddings,
			CapBuildIndex,
			CapShipEmbeddings,
			CapShipIndex,
			CapReceiveEmbeddings,
			CapReceiveIndex,
			CapSemanticSearch,
		}
	case TierLite:
		return []Capability{
			CapReceiveEmbeddings,
			CapReceiveIndex,
			CapSemanticSearch,
		}
	case TierThin:
		return []Capability{
			CapReceiveEmbeddings,
			CapReceiveIndex,
		}
	}
	return nil
}

// Override toggles one capability on or off regardless of tier.
type Override struct {
	Capability Capability `json:"capability"`
	Enabled    bool       `json:"enabled"`
}

// PeerCapability is a peer's declared capability set.
type PeerCapability struct {
	// PeerID uniquely identifies the peer.
	PeerID string `json:"peer_id"`
	// Tier is the base capability bundle.
	Tier Tier `json:"tier"`
	// Overrides add or remove individual capabilities on top of the tier.
	Overrides []Override `json:"overrides,omitempty"`
	// ProtocolVersion the peer speaks.
	ProtocolVersion string `json:"protocol_version"`
}

// NewPeerCapability creates a capability set for a peer at the given tier,
// speaking the current protocol version.
func NewPeerCapability(peerID string, tier Tier) PeerCapability {
	return PeerCapability{
		PeerID:          peerID,
		Tier:            tier,
		ProtocolVersion: ProtocolVersion,
	}
}

// WithOverride returns a copy with an additional capability override.
func (p PeerCapability) WithOverride(cap Capability, enabled bool) PeerCapability {
	overrides := make([]Override, len(p.Overrides), len(p.Overrides)+1)
	copy(overrides, p.Overrides)
	p.Overrides = append(overrides, Override{Capability: cap, Enabled: enabled})
	return p
}

// Has reports whether the peer has a capability, with overrides taking
// precedence over the tier.
func (p PeerCapability) Has(cap Capability) bool {
	for _, o := range p.Overrides {
		if o.Capability == cap {
			return o.Enabled
		}
	}
	for _, c := range p.Tier.Capabilities() {
		if c == cap {
			return true
		}
	}
	return false
}

// CanGenerate reports whether the peer can produce a layer locally.
// Canonical data is never generated.
func (p PeerCapability) CanGenerate(kind LayerKind) bool {
	switch kind {
	case LayerEmbedding:
		return p.Has(CapGenerateEmbeddings)
	case LayerIndexMeta, LayerIndexData:
		return p.Has(CapBuildIndex)
	}
	return false
}

// CanReceive reports whether the peer can accept a shipped layer.
// Every peer can receive canonical data.
func (p PeerCapability) CanReceive(kind LayerKind) bool {
	switch kind {
	case LayerCanonical:
		return true
	case LayerEmbedding:
		return p.Has(CapReceiveEmbeddings)
	case LayerIndexMeta, LayerIndexData:
		return p.Has(CapReceiveIndex)
	}
	return false
}

// SyncPlan is the outcome of capability negotiation: which layers the
// source ships and which the target generates locally.
type SyncPlan struct {
	ShipLayers     []LayerKind `json:"ship_layers"`
	GenerateLayers []LayerKind `json:"generate_layers"`
}

// Negotiate decides what the source ships to the target. Canonical data
// is always shipped; derived layers are shipped only when the target can
// receive them but cannot generate them itself.
func Negotiate(source, target PeerCapability) SyncPlan {
	plan := SyncPlan{ShipLayers: []LayerKind{LayerCanonical}}

	if target.CanReceive(LayerEmbedding) {
		if target.CanGenerate(LayerEmbedding) {
			plan.GenerateLayers = append(plan.GenerateLayers, LayerEmbedding)
		} else {
			plan.ShipLayers = append(plan.ShipLayers, LayerEmbedding)
		}
	}

	if target.CanReceive(LayerIndexData) {
		if target.CanGenerate(LayerIndexData) {
			plan.GenerateLayers = append(plan.GenerateLayers, LayerIndexData)
		} else {
			plan.ShipLayers = append(plan.ShipLayers, LayerIndexMeta, LayerIndexData)
		}
	}

	return plan
}

// Ships reports whether the plan ships a given layer kind.
func (p SyncPlan) Ships(kind LayerKind) bool {
	for _, k := range p.ShipLayers {
		if k == kind {
			return true
		}
	}
	return false
}

// Generates reports whether the plan expects the target to generate a
// given layer kind.
func (p SyncPlan) Generates(kind LayerKind) bool {
	for _, k := range p.GenerateLayers {
		if k == kind {
			return true
		}
	}
	return false
}
