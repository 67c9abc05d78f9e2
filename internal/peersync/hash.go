// Package peersync implements the capability model, content hashing, and
// layer bookkeeping for syncing meta-repository data between peers.
//
// Sync data is organized in layers: canonical data is always shipped,
// while embeddings and index structures are shipped or regenerated
// depending on what the receiving peer is capable of. Change detection
// uses BLAKE3 content hashes.
package peersync

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"

	"lukechampine.com/blake3"
)

// HashLen is the length of a content hash in bytes.
const HashLen = 32

// ContentHash is a 256-bit BLAKE3 digest identifying a piece of content.
type ContentHash [HashLen]byte

// HashContent hashes in-memory content.
func HashContent(content []byte) ContentHash {
	return ContentHash(blake3.Sum256(content))
}

// HashReader hashes content from a reader incrementally, reading in 64 KiB
// chunks so large files never need to be held in memory.
func HashReader(r io.Reader) (ContentHash, error) {
	h := blake3.New(HashLen, nil)
	buf := make([]byte, 64*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return ContentHash{}, err
		}
	}
	var out ContentHash
	copy(out[:], h.Sum(nil))
	return out, nil
}

// HashMulti hashes multiple parts as one stream, equivalent to hashing
// their concatenation.
func HashMulti(parts ...[]byte) ContentHash {
	h := blake3.New(HashLen, nil)
	for _, part := range parts {
		h.Write(part)
	}
	var out ContentHash
	copy(out[:], h.Sum(nil))
	return out
}

// HashKeyed computes a keyed hash (MAC) for authenticating content from
// untrusted sources.
func HashKeyed(key *[HashLen]byte, content []byte) ContentHash {
	h := blake3.New(HashLen, key[:])
	h.Write(content)
	var out ContentHash
	copy(out[:], h.Sum(nil))
	return out
}

// ParseHash parses a lowercase or uppercase 64-character hex string.
func ParseHash(s string) (ContentHash, error) {
	if len(s) != HashLen*2 {
		return ContentHash{}, fmt.Errorf("invalid hash length: expected %d, got %d", HashLen*2, len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return ContentHash{}, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	var out ContentHash
	copy(out[:], raw)
	return out, nil
}

// Hex returns the lowercase hex encoding of the hash.
func (h ContentHash) Hex() string {
	return hex.EncodeToString(h[:])
}

// String implements fmt.Stringer.
func (h ContentHash) String() string {
	return h.Hex()
}

// Equal compares two hashes in constant time.
func (h ContentHash) Equal(other ContentHash) bool {
	return subtle.ConstantTimeCompare(h[:], other[:]) == 1
}

// MarshalText encodes the hash as hex for JSON and YAML.
func (h ContentHash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText decodes a hex-encoded hash.
func (h *ContentHash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
