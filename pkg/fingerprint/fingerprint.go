package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// TrustMode controls which client attributes participate in the device
// identity.
type TrustMode string

const (
	// TrustModeStrict derives the identity from both the client agent and
	// the network address. A device is only "the same" when both match.
	TrustModeStrict TrustMode = "strict"

	// TrustModeRelaxed derives the identity from the client agent alone.
	// Intended for deployments behind address-translating intermediaries
	// where the visible address rotates between requests.
	TrustModeRelaxed TrustMode = "relaxed"
)

// Valid reports whether m is a recognized trust mode.
func (m TrustMode) Valid() bool {
	return m == TrustModeStrict || m == TrustModeRelaxed
}

// Generator produces deterministic device fingerprints under a fixed trust
// mode. The mode is set at construction; the hot path never consults
// ambient environment state.
type Generator struct {
	mode TrustMode
}

// New creates a Generator for the given trust mode.
// Unrecognized modes fail here so misconfiguration is caught at startup
// rather than producing silently wrong identities.
func New(mode TrustMode) (*Generator, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTrustMode, mode)
	}
	return &Generator{mode: mode}, nil
}

// Mode returns the generator's trust mode.
func (g *Generator) Mode() TrustMode {
	return g.mode
}

// Generate derives the device identity from the client agent string and the
// network address. The result is a 32-character hex string: the first
// 16 bytes of a SHA-256 digest over the participating components.
func (g *Generator) Generate(clientAgent, networkAddress string) string {
	components := []string{clientAgent}
	if g.mode == TrustModeStrict {
		components = append(components, networkAddress)
	}

	var filtered []string
	for _, c := range components {
		if c = strings.TrimSpace(c); c != "" {
			filtered = append(filtered, c)
		}
	}

	hash := sha256.Sum256([]byte(strings.Join(filtered, "|")))
	return hex.EncodeToString(hash[:16])
}

// Match reports whether the given client attributes reproduce the stored
// fingerprint. Comparison is constant-time to avoid leaking prefix
// information through timing.
func (g *Generator) Match(stored, clientAgent, networkAddress string) bool {
	current := g.Generate(clientAgent, networkAddress)
	if len(stored) != len(current) {
		return false
	}
	var diff byte
	for i := 0; i < len(stored); i++ {
		diff |= stored[i] ^ current[i]
	}
	return diff == 0
}
