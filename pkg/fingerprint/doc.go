// Package fingerprint derives a stable, opaque identity for a client device
// from connection metadata.
//
// A Generator is constructed with a TrustMode that decides which attributes
// participate in the identity:
//
//   - TrustModeStrict combines the client agent string with the network
//     address, so a session is only recognized from the same agent at the
//     same address. Appropriate when client IPs are stable.
//   - TrustModeRelaxed uses the client agent alone. Appropriate behind NAT
//     or rotating egress proxies, at the cost of weaker device binding.
//
// The identity is the hex encoding of the first 16 bytes of a SHA-256
// digest over the participating components, which is deterministic and
// collision-resistant enough to distinguish devices in practice.
//
// # Usage
//
//	gen, err := fingerprint.New(fingerprint.TrustModeStrict)
//	if err != nil {
//	    // invalid mode
//	}
//	fp := gen.Generate(r.UserAgent(), clientip.GetIP(r))
//
// The trust mode is fixed at construction and never read from ambient
// environment state on the hot path.
package fingerprint
