package fingerprint

import "errors"

var (
	// ErrInvalidTrustMode indicates an unrecognized trust mode value.
	ErrInvalidTrustMode = errors.New("fingerprint.invalid_trust_mode")
)
