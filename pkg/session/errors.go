package session

import "errors"

var (
	// ErrSessionNotFound indicates no session row matched the query.
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrSessionConflict indicates a creation violated the store's
	// uniqueness constraint on (user, access credential).
	ErrSessionConflict = errors.New("session.conflict")

	// ErrInvalidSession indicates malformed input (missing user or
	// credential).
	ErrInvalidSession = errors.New("session.invalid")
)
