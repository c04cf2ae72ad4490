// Package redis provides Redis connection helpers for the session store:
// client setup with startup retries and a health check closure, wrapping
// the go-redis client.
package redis
