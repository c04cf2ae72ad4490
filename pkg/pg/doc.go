// Package pg provides PostgreSQL connection helpers for the session store:
// pool setup with startup retries, goose migration application, error
// classification, and a health check closure.
package pg
