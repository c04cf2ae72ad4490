// Package mongo provides MongoDB connection helpers for the session store:
// client setup with startup retries and a health check closure.
package mongo
