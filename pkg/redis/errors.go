package redis

import "errors"

var (
	// ErrFailedToParseConnString indicates an invalid Redis connection URL.
	ErrFailedToParseConnString = errors.New("redis.invalid_connection_string")

	// ErrRedisNotReady indicates all connection attempts failed.
	ErrRedisNotReady = errors.New("redis.not_ready")

	// ErrHealthcheckFailed indicates the server did not answer a ping.
	ErrHealthcheckFailed = errors.New("redis.healthcheck_failed")
)
