package repositories

import "errors"

var (
	// ErrUnauthorized is returned when the gateway rejects the credentials.
	ErrUnauthorized = errors.New("gateway rejected credentials")
	// ErrMalformedResponse is returned when a gateway reply does not match
	// its declared shape.
	ErrMalformedResponse = errors.New("malformed gateway response")
	ErrSessionNotFound   = errors.New("session not found")
	ErrMediaNotFound     = errors.New("media not found")
)
