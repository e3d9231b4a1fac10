package domain

import "errors"

var (
	// ErrSourceUnavailable marks a collector that could not reach its source.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrMalformedOutput marks generative output that failed validation.
	ErrMalformedOutput = errors.New("malformed generative output")
	// ErrPersistence marks a failed write to the backing store.
	ErrPersistence = errors.New("persistence failure")
	// ErrChannelClosed is returned when emitting after a terminal event.
	ErrChannelClosed = errors.New("status channel already terminated")
	// ErrInvalidTransition is returned for a backwards or skipped stage move.
	ErrInvalidTransition = errors.New("invalid stage transition")
)
