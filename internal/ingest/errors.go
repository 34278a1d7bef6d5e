package ingest

import "errors"

// Sentinel errors for decoding. Both are non-retryable: the caller drops
// the message.
var (
	// ErrMalformedTopic is returned when a topic does not match the
	// labcheck/{externalID}/{door|entrance|event} grammar.
	ErrMalformedTopic = errors.New("ingest: malformed topic")

	// ErrInvalidPayload is returned when a payload cannot be interpreted
	// for its topic family.
	ErrInvalidPayload = errors.New("ingest: invalid payload")
)
