package publisher

import "context"

// Publisher represents a service for publishing messages
type Publisher interface {
	// Publish publishes a message of the given kind to the stream
	Publish(ctx context.Context, kind string, message []byte) error

	// TrimStreams trims the stream to the configured maximum length
	TrimStreams(ctx context.Context) error

	// Close closes the publisher connection
	Close() error
}

// NopPublisher drops every message. It is used when no stream is configured.
type NopPublisher struct{}

// Publish discards the message
func (NopPublisher) Publish(ctx context.Context, kind string, message []byte) error { return nil }

// TrimStreams does nothing
func (NopPublisher) TrimStreams(ctx context.Context) error { return nil }

// Close does nothing
func (NopPublisher) Close() error { return nil }
