package mq

import "context"

// Publisher sends opaque payloads to a named queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, data []byte, attrs map[string]string) (string, error)
	Close() error
}
