package stream

import "context"

// StreamConsumer pulls judge requests from a message stream until its
// context is cancelled.
type StreamConsumer interface {
	Setup(ctx context.Context) error
	Start(ctx context.Context) error
	Stop() error
}
