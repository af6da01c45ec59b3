package messaging

import "context"

// Broker is a publish/subscribe transport for appointment lifecycle
// events. Delivery is at-most-once per subscriber: the outbox table is
// the durable record, the broker only fans out.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}
