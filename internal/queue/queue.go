package queue

import "context"

// StatusQueueName is the queue delivery status events are published to for
// downstream consumers (billing, analytics, tenant notification fan-out).
const StatusQueueName = "sms.delivery.status"

// Publisher publishes delivery status events.
type Publisher interface {
	Publish(ctx context.Context, event StatusEvent) error
	Close() error
}
