package ports

import "context"

// Notifier fans a committed lot event out to external observers. The durable
// event row is already written inside the mutation's transaction; publishing
// here is post-commit and best effort.
type Notifier interface {
	Publish(ctx context.Context, event LotEvent) error
}
