package ports

import "context"

// EventPublisher publishes auth audit events for other services
type EventPublisher interface {
	PublishLogin(ctx context.Context, userID int64, address string) error
	PublishLogout(ctx context.Context, address string) error
}
