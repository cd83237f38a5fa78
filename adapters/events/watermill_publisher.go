package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/siggy-land/siggy/ports"
)

const (
	LoginTopic  = "siggy.auth.login"
	LogoutTopic = "siggy.auth.logout"
)

// LoginEvent is published after a wallet signs in
type LoginEvent struct {
	UserID  int64  `json:"user_id"`
	Address string `json:"address"`
	At      int64  `json:"at"`
}

// LogoutEvent is published when a session cookie is cleared
type LogoutEvent struct {
	Address string `json:"address,omitempty"`
	At      int64  `json:"at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	now       func() time.Time
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		now:       time.Now,
	}
}

// PublishLogin publishes a login event
func (p *WatermillPublisher) PublishLogin(ctx context.Context, userID int64, address string) error {
	return p.publish(ctx, LoginTopic, LoginEvent{
		UserID:  userID,
		Address: address,
		At:      p.now().UnixMilli(),
	})
}

// PublishLogout publishes a logout event
func (p *WatermillPublisher) PublishLogout(ctx context.Context, address string) error {
	return p.publish(ctx, LogoutTopic, LogoutEvent{
		Address: address,
		At:      p.now().UnixMilli(),
	})
}

func (p *WatermillPublisher) publish(ctx context.Context, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) PublishLogin(context.Context, int64, string) error { return nil }
func (NopPublisher) PublishLogout(context.Context, string) error       { return nil }
