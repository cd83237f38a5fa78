package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg := <-ch:
		msg.Ack()
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestPublishLoginAndLogout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubsub.Close()

	logins, err := pubsub.Subscribe(ctx, LoginTopic)
	require.NoError(t, err)
	logouts, err := pubsub.Subscribe(ctx, LogoutTopic)
	require.NoError(t, err)

	p := NewWatermillPublisher(pubsub).(*WatermillPublisher)
	p.now = func() time.Time { return time.UnixMilli(42) }

	require.NoError(t, p.PublishLogin(ctx, 7, "0xabc"))

	var login LoginEvent
	require.NoError(t, json.Unmarshal(receive(t, logins).Payload, &login))
	assert.Equal(t, LoginEvent{UserID: 7, Address: "0xabc", At: 42}, login)

	require.NoError(t, p.PublishLogout(ctx, "0xabc"))

	var logout LogoutEvent
	require.NoError(t, json.Unmarshal(receive(t, logouts).Payload, &logout))
	assert.Equal(t, LogoutEvent{Address: "0xabc", At: 42}, logout)
}

type failingPublisher struct{}

func (failingPublisher) Publish(string, ...*message.Message) error { return errors.New("broker down") }
func (failingPublisher) Close() error                              { return nil }

func TestPublishErrorIsWrapped(t *testing.T) {
	p := NewWatermillPublisher(failingPublisher{})
	err := p.PublishLogin(context.Background(), 1, "0xabc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}
