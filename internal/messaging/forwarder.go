package messaging

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/events"
)

// Broker is the outbound side of Publisher.
type Broker interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Forwarder relays dispatcher events to a broker, using the event type as routing key.
type Forwarder struct {
	dispatcher events.Dispatcher
	broker     Broker
	logger     *zap.Logger
}

// NewForwarder creates the forwarder.
func NewForwarder(dispatcher events.Dispatcher, broker Broker, logger *zap.Logger) *Forwarder {
	return &Forwarder{dispatcher: dispatcher, broker: broker, logger: logger}
}

// RegisterHandlers subscribes to every domain event type.
func (f *Forwarder) RegisterHandlers() {
	if f.dispatcher == nil || f.broker == nil {
		return
	}
	for _, eventType := range events.AllTypes {
		f.dispatcher.Subscribe(eventType, f.forward)
	}
}

func (f *Forwarder) forward(ctx context.Context, event events.Event) error {
	if err := f.broker.Publish(ctx, string(event.Type), event); err != nil {
		f.logger.Warn("forward event failed",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.EventID),
			zap.Error(err))
		return err
	}
	return nil
}
