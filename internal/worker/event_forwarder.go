package worker

import (
	"github.com/spec-kit/event-service/internal/messaging"
)

// StartEventForwarder registers the broker relay on the dispatcher.
func StartEventForwarder(forwarder *messaging.Forwarder) {
	if forwarder == nil {
		return
	}
	forwarder.RegisterHandlers()
}
