package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/events"
	"github.com/spec-kit/event-service/internal/repository"
	apperrors "github.com/spec-kit/event-service/pkg/util/errorutil"
)

// storeError maps storage sentinels onto client-facing domain errors.
func storeError(err error, resource string) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, nil)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict(resource+" already exists", nil)
	case errors.Is(err, repository.ErrInvalid):
		return apperrors.NewValidationError(err.Error(), nil)
	}
	return apperrors.NewInternalError(err)
}

// publishEvent hands a committed change to the dispatcher. Delivery failures are logged only.
func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(context.WithoutCancel(ctx), event); err != nil {
		logger.Warn("domain event delivery failed",
			zap.String("type", string(event.Type)),
			zap.String("event_id", event.EventID),
			zap.Error(err))
	}
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
