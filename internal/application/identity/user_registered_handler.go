package identity

import (
	"context"

	"github.com/quotewire/backend/internal/domain/identity"
	"github.com/quotewire/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// WelcomeNotifier delivers a welcome message to a newly registered account.
// Implementations can back this with email, in-app messages or nothing at all.
type WelcomeNotifier interface {
	SendWelcome(ctx context.Context, email string) error
}

// UserRegisteredHandler reacts to new account registrations
type UserRegisteredHandler struct {
	logger   *zap.Logger
	notifier WelcomeNotifier
}

// NewUserRegisteredHandler creates a new registration handler
func NewUserRegisteredHandler(logger *zap.Logger) *UserRegisteredHandler {
	return &UserRegisteredHandler{logger: logger}
}

// WithNotifier sets the notifier used to welcome new accounts
func (h *UserRegisteredHandler) WithNotifier(notifier WelcomeNotifier) *UserRegisteredHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *UserRegisteredHandler) EventTypes() []string {
	return []string{identity.EventTypeUserRegistered}
}

// Handle processes a UserRegisteredEvent
func (h *UserRegisteredHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	registered, ok := event.(*identity.UserRegisteredEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", identity.EventTypeUserRegistered),
			zap.String("actual", event.EventType()))
		return nil
	}

	h.logger.Info("activity: account registered",
		zap.String("user_id", registered.UserID.String()),
		zap.String("email", registered.Email))

	if h.notifier != nil {
		if err := h.notifier.SendWelcome(ctx, registered.Email); err != nil {
			// A failed welcome message never fails the registration
			h.logger.Error("failed to send welcome message",
				zap.String("user_id", registered.UserID.String()),
				zap.Error(err))
		}
	}

	return nil
}

// Ensure UserRegisteredHandler implements shared.EventHandler
var _ shared.EventHandler = (*UserRegisteredHandler)(nil)
