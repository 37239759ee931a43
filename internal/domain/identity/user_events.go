package identity

import (
	"github.com/google/uuid"
	"github.com/quotewire/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeUser = "User"

// Event type constants
const (
	EventTypeUserRegistered = "UserRegistered"
)

// UserRegisteredEvent is raised when a new business account signs up
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent
func NewUserRegisteredEvent(user *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, user.ID, user.ID),
		UserID:          user.ID,
		Email:           user.Email,
	}
}

// EventType returns the event type name
func (e *UserRegisteredEvent) EventType() string {
	return EventTypeUserRegistered
}
