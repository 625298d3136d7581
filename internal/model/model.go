// Package model defines the core domain types for the virtual events service.
package model

import "time"

// Role is the coarse permission level carried by every user and token.
type Role string

const (
	RoleOrganizer Role = "organizer"
	RoleAttendee  Role = "attendee"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleOrganizer || r == RoleAttendee
}

// User is a registered account. Users are append-only for the life of the process.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"-"`
}

// IdentityClaim is the verified payload of an access token.
// It is never stored; it is rebuilt from the token on every request.
type IdentityClaim struct {
	ID        int64
	Email     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsOrganizer reports whether the claim grants organizer privileges.
func (c IdentityClaim) IsOrganizer() bool {
	return c.Role == RoleOrganizer
}

// Event is an event owned by the organizer who created it.
type Event struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Date         string  `json:"date"`
	Time         string  `json:"time"`
	Description  string  `json:"description"`
	OrganizerID  int64   `json:"organizerId"`
	Participants []int64 `json:"participants"`
}

// Clone returns a deep copy so callers never share the participants slice
// with the registry.
func (e *Event) Clone() *Event {
	c := *e
	c.Participants = make([]int64, len(e.Participants))
	copy(c.Participants, e.Participants)
	return &c
}

// HasParticipant reports whether userID already joined the event.
func (e *Event) HasParticipant(userID int64) bool {
	for _, id := range e.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// RegisterUserRequest is the payload for POST /register.
type RegisterUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"required,oneof=organizer attendee"`
}

// LoginRequest is the payload for POST /login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title       string `json:"title" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Time        string `json:"time" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// UpdateEventRequest is a partial patch. Empty fields keep their current value.
type UpdateEventRequest struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
}

// MessageResponse is the success envelope used by mutating endpoints.
type MessageResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
	Event   *Event `json:"event,omitempty"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Notification is a single outbound message queued after a state change.
type Notification struct {
	ID      string
	To      string
	Subject string
	Body    string
}
