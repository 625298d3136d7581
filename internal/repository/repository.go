// Package repository implements the in-memory stores for users and events.
// Each store owns its collection outright and hands out copies only.
package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/Shivanand-hulikatti/virtual-events/internal/model"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when a user registers with an email already in use.
var ErrDuplicateEmail = errors.New("email already exists")

// ErrAlreadyRegistered is returned when a user joins the same event twice.
var ErrAlreadyRegistered = errors.New("already registered for this event")

// ErrNotOwner is returned when an organizer mutates an event they did not create.
var ErrNotOwner = errors.New("not your event")

// UserRepository holds registered users keyed by id and email.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[int64]*model.User
	byEmail map[string]int64
	nextID  int64
}

// NewUserRepository constructs an empty UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[int64]*model.User),
		byEmail: make(map[string]int64),
	}
}

// Create assigns the next id and stores the user. The email check and the
// insert happen under one lock so two concurrent registrations cannot both win.
func (r *UserRepository) Create(_ context.Context, u model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[u.Email]; ok {
		return nil, ErrDuplicateEmail
	}

	r.nextID++
	u.ID = r.nextID
	stored := u
	r.byID[u.ID] = &stored
	r.byEmail[u.Email] = u.ID
	return &u, nil
}

// GetByEmail returns a copy of the user with the given email or ErrNotFound.
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	u := *r.byID[id]
	return &u, nil
}

// GetByID returns a copy of the user with the given id or ErrNotFound.
func (r *UserRepository) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *u
	return &c, nil
}

// Count returns the number of stored users.
func (r *UserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// EventRepository holds events keyed by id, plus their creation order.
type EventRepository struct {
	mu     sync.RWMutex
	byID   map[int64]*model.Event
	order  []int64
	nextID int64
}

// NewEventRepository constructs an empty EventRepository.
func NewEventRepository() *EventRepository {
	return &EventRepository{byID: make(map[int64]*model.Event)}
}

// Create stores a new event under the next id. Ids come from a counter and
// are never handed out twice, even after the event is deleted.
func (r *EventRepository) Create(_ context.Context, e model.Event) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	e.ID = r.nextID
	e.Participants = []int64{}
	stored := e.Clone()
	r.byID[e.ID] = stored
	r.order = append(r.order, e.ID)
	return stored.Clone(), nil
}

// List returns copies of all events in creation order.
func (r *EventRepository) List(_ context.Context) ([]model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]model.Event, 0, len(r.order))
	for _, id := range r.order {
		events = append(events, *r.byID[id].Clone())
	}
	return events, nil
}

// GetByID returns a copy of a single event or ErrNotFound.
func (r *EventRepository) GetByID(_ context.Context, id int64) (*model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e.Clone(), nil
}

// Update applies a partial patch on behalf of organizerID.
//
// Lookup, ownership check and field assignment run under the write lock,
// so a concurrent delete or update cannot slip in between them.
func (r *EventRepository) Update(_ context.Context, id, organizerID int64, patch model.UpdateEventRequest) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if e.OrganizerID != organizerID {
		return nil, ErrNotOwner
	}

	if patch.Title != "" {
		e.Title = patch.Title
	}
	if patch.Date != "" {
		e.Date = patch.Date
	}
	if patch.Time != "" {
		e.Time = patch.Time
	}
	if patch.Description != "" {
		e.Description = patch.Description
	}
	return e.Clone(), nil
}

// Delete removes an event owned by organizerID. The order slice is compacted
// but the id counter is left untouched.
func (r *EventRepository) Delete(_ context.Context, id, organizerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if e.OrganizerID != organizerID {
		return ErrNotOwner
	}

	delete(r.byID, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Join adds userID to the event's participants.
//
// Same pattern as Update: the duplicate check and the append share one
// critical section, otherwise two concurrent joins by the same user could
// both observe "not registered" and both append.
func (r *EventRepository) Join(_ context.Context, id, userID int64) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if e.HasParticipant(userID) {
		return nil, ErrAlreadyRegistered
	}

	e.Participants = append(e.Participants, userID)
	return e.Clone(), nil
}
