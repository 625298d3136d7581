// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/virtual-events/internal/metrics"
	"github.com/Shivanand-hulikatti/virtual-events/internal/model"
	"github.com/Shivanand-hulikatti/virtual-events/internal/repository"
)

// ErrRoleForbidden is returned when a non-organizer attempts an organizer-only operation.
var ErrRoleForbidden = errors.New("organizer access only")

// EventService orchestrates event-related business operations.
type EventService struct {
	events *repository.EventRepository
	logger zerolog.Logger
}

// NewEventService constructs an EventService.
func NewEventService(events *repository.EventRepository, logger zerolog.Logger) *EventService {
	return &EventService{
		events: events,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

func trimEventFields(title, date, time, description *string) {
	*title = strings.TrimSpace(*title)
	*date = strings.TrimSpace(*date)
	*time = strings.TrimSpace(*time)
	*description = strings.TrimSpace(*description)
}

// CreateEvent validates the request and stores a new event owned by claim.
func (s *EventService) CreateEvent(ctx context.Context, claim model.IdentityClaim, req model.CreateEventRequest) (*model.Event, error) {
	if !claim.IsOrganizer() {
		return nil, ErrRoleForbidden
	}
	trimEventFields(&req.Title, &req.Date, &req.Time, &req.Description)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	event, err := s.events.Create(ctx, model.Event{
		Title:       req.Title,
		Date:        req.Date,
		Time:        req.Time,
		Description: req.Description,
		OrganizerID: claim.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	metrics.EventOperations.WithLabelValues("create").Inc()
	s.logger.Info().Int64("event_id", event.ID).Int64("organizer_id", claim.ID).Msg("event created")
	return event, nil
}

// ListEvents returns all events in creation order.
func (s *EventService) ListEvents(ctx context.Context) ([]model.Event, error) {
	return s.events.List(ctx)
}

// GetEvent returns a single event by id.
func (s *EventService) GetEvent(ctx context.Context, id int64) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// UpdateEvent applies a partial patch. Only the organizer who created the
// event may change it.
func (s *EventService) UpdateEvent(ctx context.Context, claim model.IdentityClaim, id int64, req model.UpdateEventRequest) (*model.Event, error) {
	if !claim.IsOrganizer() {
		return nil, ErrRoleForbidden
	}
	trimEventFields(&req.Title, &req.Date, &req.Time, &req.Description)

	event, err := s.events.Update(ctx, id, claim.ID, req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrNotOwner) {
			return nil, err
		}
		return nil, fmt.Errorf("update event: %w", err)
	}

	metrics.EventOperations.WithLabelValues("update").Inc()
	s.logger.Info().Int64("event_id", id).Int64("organizer_id", claim.ID).Msg("event updated")
	return event, nil
}

// DeleteEvent removes an event owned by claim.
func (s *EventService) DeleteEvent(ctx context.Context, claim model.IdentityClaim, id int64) error {
	if !claim.IsOrganizer() {
		return ErrRoleForbidden
	}

	if err := s.events.Delete(ctx, id, claim.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrNotOwner) {
			return err
		}
		return fmt.Errorf("delete event: %w", err)
	}

	metrics.EventOperations.WithLabelValues("delete").Inc()
	s.logger.Info().Int64("event_id", id).Int64("organizer_id", claim.ID).Msg("event deleted")
	return nil
}

// JoinEvent registers claim as a participant. Any authenticated role may join,
// organizers included.
func (s *EventService) JoinEvent(ctx context.Context, claim model.IdentityClaim, id int64) (*model.Event, error) {
	event, err := s.events.Join(ctx, id, claim.ID)
	if err != nil {
		// Surface domain errors directly so handlers can set correct HTTP status.
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrAlreadyRegistered) {
			return nil, err
		}
		return nil, fmt.Errorf("join event: %w", err)
	}

	metrics.EventOperations.WithLabelValues("join").Inc()
	s.logger.Info().Int64("event_id", id).Int64("user_id", claim.ID).Msg("participant joined")
	return event, nil
}
