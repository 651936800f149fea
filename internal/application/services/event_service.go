package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gardenlog/core/internal/domain/entities"
	"github.com/gardenlog/core/internal/infrastructure/logger"
	"github.com/gardenlog/core/internal/ports"
)

// EventService handles lifecycle event operations.
type EventService struct {
	eventRepo ports.EventRepository
	cycleRepo ports.CycleRepository
	logger    *logger.Logger
}

// NewEventService creates a new event service.
func NewEventService(eventRepo ports.EventRepository, cycleRepo ports.CycleRepository, logger *logger.Logger) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		cycleRepo: cycleRepo,
		logger:    logger,
	}
}

// CreateEventRequest carries the fields for creating an event. The event
// date defaults to today.
type CreateEventRequest struct {
	PlantingCycle int            `json:"planting_cycle"`
	EventType     string         `json:"event_type" validate:"required"`
	EventDate     *entities.Date `json:"event_date"`
	Location      string         `json:"location" validate:"max=200"`
	Quantity      *float64       `json:"quantity"`
	Notes         string         `json:"notes"`
}

// UpdateEventRequest carries partial updates for an event. Quantity is an
// Optional so an explicit null clears it instead of reading as absent.
type UpdateEventRequest struct {
	PlantingCycle *int              `json:"planting_cycle"`
	EventType     *string           `json:"event_type"`
	EventDate     *entities.Date    `json:"event_date"`
	Location      *string           `json:"location" validate:"omitempty,max=200"`
	Quantity      Optional[float64] `json:"quantity"`
	Notes         *string           `json:"notes"`
}

// CreateEvent creates an event bound to the cycle named in the request body.
func (s *EventService) CreateEvent(ctx context.Context, req CreateEventRequest) (*entities.Event, error) {
	return s.create(ctx, req.PlantingCycle, req)
}

// CreateForCycle creates an event under the given cycle, ignoring any cycle
// id in the request body. The cycle must exist.
func (s *EventService) CreateForCycle(ctx context.Context, cycleID int, req CreateEventRequest) (*entities.Event, error) {
	if _, err := s.cycleRepo.GetByID(ctx, cycleID); err != nil {
		return nil, err
	}
	return s.create(ctx, cycleID, req)
}

func (s *EventService) create(ctx context.Context, cycleID int, req CreateEventRequest) (*entities.Event, error) {
	event := &entities.Event{
		CycleID:  cycleID,
		Type:     entities.EventType(req.EventType),
		Date:     entities.Today(),
		Location: req.Location,
		Quantity: req.Quantity,
		Notes:    req.Notes,
	}
	if req.EventDate != nil {
		event.Date = *req.EventDate
	}

	if verr := event.Validate(); verr != nil {
		return nil, verr
	}

	if _, err := s.cycleRepo.GetByID(ctx, event.CycleID); err != nil {
		if errors.Is(err, entities.ErrCycleNotFound) {
			verr := entities.NewValidationError()
			verr.Add("planting_cycle", "planting cycle not found")
			return nil, verr
		}
		return nil, err
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.logger.Info("Event created", "event_id", event.ID, "cycle_id", event.CycleID, "type", event.Type)

	return event, nil
}

// GetEvent retrieves an event by ID.
func (s *EventService) GetEvent(ctx context.Context, id int) (*entities.Event, error) {
	return s.eventRepo.GetByID(ctx, id)
}

// UpdateEvent applies a partial update to an event.
func (s *EventService) UpdateEvent(ctx context.Context, id int, req UpdateEventRequest) (*entities.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PlantingCycle != nil {
		event.CycleID = *req.PlantingCycle
	}
	if req.EventType != nil {
		event.Type = entities.EventType(*req.EventType)
	}
	if req.EventDate != nil {
		event.Date = *req.EventDate
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.Quantity.Set {
		event.Quantity = req.Quantity.Value
	}
	if req.Notes != nil {
		event.Notes = *req.Notes
	}

	if verr := event.Validate(); verr != nil {
		return nil, verr
	}

	if req.PlantingCycle != nil {
		if _, err := s.cycleRepo.GetByID(ctx, event.CycleID); err != nil {
			if errors.Is(err, entities.ErrCycleNotFound) {
				verr := entities.NewValidationError()
				verr.Add("planting_cycle", "planting cycle not found")
				return nil, verr
			}
			return nil, err
		}
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}

	s.logger.Info("Event updated", "event_id", event.ID, "type", event.Type)

	return event, nil
}

// DeleteEvent removes an event.
func (s *EventService) DeleteEvent(ctx context.Context, id int) error {
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Event deleted", "event_id", id)

	return nil
}

// ListEvents returns events matching the filter.
func (s *EventService) ListEvents(ctx context.Context, filter ports.EventFilter) ([]*entities.Event, error) {
	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return events, nil
}
