package entities

import (
	"errors"
	"fmt"
	"time"
)

// Common errors
var (
	ErrPlantNotFound = errors.New("plant not found")
	ErrCycleNotFound = errors.New("planting cycle not found")
	ErrEventNotFound = errors.New("event not found")
	ErrTaskNotFound  = errors.New("task not found")
)

// ConflictError is returned when a second planting cycle is created for the
// same plant and year.
type ConflictError struct {
	PlantID int
	Year    int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("planting cycle for plant %d in year %d already exists", e.PlantID, e.Year)
}

// ValidationError carries per-field messages, returned to the client as a
// 400 with a field-to-messages mapping. A nil or empty ValidationError means
// the record is valid.
type ValidationError struct {
	Fields map[string][]string `json:"errors"`
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// Enums and types

type CycleStatus string

const (
	CycleStatusPlanning    CycleStatus = "planning"
	CycleStatusSowing      CycleStatus = "sowing"
	CycleStatusGerminating CycleStatus = "germinating"
	CycleStatusGrowing     CycleStatus = "growing"
	CycleStatusPlantedOut  CycleStatus = "planted_out"
	CycleStatusHarvesting  CycleStatus = "harvesting"
	CycleStatusFinished    CycleStatus = "finished"
)

type EventType string

const (
	EventTypeSowing       EventType = "sowing"
	EventTypeGermination  EventType = "germination"
	EventTypeTransplant   EventType = "transplanting"
	EventTypeWatering     EventType = "watering"
	EventTypeFertilizing  EventType = "fertilizing"
	EventTypePlantingOut  EventType = "planting_out"
	EventTypeHarvest      EventType = "harvest"
	EventTypePruning      EventType = "pruning"
	EventTypeOther        EventType = "other"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Plant represents a plant with its master data.
type Plant struct {
	ID         int             `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	Variety    string          `json:"variety" db:"variety"`
	SeedSource string          `json:"seed_source" db:"seed_source"`
	Notes      string          `json:"notes" db:"notes"`
	Cycles     []PlantingCycle `json:"cycles" db:"-"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// PlantSummary is the aggregate row returned by plant list queries: the
// cycle count and the latest cycle's year/status are computed at query time,
// never stored.
type PlantSummary struct {
	ID                int          `json:"id" db:"id"`
	Name              string       `json:"name" db:"name"`
	Variety           string       `json:"variety" db:"variety"`
	CycleCount        int          `json:"cycle_count" db:"cycle_count"`
	LatestCycleYear   *int         `json:"latest_cycle_year" db:"latest_cycle_year"`
	LatestCycleStatus *CycleStatus `json:"latest_cycle_status" db:"latest_cycle_status"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
}

// PlantingCycle is one plant's growing season for a specific year.
type PlantingCycle struct {
	ID             int         `json:"id" db:"id"`
	PlantID        int         `json:"plant" db:"plant_id"`
	PlantName      string      `json:"plant_name" db:"plant_name"`
	PlantVariety   string      `json:"plant_variety" db:"plant_variety"`
	Year           int         `json:"year" db:"year"`
	Status         CycleStatus `json:"status" db:"status"`
	SeedSaved      bool        `json:"seed_saved" db:"seed_saved"`
	SeedSavedNotes string      `json:"seed_saved_notes" db:"seed_saved_notes"`
	Events         []Event     `json:"events" db:"-"`
	Tasks          []Task      `json:"tasks" db:"-"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}

// Event is a dated occurrence in a cycle's life (sowing, watering, harvest).
// Quantity is liters for watering and kg/count for harvest.
type Event struct {
	ID        int       `json:"id" db:"id"`
	CycleID   int       `json:"planting_cycle" db:"planting_cycle_id"`
	Type      EventType `json:"event_type" db:"event_type"`
	Date      Date      `json:"event_date" db:"event_date"`
	Location  string    `json:"location" db:"location"`
	Quantity  *float64  `json:"quantity" db:"quantity"`
	Notes     string    `json:"notes" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Task is a to-do item, optionally tied to a cycle.
type Task struct {
	ID          int          `json:"id" db:"id"`
	CycleID     *int         `json:"planting_cycle" db:"planting_cycle_id"`
	Title       string       `json:"title" db:"title"`
	Description string       `json:"description" db:"description"`
	DueDate     *Date        `json:"due_date" db:"due_date"`
	Completed   bool         `json:"completed" db:"completed"`
	CompletedAt *time.Time   `json:"completed_at" db:"completed_at"`
	Priority    TaskPriority `json:"priority" db:"priority"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}

// Normalize enforces the completed/completed_at coupling. It runs before
// every persistence path, not just the toggle action: completed_at is set
// iff completed is true, and an already stamped timestamp is preserved.
func (t *Task) Normalize(now time.Time) {
	if t.Completed {
		if t.CompletedAt == nil {
			t.CompletedAt = &now
		}
	} else {
		t.CompletedAt = nil
	}
}

// IsOverdue reports whether the task is incomplete with a due date strictly
// before today. A task due exactly today is not overdue.
func (t *Task) IsOverdue(today Date) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(today)
}

// LatestCycle returns the cycle with the highest year, or nil when the plant
// has no cycles. The plant+year uniqueness invariant makes ties unreachable.
func (p *Plant) LatestCycle() *PlantingCycle {
	var latest *PlantingCycle
	for i := range p.Cycles {
		if latest == nil || p.Cycles[i].Year > latest.Year {
			latest = &p.Cycles[i]
		}
	}
	return latest
}

// Validate checks field-level constraints for a plant.
func (p *Plant) Validate() *ValidationError {
	verr := NewValidationError()
	if p.Name == "" {
		verr.Add("name", "this field is required")
	}
	if len(p.Name) > 200 {
		verr.Add("name", "must be at most 200 characters")
	}
	if len(p.Variety) > 200 {
		verr.Add("variety", "must be at most 200 characters")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// Validate checks field-level constraints for a planting cycle.
func (pc *PlantingCycle) Validate() *ValidationError {
	verr := NewValidationError()
	if pc.PlantID == 0 {
		verr.Add("plant", "this field is required")
	}
	if pc.Year < 1900 || pc.Year > 2999 {
		verr.Add("year", "must be a plausible calendar year")
	}
	if !pc.Status.IsValid() {
		verr.Add("status", fmt.Sprintf("%q is not a valid status", pc.Status))
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// Validate checks field-level constraints for an event.
func (e *Event) Validate() *ValidationError {
	verr := NewValidationError()
	if e.CycleID == 0 {
		verr.Add("planting_cycle", "this field is required")
	}
	if e.Type == "" {
		verr.Add("event_type", "this field is required")
	} else if !e.Type.IsValid() {
		verr.Add("event_type", fmt.Sprintf("%q is not a valid event type", e.Type))
	}
	if len(e.Location) > 200 {
		verr.Add("location", "must be at most 200 characters")
	}
	if e.Quantity != nil && *e.Quantity < 0 {
		verr.Add("quantity", "must not be negative")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// Validate checks field-level constraints for a task.
func (t *Task) Validate() *ValidationError {
	verr := NewValidationError()
	if t.Title == "" {
		verr.Add("title", "this field is required")
	}
	if len(t.Title) > 200 {
		verr.Add("title", "must be at most 200 characters")
	}
	if !t.Priority.IsValid() {
		verr.Add("priority", fmt.Sprintf("%q is not a valid priority", t.Priority))
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// Utility methods

func (s CycleStatus) IsValid() bool {
	switch s {
	case CycleStatusPlanning, CycleStatusSowing, CycleStatusGerminating,
		CycleStatusGrowing, CycleStatusPlantedOut, CycleStatusHarvesting,
		CycleStatusFinished:
		return true
	default:
		return false
	}
}

// Display returns the human-readable label for the status.
func (s CycleStatus) Display() string {
	switch s {
	case CycleStatusPlanning:
		return "Planning"
	case CycleStatusSowing:
		return "Sowing"
	case CycleStatusGerminating:
		return "Germinating"
	case CycleStatusGrowing:
		return "Growing"
	case CycleStatusPlantedOut:
		return "Planted out"
	case CycleStatusHarvesting:
		return "Harvesting"
	case CycleStatusFinished:
		return "Finished"
	default:
		return string(s)
	}
}

func (et EventType) IsValid() bool {
	switch et {
	case EventTypeSowing, EventTypeGermination, EventTypeTransplant,
		EventTypeWatering, EventTypeFertilizing, EventTypePlantingOut,
		EventTypeHarvest, EventTypePruning, EventTypeOther:
		return true
	default:
		return false
	}
}

// Display returns the human-readable label for the event type. Note that
// planting_out ("Planting out") and the cycle status planted_out are
// distinct identifiers.
func (et EventType) Display() string {
	switch et {
	case EventTypeSowing:
		return "Sowing"
	case EventTypeGermination:
		return "Germination"
	case EventTypeTransplant:
		return "Transplanting"
	case EventTypeWatering:
		return "Watering"
	case EventTypeFertilizing:
		return "Fertilizing"
	case EventTypePlantingOut:
		return "Planting out"
	case EventTypeHarvest:
		return "Harvest"
	case EventTypePruning:
		return "Pruning"
	case EventTypeOther:
		return "Other"
	default:
		return string(et)
	}
}

func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}

// Display returns the human-readable label for the priority.
func (p TaskPriority) Display() string {
	switch p {
	case TaskPriorityLow:
		return "Low"
	case TaskPriorityMedium:
		return "Medium"
	case TaskPriorityHigh:
		return "High"
	default:
		return string(p)
	}
}

// Rank orders priorities for sorting, high first when descending.
func (p TaskPriority) Rank() int {
	switch p {
	case TaskPriorityHigh:
		return 2
	case TaskPriorityMedium:
		return 1
	default:
		return 0
	}
}
