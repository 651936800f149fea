package http

import (
	"time"

	"github.com/gardenlog/core/internal/application/services"
	"github.com/gardenlog/core/internal/domain/entities"
)

// Response shapes. Enum fields carry a *_display companion with the
// human-readable label; count fields are computed here, never stored.

// EventResponse is the wire shape of a lifecycle event.
type EventResponse struct {
	ID               int                `json:"id"`
	PlantingCycle    int                `json:"planting_cycle"`
	EventType        entities.EventType `json:"event_type"`
	EventTypeDisplay string             `json:"event_type_display"`
	EventDate        entities.Date      `json:"event_date"`
	Location         string             `json:"location"`
	Quantity         *float64           `json:"quantity"`
	Notes            string             `json:"notes"`
	CreatedAt        time.Time          `json:"created_at"`
}

// TaskResponse is the wire shape of a task.
type TaskResponse struct {
	ID              int                   `json:"id"`
	PlantingCycle   *int                  `json:"planting_cycle"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	DueDate         *entities.Date        `json:"due_date"`
	Completed       bool                  `json:"completed"`
	CompletedAt     *time.Time            `json:"completed_at"`
	Priority        entities.TaskPriority `json:"priority"`
	PriorityDisplay string                `json:"priority_display"`
	CreatedAt       time.Time             `json:"created_at"`
}

// CycleResponse is the wire shape of a planting cycle with its nested
// events and tasks.
type CycleResponse struct {
	ID             int                  `json:"id"`
	Plant          int                  `json:"plant"`
	PlantName      string               `json:"plant_name"`
	PlantVariety   string               `json:"plant_variety"`
	Year           int                  `json:"year"`
	Status         entities.CycleStatus `json:"status"`
	StatusDisplay  string               `json:"status_display"`
	SeedSaved      bool                 `json:"seed_saved"`
	SeedSavedNotes string               `json:"seed_saved_notes"`
	Events         []EventResponse      `json:"events"`
	Tasks          []TaskResponse       `json:"tasks"`
	EventCount     int                  `json:"event_count"`
	TaskCount      int                  `json:"task_count"`
	CreatedAt      time.Time            `json:"created_at"`
}

// PlantResponse is the detail wire shape of a plant, cycles fully nested.
type PlantResponse struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Variety     string          `json:"variety"`
	SeedSource  string          `json:"seed_source"`
	Notes       string          `json:"notes"`
	Cycles      []CycleResponse `json:"cycles"`
	CycleCount  int             `json:"cycle_count"`
	LatestCycle *CycleResponse  `json:"latest_cycle"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PlantListItem is the compact wire shape used by the plant list.
type PlantListItem struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	Variety           string    `json:"variety"`
	CycleCount        int       `json:"cycle_count"`
	LatestCycleYear   *int      `json:"latest_cycle_year"`
	LatestCycleStatus *string   `json:"latest_cycle_status"`
	CreatedAt         time.Time `json:"created_at"`
}

// DashboardResponse is the dashboard aggregate wire shape.
type DashboardResponse struct {
	CurrentYear    int                      `json:"current_year"`
	Stats          services.DashboardCounts `json:"stats"`
	Cycles         []CycleResponse          `json:"cycles"`
	UpcomingTasks  []TaskResponse           `json:"upcoming_tasks"`
	OverdueTasks   []TaskResponse           `json:"overdue_tasks"`
	RecentHarvests services.HarvestTotals   `json:"recent_harvests"`
}

func newEventResponse(e *entities.Event) EventResponse {
	return EventResponse{
		ID:               e.ID,
		PlantingCycle:    e.CycleID,
		EventType:        e.Type,
		EventTypeDisplay: e.Type.Display(),
		EventDate:        e.Date,
		Location:         e.Location,
		Quantity:         e.Quantity,
		Notes:            e.Notes,
		CreatedAt:        e.CreatedAt,
	}
}

func newTaskResponse(t *entities.Task) TaskResponse {
	return TaskResponse{
		ID:              t.ID,
		PlantingCycle:   t.CycleID,
		Title:           t.Title,
		Description:     t.Description,
		DueDate:         t.DueDate,
		Completed:       t.Completed,
		CompletedAt:     t.CompletedAt,
		Priority:        t.Priority,
		PriorityDisplay: t.Priority.Display(),
		CreatedAt:       t.CreatedAt,
	}
}

func newCycleResponse(cy *entities.PlantingCycle) CycleResponse {
	events := make([]EventResponse, len(cy.Events))
	for i := range cy.Events {
		events[i] = newEventResponse(&cy.Events[i])
	}
	tasks := make([]TaskResponse, len(cy.Tasks))
	for i := range cy.Tasks {
		tasks[i] = newTaskResponse(&cy.Tasks[i])
	}

	return CycleResponse{
		ID:             cy.ID,
		Plant:          cy.PlantID,
		PlantName:      cy.PlantName,
		PlantVariety:   cy.PlantVariety,
		Year:           cy.Year,
		Status:         cy.Status,
		StatusDisplay:  cy.Status.Display(),
		SeedSaved:      cy.SeedSaved,
		SeedSavedNotes: cy.SeedSavedNotes,
		Events:         events,
		Tasks:          tasks,
		EventCount:     len(events),
		TaskCount:      len(tasks),
		CreatedAt:      cy.CreatedAt,
	}
}

func newCycleResponses(cycles []*entities.PlantingCycle) []CycleResponse {
	out := make([]CycleResponse, len(cycles))
	for i, cy := range cycles {
		out[i] = newCycleResponse(cy)
	}
	return out
}

func newTaskResponses(tasks []*entities.Task) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = newTaskResponse(t)
	}
	return out
}

func newPlantResponse(p *entities.Plant) PlantResponse {
	cycles := make([]CycleResponse, len(p.Cycles))
	for i := range p.Cycles {
		cycles[i] = newCycleResponse(&p.Cycles[i])
	}

	resp := PlantResponse{
		ID:         p.ID,
		Name:       p.Name,
		Variety:    p.Variety,
		SeedSource: p.SeedSource,
		Notes:      p.Notes,
		Cycles:     cycles,
		CycleCount: len(cycles),
		CreatedAt:  p.CreatedAt,
	}

	if latest := p.LatestCycle(); latest != nil {
		lc := newCycleResponse(latest)
		resp.LatestCycle = &lc
	}

	return resp
}

func newPlantListItem(s *entities.PlantSummary) PlantListItem {
	item := PlantListItem{
		ID:              s.ID,
		Name:            s.Name,
		Variety:         s.Variety,
		CycleCount:      s.CycleCount,
		LatestCycleYear: s.LatestCycleYear,
		CreatedAt:       s.CreatedAt,
	}
	if s.LatestCycleStatus != nil {
		display := s.LatestCycleStatus.Display()
		item.LatestCycleStatus = &display
	}
	return item
}

func newPlantListItems(summaries []*entities.PlantSummary) []PlantListItem {
	out := make([]PlantListItem, len(summaries))
	for i, s := range summaries {
		out[i] = newPlantListItem(s)
	}
	return out
}

func newDashboardResponse(stats *services.DashboardStats) DashboardResponse {
	return DashboardResponse{
		CurrentYear:    stats.CurrentYear,
		Stats:          stats.Counts,
		Cycles:         newCycleResponses(stats.Cycles),
		UpcomingTasks:  newTaskResponses(stats.UpcomingTasks),
		OverdueTasks:   newTaskResponses(stats.OverdueTasks),
		RecentHarvests: stats.RecentHarvests,
	}
}
