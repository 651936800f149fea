// Package memory provides an in-memory implementation of the repository
// ports. It backs local development runs (database driver "memory") and the
// test suite, and enforces the same invariants as the Postgres adapters:
// (plant, year) uniqueness, cascading deletes and the default orderings.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gardenlog/core/internal/domain/entities"
	"github.com/gardenlog/core/internal/ports"
)

// Store holds all four tables behind one mutex. Requests are short and
// non-blocking, so a single lock is enough.
type Store struct {
	mu     sync.Mutex
	plants map[int]entities.Plant
	cycles map[int]entities.PlantingCycle
	events map[int]entities.Event
	tasks  map[int]entities.Task
	nextID map[string]int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		plants: map[int]entities.Plant{},
		cycles: map[int]entities.PlantingCycle{},
		events: map[int]entities.Event{},
		tasks:  map[int]entities.Task{},
		nextID: map[string]int{},
	}
}

func (s *Store) allocID(table string) int {
	s.nextID[table]++
	return s.nextID[table]
}

// Plants returns the plant repository view of the store.
func (s *Store) Plants() ports.PlantRepository { return &plantStore{s} }

// Cycles returns the planting cycle repository view of the store.
func (s *Store) Cycles() ports.CycleRepository { return &cycleStore{s} }

// Events returns the event repository view of the store.
func (s *Store) Events() ports.EventRepository { return &eventStore{s} }

// Tasks returns the task repository view of the store.
func (s *Store) Tasks() ports.TaskRepository { return &taskStore{s} }

type plantStore struct{ s *Store }

func (r *plantStore) Create(ctx context.Context, plant *entities.Plant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	plant.ID = r.s.allocID("plants")
	plant.CreatedAt = time.Now()
	r.s.plants[plant.ID] = *plant
	return nil
}

func (r *plantStore) GetByID(ctx context.Context, id int) (*entities.Plant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	plant, ok := r.s.plants[id]
	if !ok {
		return nil, entities.ErrPlantNotFound
	}
	return &plant, nil
}

func (r *plantStore) Update(ctx context.Context, plant *entities.Plant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.plants[plant.ID]
	if !ok {
		return entities.ErrPlantNotFound
	}
	plant.CreatedAt = existing.CreatedAt
	r.s.plants[plant.ID] = *plant
	return nil
}

func (r *plantStore) Delete(ctx context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.plants[id]; !ok {
		return entities.ErrPlantNotFound
	}
	delete(r.s.plants, id)
	for cid, cycle := range r.s.cycles {
		if cycle.PlantID == id {
			r.s.deleteCycleLocked(cid)
		}
	}
	return nil
}

func (r *plantStore) List(ctx context.Context, filter ports.PlantFilter) ([]*entities.PlantSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	summaries := []*entities.PlantSummary{}
	for _, plant := range r.s.plants {
		if filter.Search != nil && !plantMatches(plant, *filter.Search) {
			continue
		}

		var cycleCount int
		var latest *entities.PlantingCycle
		hasYear := false
		for i := range r.s.cycles {
			cycle := r.s.cycles[i]
			if cycle.PlantID != plant.ID {
				continue
			}
			cycleCount++
			if filter.Year != nil && cycle.Year == *filter.Year {
				hasYear = true
			}
			if latest == nil || cycle.Year > latest.Year {
				c := cycle
				latest = &c
			}
		}

		if filter.Year != nil && !hasYear {
			continue
		}

		summary := &entities.PlantSummary{
			ID:         plant.ID,
			Name:       plant.Name,
			Variety:    plant.Variety,
			CycleCount: cycleCount,
			CreatedAt:  plant.CreatedAt,
		}
		if latest != nil {
			year := latest.Year
			status := latest.Status
			summary.LatestCycleYear = &year
			summary.LatestCycleStatus = &status
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Name != summaries[j].Name {
			return summaries[i].Name < summaries[j].Name
		}
		return summaries[i].Variety < summaries[j].Variety
	})
	return summaries, nil
}

func (r *plantStore) Count(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.plants), nil
}

func plantMatches(plant entities.Plant, search string) bool {
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(plant.Name), needle) ||
		strings.Contains(strings.ToLower(plant.Variety), needle) ||
		strings.Contains(strings.ToLower(plant.SeedSource), needle)
}

type cycleStore struct{ s *Store }

func (r *cycleStore) Create(ctx context.Context, cycle *entities.PlantingCycle) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.cycles {
		if existing.PlantID == cycle.PlantID && existing.Year == cycle.Year {
			return &entities.ConflictError{PlantID: cycle.PlantID, Year: cycle.Year}
		}
	}

	cycle.ID = r.s.allocID("cycles")
	cycle.CreatedAt = time.Now()
	r.s.fillPlantLocked(cycle)
	stored := *cycle
	stored.Events, stored.Tasks = nil, nil
	r.s.cycles[cycle.ID] = stored
	return nil
}

func (r *cycleStore) GetByID(ctx context.Context, id int) (*entities.PlantingCycle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cycle, ok := r.s.cycles[id]
	if !ok {
		return nil, entities.ErrCycleNotFound
	}
	r.s.fillPlantLocked(&cycle)
	return &cycle, nil
}

func (r *cycleStore) GetByPlantYear(ctx context.Context, plantID, year int) (*entities.PlantingCycle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, cycle := range r.s.cycles {
		if cycle.PlantID == plantID && cycle.Year == year {
			r.s.fillPlantLocked(&cycle)
			return &cycle, nil
		}
	}
	return nil, entities.ErrCycleNotFound
}

func (r *cycleStore) Update(ctx context.Context, cycle *entities.PlantingCycle) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.cycles[cycle.ID]
	if !ok {
		return entities.ErrCycleNotFound
	}

	for _, other := range r.s.cycles {
		if other.ID != cycle.ID && other.PlantID == cycle.PlantID && other.Year == cycle.Year {
			return &entities.ConflictError{PlantID: cycle.PlantID, Year: cycle.Year}
		}
	}

	cycle.CreatedAt = existing.CreatedAt
	r.s.fillPlantLocked(cycle)
	stored := *cycle
	stored.Events, stored.Tasks = nil, nil
	r.s.cycles[cycle.ID] = stored
	return nil
}

func (r *cycleStore) Delete(ctx context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.cycles[id]; !ok {
		return entities.ErrCycleNotFound
	}
	r.s.deleteCycleLocked(id)
	return nil
}

func (r *cycleStore) List(ctx context.Context, filter ports.CycleFilter) ([]*entities.PlantingCycle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cycles := []*entities.PlantingCycle{}
	for _, cycle := range r.s.cycles {
		if filter.Year != nil && cycle.Year != *filter.Year {
			continue
		}
		if filter.Status != nil && cycle.Status != *filter.Status {
			continue
		}
		if filter.PlantID != nil && cycle.PlantID != *filter.PlantID {
			continue
		}
		c := cycle
		r.s.fillPlantLocked(&c)
		cycles = append(cycles, &c)
	}

	sortCycles(cycles)
	return cycles, nil
}

func (r *cycleStore) ListByPlant(ctx context.Context, plantID int) ([]*entities.PlantingCycle, error) {
	return r.List(ctx, ports.CycleFilter{PlantID: &plantID})
}

func (r *cycleStore) ListCurrent(ctx context.Context, year int) ([]*entities.PlantingCycle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cycles := []*entities.PlantingCycle{}
	for _, cycle := range r.s.cycles {
		if cycle.Year != year || cycle.Status == entities.CycleStatusFinished {
			continue
		}
		c := cycle
		r.s.fillPlantLocked(&c)
		cycles = append(cycles, &c)
	}

	sortCycles(cycles)
	return cycles, nil
}

func (r *cycleStore) CountCurrent(ctx context.Context, year int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for _, cycle := range r.s.cycles {
		if cycle.Year == year && cycle.Status != entities.CycleStatusFinished {
			count++
		}
	}
	return count, nil
}

func sortCycles(cycles []*entities.PlantingCycle) {
	sort.Slice(cycles, func(i, j int) bool {
		if cycles[i].Year != cycles[j].Year {
			return cycles[i].Year > cycles[j].Year
		}
		return cycles[i].PlantName < cycles[j].PlantName
	})
}

type eventStore struct{ s *Store }

func (r *eventStore) Create(ctx context.Context, event *entities.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	event.ID = r.s.allocID("events")
	event.CreatedAt = time.Now()
	r.s.events[event.ID] = *event
	return nil
}

func (r *eventStore) GetByID(ctx context.Context, id int) (*entities.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	event, ok := r.s.events[id]
	if !ok {
		return nil, entities.ErrEventNotFound
	}
	return &event, nil
}

func (r *eventStore) Update(ctx context.Context, event *entities.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.events[event.ID]
	if !ok {
		return entities.ErrEventNotFound
	}
	event.CreatedAt = existing.CreatedAt
	r.s.events[event.ID] = *event
	return nil
}

func (r *eventStore) Delete(ctx context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[id]; !ok {
		return entities.ErrEventNotFound
	}
	delete(r.s.events, id)
	return nil
}

func (r *eventStore) List(ctx context.Context, filter ports.EventFilter) ([]*entities.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	events := []*entities.Event{}
	for _, event := range r.s.events {
		if filter.CycleID != nil && event.CycleID != *filter.CycleID {
			continue
		}
		if filter.Type != nil && event.Type != *filter.Type {
			continue
		}
		if filter.DateFrom != nil && event.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && event.Date.After(*filter.DateTo) {
			continue
		}
		e := event
		events = append(events, &e)
	}

	sort.Slice(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.After(events[j].Date)
		}
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events, nil
}

func (r *eventStore) ListByCycle(ctx context.Context, cycleID int) ([]entities.Event, error) {
	listed, err := r.List(ctx, ports.EventFilter{CycleID: &cycleID})
	if err != nil {
		return nil, err
	}
	events := make([]entities.Event, len(listed))
	for i, e := range listed {
		events[i] = *e
	}
	return events, nil
}

func (r *eventStore) CountSince(ctx context.Context, since entities.Date) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for _, event := range r.s.events {
		if !event.Date.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *eventStore) HarvestTotals(ctx context.Context, since entities.Date) (int, float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	total := 0.0
	for _, event := range r.s.events {
		if event.Type != entities.EventTypeHarvest || event.Date.Before(since) {
			continue
		}
		count++
		if event.Quantity != nil {
			total += *event.Quantity
		}
	}
	return count, total, nil
}

type taskStore struct{ s *Store }

func (r *taskStore) Create(ctx context.Context, task *entities.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	task.ID = r.s.allocID("tasks")
	task.CreatedAt = time.Now()
	r.s.tasks[task.ID] = *task
	return nil
}

func (r *taskStore) GetByID(ctx context.Context, id int) (*entities.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	task, ok := r.s.tasks[id]
	if !ok {
		return nil, entities.ErrTaskNotFound
	}
	return &task, nil
}

func (r *taskStore) Update(ctx context.Context, task *entities.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.tasks[task.ID]
	if !ok {
		return entities.ErrTaskNotFound
	}
	task.CreatedAt = existing.CreatedAt
	r.s.tasks[task.ID] = *task
	return nil
}

func (r *taskStore) Delete(ctx context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[id]; !ok {
		return entities.ErrTaskNotFound
	}
	delete(r.s.tasks, id)
	return nil
}

func (r *taskStore) List(ctx context.Context, filter ports.TaskFilter) ([]*entities.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tasks := []*entities.Task{}
	for _, task := range r.s.tasks {
		if filter.Completed != nil && task.Completed != *filter.Completed {
			continue
		}
		if filter.CycleID != nil && (task.CycleID == nil || *task.CycleID != *filter.CycleID) {
			continue
		}
		if filter.Priority != nil && task.Priority != *filter.Priority {
			continue
		}
		if filter.Overdue && !task.IsOverdue(filter.Today) {
			continue
		}
		t := task
		tasks = append(tasks, &t)
	}

	sortTasks(tasks)
	return tasks, nil
}

func (r *taskStore) ListByCycle(ctx context.Context, cycleID int) ([]entities.Task, error) {
	listed, err := r.List(ctx, ports.TaskFilter{CycleID: &cycleID})
	if err != nil {
		return nil, err
	}
	tasks := make([]entities.Task, len(listed))
	for i, t := range listed {
		tasks[i] = *t
	}
	return tasks, nil
}

func (r *taskStore) CountOpen(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for _, task := range r.s.tasks {
		if !task.Completed {
			count++
		}
	}
	return count, nil
}

func (r *taskStore) CountOverdue(ctx context.Context, today entities.Date) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for _, task := range r.s.tasks {
		if task.IsOverdue(today) {
			count++
		}
	}
	return count, nil
}

func (r *taskStore) ListOverdue(ctx context.Context, today entities.Date, limit int) ([]*entities.Task, error) {
	tasks, err := r.List(ctx, ports.TaskFilter{Overdue: true, Today: today})
	if err != nil {
		return nil, err
	}
	if len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

func (r *taskStore) ListUpcoming(ctx context.Context, from, to entities.Date, limit int) ([]*entities.Task, error) {
	r.s.mu.Lock()

	tasks := []*entities.Task{}
	for _, task := range r.s.tasks {
		if task.Completed || task.DueDate == nil {
			continue
		}
		if task.DueDate.Before(from) || task.DueDate.After(to) {
			continue
		}
		t := task
		tasks = append(tasks, &t)
	}
	r.s.mu.Unlock()

	sortTasks(tasks)
	if len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

func sortTasks(tasks []*entities.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return a.ID < b.ID
		case a.DueDate == nil:
			return false
		case b.DueDate == nil:
			return true
		default:
			return a.DueDate.Before(*b.DueDate)
		}
	})
}

// fillPlantLocked joins the plant's name and variety onto the cycle row, the
// way the SQL adapters do with a JOIN.
func (s *Store) fillPlantLocked(cycle *entities.PlantingCycle) {
	if plant, ok := s.plants[cycle.PlantID]; ok {
		cycle.PlantName = plant.Name
		cycle.PlantVariety = plant.Variety
	}
}

// deleteCycleLocked removes a cycle and cascades to its events and tasks.
func (s *Store) deleteCycleLocked(id int) {
	delete(s.cycles, id)
	for eid, event := range s.events {
		if event.CycleID == id {
			delete(s.events, eid)
		}
	}
	for tid, task := range s.tasks {
		if task.CycleID != nil && *task.CycleID == id {
			delete(s.tasks, tid)
		}
	}
}
