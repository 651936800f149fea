package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/gardenlog/core/internal/domain/entities"
	"github.com/gardenlog/core/internal/ports"
)

func seedPlant(t *testing.T, store *Store, name, variety, seedSource string) *entities.Plant {
	t.Helper()
	plant := &entities.Plant{Name: name, Variety: variety, SeedSource: seedSource}
	if err := store.Plants().Create(context.Background(), plant); err != nil {
		t.Fatalf("create plant: %v", err)
	}
	return plant
}

func seedCycle(t *testing.T, store *Store, plantID, year int, status entities.CycleStatus) *entities.PlantingCycle {
	t.Helper()
	cycle := &entities.PlantingCycle{PlantID: plantID, Year: year, Status: status}
	if err := store.Cycles().Create(context.Background(), cycle); err != nil {
		t.Fatalf("create cycle: %v", err)
	}
	return cycle
}

func TestCycleUniquenessPerPlantYear(t *testing.T) {
	store := New()
	ctx := context.Background()
	plant := seedPlant(t, store, "Tomato", "Cherry", "")

	seedCycle(t, store, plant.ID, 2024, entities.CycleStatusPlanning)

	dup := &entities.PlantingCycle{PlantID: plant.ID, Year: 2024, Status: entities.CycleStatusPlanning}
	err := store.Cycles().Create(ctx, dup)

	var cerr *entities.ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if cerr.PlantID != plant.ID || cerr.Year != 2024 {
		t.Errorf("conflict names plant %d year %d, want %d/2024", cerr.PlantID, cerr.Year, plant.ID)
	}

	next := &entities.PlantingCycle{PlantID: plant.ID, Year: 2025, Status: entities.CycleStatusPlanning}
	if err := store.Cycles().Create(ctx, next); err != nil {
		t.Fatalf("different year should succeed: %v", err)
	}
}

func TestCycleUpdateIntoConflict(t *testing.T) {
	store := New()
	ctx := context.Background()
	plant := seedPlant(t, store, "Tomato", "", "")

	seedCycle(t, store, plant.ID, 2024, entities.CycleStatusPlanning)
	second := seedCycle(t, store, plant.ID, 2025, entities.CycleStatusPlanning)

	second.Year = 2024
	err := store.Cycles().Update(ctx, second)

	var cerr *entities.ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestPlantDeleteCascades(t *testing.T) {
	store := New()
	ctx := context.Background()
	plant := seedPlant(t, store, "Tomato", "", "")
	cycle := seedCycle(t, store, plant.ID, 2026, entities.CycleStatusGrowing)

	event := &entities.Event{CycleID: cycle.ID, Type: entities.EventTypeSowing, Date: entities.Today()}
	if err := store.Events().Create(ctx, event); err != nil {
		t.Fatalf("create event: %v", err)
	}
	task := &entities.Task{CycleID: &cycle.ID, Title: "Water", Priority: entities.TaskPriorityMedium}
	if err := store.Tasks().Create(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := store.Plants().Delete(ctx, plant.ID); err != nil {
		t.Fatalf("delete plant: %v", err)
	}

	if _, err := store.Cycles().GetByID(ctx, cycle.ID); !errors.Is(err, entities.ErrCycleNotFound) {
		t.Errorf("cycle should be gone, got %v", err)
	}
	if _, err := store.Events().GetByID(ctx, event.ID); !errors.Is(err, entities.ErrEventNotFound) {
		t.Errorf("event should be gone, got %v", err)
	}
	if _, err := store.Tasks().GetByID(ctx, task.ID); !errors.Is(err, entities.ErrTaskNotFound) {
		t.Errorf("task should be gone, got %v", err)
	}
}

func TestPlantSearchMatchesSeedSource(t *testing.T) {
	store := New()
	ctx := context.Background()
	seedPlant(t, store, "Tomato", "Cherry", "Baker Creek")
	seedPlant(t, store, "Carrot", "Nantes", "")

	search := "baker"
	plants, err := store.Plants().List(ctx, ports.PlantFilter{Search: &search})
	if err != nil {
		t.Fatalf("list plants: %v", err)
	}
	if len(plants) != 1 || plants[0].Name != "Tomato" {
		t.Fatalf("search by seed source returned %d plants, want exactly Tomato", len(plants))
	}
}

func TestPlantListAggregates(t *testing.T) {
	store := New()
	ctx := context.Background()
	plant := seedPlant(t, store, "Tomato", "", "")
	seedPlant(t, store, "Carrot", "", "")

	seedCycle(t, store, plant.ID, 2024, entities.CycleStatusFinished)
	seedCycle(t, store, plant.ID, 2026, entities.CycleStatusGrowing)

	plants, err := store.Plants().List(ctx, ports.PlantFilter{})
	if err != nil {
		t.Fatalf("list plants: %v", err)
	}
	if len(plants) != 2 {
		t.Fatalf("got %d plants, want 2", len(plants))
	}

	// name ordering puts Carrot first
	carrot, tomato := plants[0], plants[1]
	if carrot.Name != "Carrot" || tomato.Name != "Tomato" {
		t.Fatalf("unexpected ordering: %s, %s", carrot.Name, tomato.Name)
	}
	if carrot.CycleCount != 0 || carrot.LatestCycleYear != nil || carrot.LatestCycleStatus != nil {
		t.Errorf("plant without cycles should report zero count and nil latest fields")
	}
	if tomato.CycleCount != 2 {
		t.Errorf("cycle_count = %d, want 2", tomato.CycleCount)
	}
	if tomato.LatestCycleYear == nil || *tomato.LatestCycleYear != 2026 {
		t.Errorf("latest_cycle_year = %v, want 2026", tomato.LatestCycleYear)
	}
	if tomato.LatestCycleStatus == nil || *tomato.LatestCycleStatus != entities.CycleStatusGrowing {
		t.Errorf("latest_cycle_status = %v, want growing", tomato.LatestCycleStatus)
	}
}

func TestPlantListYearFilter(t *testing.T) {
	store := New()
	ctx := context.Background()
	tomato := seedPlant(t, store, "Tomato", "", "")
	seedPlant(t, store, "Carrot", "", "")
	seedCycle(t, store, tomato.ID, 2025, entities.CycleStatusFinished)

	year := 2025
	plants, err := store.Plants().List(ctx, ports.PlantFilter{Year: &year})
	if err != nil {
		t.Fatalf("list plants: %v", err)
	}
	if len(plants) != 1 || plants[0].Name != "Tomato" {
		t.Fatalf("year filter returned %d plants, want exactly Tomato", len(plants))
	}
}

func TestTaskOrdering(t *testing.T) {
	store := New()
	ctx := context.Background()
	soon := entities.Today().AddDays(1)
	later := entities.Today().AddDays(5)

	mk := func(title string, priority entities.TaskPriority, due *entities.Date, completed bool) {
		task := &entities.Task{Title: title, Priority: priority, DueDate: due, Completed: completed}
		if err := store.Tasks().Create(ctx, task); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}

	mk("done", entities.TaskPriorityHigh, &soon, true)
	mk("low-later", entities.TaskPriorityLow, &later, false)
	mk("high-nodate", entities.TaskPriorityHigh, nil, false)
	mk("high-soon", entities.TaskPriorityHigh, &soon, false)

	tasks, err := store.Tasks().List(ctx, ports.TaskFilter{})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}

	got := make([]string, len(tasks))
	for i, task := range tasks {
		got[i] = task.Title
	}
	want := []string{"high-soon", "high-nodate", "low-later", "done"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ordering = %v, want %v", got, want)
		}
	}
}

func TestOverdueFilterStacksWithCompleted(t *testing.T) {
	store := New()
	ctx := context.Background()
	yesterday := entities.Today().AddDays(-1)

	open := &entities.Task{Title: "open-overdue", Priority: entities.TaskPriorityMedium, DueDate: &yesterday}
	if err := store.Tasks().Create(ctx, open); err != nil {
		t.Fatal(err)
	}
	doneAt := entities.Today().Time
	done := &entities.Task{Title: "done-late", Priority: entities.TaskPriorityMedium, DueDate: &yesterday, Completed: true, CompletedAt: &doneAt}
	if err := store.Tasks().Create(ctx, done); err != nil {
		t.Fatal(err)
	}

	tasks, err := store.Tasks().List(ctx, ports.TaskFilter{Overdue: true, Today: entities.Today()})
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 || tasks[0].Title != "open-overdue" {
		t.Fatalf("overdue filter returned %d tasks, want exactly open-overdue", len(tasks))
	}

	// completed=true AND overdue=true is contradictory and yields nothing
	completed := true
	tasks, err = store.Tasks().List(ctx, ports.TaskFilter{Completed: &completed, Overdue: true, Today: entities.Today()})
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 0 {
		t.Fatalf("contradictory filters returned %d tasks, want 0", len(tasks))
	}
}

func TestHarvestTotalsWindow(t *testing.T) {
	store := New()
	ctx := context.Background()
	plant := seedPlant(t, store, "Tomato", "", "")
	cycle := seedCycle(t, store, plant.ID, 2026, entities.CycleStatusHarvesting)

	mk := func(daysAgo int, quantity *float64, eventType entities.EventType) {
		event := &entities.Event{
			CycleID:  cycle.ID,
			Type:     eventType,
			Date:     entities.Today().AddDays(-daysAgo),
			Quantity: quantity,
		}
		if err := store.Events().Create(ctx, event); err != nil {
			t.Fatal(err)
		}
	}

	q1, q2 := 2.5, 100.0
	mk(10, &q1, entities.EventTypeHarvest)
	mk(40, &q2, entities.EventTypeHarvest) // outside the window
	mk(5, nil, entities.EventTypeHarvest)  // null quantity excluded from the sum
	mk(3, &q2, entities.EventTypeWatering)

	count, total, err := store.Events().HarvestTotals(ctx, entities.Today().AddDays(-30))
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if total != 2.5 {
		t.Errorf("total_quantity = %v, want 2.5", total)
	}
}

func TestEventDateRangeFilter(t *testing.T) {
	store := New()
	ctx := context.Background()
	plant := seedPlant(t, store, "Tomato", "", "")
	cycle := seedCycle(t, store, plant.ID, 2026, entities.CycleStatusGrowing)

	for _, daysAgo := range []int{1, 5, 20} {
		event := &entities.Event{CycleID: cycle.ID, Type: entities.EventTypeWatering, Date: entities.Today().AddDays(-daysAgo)}
		if err := store.Events().Create(ctx, event); err != nil {
			t.Fatal(err)
		}
	}

	from := entities.Today().AddDays(-5)
	to := entities.Today().AddDays(-1)
	events, err := store.Events().List(ctx, ports.EventFilter{DateFrom: &from, DateTo: &to})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("inclusive range returned %d events, want 2", len(events))
	}
	// newest first
	if events[0].Date.Before(events[1].Date) {
		t.Error("events should be ordered newest first")
	}
}

func TestCycleOrdering(t *testing.T) {
	store := New()
	ctx := context.Background()
	tomato := seedPlant(t, store, "Tomato", "", "")
	carrot := seedPlant(t, store, "Carrot", "", "")

	seedCycle(t, store, tomato.ID, 2025, entities.CycleStatusFinished)
	seedCycle(t, store, tomato.ID, 2026, entities.CycleStatusGrowing)
	seedCycle(t, store, carrot.ID, 2026, entities.CycleStatusGrowing)

	cycles, err := store.Cycles().List(ctx, ports.CycleFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(cycles) != 3 {
		t.Fatalf("got %d cycles, want 3", len(cycles))
	}
	// year desc, then plant name
	if cycles[0].Year != 2026 || cycles[0].PlantName != "Carrot" {
		t.Errorf("first = %d/%s, want 2026/Carrot", cycles[0].Year, cycles[0].PlantName)
	}
	if cycles[2].Year != 2025 {
		t.Errorf("last year = %d, want 2025", cycles[2].Year)
	}
}
