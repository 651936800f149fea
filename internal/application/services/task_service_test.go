package services

import (
	"context"
	"errors"
	"testing"

	"github.com/gardenlog/core/internal/domain/entities"
	"github.com/gardenlog/core/internal/ports"
)

func TestToggleCompleteScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	task, err := f.tasks.CreateTask(ctx, CreateTaskRequest{Title: "Water"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Completed || task.CompletedAt != nil {
		t.Fatalf("new task should be open: %+v", task)
	}

	toggled, err := f.tasks.ToggleComplete(ctx, task.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.Completed || toggled.CompletedAt == nil {
		t.Fatalf("first toggle should complete and stamp: %+v", toggled)
	}

	toggled, err = f.tasks.ToggleComplete(ctx, task.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if toggled.Completed || toggled.CompletedAt != nil {
		t.Fatalf("second toggle should reopen and clear: %+v", toggled)
	}
}

func TestCreateTaskDefaultsToMediumPriority(t *testing.T) {
	f := newFixture()

	task, err := f.tasks.CreateTask(context.Background(), CreateTaskRequest{Title: "Weed the beds"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Priority != entities.TaskPriorityMedium {
		t.Errorf("priority = %s, want medium", task.Priority)
	}
	if task.CycleID != nil {
		t.Errorf("cycle id = %v, want nil for an unbound task", task.CycleID)
	}
}

func TestCreateTaskCompletedStampsImmediately(t *testing.T) {
	f := newFixture()
	completed := true

	task, err := f.tasks.CreateTask(context.Background(), CreateTaskRequest{Title: "Order seeds", Completed: &completed})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if !task.Completed || task.CompletedAt == nil {
		t.Errorf("task created completed should carry a stamp: %+v", task)
	}
}

func TestUpdateTaskAppliesCoupling(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	task, err := f.tasks.CreateTask(ctx, CreateTaskRequest{Title: "Prune"})
	if err != nil {
		t.Fatal(err)
	}

	completed := true
	updated, err := f.tasks.UpdateTask(ctx, task.ID, UpdateTaskRequest{Completed: &completed})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CompletedAt == nil {
		t.Fatal("plain update to completed=true must stamp completed_at")
	}
	stamp := *updated.CompletedAt

	// another update that keeps completed=true preserves the stamp
	title := "Prune roses"
	updated, err = f.tasks.UpdateTask(ctx, task.ID, UpdateTaskRequest{Title: &title})
	if err != nil {
		t.Fatal(err)
	}
	if updated.CompletedAt == nil || !updated.CompletedAt.Equal(stamp) {
		t.Errorf("completed_at changed across an unrelated update: %v vs %v", updated.CompletedAt, stamp)
	}

	completed = false
	updated, err = f.tasks.UpdateTask(ctx, task.ID, UpdateTaskRequest{Completed: &completed})
	if err != nil {
		t.Fatal(err)
	}
	if updated.CompletedAt != nil {
		t.Error("update to completed=false must clear completed_at")
	}
}

func TestCreateTaskUnknownCycle(t *testing.T) {
	f := newFixture()
	missing := 99

	_, err := f.tasks.CreateTask(context.Background(), CreateTaskRequest{Title: "Water", PlantingCycle: &missing})
	var verr *entities.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Fields["planting_cycle"]) == 0 {
		t.Errorf("expected an error keyed on planting_cycle, got %v", verr.Fields)
	}
}

func TestCreateForCycleIgnoresBodyCycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	plant := f.mustCreatePlant(t, "Tomato", "")
	cycle := f.mustCreateCycle(t, plant.ID, 2026)

	bogus := 1234
	task, err := f.tasks.CreateForCycle(ctx, cycle.ID, CreateTaskRequest{Title: "Stake", PlantingCycle: &bogus})
	if err != nil {
		t.Fatalf("create for cycle: %v", err)
	}
	if task.CycleID == nil || *task.CycleID != cycle.ID {
		t.Errorf("task bound to %v, want path cycle %d", task.CycleID, cycle.ID)
	}

	if _, err := f.tasks.CreateForCycle(ctx, 404, CreateTaskRequest{Title: "Stake"}); !errors.Is(err, entities.ErrCycleNotFound) {
		t.Errorf("missing path cycle should 404, got %v", err)
	}
}

func TestUpdateTaskClearsNullableFields(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	plant := f.mustCreatePlant(t, "Tomato", "")
	cycle := f.mustCreateCycle(t, plant.ID, 2026)

	due := entities.Today().AddDays(3)
	task, err := f.tasks.CreateTask(ctx, CreateTaskRequest{Title: "Stake", PlantingCycle: &cycle.ID, DueDate: &due})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	// an update that leaves the optionals unset changes neither
	title := "Stake tomatoes"
	updated, err := f.tasks.UpdateTask(ctx, task.ID, UpdateTaskRequest{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CycleID == nil || *updated.CycleID != cycle.ID || updated.DueDate == nil {
		t.Fatalf("unset optionals must not clear: %+v", updated)
	}

	// explicit nulls clear both
	updated, err = f.tasks.UpdateTask(ctx, task.ID, UpdateTaskRequest{
		PlantingCycle: Optional[int]{Set: true},
		DueDate:       Optional[entities.Date]{Set: true},
	})
	if err != nil {
		t.Fatalf("clearing update: %v", err)
	}
	if updated.CycleID != nil || updated.DueDate != nil {
		t.Errorf("explicit nulls should clear cycle and due date: %+v", updated)
	}
}

func TestListTasksOverdueUsesToday(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	yesterday := entities.Today().AddDays(-1)
	today := entities.Today()

	if _, err := f.tasks.CreateTask(ctx, CreateTaskRequest{Title: "late", DueDate: &yesterday}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.tasks.CreateTask(ctx, CreateTaskRequest{Title: "due-today", DueDate: &today}); err != nil {
		t.Fatal(err)
	}

	tasks, err := f.tasks.ListTasks(ctx, ports.TaskFilter{Overdue: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 || tasks[0].Title != "late" {
		t.Fatalf("overdue list = %d tasks, want exactly 'late'", len(tasks))
	}
}
