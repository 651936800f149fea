package services

import (
	"context"
	"time"

	"github.com/gardenlog/core/internal/domain/entities"
	"github.com/gardenlog/core/internal/infrastructure/logger"
	"github.com/gardenlog/core/internal/ports"
)

// Dashboard lists are capped at the first ten rows in default ordering.
const dashboardListLimit = 10

// DashboardService computes the read-only dashboard aggregate. Every call
// evaluates against a fresh clock; nothing is cached.
type DashboardService struct {
	plantRepo ports.PlantRepository
	cycleRepo ports.CycleRepository
	eventRepo ports.EventRepository
	taskRepo  ports.TaskRepository
	logger    *logger.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(plantRepo ports.PlantRepository, cycleRepo ports.CycleRepository, eventRepo ports.EventRepository, taskRepo ports.TaskRepository, logger *logger.Logger) *DashboardService {
	return &DashboardService{
		plantRepo: plantRepo,
		cycleRepo: cycleRepo,
		eventRepo: eventRepo,
		taskRepo:  taskRepo,
		logger:    logger,
	}
}

// DashboardCounts is the stats block of the dashboard aggregate.
type DashboardCounts struct {
	TotalPlants   int `json:"total_plants"`
	CurrentCycles int `json:"current_cycles"`
	OpenTasks     int `json:"open_tasks"`
	OverdueTasks  int `json:"overdue_tasks"`
	RecentEvents  int `json:"recent_events"`
}

// HarvestTotals summarizes harvest events of the last 30 days.
type HarvestTotals struct {
	Count         int     `json:"count"`
	TotalQuantity float64 `json:"total_quantity"`
}

// DashboardStats is the full dashboard aggregate.
type DashboardStats struct {
	CurrentYear    int
	Counts         DashboardCounts
	Cycles         []*entities.PlantingCycle
	UpcomingTasks  []*entities.Task
	OverdueTasks   []*entities.Task
	RecentHarvests HarvestTotals
}

// Stats assembles the dashboard aggregate from the current server time.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	now := time.Now()
	today := entities.NewDate(now)
	currentYear := now.Year()
	monthAgo := today.AddDays(-30)

	stats := &DashboardStats{CurrentYear: currentYear}

	totalPlants, err := s.plantRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.Counts.TotalPlants = totalPlants

	currentCycles, err := s.cycleRepo.CountCurrent(ctx, currentYear)
	if err != nil {
		return nil, err
	}
	stats.Counts.CurrentCycles = currentCycles

	cycles, err := s.cycleRepo.ListCurrent(ctx, currentYear)
	if err != nil {
		return nil, err
	}
	if len(cycles) > dashboardListLimit {
		cycles = cycles[:dashboardListLimit]
	}
	for _, cycle := range cycles {
		if err := loadCycleChildren(ctx, s.eventRepo, s.taskRepo, cycle); err != nil {
			return nil, err
		}
	}
	stats.Cycles = cycles

	openTasks, err := s.taskRepo.CountOpen(ctx)
	if err != nil {
		return nil, err
	}
	stats.Counts.OpenTasks = openTasks

	overdueCount, err := s.taskRepo.CountOverdue(ctx, today)
	if err != nil {
		return nil, err
	}
	stats.Counts.OverdueTasks = overdueCount

	overdue, err := s.taskRepo.ListOverdue(ctx, today, dashboardListLimit)
	if err != nil {
		return nil, err
	}
	stats.OverdueTasks = overdue

	upcoming, err := s.taskRepo.ListUpcoming(ctx, today, today.AddDays(7), dashboardListLimit)
	if err != nil {
		return nil, err
	}
	stats.UpcomingTasks = upcoming

	recentEvents, err := s.eventRepo.CountSince(ctx, monthAgo)
	if err != nil {
		return nil, err
	}
	stats.Counts.RecentEvents = recentEvents

	harvestCount, harvestTotal, err := s.eventRepo.HarvestTotals(ctx, monthAgo)
	if err != nil {
		return nil, err
	}
	stats.RecentHarvests = HarvestTotals{Count: harvestCount, TotalQuantity: harvestTotal}

	return stats, nil
}
