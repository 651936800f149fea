package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/gardenlog/core/docs"
	httpHandlers "github.com/gardenlog/core/internal/adapters/http"
	"github.com/gardenlog/core/internal/adapters/repository"
	"github.com/gardenlog/core/internal/adapters/repository/memory"
	"github.com/gardenlog/core/internal/application/services"
	"github.com/gardenlog/core/internal/domain/entities"
	"github.com/gardenlog/core/internal/infrastructure/config"
	"github.com/gardenlog/core/internal/infrastructure/database"
	"github.com/gardenlog/core/internal/infrastructure/logger"
	"github.com/gardenlog/core/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	echo   *echo.Echo
	config *config.Config
	logger *logger.Logger
	db     *database.DB
}

// Repositories bundles the four storage ports behind one wiring point.
type Repositories struct {
	Plants ports.PlantRepository
	Cycles ports.CycleRepository
	Events ports.EventRepository
	Tasks  ports.TaskRepository
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json field names so validation errors match the wire contract.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// New creates a new server instance. db may be nil when the memory driver
// is configured.
func New(cfg *config.Config, db *database.DB, appLogger *logger.Logger) (*Server, error) {
	repos, err := newRepositories(cfg, db)
	if err != nil {
		return nil, err
	}
	return NewWithRepositories(cfg, db, repos, appLogger)
}

// NewWithRepositories creates a server on top of already-constructed
// storage ports. Tests use this to run against the memory store.
func NewWithRepositories(cfg *config.Config, db *database.DB, repos Repositories, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	// Set custom validator
	e.Validator = &CustomValidator{validator: newValidator()}

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	// Initialize services
	plantService := services.NewPlantService(repos.Plants, repos.Cycles, repos.Events, repos.Tasks, appLogger)
	cycleService := services.NewCycleService(repos.Cycles, repos.Plants, repos.Events, repos.Tasks, appLogger)
	eventService := services.NewEventService(repos.Events, repos.Cycles, appLogger)
	taskService := services.NewTaskService(repos.Tasks, repos.Cycles, appLogger)
	dashboardService := services.NewDashboardService(repos.Plants, repos.Cycles, repos.Events, repos.Tasks, appLogger)

	// Initialize handlers
	plantHandler := httpHandlers.NewPlantHandler(plantService, appLogger)
	cycleHandler := httpHandlers.NewCycleHandler(cycleService, eventService, taskService, appLogger)
	eventHandler := httpHandlers.NewEventHandler(eventService, appLogger)
	taskHandler := httpHandlers.NewTaskHandler(taskService, appLogger)
	dashboardHandler := httpHandlers.NewDashboardHandler(dashboardService, appLogger)

	server := &Server{
		echo:   e,
		config: cfg,
		logger: appLogger,
		db:     db,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes(plantHandler, cycleHandler, eventHandler, taskHandler, dashboardHandler)

	// Setup metrics
	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	return server, nil
}

func newRepositories(cfg *config.Config, db *database.DB) (Repositories, error) {
	switch cfg.Database.Driver {
	case "postgres":
		if db == nil {
			return Repositories{}, fmt.Errorf("postgres driver requires a database connection")
		}
		return Repositories{
			Plants: repository.NewPlantRepository(db.DB),
			Cycles: repository.NewCycleRepository(db.DB),
			Events: repository.NewEventRepository(db.DB),
			Tasks:  repository.NewTaskRepository(db.DB),
		}, nil
	case "memory":
		store := memory.New()
		return Repositories{
			Plants: store.Plants(),
			Cycles: store.Cycles(),
			Events: store.Events(),
			Tasks:  store.Tasks(),
		}, nil
	default:
		return Repositories{}, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(plantHandler *httpHandlers.PlantHandler, cycleHandler *httpHandlers.CycleHandler, eventHandler *httpHandlers.EventHandler, taskHandler *httpHandlers.TaskHandler, dashboardHandler *httpHandlers.DashboardHandler) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")

	// Plant routes
	plantGroup := v1.Group("/plants")
	plantGroup.GET("", plantHandler.ListPlants)
	plantGroup.POST("", plantHandler.CreatePlant)
	plantGroup.GET("/:id", plantHandler.GetPlant)
	plantGroup.PUT("/:id", plantHandler.UpdatePlant)
	plantGroup.PATCH("/:id", plantHandler.UpdatePlant)
	plantGroup.DELETE("/:id", plantHandler.DeletePlant)
	plantGroup.GET("/:id/cycles_detail", plantHandler.GetPlantCycles)

	// Planting cycle routes
	cycleGroup := v1.Group("/cycles")
	cycleGroup.GET("", cycleHandler.ListCycles)
	cycleGroup.POST("", cycleHandler.CreateCycle)
	cycleGroup.GET("/:id", cycleHandler.GetCycle)
	cycleGroup.PUT("/:id", cycleHandler.UpdateCycle)
	cycleGroup.PATCH("/:id", cycleHandler.UpdateCycle)
	cycleGroup.DELETE("/:id", cycleHandler.DeleteCycle)
	cycleGroup.POST("/:id/add_event", cycleHandler.AddEvent)
	cycleGroup.POST("/:id/add_task", cycleHandler.AddTask)

	// Event routes
	eventGroup := v1.Group("/events")
	eventGroup.GET("", eventHandler.ListEvents)
	eventGroup.POST("", eventHandler.CreateEvent)
	eventGroup.GET("/:id", eventHandler.GetEvent)
	eventGroup.PUT("/:id", eventHandler.UpdateEvent)
	eventGroup.PATCH("/:id", eventHandler.UpdateEvent)
	eventGroup.DELETE("/:id", eventHandler.DeleteEvent)

	// Task routes
	taskGroup := v1.Group("/tasks")
	taskGroup.GET("", taskHandler.ListTasks)
	taskGroup.POST("", taskHandler.CreateTask)
	taskGroup.GET("/:id", taskHandler.GetTask)
	taskGroup.PUT("/:id", taskHandler.UpdateTask)
	taskGroup.PATCH("/:id", taskHandler.UpdateTask)
	taskGroup.DELETE("/:id", taskHandler.DeleteTask)
	taskGroup.POST("/:id/toggle_complete", taskHandler.ToggleComplete)

	// Dashboard
	v1.GET("/dashboard/stats", dashboardHandler.Stats)
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	if s.db != nil {
		if err := s.db.HealthCheck(); err != nil {
			status = "error"
			checks["database"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		} else {
			checks["database"] = map[string]interface{}{
				"status": "ok",
				"stats":  s.db.GetConnectionInfo(),
			}
		}
	} else {
		checks["database"] = map[string]interface{}{
			"status": "ok",
			"driver": "memory",
		}
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
		},
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": "database_not_ready",
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Info("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// ServeHTTP makes the server usable with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// customErrorHandler handles HTTP errors. Domain errors that escape the
// handlers get the same mapping the handlers apply.
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		var verr *entities.ValidationError
		var cerr *entities.ConflictError

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			msg = he.Message
			if s, ok := msg.(string); ok {
				msg = map[string]string{"message": s}
			}
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		} else if errors.As(err, &verr) {
			code = http.StatusBadRequest
			msg = verr
		} else if errors.As(err, &cerr) {
			code = http.StatusConflict
			msg = map[string]string{"detail": cerr.Error()}
		} else {
			msg = map[string]string{"message": http.StatusText(code)}
		}

		if code == http.StatusInternalServerError {
			logger.Error("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		// Send response
		if !c.Response().Committed {
			if c.Request().Method == echo.HEAD {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				logger.Error("Error sending response", "error", err)
			}
		}
	}
}
