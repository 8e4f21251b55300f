package api

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-app/internal/apperrors"
	"github.com/bobby-s-dev/weather-app/internal/models"
	"github.com/bobby-s-dev/weather-app/internal/services"
)

type WeatherService interface {
	GetViewModel(ctx context.Context, q services.Query) (*models.ViewModel, error)
	GetStats() map[string]interface{}
	GetLastFetchTime() time.Time
	Available() bool
}

type SearchRecorder interface {
	ObserveSearch(outcome string)
}

// JobRunner is the background warm-up scheduler.
type JobRunner interface {
	ForceRun()
	GetStatus() map[string]interface{}
	UpdateCities(cities []string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSearch(string) {}

type Handler struct {
	weather   WeatherService
	sessions  *services.SessionStore
	jobs      JobRunner
	recorder  SearchRecorder
	logger    *zap.Logger
	startTime time.Time

	mu     sync.RWMutex
	cities []string
}

// NewHandler builds the API handler. jobs may be nil when no scheduler runs.
func NewHandler(weather WeatherService, sessions *services.SessionStore, jobs JobRunner, cities []string, recorder SearchRecorder, logger *zap.Logger) *Handler {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Handler{
		weather:   weather,
		sessions:  sessions,
		jobs:      jobs,
		cities:    cities,
		recorder:  recorder,
		logger:    logger,
		startTime: time.Now(),
	}
}

// GetWeather handles GET /api/v1/weather
func (h *Handler) GetWeather(c *fiber.Ctx) error {
	q, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	system, err := parseUnits(c)
	if err != nil {
		return err
	}

	h.logger.Info("Fetching weather", zap.String("query", q.String()))

	vm, err := h.weather.GetViewModel(c.UserContext(), q)
	if err != nil {
		h.logger.Error("Failed to get weather",
			zap.String("query", q.String()),
			zap.Error(err))
		return err
	}

	return c.JSON(vm.InUnits(system))
}

// CreateSession handles POST /api/v1/sessions
func (h *Handler) CreateSession(c *fiber.Ctx) error {
	s := h.sessions.Create()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id": s.ID(),
	})
}

// GetSession handles GET /api/v1/sessions/:id
func (h *Handler) GetSession(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	system, err := parseUnits(c)
	if err != nil {
		return err
	}

	vm := s.Current()
	if vm == nil {
		return apperrors.NotFound("weather view", s.ID())
	}
	return c.JSON(vm.InUnits(system))
}

// Search handles POST /api/v1/sessions/:id/search
func (h *Handler) Search(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}

	var req locationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.ValidationFailed("invalid request body", err.Error())
	}
	q, err := req.toQuery()
	if err != nil {
		return err
	}

	return h.runSearch(c, s, q)
}

// Geolocation handles POST /api/v1/sessions/:id/geolocation
func (h *Handler) Geolocation(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}

	var req geolocationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.ValidationFailed("invalid request body", err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return apperrors.ValidationFailed("invalid geolocation report", err.Error())
	}
	if req.Error != "" {
		geoErr := services.GeolocationError(req.Error)
		h.logger.Info("Browser geolocation failed",
			zap.String("session", s.ID()),
			zap.String("code", geoErr.Code))
		return geoErr
	}
	if req.Lat == nil || req.Lon == nil {
		return apperrors.ValidationFailed("lat and lon are required when no error is reported", "")
	}

	return h.runSearch(c, s, services.CoordinatesQuery(*req.Lat, *req.Lon))
}

func (h *Handler) runSearch(c *fiber.Ctx, s *services.Session, q services.Query) error {
	system, err := parseUnits(c)
	if err != nil {
		return err
	}

	vm, err := s.Search(c.UserContext(), q)
	switch {
	case errors.Is(err, services.ErrSuperseded):
		h.recorder.ObserveSearch("superseded")
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case err != nil:
		h.recorder.ObserveSearch("failed")
		return err
	}

	h.recorder.ObserveSearch("committed")
	return c.JSON(vm.InUnits(system))
}

// ClearView handles DELETE /api/v1/sessions/:id/view
func (h *Handler) ClearView(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	s.Clear()
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteSession handles DELETE /api/v1/sessions/:id
func (h *Handler) DeleteSession(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	h.sessions.Delete(s.ID())
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) session(c *fiber.Ctx) (*services.Session, error) {
	id := c.Params("id")
	s, ok := h.sessions.Get(id)
	if !ok {
		return nil, apperrors.NotFound("session", id)
	}
	return s, nil
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	status := "healthy"
	if !h.weather.Available() {
		status = "degraded"
	}

	return c.JSON(fiber.Map{
		"status":            status,
		"weather_available": h.weather.Available(),
		"timestamp":         time.Now(),
		"last_fetch":        h.weather.GetLastFetchTime(),
		"uptime":            time.Since(h.startTime).String(),
		"sessions":          h.sessions.Len(),
	})
}

// GetMetrics handles GET /api/v1/metrics
func (h *Handler) GetMetrics(c *fiber.Ctx) error {
	resp := fiber.Map{
		"metrics":   h.weather.GetStats(),
		"sessions":  h.sessions.Len(),
		"timestamp": time.Now(),
	}
	if h.jobs != nil {
		resp["scheduler"] = h.jobs.GetStatus()
	}
	return c.JSON(resp)
}

// GetCities handles GET /api/v1/cities
func (h *Handler) GetCities(c *fiber.Ctx) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return c.JSON(fiber.Map{
		"cities": h.cities,
	})
}

// UpdateCities handles PUT /api/v1/cities
func (h *Handler) UpdateCities(c *fiber.Ctx) error {
	var req citiesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.ValidationFailed("invalid request body", err.Error())
	}
	for i := range req.Cities {
		req.Cities[i] = strings.TrimSpace(req.Cities[i])
	}
	if err := validate.Struct(req); err != nil {
		return apperrors.ValidationFailed("invalid city list", err.Error())
	}

	h.mu.Lock()
	h.cities = req.Cities
	h.mu.Unlock()

	if h.jobs != nil {
		h.jobs.UpdateCities(req.Cities)
	}

	h.logger.Info("Warm-up cities updated", zap.Strings("cities", req.Cities))
	return c.JSON(fiber.Map{
		"cities": req.Cities,
	})
}

// RunScheduler handles POST /api/v1/scheduler/run
func (h *Handler) RunScheduler(c *fiber.Ctx) error {
	if h.jobs == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "scheduler not running")
	}
	h.jobs.ForceRun()
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "triggered",
	})
}
