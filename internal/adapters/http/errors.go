package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/gardenlog/core/internal/domain/entities"
)

// httpError maps domain errors to HTTP responses: field-keyed validation
// errors to 400, unknown ids to 404, a duplicate (plant, year) pair to 409.
// Anything else passes through and surfaces as a 500.
func httpError(err error) error {
	var verr *entities.ValidationError
	if errors.As(err, &verr) {
		return echo.NewHTTPError(http.StatusBadRequest, verr)
	}

	var cerr *entities.ConflictError
	if errors.As(err, &cerr) {
		return echo.NewHTTPError(http.StatusConflict, map[string]string{"detail": cerr.Error()})
	}

	switch {
	case errors.Is(err, entities.ErrPlantNotFound),
		errors.Is(err, entities.ErrCycleNotFound),
		errors.Is(err, entities.ErrEventNotFound),
		errors.Is(err, entities.ErrTaskNotFound):
		return echo.NewHTTPError(http.StatusNotFound, map[string]string{"detail": err.Error()})
	}

	return err
}

// validationError folds validator tag failures into the same field-keyed
// 400 body the domain validation produces.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	out := entities.NewValidationError()
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			out.Add(fe.Field(), "this field is required")
		case "max":
			out.Add(fe.Field(), fmt.Sprintf("ensure this field has no more than %s characters", fe.Param()))
		default:
			out.Add(fe.Field(), "this field is invalid")
		}
	}

	return echo.NewHTTPError(http.StatusBadRequest, out)
}

func errNotFound() error {
	return echo.NewHTTPError(http.StatusNotFound, map[string]string{"detail": "not found"})
}

// pathID parses the :id path segment. A malformed id behaves like a
// missing record.
func pathID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return 0, errNotFound()
	}
	return id, nil
}

// truthy reports whether a query parameter value counts as true:
// case-insensitive "true", "1" or "yes". Anything else is false.
func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func queryInt(c echo.Context, name string) (*int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid %s parameter", name))
	}
	return &n, nil
}

func queryDate(c echo.Context, name string) (*entities.Date, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	d, err := entities.ParseDate(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid %s parameter", name))
	}
	return &d, nil
}
