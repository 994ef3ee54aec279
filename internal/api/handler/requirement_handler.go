package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kodestudio/requirements-api/internal/api/metrics"
	"github.com/kodestudio/requirements-api/internal/core/domain"
	"github.com/kodestudio/requirements-api/internal/core/ports"
)

// RequirementHandler handles HTTP requests for requirement operations.
type RequirementHandler struct {
	service ports.RequirementService
}

func NewRequirementHandler(service ports.RequirementService) *RequirementHandler {
	return &RequirementHandler{service: service}
}

// Create handles POST /api/requirements.
//
// @Summary      Submit a new project requirement
// @Tags         requirements
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      map[string]any  true  "Requirement fields"
// @Success      201   {object}  createResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/requirements [post]
func (h *RequirementHandler) Create(c echo.Context) error {
	var fields map[string]any
	if err := c.Bind(&fields); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	id, err := h.service.Create(c.Request().Context(), fields)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			metrics.ValidationFailuresTotal.WithLabelValues("requirement").Inc()
		}
		return err
	}

	department, _ := fields["department"].(string)
	metrics.SubmissionsTotal.WithLabelValues(department).Inc()

	return c.JSON(http.StatusCreated, createResponse{
		ID:      id,
		Message: "requirement created",
	})
}

// Get handles GET /api/requirements/:id.
func (h *RequirementHandler) Get(c echo.Context) error {
	doc, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

// List handles GET /api/requirements.
//
// Query parameters: page, per_page, status, priority, department, sort_by,
// order (1 ascending, -1 descending).
func (h *RequirementHandler) List(c echo.Context) error {
	q := ports.ListQuery{
		Page:    intQuery(c, "page", 1),
		PerPage: intQuery(c, "per_page", 10),
		SortBy:  c.QueryParam("sort_by"),
		SortDir: intQuery(c, "order", -1),
		Filters: map[string]string{
			"status":     c.QueryParam("status"),
			"priority":   c.QueryParam("priority"),
			"department": c.QueryParam("department"),
		},
	}

	page, err := h.service.List(c.Request().Context(), q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listRequirementsResponse{
		Requirements: page.Items,
		Total:        page.Total,
		Page:         page.Page,
		PerPage:      page.PerPage,
		TotalPages:   page.TotalPages,
	})
}

// Update handles PUT /api/requirements/:id.
func (h *RequirementHandler) Update(c echo.Context) error {
	var fields map[string]any
	if err := c.Bind(&fields); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.service.Update(c.Request().Context(), c.Param("id"), fields); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			metrics.ValidationFailuresTotal.WithLabelValues("requirement").Inc()
		}
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "requirement updated"})
}

// Delete handles DELETE /api/requirements/:id.
func (h *RequirementHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "requirement deleted"})
}

// Search handles GET /api/requirements/search?q=term.
func (h *RequirementHandler) Search(c echo.Context) error {
	term := c.QueryParam("q")
	if term == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing search term")
	}

	results, err := h.service.Search(c.Request().Context(), term)
	if err != nil {
		return err
	}
	metrics.SearchesTotal.WithLabelValues("requirement").Inc()

	return c.JSON(http.StatusOK, searchResponse{Results: results, Count: len(results)})
}

// Stats handles GET /api/requirements/stats.
func (h *RequirementHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// intQuery parses a positive or signed integer query parameter, falling
// back to def on absence or garbage.
func intQuery(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
