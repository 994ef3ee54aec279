package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kodestudio/requirements-api/internal/api/metrics"
	"github.com/kodestudio/requirements-api/internal/core/domain"
	"github.com/kodestudio/requirements-api/internal/core/ports"
)

// ClientHandler handles HTTP requests for client profile operations.
type ClientHandler struct {
	service ports.ClientService
}

func NewClientHandler(service ports.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// Create handles POST /api/clients.
func (h *ClientHandler) Create(c echo.Context) error {
	var fields map[string]any
	if err := c.Bind(&fields); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	id, err := h.service.Create(c.Request().Context(), fields)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			metrics.ValidationFailuresTotal.WithLabelValues("client").Inc()
		}
		return err
	}

	return c.JSON(http.StatusCreated, createResponse{ID: id, Message: "client created"})
}

// Get handles GET /api/clients/:id.
func (h *ClientHandler) Get(c echo.Context) error {
	doc, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

// List handles GET /api/clients.
//
// Query parameters: page, per_page, name, city (substring filters).
func (h *ClientHandler) List(c echo.Context) error {
	q := ports.ClientListQuery{
		Name:    c.QueryParam("name"),
		City:    c.QueryParam("city"),
		Page:    intQuery(c, "page", 1),
		PerPage: intQuery(c, "per_page", 10),
	}

	page, err := h.service.List(c.Request().Context(), q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listClientsResponse{
		Clients:    page.Items,
		Total:      page.Total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
	})
}

// Delete handles DELETE /api/clients/:id.
func (h *ClientHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "client deleted"})
}

// Search handles GET /api/clients/search?q=term.
func (h *ClientHandler) Search(c echo.Context) error {
	term := c.QueryParam("q")
	if term == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing search term")
	}

	results, err := h.service.Search(c.Request().Context(), term)
	if err != nil {
		return err
	}
	metrics.SearchesTotal.WithLabelValues("client").Inc()

	return c.JSON(http.StatusOK, searchResponse{Results: results, Count: len(results)})
}
