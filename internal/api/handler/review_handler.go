package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kodestudio/requirements-api/internal/core/ports"
)

// ReviewHandler serves the read-only review listing.
type ReviewHandler struct {
	service ports.ReviewService
}

func NewReviewHandler(service ports.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// List handles GET /api/reviews.
func (h *ReviewHandler) List(c echo.Context) error {
	reviews, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listReviewsResponse{Reviews: reviews, Count: len(reviews)})
}
