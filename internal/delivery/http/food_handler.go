package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kmfahey/nutritracker/internal/domain"
)

func renderFood[F domain.Food](f F) map[string]interface{} { return f.Serialize() }

// ListFoods handles GET /foods
func (h *Handler) ListFoods(c *gin.Context) {
	if h.foods == nil {
		notConfigured(c, "food")
		return
	}
	page, size, ok := pageParams(c)
	if !ok {
		return
	}
	result, err := h.foods.ListFoods(c.Request.Context(), page, size)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderPage(result, renderFood[*domain.FoodRecord]))
}

// SearchFoods handles GET /foods/search?q=
func (h *Handler) SearchFoods(c *gin.Context) {
	if h.foods == nil {
		notConfigured(c, "food")
		return
	}
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		badRequest(c, "q is required")
		return
	}
	page, size, ok := pageParams(c)
	if !ok {
		return
	}
	result, err := h.foods.SearchLocal(c.Request.Context(), query, page, size)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderPage(result, renderFood[*domain.FoodRecord]))
}

// GetFood handles GET /foods/:fdcId
func (h *Handler) GetFood(c *gin.Context) {
	if h.foods == nil {
		notConfigured(c, "food")
		return
	}
	id, ok := fdcIDParam(c, c.Param("fdcId"))
	if !ok {
		return
	}
	food, err := h.foods.GetLocal(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, food.Serialize())
}

// SearchFDC handles GET /fdc/search?q=
func (h *Handler) SearchFDC(c *gin.Context) {
	if h.foods == nil {
		notConfigured(c, "food")
		return
	}
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		badRequest(c, "q is required")
		return
	}
	page, size, ok := pageParams(c)
	if !ok {
		return
	}
	result, err := h.foods.SearchFDC(c.Request.Context(), query, page, size)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderPage(result, renderFood[*domain.FoodStub]))
}

// LookupFDC handles GET /fdc/foods/:fdcId. Not found, unusable and upstream
// failures come back as 404, 422 and 502.
func (h *Handler) LookupFDC(c *gin.Context) {
	if h.foods == nil {
		notConfigured(c, "food")
		return
	}
	id, ok := fdcIDParam(c, c.Param("fdcId"))
	if !ok {
		return
	}
	food, err := h.foods.LookupFDC(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, food.Serialize())
}

// ImportFDC handles POST /fdc/foods/:fdcId/import. A food that was already
// stored answers 200 instead of 201.
func (h *Handler) ImportFDC(c *gin.Context) {
	if h.foods == nil {
		notConfigured(c, "food")
		return
	}
	id, ok := fdcIDParam(c, c.Param("fdcId"))
	if !ok {
		return
	}
	food, created, err := h.foods.ImportFDC(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, food.Serialize())
}
